// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaleseries

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opendihu/perfscaling/scalefmt"
	"github.com/opendihu/perfscaling/scalemath"
	"github.com/opendihu/perfscaling/scaleproc"
)

// DefaultColumns are the duration columns plotted by default, in
// drawing order.
var DefaultColumns = []string{
	scalefmt.ColDuration0D,
	scalefmt.ColDuration1D,
	scalefmt.ColDurationTotal,
}

// ReduceOptions configures the reduction of a Group.
type ReduceOptions struct {
	// Trim selects how many extreme values are dropped from each
	// column before averaging.
	Trim scalemath.TrimOptions

	// ZeroAsMissing excludes values logged as exactly zero, in
	// addition to missing ones. Older logs wrote 0 for quantities
	// that were not measured.
	ZeroAsMissing bool

	// Required lists the columns that must have at least one value
	// in every group. A group without values in a required column
	// fails with *EmptyGroupError.
	Required []string
}

// DefaultReduceOptions returns the options used by the parallel
// scaling tests: drop the two lowest and the highest value, treat
// zeros as missing, and require the plotted durations.
func DefaultReduceOptions() *ReduceOptions {
	return &ReduceOptions{
		Trim:          scalemath.DefaultTrim,
		ZeroAsMissing: true,
		Required:      append([]string(nil), DefaultColumns...),
	}
}

// An EmptyGroupError reports a group that has no values left in a
// required column. It usually means the runs of that configuration
// did not log the column at all.
type EmptyGroupError struct {
	Key    scaleproc.Key
	Column string
}

func (e *EmptyGroupError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("group %s: no rows", e.Key)
	}
	return fmt.Sprintf("group %s: no measured values in column %s", e.Key, e.Column)
}

// A Group is the set of runs sharing a key.
type Group struct {
	Key scaleproc.Key

	// Records are the rows of the group, in input order.
	Records []*scalefmt.Row

	// N is the number of rows that contributed to the group, before
	// any trimming. Per-column counts after trimming are in
	// Summary(col).N.
	N int

	// Warnings are non-fatal problems found by Reduce.
	Warnings []error

	cols      []string
	summaries map[string]scalemath.Summary
	rep, vari *scalefmt.Row
}

// Reduce computes the trimmed mean and standard deviation of every
// numeric column of g.
//
// For each column, missing values (and zeros, if o.ZeroAsMissing) are
// ignored, the rest are sorted and trimmed per o.Trim, and the
// remainder is summarized. A column left without values is undefined
// in the result; if it is one of o.Required, Reduce returns an
// *EmptyGroupError instead.
func (g *Group) Reduce(o *ReduceOptions) error {
	g.rep, g.vari, g.summaries, g.Warnings = nil, nil, nil, nil
	if len(g.Records) == 0 {
		return &EmptyGroupError{Key: g.Key}
	}
	cols := g.columns()
	summaries := make(map[string]scalemath.Summary, len(cols))

	first := g.Records[0]
	rep := &scalefmt.Row{
		Timestamp:    first.Timestamp,
		Hostname:     first.Hostname,
		ScenarioName: first.ScenarioName,
		Header:       first.Header,
	}
	vari := rep.Clone()

	var undefined []string
	vals := make([]float64, 0, len(g.Records))
	for _, col := range cols {
		vals = vals[:0]
		for _, r := range g.Records {
			v, ok := r.Value(col)
			if !ok || !v.OK || (o.ZeroAsMissing && v.V == 0) {
				continue
			}
			vals = append(vals, v.V)
		}

		s, err := scalemath.Summarize(scalemath.NewSample(vals).Trim(o.Trim))
		if errors.Is(err, scalemath.ErrEmptySample) {
			if isRequired(o, col) {
				return &EmptyGroupError{Key: g.Key, Column: col}
			}
			undefined = append(undefined, col)
			rep.SetValue(col, scalefmt.Value{})
			vari.SetValue(col, scalefmt.Value{})
			continue
		} else if err != nil {
			return fmt.Errorf("group %s, column %s: %w", g.Key, col, err)
		}
		summaries[col] = s
		rep.SetValue(col, scalefmt.Measured(s.Mean))
		vari.SetValue(col, scalefmt.Measured(s.StdDev))
	}

	// Required columns absent from every row's header are empty too.
	for _, col := range o.Required {
		if _, ok := summaries[scalefmt.CanonicalName(col)]; !ok {
			return &EmptyGroupError{Key: g.Key, Column: col}
		}
	}

	g.cols, g.summaries, g.rep, g.vari = cols, summaries, rep, vari
	if len(undefined) > 0 {
		g.Warnings = append(g.Warnings, fmt.Errorf("group %s: no measured values in %s", g.Key, strings.Join(undefined, ", ")))
	}
	return nil
}

// columns returns the numeric columns of g's rows, in the order they
// first appear.
func (g *Group) columns() []string {
	var cols []string
	seen := make(map[string]bool)
	for _, r := range g.Records {
		for _, c := range r.Columns() {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// Reduced reports whether Reduce has succeeded on g.
func (g *Group) Reduced() bool {
	return g.rep != nil
}

// Columns returns the numeric columns reduced by Reduce.
func (g *Group) Columns() []string {
	return g.cols
}

// Representative returns a row holding the trimmed mean of every
// column. Its string fields are taken from the group's first row.
// It returns nil if g has not been reduced.
func (g *Group) Representative() *scalefmt.Row {
	return g.rep
}

// Variance returns a row holding the population standard deviation of
// every column, parallel to Representative.
func (g *Group) Variance() *scalefmt.Row {
	return g.vari
}

// Summary returns the reduced statistics of column col. The result is
// not Defined if the column had no values or g has not been reduced.
func (g *Group) Summary(col string) scalemath.Summary {
	return g.summaries[scalefmt.CanonicalName(col)]
}

// Procs returns the process count of g.
func (g *Group) Procs() int {
	return g.Key.Procs
}

func isRequired(o *ReduceOptions, col string) bool {
	for _, c := range o.Required {
		if scalefmt.CanonicalName(c) == col {
			return true
		}
	}
	return false
}
