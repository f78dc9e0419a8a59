// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scaleseries aggregates the runs of a parallel scaling study.
//
// A Builder collects rows from performance logs, keeps those of one
// experiment configuration, and groups them by process count. Each
// Group is then reduced to a representative row of trimmed means and a
// row of standard deviations. From the reduced groups of one scaling
// mode, NewSeries derives the ideal-scaling and parallel-efficiency
// curves that Chart draws.
package scaleseries

import (
	"fmt"
	"os"
	"sort"

	"github.com/aclements/go-gg/table"
	"github.com/opendihu/perfscaling/scalefmt"
	"github.com/opendihu/perfscaling/scaleproc"
)

// A Builder collects rows and groups them by key.
type Builder struct {
	filter  *scaleproc.Filter
	keyFunc func(*scalefmt.Row) scaleproc.Key
	warn    func(format string, args ...interface{})

	rows []*scalefmt.Row
}

type BuilderOptions struct {
	Filter  *scaleproc.Filter                 // runs to keep; nil keeps all
	KeyFunc func(*scalefmt.Row) scaleproc.Key // group key of a row; nil means scaleproc.KeyOf
	Warn    func(format string, args ...interface{})
}

func DefaultBuilderOptions() *BuilderOptions {
	f := scaleproc.DefaultFilter
	return &BuilderOptions{
		Filter:  &f,
		KeyFunc: scaleproc.KeyOf,
		Warn: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format, args...)
		},
	}
}

// NewBuilder returns a Builder configured by bo.
func NewBuilder(bo *BuilderOptions) *Builder {
	b := &Builder{
		filter:  bo.Filter,
		keyFunc: bo.KeyFunc,
		warn:    bo.Warn,
	}
	if b.keyFunc == nil {
		b.keyFunc = scaleproc.KeyOf
	}
	if b.warn == nil {
		b.warn = func(string, ...interface{}) {}
	}
	return b
}

// AddFiles adds every row read from files. Malformed lines are
// reported through the Warn option and skipped.
func (b *Builder) AddFiles(files *scalefmt.Files) error {
	for files.Scan() {
		switch rec := files.Result().(type) {
		case *scalefmt.SyntaxError:
			// Non-fatal parse error. Warn and skip the line.
			b.warn("%v\n", rec)
		case *scalefmt.Row:
			b.Add(rec)
		}
	}
	return files.Err()
}

// Add adds row r to b. b keeps r; the caller must not modify it.
func (b *Builder) Add(r *scalefmt.Row) {
	b.rows = append(b.rows, r)
}

// Len returns the number of rows added to b, whether or not they pass
// the filter.
func (b *Builder) Len() int {
	return len(b.rows)
}

// rowRef is the per-row index the grouping works on. Its exported
// fields are the table's columns.
type rowRef struct {
	Index    int
	Key      scaleproc.Key
	EndTime  float64
	Elements int64
}

// Groups returns the rows that pass the filter, grouped by key, in
// ascending key order. Within a group rows keep the order they were
// added in. The groups are not reduced yet.
func (b *Builder) Groups() []*Group {
	if len(b.rows) == 0 {
		return nil
	}
	refs := make([]rowRef, len(b.rows))
	for i, r := range b.rows {
		refs[i] = rowRef{
			Index:    i,
			Key:      b.keyFunc(r),
			EndTime:  r.EndTime.Float(),
			Elements: int64(r.NElements1D.Float()),
		}
	}

	var g table.Grouping = table.TableFromStructs(refs)
	if f := b.filter; f != nil && !f.All {
		g = table.Filter(g, func(endTime float64, elements int64) bool {
			return f.MatchValues(endTime, elements)
		}, "EndTime", "Elements")
	}
	g = table.GroupBy(g, "Key")

	groups := make([]*Group, 0, len(g.Tables()))
	for _, gid := range g.Tables() {
		idx := g.Table(gid).MustColumn("Index").([]int)
		grp := &Group{
			Key:     gid.Label().(scaleproc.Key),
			Records: make([]*scalefmt.Row, len(idx)),
			N:       len(idx),
		}
		for i, j := range idx {
			grp.Records[i] = b.rows[j]
		}
		groups = append(groups, grp)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key.Less(groups[j].Key)
	})
	return groups
}

// Reduce groups the rows of b and reduces every group with o. If o is
// nil, DefaultReduceOptions is used. Reduce stops at the first group
// that cannot be reduced.
func (b *Builder) Reduce(o *ReduceOptions) ([]*Group, error) {
	if o == nil {
		o = DefaultReduceOptions()
	}
	groups := b.Groups()
	for _, g := range groups {
		if err := g.Reduce(o); err != nil {
			return nil, err
		}
		for _, w := range g.Warnings {
			b.warn("%v\n", w)
		}
	}
	return groups, nil
}
