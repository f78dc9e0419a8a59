// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaleseries

import (
	"fmt"

	"github.com/opendihu/perfscaling/scalefmt"
	"github.com/opendihu/perfscaling/scalemath"
	"github.com/opendihu/perfscaling/scaleproc"
)

// A Point is one process count of a Series.
type Point struct {
	Procs int

	// Measured is the reduced column at Procs.
	Measured scalemath.Summary

	// Optimal is the value the column would have under ideal
	// linear speedup from the reference process count.
	Optimal float64

	// Efficiency is Optimal / Measured.Mean. It is not clamped:
	// values above 1 indicate super-linear speedup.
	Efficiency float64
}

// A Series is the scaling curve of one column for one mode.
type Series struct {
	Column string
	Mode   scaleproc.Mode

	// Reference is the process count the ideal curve starts from.
	Reference int

	// Points are in ascending process count. Process counts whose
	// column has no values are omitted.
	Points []Point
}

// A MissingReferenceError reports that the reference process count of
// a series has no usable data.
type MissingReferenceError struct {
	Mode   scaleproc.Mode
	Procs  int
	Column string // empty if there is no group at all

	// NonPositive is set if the reference has values but their mean
	// is not positive, so no ideal runtime can be derived from it.
	NonPositive bool
}

func (e *MissingReferenceError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("no %s scaling runs with %d processes to use as reference", e.Mode, e.Procs)
	}
	if e.NonPositive {
		return fmt.Sprintf("%s scaling reference at %d processes has non-positive mean in column %s", e.Mode, e.Procs, e.Column)
	}
	return fmt.Sprintf("%s scaling reference at %d processes has no values in column %s", e.Mode, e.Procs, e.Column)
}

// NewSeries derives a Series for each of cols from the reduced groups
// of mode. groups must be in ascending key order, as returned by
// Builder.Reduce.
//
// ref is the reference process count. If ref is 0, the smallest
// process count of mode is used. The ideal value at p processes is
// mean(ref) * ref / p. Points whose measured mean is not positive have
// no finite efficiency and are left out.
//
// NewSeries returns nil and no error if there are no groups of mode.
func NewSeries(groups []*Group, mode scaleproc.Mode, cols []string, ref int) ([]*Series, error) {
	var sel []*Group
	for _, g := range groups {
		// Runs without a rank count cannot be placed on the curve.
		if g.Key.Mode == mode && g.Procs() > 0 {
			if !g.Reduced() {
				return nil, fmt.Errorf("group %s has not been reduced", g.Key)
			}
			sel = append(sel, g)
		}
	}
	if len(sel) == 0 {
		if ref != 0 {
			return nil, &MissingReferenceError{Mode: mode, Procs: ref}
		}
		return nil, nil
	}

	var refGroup *Group
	if ref == 0 {
		refGroup = sel[0]
		for _, g := range sel[1:] {
			if g.Procs() < refGroup.Procs() {
				refGroup = g
			}
		}
		ref = refGroup.Procs()
	} else {
		for _, g := range sel {
			if g.Procs() == ref {
				refGroup = g
				break
			}
		}
		if refGroup == nil {
			return nil, &MissingReferenceError{Mode: mode, Procs: ref}
		}
	}

	var out []*Series
	for _, col := range cols {
		col = scalefmt.CanonicalName(col)
		base := refGroup.Summary(col)
		if !base.Defined() {
			return nil, &MissingReferenceError{Mode: mode, Procs: ref, Column: col}
		}
		if !(base.Mean > 0) {
			return nil, &MissingReferenceError{Mode: mode, Procs: ref, Column: col, NonPositive: true}
		}
		s := &Series{Column: col, Mode: mode, Reference: ref}
		for _, g := range sel {
			m := g.Summary(col)
			if !m.Defined() || !(m.Mean > 0) {
				continue
			}
			optimal := base.Mean * (float64(ref) / float64(g.Procs()))
			s.Points = append(s.Points, Point{
				Procs:      g.Procs(),
				Measured:   m,
				Optimal:    optimal,
				Efficiency: optimal / m.Mean,
			})
		}
		out = append(out, s)
	}
	return out, nil
}

// At returns the point of s at procs.
func (s *Series) At(procs int) (Point, bool) {
	for _, p := range s.Points {
		if p.Procs == procs {
			return p, true
		}
	}
	return Point{}, false
}
