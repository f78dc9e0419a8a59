// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaleproc

import (
	"fmt"

	"github.com/opendihu/perfscaling/scalefmt"
)

// A Filter selects the runs of one experiment configuration by exact
// match on the simulated end time and the 1-D element count.
//
// A nil *Filter matches every run.
type Filter struct {
	EndTime    float64
	Elements1D int64

	// All disables filtering.
	All bool
}

// DefaultFilter selects the reference configuration of the parallel
// scaling tests.
var DefaultFilter = Filter{EndTime: 100.0, Elements1D: 2399999}

// Match reports whether r belongs to the experiment f selects.
func (f *Filter) Match(r *scalefmt.Row) bool {
	if f == nil || f.All {
		return true
	}
	return f.MatchValues(r.EndTime.Float(), int64(r.NElements1D.Float()))
}

// MatchValues is like Match, for an end time and element count
// already taken from a row.
func (f *Filter) MatchValues(endTime float64, elements int64) bool {
	if f == nil || f.All {
		return true
	}
	return endTime == f.EndTime && elements == f.Elements1D
}

func (f *Filter) String() string {
	if f == nil || f.All {
		return "all runs"
	}
	return fmt.Sprintf("endTime=%v nElements1D=%d", f.EndTime, f.Elements1D)
}
