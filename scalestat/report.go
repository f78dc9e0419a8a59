// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scalestat formats a table of reduced scaling groups.
//
// Each line of the table is one group: its key, its process count,
// the problem size, the trimmed mean runtimes of the solver stages,
// the number of runs averaged, and the memory used.
package scalestat

import (
	"github.com/opendihu/perfscaling/scalefmt"
	"github.com/opendihu/perfscaling/scalemath"
	"github.com/opendihu/perfscaling/scaleseries"
)

// An Entry is one line of the report.
type Entry struct {
	Key   string
	Procs int

	// Muscles is the number of 1-D elements over all instances,
	// and Fibers the number of instances.
	Muscles, MusclesPerProc int64
	Fibers                  int64

	Solve0D, Solve1D, Total scalemath.Summary

	// N is the number of runs averaged into Total.
	N int

	// MemData is the mean data memory, in bytes.
	MemData scalemath.Summary
}

// Entries returns the report lines of groups, which must be reduced.
func Entries(groups []*scaleseries.Group) []Entry {
	var out []Entry
	for _, g := range groups {
		rep := g.Representative()
		if rep == nil {
			continue
		}
		nF := int64(rep.NInstancesComputedGlobally.Float())
		nM := int64(rep.NElements1D.Float() * rep.NInstancesComputedGlobally.Float())
		e := Entry{
			Key:     g.Key.String(),
			Procs:   g.Procs(),
			Muscles: nM,
			Fibers:  nF,
			Solve0D: g.Summary(scalefmt.ColDuration0D),
			Solve1D: g.Summary(scalefmt.ColDuration1D),
			Total:   g.Summary(scalefmt.ColDurationTotal),
			MemData: g.Summary(scalefmt.ColMemoryData),
		}
		if e.Procs > 0 {
			e.MusclesPerProc = nM / int64(e.Procs)
		}
		e.N = e.Total.N
		out = append(out, e)
	}
	return out
}

var header = []string{"key", "nproc", "#M", "#M/proc", "#F", "solve: 0D", "1D", "total", "n", "memData"}
