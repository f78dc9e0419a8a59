// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalestat

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/opendihu/perfscaling/scalefmt"
	"github.com/opendihu/perfscaling/scalemath"
	"github.com/opendihu/perfscaling/scaleseries"
	"github.com/opendihu/perfscaling/scaleunit"
)

// FormatText writes the report of groups as an aligned text table.
// Durations and memory are scaled for reading.
func FormatText(w io.Writer, groups []*scaleseries.Group) error {
	tab := tablewriter.NewWriter(w)
	tab.SetHeader(header)
	tab.SetAutoFormatHeaders(false)
	tab.SetAlignment(tablewriter.ALIGN_RIGHT)
	tab.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	tab.SetBorder(false)
	tab.SetColumnSeparator("")
	tab.SetCenterSeparator("")
	tab.SetHeaderLine(false)
	tab.SetTablePadding("  ")
	tab.SetNoWhiteSpace(true)

	for _, e := range Entries(groups) {
		tab.Append([]string{
			e.Key,
			strconv.Itoa(e.Procs),
			strconv.FormatInt(e.Muscles, 10),
			strconv.FormatInt(e.MusclesPerProc, 10),
			strconv.FormatInt(e.Fibers, 10),
			scaled(e.Solve0D, scalefmt.ColDuration0D),
			scaled(e.Solve1D, scalefmt.ColDuration1D),
			scaled(e.Total, scalefmt.ColDurationTotal),
			strconv.Itoa(e.N),
			scaled(e.MemData, scalefmt.ColMemoryData),
		})
	}
	tab.Render()
	return nil
}

func scaled(s scalemath.Summary, col string) string {
	if !s.Defined() {
		return "-"
	}
	return scaleunit.ScaleColumn(s.Mean, col)
}
