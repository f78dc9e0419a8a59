// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalestat

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/opendihu/perfscaling/scalemath"
	"github.com/opendihu/perfscaling/scaleseries"
	"github.com/opendihu/perfscaling/scaleunit"
)

// FormatCSV writes the report of groups as CSV. Values are written
// exactly, in seconds and bytes.
func FormatCSV(w io.Writer, groups []*scaleseries.Group) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range Entries(groups) {
		err := cw.Write([]string{
			e.Key,
			strconv.Itoa(e.Procs),
			strconv.FormatInt(e.Muscles, 10),
			strconv.FormatInt(e.MusclesPerProc, 10),
			strconv.FormatInt(e.Fibers, 10),
			exact(e.Solve0D),
			exact(e.Solve1D),
			exact(e.Total),
			strconv.Itoa(e.N),
			exact(e.MemData),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exact(s scalemath.Summary) string {
	if !s.Defined() {
		return ""
	}
	return scaleunit.NoOpScaler.Format(s.Mean)
}
