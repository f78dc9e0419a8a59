// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaleseries

import (
	"encoding/csv"
	"io"
	"strconv"
)

type CsvOptions int

const (
	CSV_PLAIN  CsvOptions = 0
	CSV_STDDEV CsvOptions = 1 // add the standard deviation and sample count of each point
	CSV_NODES  CsvOptions = 2 // add the node count of each point
)

// WriteCSV writes the points of series to out, one line per point.
// Node counts are procs / procsPerNode.
func WriteCSV(out io.Writer, series []*Series, options CsvOptions, procsPerNode int) error {
	w := csv.NewWriter(out)
	header := []string{"mode", "column", "procs"}
	if options&CSV_NODES != 0 {
		header = append(header, "nodes")
	}
	header = append(header, "mean", "optimal", "efficiency")
	if options&CSV_STDDEV != 0 {
		header = append(header, "stddev", "n")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for _, s := range series {
		for _, p := range s.Points {
			row = append(row[:0], s.Mode.String(), s.Column, strconv.Itoa(p.Procs))
			if options&CSV_NODES != 0 {
				row = append(row, strof(nodes(p.Procs, procsPerNode)))
			}
			row = append(row, strof(p.Measured.Mean), strof(p.Optimal), strof(p.Efficiency))
			if options&CSV_STDDEV != 0 {
				row = append(row, strof(p.Measured.StdDev), strconv.Itoa(p.Measured.N))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func strof(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// nodes converts a process count to a node count.
func nodes(procs, procsPerNode int) float64 {
	if procsPerNode <= 0 {
		return float64(procs)
	}
	return float64(procs) / float64(procsPerNode)
}
