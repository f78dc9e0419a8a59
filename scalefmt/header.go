// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalefmt

import "strings"

// HeaderMarker starts the header line of a log.
const HeaderMarker = '#'

// A Header is the column list of a log, taken from the line that
// starts with HeaderMarker.
type Header struct {
	// Names are the column names exactly as they appear in the
	// file, without the marker.
	Names []string

	// Columns are the normalized column names, parallel to Names.
	// Known columns use their canonical spelling, and a counter
	// column named "n" is renamed to "<previous column>.n".
	Columns []string

	fileName string
	line     int
}

// NewHeader returns a Header for the given raw column names.
func NewHeader(names ...string) *Header {
	h := &Header{Names: make([]string, 0, len(names)), Columns: make([]string, 0, len(names))}
	for _, name := range names {
		name = strings.TrimSpace(name)
		col := CanonicalName(name)
		if name == "n" && len(h.Columns) > 0 {
			col = h.Columns[len(h.Columns)-1] + ".n"
		}
		h.Names = append(h.Names, name)
		h.Columns = append(h.Columns, col)
	}
	// A trailing delimiter yields an empty last name.
	for len(h.Names) > 0 && h.Names[len(h.Names)-1] == "" {
		h.Names = h.Names[:len(h.Names)-1]
		h.Columns = h.Columns[:len(h.Columns)-1]
	}
	return h
}

// Pos returns the file name and line number of h.
func (h *Header) Pos() (fileName string, line int) {
	return h.fileName, h.line
}

// Index returns the position of column col in h, or -1.
func (h *Header) Index(col string) int {
	col = CanonicalName(col)
	for i, c := range h.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// NumericColumns returns the normalized names of the numeric columns
// of h, in header order.
func (h *Header) NumericColumns() []string {
	cols := make([]string, 0, len(h.Columns))
	for _, c := range h.Columns {
		if f := lookupField(c); f != nil && f.kind == kindString {
			continue
		}
		if c == "" {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// kind returns how column i of h is parsed.
func (h *Header) kind(i int) fieldKind {
	if f := lookupField(h.Columns[i]); f != nil {
		return f.kind
	}
	return kindFloat
}
