// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scalefmt reads and writes the performance logs written by
// parallel simulation runs.
//
// A log is a delimited text table. Its header line starts with
// HeaderMarker and names the columns; every following line is one
// measurement run. Fields are separated by ';' unless configured
// otherwise.
package scalefmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MinFields is the default minimum number of fields a data row must
// have. Shorter rows are reported as syntax errors and skipped.
const MinFields = 17

// DefaultDelimiter separates fields in a log.
const DefaultDelimiter = ';'

// A Reader reads a performance log.
//
// Its API is modeled on bufio.Scanner. Unlike some readers, each Row
// returned by Result is freshly allocated and may be retained.
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	cr  *csv.Reader
	err error // current I/O error

	fileName  string
	delim     rune
	minFields int

	header *Header
	rec    Record
}

// A SyntaxError represents a malformed line of a log. Syntax errors
// are not fatal: the Reader skips the line and continues.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

var noResult = &SyntaxError{"", 0, "Reader.Scan has not been called"}

// A Record is a single record read from a log. It may be a *Row, a
// *Header, or a *SyntaxError.
type Record interface {
	// Pos returns the position of this record as a file name and a
	// 1-based line number within that file. If this record was not
	// read from a file, it returns "", 0.
	Pos() (fileName string, line int)
}

var _ Record = (*Row)(nil)
var _ Record = (*Header)(nil)
var _ Record = (*SyntaxError)(nil)

// NewReader constructs a reader to parse a log from r. fileName is
// used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input. It
// forgets the current header but keeps the delimiter and minimum
// field count.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	if r.delim == 0 {
		r.delim = DefaultDelimiter
	}
	if r.minFields == 0 {
		r.minFields = MinFields
	}
	r.cr = csv.NewReader(ior)
	r.cr.Comma = r.delim
	r.cr.FieldsPerRecord = -1
	r.cr.LazyQuotes = true
	r.fileName = fileName
	r.err = nil
	r.header = nil
	r.rec = nil
}

// SetDelimiter sets the field delimiter. It must be called before the
// first call to Scan.
func (r *Reader) SetDelimiter(delim rune) {
	r.delim = delim
	if r.cr != nil {
		r.cr.Comma = delim
	}
}

// SetMinFields sets the minimum number of fields in a data row.
func (r *Reader) SetMinFields(n int) {
	r.minFields = n
}

// Scan advances the reader to the next record and reports whether a
// record was read. The caller should use the Result method to get the
// record. If Scan reaches EOF or an I/O error occurs, it returns
// false, in which case the caller should use the Err method to check
// for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for {
		fields, err := r.cr.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && perr.Err != csv.ErrFieldCount {
				r.rec = &SyntaxError{r.fileName, perr.Line, perr.Err.Error()}
				return true
			}
			r.err = fmt.Errorf("%s: %w", r.fileName, err)
			return false
		}
		if len(fields) == 0 {
			continue
		}
		line, _ := r.cr.FieldPos(0)

		if first := strings.TrimSpace(fields[0]); len(first) > 0 && first[0] == HeaderMarker {
			fields[0] = first[1:]
			h := NewHeader(fields...)
			h.fileName, h.line = r.fileName, line
			r.header = h
			r.rec = h
			return true
		}

		if r.header == nil {
			r.rec = &SyntaxError{r.fileName, line, "data row before header"}
			return true
		}
		r.rec = r.parseRow(fields, line)
		return true
	}
}

// parseRow converts the fields of a data line into a Row, or a
// *SyntaxError if the line is too short.
func (r *Reader) parseRow(fields []string, line int) Record {
	h := r.header
	// Drop empties left by a trailing delimiter.
	for len(fields) > len(h.Columns) && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) < r.minFields {
		return &SyntaxError{r.fileName, line, fmt.Sprintf("row has %d fields, want at least %d", len(fields), r.minFields)}
	}

	row := &Row{Header: h, fileName: r.fileName, line: line}
	for i, col := range h.Columns {
		// Short rows are padded with missing values.
		var s string
		if i < len(fields) {
			s = fields[i]
		}
		kind := h.kind(i)
		if kind == kindString {
			*lookupField(col).str(row) = s
			continue
		}
		row.SetValue(col, parseValue(strings.TrimSpace(s), kind))
	}
	return row
}

// Result returns the record that was just read by Scan. This is
// either a *Row, a *Header, or a *SyntaxError indicating a skipped
// line.
//
// Syntax errors are non-fatal, so the caller can continue to call
// Scan.
func (r *Reader) Result() Record {
	if r.rec == nil {
		return noResult
	}
	return r.rec
}

// Header returns the most recently read header, or nil.
func (r *Reader) Header() *Header {
	return r.header
}

// Err returns the first non-EOF I/O error that was encountered by the
// Reader.
func (r *Reader) Err() error {
	return r.err
}
