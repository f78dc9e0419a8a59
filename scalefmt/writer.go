// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalefmt

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// A Writer writes the log format.
type Writer struct {
	w     io.Writer
	buf   bytes.Buffer
	delim rune

	header *Header
}

// NewWriter returns a writer that writes logs to w, separating fields
// with DefaultDelimiter.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, delim: DefaultDelimiter}
}

// SetDelimiter sets the field delimiter.
func (w *Writer) SetDelimiter(delim rune) {
	w.delim = delim
}

// Write writes Record rec to w. If rec is a *Row whose header differs
// from the last header written, the row's header is written first.
// Rows without a header get one covering the known columns.
// Syntax errors are ignored.
func (w *Writer) Write(rec Record) error {
	switch rec := rec.(type) {
	case *Header:
		w.writeHeader(rec)
	case *Row:
		h := rec.Header
		if h == nil {
			h = defaultHeader
		}
		if h != w.header {
			w.writeHeader(h)
		}
		w.writeRow(rec, h)
	case *SyntaxError:
		return nil
	default:
		return fmt.Errorf("unknown Record type %T", rec)
	}

	_, err := w.w.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

func (w *Writer) writeHeader(h *Header) {
	w.buf.WriteRune(HeaderMarker)
	for i, name := range h.Names {
		if i > 0 {
			w.buf.WriteRune(w.delim)
		}
		w.buf.WriteString(name)
	}
	w.buf.WriteByte('\n')
	w.header = h
}

func (w *Writer) writeRow(r *Row, h *Header) {
	for i, col := range h.Columns {
		if i > 0 {
			w.buf.WriteRune(w.delim)
		}
		if s, ok := r.Text(col); ok {
			w.buf.WriteString(s)
			continue
		}
		v, _ := r.Value(col)
		if !v.OK {
			continue
		}
		if h.kind(i) == kindInt {
			w.buf.WriteString(strconv.FormatInt(int64(v.V), 10))
		} else {
			w.buf.WriteString(strconv.FormatFloat(v.V, 'g', -1, 64))
		}
	}
	w.buf.WriteByte('\n')
}

var defaultHeader = func() *Header {
	names := make([]string, len(fields))
	for i := range fields {
		names[i] = fields[i].names[0]
	}
	return NewHeader(names...)
}()
