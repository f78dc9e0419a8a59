// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalefmt

import (
	"io"
	"os"
)

// A Files reads records from a sequence of input logs.
type Files struct {
	// Paths is the list of file names to read in.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and if the file list is empty, it should be treated
	// as consisting of stdin.
	AllowStdin bool

	// Open opens a path. If nil, os.Open is used. Callers set
	// this to read from locations other than the local file
	// system.
	Open func(path string) (io.ReadCloser, error)

	// Delimiter separates fields. If 0, DefaultDelimiter is used.
	Delimiter rune

	// MinFields is the minimum number of fields in a data row. If
	// 0, the package default MinFields is used.
	MinFields int

	// inputs is the sequence of remaining inputs, or nil if this
	// Files has not started yet.
	inputs []string

	reader  Reader
	file    io.ReadCloser
	isStdin bool
	err     error
}

func (f *Files) init() {
	f.inputs = []string{}
	if f.AllowStdin && len(f.Paths) == 0 {
		f.inputs = append(f.inputs, "-")
	}
	f.inputs = append(f.inputs, f.Paths...)
	if f.Delimiter != 0 {
		f.reader.SetDelimiter(f.Delimiter)
	}
	if f.MinFields != 0 {
		f.reader.SetMinFields(f.MinFields)
	}
}

// Scan advances to the next record in the sequence of files and
// reports whether a record was read. If Scan reaches the end of the
// file sequence, or if an I/O error occurs, it returns false. In
// this case, the caller should use the Err method to check for
// errors.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}
	if f.inputs == nil {
		f.init()
	}

	for {
		if f.file == nil {
			if len(f.inputs) == 0 {
				return false
			}
			path := f.inputs[0]
			f.inputs = f.inputs[1:]

			if f.AllowStdin && path == "-" {
				f.isStdin, f.file = true, io.NopCloser(os.Stdin)
			} else {
				open := f.Open
				if open == nil {
					open = func(p string) (io.ReadCloser, error) { return os.Open(p) }
				}
				file, err := open(path)
				if err != nil {
					f.err = err
					return false
				}
				f.isStdin, f.file = false, file
			}
			f.reader.Reset(f.file, path)
		}

		if f.reader.Scan() {
			return true
		}
		err := f.reader.Err()
		if err != nil {
			f.err = err
			break
		}
		// Just an EOF. Close this file and open the next.
		f.file.Close()
		f.file = nil
	}
	return false
}

// Result returns the record that was just read by Scan.
// See Reader.Result.
func (f *Files) Result() Record {
	return f.reader.Result()
}

// Err returns the I/O error that stopped Scan, if any.
func (f *Files) Err() error {
	return f.err
}
