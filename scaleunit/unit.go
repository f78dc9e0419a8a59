// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scaleunit formats the measured quantities of a performance
// log (durations, memory sizes, and counts) for people.
package scaleunit

import (
	"fmt"
	"strings"
)

// A Class specifies which unit prefixes a quantity is scaled with.
type Class int

const (
	// Decimal quantities are scaled by powers of 1000 using SI
	// prefixes (k, M, G, ..., m, µ, n).
	Decimal Class = iota
	// Binary quantities are scaled by powers of 1024 using IEC
	// prefixes (Ki, Mi, Gi, Ti).
	Binary
)

func (c Class) String() string {
	switch c {
	case Decimal:
		return "Decimal"
	case Binary:
		return "Binary"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Unit returns the base unit of a log column: "s" for durations and
// time steps, "B" for memory columns, and "" for counts.
func Unit(col string) string {
	switch {
	case strings.HasPrefix(col, "memory"):
		return "B"
	case strings.HasSuffix(col, ".n"):
		return ""
	case strings.HasPrefix(col, "duration_"), strings.HasPrefix(col, "dt_"),
		col == "totalUsertime", col == "endTime":
		return "s"
	}
	return ""
}

// ClassOf returns the Class of column col. Memory columns are Binary.
// Everything else is Decimal.
func ClassOf(col string) Class {
	if Unit(col) == "B" {
		return Binary
	}
	return Decimal
}
