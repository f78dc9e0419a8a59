// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaleunit

import (
	"fmt"
	"math"
	"strconv"
)

// A Scaler divides numbers by a common factor and prints them with a
// fixed number of digits after the decimal point.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Value of one Prefix unit (e.g., 1 Ki => 1024)
	Prefix string  // Unit prefix ("k", "Mi", "m", etc)
}

// Format formats val in s's scale, followed by the prefix. For
// example, a Binary Scaler for 3 MiB formats 3145728 as "3.000Mi".
func (s Scaler) Format(val float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	buf = append(buf, s.Prefix...)
	return string(buf)
}

// FormatUnit is like Format, but also appends unit, separated by a
// space when the result would otherwise be ambiguous.
func (s Scaler) FormatUnit(val float64, unit string) string {
	if unit == "" {
		return s.Format(val)
	}
	if s.Prefix == "" {
		return s.Format(val) + " " + unit
	}
	return s.Format(val) + unit
}

// NoOpScaler prints numbers exactly and without a prefix, for output
// read by other programs such as CSV.
var NoOpScaler = Scaler{-1, 1, ""}

// A step is one prefix with the thresholds at which values print as
// 100.0, 10.00, and 1.000 in that prefix.
type step struct {
	factor        float64
	prefix        string
	t100, t10, t1 float64
}

var (
	siSteps  = decimalSteps()
	iecSteps = binarySteps()
)

// Thresholds below the smallest step, for 3 to 10 digits after the
// decimal point.
var extraDigits = func() []float64 {
	var ts []float64
	for exp := -1; exp > -9; exp-- {
		ts = append(ts, parse(fmt.Sprintf("9.9995e%d", exp)))
	}
	return ts
}()

const extraDigitsBase = 3

func parse(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		panic(err)
	}
	return v
}

func decimalSteps() []step {
	// Thresholds are parsed from their printed form so that they
	// round exactly like Format does.
	var steps []step
	exp := 12
	for _, p := range []string{"T", "G", "M", "k", "", "m", "µ", "n"} {
		steps = append(steps, step{
			factor: math.Pow(10, float64(exp)),
			prefix: p,
			t100:   parse(fmt.Sprintf("99.995e%d", exp)),
			t10:    parse(fmt.Sprintf("9.9995e%d", exp)),
			t1:     parse(fmt.Sprintf(".99995e%d", exp)),
		})
		exp -= 3
	}
	return steps
}

func binarySteps() []step {
	// There are no fractional binary prefixes; small values print
	// in the base unit with more digits. Values in [1000, 1024)
	// of one prefix stay in that prefix rather than printing as
	// 0.99x of the next.
	var steps []step
	exp := 40
	for _, p := range []string{"Ti", "Gi", "Mi", "Ki", ""} {
		steps = append(steps, step{
			factor: math.Pow(2, float64(exp)),
			prefix: p,
			t100:   parse(fmt.Sprintf("0x1.8ffae147ae148p%d", 6+exp)),  // 99.995
			t10:    parse(fmt.Sprintf("0x1.3ffbe76c8b439p%d", 3+exp)),  // 9.9995
			t1:     parse(fmt.Sprintf("0x1.fff972474538fp%d", -1+exp)), // .99995
		})
		exp -= 10
	}
	return steps
}

// Scale formats val with at least three significant digits and a
// prefix of class cls.
func Scale(val float64, cls Class) string {
	return CommonScale([]float64{val}, cls).Format(val)
}

// ScaleColumn formats val, a value of log column col, with its unit.
// For example, ScaleColumn(2.5e-3, "duration_total") is "2.500ms".
func ScaleColumn(val float64, col string) string {
	return CommonScale([]float64{val}, ClassOf(col)).FormatUnit(val, Unit(col))
}

// CommonScale returns a Scaler that shows every value in vals with at
// least three significant digits. The scale is chosen by the non-zero
// value with the smallest magnitude. NaN values are ignored.
func CommonScale(vals []float64, cls Class) Scaler {
	var least float64
	for _, v := range vals {
		v = math.Abs(v)
		if v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) && (least == 0 || v < least) {
			least = v
		}
	}
	if least == 0 {
		return Scaler{3, 1, ""}
	}

	var steps []step
	switch cls {
	default:
		panic(fmt.Sprintf("bad Class %v", cls))
	case Decimal:
		steps = siSteps
	case Binary:
		steps = iecSteps
	}

	for _, st := range steps {
		switch {
		case least >= st.t100:
			return Scaler{1, st.factor, st.prefix}
		case least >= st.t10:
			return Scaler{2, st.factor, st.prefix}
		case least >= st.t1:
			return Scaler{3, st.factor, st.prefix}
		}
	}

	// Smaller than the smallest prefix: add digits instead.
	last := steps[len(steps)-1]
	val := least / last.factor
	for i, t := range extraDigits {
		if val >= t || i == len(extraDigits)-1 {
			return Scaler{i + extraDigitsBase, last.factor, last.prefix}
		}
	}
	panic("not reachable")
}
