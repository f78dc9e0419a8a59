// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalefmt

import (
	"math"
	"sort"
	"strconv"
)

// Canonical names of the columns the aggregation and reports use.
const (
	ColTimestamp    = "timestamp"
	ColHostname     = "hostname"
	ColScenarioName = "scenarioName"

	ColMemoryData        = "memoryData"
	ColMemoryPage        = "memoryPage"
	ColMemoryResidentSet = "memoryResidentSet"
	ColMemoryVirtual     = "memoryVirtual"
	ColNInstances        = "nInstancesComputedGlobally"
	ColNRanks            = "nRanks"
	ColRankNo            = "rankNo"
	ColNElements1D       = "nElements1D"
	ColNDofs1D           = "nDofs1D"
	ColNNodes1D          = "nNodes1D"

	ColDT0D                = "dt_0D"
	ColDT1D                = "dt_1D"
	ColDT3D                = "dt_3D"
	ColEndTime             = "endTime"
	ColTotalUsertime       = "totalUsertime"
	ColDuration0D          = "duration_0D"
	ColDuration1D          = "duration_1D"
	ColDuration3D          = "duration_3D"
	ColDurationTotal       = "duration_total"
	ColDurationWriteOutput = "duration_write_output"
)

// A Value is a numeric field of a Row. A Value that was absent or
// could not be parsed is missing: OK is false and Float returns 0.
type Value struct {
	V  float64
	OK bool
}

// Measured returns a present Value holding v.
func Measured(v float64) Value {
	return Value{V: v, OK: true}
}

// Float returns the value, or 0 if v is missing.
func (v Value) Float() float64 {
	if !v.OK {
		return 0
	}
	return v.V
}

// Int returns the value truncated to an integer, or 0 if v is
// missing.
func (v Value) Int() int {
	return int(v.Float())
}

func (v Value) String() string {
	if !v.OK {
		return ""
	}
	return strconv.FormatFloat(v.V, 'g', -1, 64)
}

// A Row is one logged measurement run.
//
// Known columns are stored in named fields. Columns the package does
// not know about are kept in Extra, keyed by their (normalized)
// header name.
type Row struct {
	Timestamp    string
	Hostname     string
	ScenarioName string

	MemoryData                 Value
	MemoryPage                 Value
	MemoryResidentSet          Value
	MemoryVirtual              Value
	NInstancesComputedGlobally Value
	NRanks                     Value
	RankNo                     Value
	NElements1D                Value
	NDofs1D                    Value
	NNodes1D                   Value

	DT0D                Value
	DT1D                Value
	DT3D                Value
	EndTime             Value
	TotalUsertime       Value
	Duration0D          Value
	Duration1D          Value
	Duration3D          Value
	DurationTotal       Value
	DurationWriteOutput Value

	Extra map[string]Value

	// Header is the header this row was read under, or nil if the
	// row was constructed directly.
	Header *Header

	fileName string
	line     int
}

// Pos returns the file name and line number of r.
func (r *Row) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// Clone makes a copy of r that shares nothing with r except its
// Header.
func (r *Row) Clone() *Row {
	r2 := *r
	if r.Extra != nil {
		r2.Extra = make(map[string]Value, len(r.Extra))
		for k, v := range r.Extra {
			r2.Extra[k] = v
		}
	}
	return &r2
}

// Value returns the numeric field named col. col may be any accepted
// spelling of a known column, or the name of an Extra column. ok is
// false if r has no numeric column named col.
func (r *Row) Value(col string) (v Value, ok bool) {
	if f := lookupField(col); f != nil {
		if f.val == nil {
			return Value{}, false
		}
		return *f.val(r), true
	}
	v, ok = r.Extra[col]
	return
}

// SetValue sets the numeric field named col to v. Unknown columns are
// added to Extra. It returns false if col names a string column.
func (r *Row) SetValue(col string, v Value) bool {
	if f := lookupField(col); f != nil {
		if f.val == nil {
			return false
		}
		*f.val(r) = v
		return true
	}
	if r.Extra == nil {
		r.Extra = make(map[string]Value)
	}
	r.Extra[col] = v
	return true
}

// Text returns the string field named col.
func (r *Row) Text(col string) (s string, ok bool) {
	if f := lookupField(col); f != nil && f.str != nil {
		return *f.str(r), true
	}
	return "", false
}

// Columns returns the canonical names of r's numeric columns. If r has
// a Header, they are in header order. Otherwise they are the known
// numeric columns followed by the sorted Extra columns.
func (r *Row) Columns() []string {
	if r.Header != nil {
		return r.Header.NumericColumns()
	}
	var cols []string
	for i := range fields {
		if fields[i].val != nil {
			cols = append(cols, fields[i].names[0])
		}
	}
	extra := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
)

// A field describes how a known column maps onto a Row. names[0] is
// the canonical column name; the rest are spellings found in older
// logs.
type field struct {
	names []string
	kind  fieldKind
	str   func(*Row) *string
	val   func(*Row) *Value
}

var fields = []field{
	{names: []string{ColTimestamp}, kind: kindString, str: func(r *Row) *string { return &r.Timestamp }},
	{names: []string{ColHostname}, kind: kindString, str: func(r *Row) *string { return &r.Hostname }},
	{names: []string{ColScenarioName}, kind: kindString, str: func(r *Row) *string { return &r.ScenarioName }},

	{names: []string{ColMemoryData}, kind: kindInt, val: func(r *Row) *Value { return &r.MemoryData }},
	{names: []string{ColMemoryPage}, kind: kindInt, val: func(r *Row) *Value { return &r.MemoryPage }},
	{names: []string{ColMemoryResidentSet}, kind: kindInt, val: func(r *Row) *Value { return &r.MemoryResidentSet }},
	{names: []string{ColMemoryVirtual}, kind: kindInt, val: func(r *Row) *Value { return &r.MemoryVirtual }},
	{names: []string{ColNInstances}, kind: kindInt, val: func(r *Row) *Value { return &r.NInstancesComputedGlobally }},
	{names: []string{ColNRanks}, kind: kindInt, val: func(r *Row) *Value { return &r.NRanks }},
	{names: []string{ColRankNo}, kind: kindInt, val: func(r *Row) *Value { return &r.RankNo }},
	{names: []string{ColNElements1D, "nElements"}, kind: kindInt, val: func(r *Row) *Value { return &r.NElements1D }},
	{names: []string{ColNDofs1D, "nDofs"}, kind: kindInt, val: func(r *Row) *Value { return &r.NDofs1D }},
	{names: []string{ColNNodes1D, "nNodes"}, kind: kindInt, val: func(r *Row) *Value { return &r.NNodes1D }},

	{names: []string{ColDT0D}, kind: kindFloat, val: func(r *Row) *Value { return &r.DT0D }},
	{names: []string{ColDT1D}, kind: kindFloat, val: func(r *Row) *Value { return &r.DT1D }},
	{names: []string{ColDT3D}, kind: kindFloat, val: func(r *Row) *Value { return &r.DT3D }},
	{names: []string{ColEndTime}, kind: kindFloat, val: func(r *Row) *Value { return &r.EndTime }},
	{names: []string{ColTotalUsertime}, kind: kindFloat, val: func(r *Row) *Value { return &r.TotalUsertime }},
	{names: []string{ColDuration0D}, kind: kindFloat, val: func(r *Row) *Value { return &r.Duration0D }},
	{names: []string{ColDuration1D}, kind: kindFloat, val: func(r *Row) *Value { return &r.Duration1D }},
	{names: []string{ColDuration3D}, kind: kindFloat, val: func(r *Row) *Value { return &r.Duration3D }},
	{names: []string{ColDurationTotal}, kind: kindFloat, val: func(r *Row) *Value { return &r.DurationTotal }},
	{names: []string{ColDurationWriteOutput, "write output"}, kind: kindFloat, val: func(r *Row) *Value { return &r.DurationWriteOutput }},
}

var fieldIndex = func() map[string]*field {
	m := make(map[string]*field)
	for i := range fields {
		for _, name := range fields[i].names {
			m[name] = &fields[i]
		}
	}
	return m
}()

func lookupField(name string) *field {
	return fieldIndex[name]
}

// CanonicalName returns the canonical spelling of column name.
// Unknown names are returned unchanged.
func CanonicalName(name string) string {
	if f := lookupField(name); f != nil {
		return f.names[0]
	}
	return name
}

// IsIntColumn reports whether col is parsed with integer syntax.
func IsIntColumn(col string) bool {
	f := lookupField(col)
	return f != nil && f.kind == kindInt
}

// parseValue parses s as a numeric field of the given kind. Anything
// that does not parse, including NaN, yields a missing Value.
func parseValue(s string, kind fieldKind) Value {
	if s == "" {
		return Value{}
	}
	if kind == kindInt {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}
		}
		return Measured(float64(n))
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) {
		return Value{}
	}
	return Measured(x)
}
