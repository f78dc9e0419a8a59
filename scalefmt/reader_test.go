// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalefmt

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const testHeader = "#timestamp;hostname;scenarioName;dt_0D;dt_1D;dt_3D;endTime;memoryData;memoryPage;memoryResidentSet;memoryVirtual;nDofs;nElements;nInstancesComputedGlobally;nNodes;nRanks;rankNo;totalUsertime;duration_0D;n;duration_1D;n;duration_total;n;write output;n;\n"

func parseAll(t *testing.T, data string, setup ...func(r *Reader)) ([]Record, *Reader) {
	t.Helper()
	r := NewReader(strings.NewReader(data), "test")
	for _, f := range setup {
		f(r)
	}
	var out []Record
	for r.Scan() {
		switch rec := r.Result(); rec := rec.(type) {
		case *Row:
			row := rec.Clone()
			// Wipe position information for comparisons.
			row.fileName = ""
			row.line = 0
			out = append(out, row)
		case *Header, *SyntaxError:
			out = append(out, rec)
		default:
			t.Fatalf("unexpected record type %T", rec)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal("parsing failed: ", err)
	}
	return out, r
}

func printRecord(w io.Writer, r Record) {
	switch r := r.(type) {
	case *Row:
		fmt.Fprintf(w, "%s %s ranks=%v total=%v\n", r.ScenarioName, r.Hostname, r.NRanks, r.DurationTotal)
	case *Header:
		fmt.Fprintf(w, "Header: %s\n", strings.Join(r.Columns, ","))
	case *SyntaxError:
		fmt.Fprintf(w, "SyntaxError: %s\n", r)
	default:
		panic(fmt.Sprintf("unknown record type %T", r))
	}
}

var rowOpts = cmp.Options{
	cmpopts.IgnoreUnexported(Row{}),
	cmpopts.IgnoreFields(Row{}, "Header"),
	cmpopts.EquateEmpty(),
}

func TestReaderFullRow(t *testing.T) {
	const line = "2019/1/1 10:00:00;host1;Strong_scaling;1e-05;0.0025;0.0025;100;1024;4096;2048;8192;2400000;2399999;1;2400000;24;0;5.5;3.25;1;1.5;1;4.75;1;0.1;1;\n"
	recs, r := parseAll(t, testHeader+line)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	h, ok := recs[0].(*Header)
	if !ok {
		t.Fatalf("record 0 is %T, want *Header", recs[0])
	}
	if r.Header() != h {
		t.Errorf("Reader.Header does not return the last header")
	}
	if got, want := len(h.Columns), 26; got != want {
		t.Errorf("header has %d columns, want %d", got, want)
	}
	for _, col := range []string{"duration_0D.n", "duration_1D.n", "duration_total.n", "duration_write_output.n"} {
		if h.Index(col) < 0 {
			t.Errorf("header is missing column %q: %v", col, h.Columns)
		}
	}
	if h.Index("nElements") != h.Index(ColNElements1D) || h.Index(ColNElements1D) != 12 {
		t.Errorf("nElements maps to index %d, want 12", h.Index("nElements"))
	}

	want := &Row{
		Timestamp:                  "2019/1/1 10:00:00",
		Hostname:                   "host1",
		ScenarioName:               "Strong_scaling",
		DT0D:                       Measured(1e-5),
		DT1D:                       Measured(0.0025),
		DT3D:                       Measured(0.0025),
		EndTime:                    Measured(100),
		MemoryData:                 Measured(1024),
		MemoryPage:                 Measured(4096),
		MemoryResidentSet:          Measured(2048),
		MemoryVirtual:              Measured(8192),
		NDofs1D:                    Measured(2400000),
		NElements1D:                Measured(2399999),
		NInstancesComputedGlobally: Measured(1),
		NNodes1D:                   Measured(2400000),
		NRanks:                     Measured(24),
		RankNo:                     Measured(0),
		TotalUsertime:              Measured(5.5),
		Duration0D:                 Measured(3.25),
		Duration1D:                 Measured(1.5),
		DurationTotal:              Measured(4.75),
		DurationWriteOutput:        Measured(0.1),
		Extra: map[string]Value{
			"duration_0D.n":           Measured(1),
			"duration_1D.n":           Measured(1),
			"duration_total.n":        Measured(1),
			"duration_write_output.n": Measured(1),
		},
	}
	if diff := cmp.Diff(want, recs[1], rowOpts); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestReader(t *testing.T) {
	type testCase struct {
		name  string
		input string
		want  string
	}
	for _, test := range []testCase{
		{
			"empty",
			"",
			"",
		},
		{
			"row before header",
			"a;b;c\n" + testHeader,
			"SyntaxError: test:1: data row before header\nHeader: " + strings.Join(NewHeader(strings.Split(testHeader[1:len(testHeader)-1], ";")...).Columns, ",") + "\n",
		},
		{
			"short row",
			testHeader + "a;b;Strong_scaling;1;2;3;4;5;6;7;8;9;10;11;12;13\n",
			"SyntaxError: test:2: row has 16 fields, want at least 17\n",
		},
		{
			"padded row",
			testHeader + "a;b;Strong_scaling;1;2;3;4;5;6;7;8;9;10;11;12;48;0\n",
			"Strong_scaling b ranks=48 total=\n",
		},
		{
			"bad numbers",
			testHeader + "a;b;weak_scaling;1;2;3;4;5;6;7;8;9;10;11;12;1e3;0;1;2;1;3;1;x;1;4;1\n",
			"weak_scaling b ranks= total=\n",
		},
		{
			"blank lines",
			testHeader + "\n\na;b;c;1;2;3;4;5;6;7;8;9;10;11;12;24;0;1;2;1;3;1;9.5;1;4;1;\n\n",
			"c b ranks=24 total=9.5\n",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			recs, _ := parseAll(t, test.input)
			var got strings.Builder
			for _, rec := range recs {
				if _, ok := rec.(*Header); ok && !strings.Contains(test.want, "Header:") {
					continue
				}
				printRecord(&got, rec)
			}
			if got.String() != test.want {
				t.Errorf("want:\n%s\ngot:\n%s", test.want, got.String())
			}
		})
	}
}

func TestReaderMinFields(t *testing.T) {
	input := "#a;b;c\n1;2;3\n1;2\n"
	recs, _ := parseAll(t, input, func(r *Reader) { r.SetMinFields(3) })
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	row, ok := recs[1].(*Row)
	if !ok {
		t.Fatalf("record 1 is %T, want *Row", recs[1])
	}
	if v, _ := row.Value("b"); v != Measured(2) {
		t.Errorf("column b = %+v, want 2", v)
	}
	if _, ok := recs[2].(*SyntaxError); !ok {
		t.Errorf("record 2 is %T, want *SyntaxError", recs[2])
	}
}

func TestReaderDelimiter(t *testing.T) {
	input := "#a,b,c\n1,2,3\n"
	recs, _ := parseAll(t, input, func(r *Reader) {
		r.SetDelimiter(',')
		r.SetMinFields(1)
	})
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if v, _ := recs[1].(*Row).Value("c"); v != Measured(3) {
		t.Errorf("column c = %+v, want 3", v)
	}
}

func TestReaderHeaderReplaced(t *testing.T) {
	input := "#a;b\n1;2\n#b;a\n3;4\n"
	recs, _ := parseAll(t, input, func(r *Reader) { r.SetMinFields(2) })
	var got []float64
	for _, rec := range recs {
		if row, ok := rec.(*Row); ok {
			v, _ := row.Value("a")
			got = append(got, v.Float())
		}
	}
	if diff := cmp.Diff([]float64{1, 4}, got); diff != "" {
		t.Errorf("column a (-want +got):\n%s", diff)
	}
}

func TestReaderTestdata(t *testing.T) {
	f, err := os.Open("testdata/strong.log")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := NewReader(f, "strong.log")
	var rows, errs int
	for r.Scan() {
		switch rec := r.Result().(type) {
		case *Row:
			rows++
			if rec.ScenarioName == "" || !rec.NRanks.OK {
				t.Errorf("%v: incomplete row %+v", fmtPos(rec), rec)
			}
		case *SyntaxError:
			errs++
			if rec.Line != 9 {
				t.Errorf("syntax error at line %d, want 9", rec.Line)
			}
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if rows != 8 || errs != 1 {
		t.Errorf("got %d rows and %d syntax errors, want 8 and 1", rows, errs)
	}
}

func fmtPos(rec Record) string {
	file, line := rec.Pos()
	return fmt.Sprintf("%s:%d", file, line)
}
