// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalefmt

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriter(t *testing.T) {
	const input = `#timestamp;hostname;scenarioName;dt_0D;dt_1D;dt_3D;endTime;memoryData;memoryPage;memoryResidentSet;memoryVirtual;nDofs;nElements;nInstancesComputedGlobally;nNodes;nRanks;rankNo;totalUsertime;duration_0D;n;duration_1D;n;duration_total;n;write output;n
2019/1/1 10:00:00;host1;Strong_scaling;1e-05;0.0025;0.0025;100;1024;4096;2048;8192;2400000;2399999;1;2400000;24;0;5.5;3.25;1;1.5;1;4.75;1;0.1;1
2019/1/1 10:05:00;host2;Strong_scaling;1e-05;0.0025;0.0025;100;1024;4096;2048;8192;2400000;2399999;1;2400000;48;0;;;;;;2.5;1;;
#nRanks;scenarioName;rankNo;a;b;c;d;e;f;g;h;i;j;k;l;m;o
24;weak_scaling;0;1;2;3;4;5;6;7;8;9;10;11;12;13;14.5
`

	out := new(strings.Builder)
	w := NewWriter(out)
	r := NewReader(bytes.NewReader([]byte(input)), "test")
	for r.Scan() {
		if err := w.Write(r.Result()); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}

	if out.String() != input {
		t.Fatalf("want:\n%sgot:\n%s", input, out.String())
	}
}

func TestWriterNoHeader(t *testing.T) {
	row := &Row{
		ScenarioName:  "Strong_scaling",
		NRanks:        Measured(96),
		DurationTotal: Measured(30.25),
	}
	out := new(strings.Builder)
	w := NewWriter(out)
	w.SetDelimiter(',')
	if err := w.Write(row); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(row); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header and 2 rows:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "#timestamp,hostname,scenarioName,") {
		t.Errorf("bad header line %q", lines[0])
	}

	// Read it back.
	r := NewReader(strings.NewReader(out.String()), "test")
	r.SetDelimiter(',')
	var got []*Row
	for r.Scan() {
		switch rec := r.Result().(type) {
		case *Row:
			got = append(got, rec)
		case *SyntaxError:
			t.Fatal(rec)
		}
	}
	if len(got) != 2 {
		t.Fatalf("read back %d rows, want 2", len(got))
	}
	if got[0].NRanks != row.NRanks || got[0].DurationTotal != row.DurationTotal || got[0].ScenarioName != row.ScenarioName {
		t.Errorf("read back %+v, want %+v", got[0], row)
	}
	if got[0].EndTime.OK {
		t.Errorf("missing column read back as %v", got[0].EndTime)
	}
}
