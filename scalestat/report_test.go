// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scalestat

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opendihu/perfscaling/scalefmt"
	"github.com/opendihu/perfscaling/scaleseries"
)

func testGroups(t *testing.T) []*scaleseries.Group {
	t.Helper()
	b := scaleseries.NewBuilder(&scaleseries.BuilderOptions{})
	add := func(procs int, d0, d1, total, mem float64) {
		b.Add(&scalefmt.Row{
			ScenarioName:               "Strong_scaling",
			NRanks:                     scalefmt.Measured(float64(procs)),
			NElements1D:                scalefmt.Measured(2399999),
			NInstancesComputedGlobally: scalefmt.Measured(2),
			EndTime:                    scalefmt.Measured(100),
			Duration0D:                 scalefmt.Measured(d0),
			Duration1D:                 scalefmt.Measured(d1),
			DurationTotal:              scalefmt.Measured(total),
			MemoryData:                 scalefmt.Measured(mem),
		})
	}
	add(48, 40, 20, 60.5, 1<<20)
	add(24, 80, 40, 121, 2<<20)
	add(24, 80, 40, 121, 2<<20)
	groups, err := b.Reduce(nil)
	if err != nil {
		t.Fatal(err)
	}
	return groups
}

func TestEntries(t *testing.T) {
	entries := Entries(testGroups(t))
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	e := entries[0]
	if e.Key != "s00024" || e.Procs != 24 || e.Muscles != 4799998 || e.MusclesPerProc != 199999 || e.Fibers != 2 || e.N != 2 {
		t.Errorf("got %+v", e)
	}
	if e.Total.Mean != 121 || e.MemData.Mean != 2<<20 {
		t.Errorf("got total %v, memory %v", e.Total.Mean, e.MemData.Mean)
	}
}

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatText(&buf, testGroups(t)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	for i, want := range [][]string{
		{"key", "nproc", "#M", "#M/proc", "#F", "solve:", "0D", "1D", "total", "n", "memData"},
		{"s00024", "24", "4799998", "199999", "2", "80.00", "s", "40.00", "s", "121.0", "s", "2", "2.000MiB"},
		{"s00048", "48", "4799998", "99999", "2", "40.00", "s", "20.00", "s", "60.50", "s", "1", "1.000MiB"},
	} {
		if diff := cmp.Diff(want, strings.Fields(lines[i])); diff != "" {
			t.Errorf("line %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestFormatCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatCSV(&buf, testGroups(t)); err != nil {
		t.Fatal(err)
	}
	want := `key,nproc,#M,#M/proc,#F,solve: 0D,1D,total,n,memData
s00024,24,4799998,199999,2,80,40,121,2,2097152
s00048,48,4799998,99999,2,40,20,60.5,1,1048576
`
	if got := buf.String(); got != want {
		t.Errorf("want:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatHTML(&buf, "Strong scaling <cuboid>", testGroups(t)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>Strong scaling &lt;cuboid&gt;</title>",
		"<td>s00024</td>",
		">121.0 s</td>",
		`title="± 0.000 s"`,
		"<td>2.000MiB</td>",
		"<th>#M/proc</th>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
