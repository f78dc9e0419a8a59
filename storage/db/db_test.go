// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/opendihu/perfscaling/scalefmt"
	"github.com/opendihu/perfscaling/scaleseries"
	. "github.com/opendihu/perfscaling/storage/db"
	"github.com/opendihu/perfscaling/storage/db/dbtest"
)

func reducedGroups(t *testing.T) []*scaleseries.Group {
	t.Helper()
	b := scaleseries.NewBuilder(&scaleseries.BuilderOptions{})
	for _, r := range []struct {
		procs int
		total float64
	}{{24, 10}, {24, 12}, {48, 6}} {
		b.Add(&scalefmt.Row{
			ScenarioName:  "Strong_scaling",
			NRanks:        scalefmt.Measured(float64(r.procs)),
			Duration0D:    scalefmt.Measured(r.total / 2),
			Duration1D:    scalefmt.Measured(r.total / 4),
			DurationTotal: scalefmt.Measured(r.total),
		})
	}
	groups, err := b.Reduce(nil)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	return groups
}

// TestRunIDs verifies that InsertRun generates the correct sequence of run IDs.
func TestRunIDs(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)
	defer SetNow(time.Time{})

	tests := []struct {
		sec int64
		id  string
	}{
		{0, "19700101.1"},
		{0, "19700101.2"},
		{86400, "19700102.1"},
		{86400, "19700102.2"},
		{86400, "19700102.3"},
		{86400, "19700102.4"},
		{86400, "19700102.5"},
		{86400, "19700102.6"},
		{86400, "19700102.7"},
		{86400, "19700102.8"},
		{86400, "19700102.9"},
		{86400, "19700102.10"},
		{86400, "19700102.11"},
	}
	for _, test := range tests {
		SetNow(time.Unix(test.sec, 0))
		id, err := db.InsertRun(ctx, RunInfo{Label: "ids"}, nil)
		if err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
		if id != test.id {
			t.Fatalf("id = %q, want %q", id, test.id)
		}
	}
	if n, err := db.CountRuns(); err != nil || n != len(tests) {
		t.Errorf("CountRuns() = %d, %v; want %d, nil", n, err, len(tests))
	}
}

func TestInsertLoad(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)
	SetNow(time.Unix(3600, 0))
	defer SetNow(time.Time{})

	groups, err := SummarizeGroups(reducedGroups(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	total := groups[0].Columns[scalefmt.ColDurationTotal]
	if total.Mean != 11 || total.StdDev != 1 || total.N != 2 {
		t.Errorf("s00024 total = %+v, want mean 11, stddev 1, n 2", total)
	}

	info := RunInfo{Label: "cuboid", Source: "logs/logS.csv"}
	id, err := db.InsertRun(ctx, info, groups)
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}

	gotInfo, gotGroups, err := db.LoadRun(ctx, id)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	info.ID = id
	info.Created = time.Unix(3600, 0).UTC()
	if diff := cmp.Diff(info, gotInfo); diff != "" {
		t.Errorf("run info (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(groups, gotGroups); diff != "" {
		t.Errorf("groups (-want +got):\n%s", diff)
	}
}

func TestSummarizeUnreduced(t *testing.T) {
	b := scaleseries.NewBuilder(&scaleseries.BuilderOptions{})
	b.Add(&scalefmt.Row{ScenarioName: "Strong_scaling", NRanks: scalefmt.Measured(24), DurationTotal: scalefmt.Measured(1)})
	if _, err := SummarizeGroups(b.Groups()); err == nil {
		t.Errorf("SummarizeGroups of unreduced groups succeeded")
	}
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)
	defer SetNow(time.Time{})

	for i, label := range []string{"first", "second", "third"} {
		SetNow(time.Unix(int64(i)*86400, 0))
		if _, err := db.InsertRun(ctx, RunInfo{Label: label, Source: "-"}, nil); err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
	}
	runs, err := db.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	var got []string
	for _, r := range runs {
		got = append(got, r.ID+" "+r.Label)
	}
	want := []string{"19700103.1 third", "19700102.1 second", "19700101.1 first"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("runs (-want +got):\n%s", diff)
	}
}

func TestLoadMissingRun(t *testing.T) {
	db := dbtest.NewDB(t)
	_, _, err := db.LoadRun(context.Background(), "19700101.1")
	if !errors.Is(err, ErrNoRun) {
		t.Errorf("LoadRun error = %v, want ErrNoRun", err)
	}
}

// TestInsertRollback verifies that a failed run leaves nothing behind.
func TestInsertRollback(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)

	dup := []GroupSummary{{Key: "s00024", Procs: 24, N: 1}, {Key: "s00024", Procs: 24, N: 1}}
	if _, err := db.InsertRun(ctx, RunInfo{Label: "dup"}, dup); err == nil {
		t.Fatalf("InsertRun with duplicate groups succeeded")
	}
	var groups int
	if err := DBSQL(db).QueryRow("SELECT COUNT(*) FROM RunGroups").Scan(&groups); err != nil {
		t.Fatal(err)
	}
	if n, err := db.CountRuns(); err != nil || n != 0 || groups != 0 {
		t.Errorf("after rollback: %d runs (%v), %d groups; want 0, 0", n, err, groups)
	}
}

// TestReopen verifies that archived runs survive closing the archive.
func TestReopen(t *testing.T) {
	ctx := context.Background()
	archive := dbtest.NewArchive(t)
	groups, err := SummarizeGroups(reducedGroups(t))
	if err != nil {
		t.Fatal(err)
	}

	first := archive.Open(t)
	id, err := first.InsertRun(ctx, RunInfo{Label: "cuboid"}, groups)
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := archive.Open(t)
	info, got, err := second.LoadRun(ctx, id)
	if err != nil {
		t.Fatalf("LoadRun after reopen: %v", err)
	}
	if info.Label != "cuboid" {
		t.Errorf("label = %q, want cuboid", info.Label)
	}
	if diff := cmp.Diff(groups, got); diff != "" {
		t.Errorf("groups after reopen (-want +got):\n%s", diff)
	}
	// Reopening must not reset the run sequence.
	next, err := second.InsertRun(ctx, RunInfo{Label: "cuboid"}, nil)
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if next == id {
		t.Errorf("second run reused id %s", id)
	}
}
