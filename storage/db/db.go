// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db archives reduced scaling runs in a SQL database so that
// later runs can be compared against them.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/opendihu/perfscaling/scalemath"
	"github.com/opendihu/perfscaling/scaleseries"
)

// DB is a high-level interface to the run archive. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	nextSeq       *sql.Stmt
	insertRun     *sql.Stmt
	insertGroup   *sql.Stmt
	insertSummary *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to register a ConnectHook.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID VARCHAR(32) PRIMARY KEY,
	Day VARCHAR(8) NOT NULL,
	Seq BIGINT NOT NULL,
	Label VARCHAR(255),
	Source VARCHAR(1024),
	Created BIGINT
);
CREATE TABLE IF NOT EXISTS RunGroups (
	RunID VARCHAR(32),
	GroupKey VARCHAR(32),
	Procs BIGINT,
	N BIGINT,
	PRIMARY KEY (RunID, GroupKey),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS Summaries (
	RunID VARCHAR(32),
	GroupKey VARCHAR(32),
	Col VARCHAR(255),
	Mean DOUBLE,
	StdDev DOUBLE,
	Min DOUBLE,
	Max DOUBLE,
	N BIGINT,
	PRIMARY KEY (RunID, GroupKey, Col),
{{if not .sqlite3}}
	Index (Col(100)),
{{end}}
	FOREIGN KEY (RunID, GroupKey) REFERENCES RunGroups(RunID, GroupKey) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS SummariesCol ON Summaries(Col);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.nextSeq, err = db.sql.Prepare("SELECT COALESCE(MAX(Seq), 0) FROM Runs WHERE Day = ?")
	if err != nil {
		return err
	}
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(RunID, Day, Seq, Label, Source, Created) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertGroup, err = db.sql.Prepare("INSERT INTO RunGroups(RunID, GroupKey, Procs, N) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertSummary, err = db.sql.Prepare("INSERT INTO Summaries(RunID, GroupKey, Col, Mean, StdDev, Min, Max, N) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// A RunInfo describes one archived run.
type RunInfo struct {
	// ID has the form YYYYMMDD.n. It is assigned by InsertRun.
	ID string

	// Label is a free-form name for the run, such as the
	// experiment being measured.
	Label string

	// Source names the logs the run was computed from.
	Source string

	// Created is the time the run was archived, to the second.
	Created time.Time
}

// A GroupSummary is the archived form of one reduced group.
type GroupSummary struct {
	Key   string
	Procs int
	// N is the number of rows in the group before trimming.
	N int
	// Columns maps a column name to its reduced statistics.
	Columns map[string]scalemath.Summary
}

// SummarizeGroups converts reduced groups to their archived form.
// Columns without measured values are omitted.
func SummarizeGroups(groups []*scaleseries.Group) ([]GroupSummary, error) {
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		if !g.Reduced() {
			return nil, fmt.Errorf("group %s has not been reduced", g.Key)
		}
		gs := GroupSummary{
			Key:     g.Key.String(),
			Procs:   g.Procs(),
			N:       g.N,
			Columns: make(map[string]scalemath.Summary),
		}
		for _, col := range g.Columns() {
			if s := g.Summary(col); s.Defined() {
				gs.Columns[col] = s
			}
		}
		out = append(out, gs)
	}
	return out, nil
}

// InsertRun archives groups as a new run described by info and
// returns the new run ID. The run is written in a single
// transaction. info.ID and info.Created are ignored.
func (db *DB) InsertRun(ctx context.Context, info RunInfo, groups []GroupSummary) (id string, err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	t := now().UTC()
	day := t.Format("20060102")
	var seq int64
	if err := tx.StmtContext(ctx, db.nextSeq).QueryRowContext(ctx, day).Scan(&seq); err != nil {
		return "", fmt.Errorf("next run id: %w", err)
	}
	seq++
	id = fmt.Sprintf("%s.%d", day, seq)

	if _, err := tx.StmtContext(ctx, db.insertRun).ExecContext(ctx, id, day, seq, info.Label, info.Source, t.Unix()); err != nil {
		return "", err
	}
	insertGroup := tx.StmtContext(ctx, db.insertGroup)
	insertSummary := tx.StmtContext(ctx, db.insertSummary)
	for _, g := range groups {
		if _, err := insertGroup.ExecContext(ctx, id, g.Key, g.Procs, g.N); err != nil {
			return "", fmt.Errorf("group %s: %w", g.Key, err)
		}
		for _, col := range sortedColumns(g.Columns) {
			s := g.Columns[col]
			if _, err := insertSummary.ExecContext(ctx, id, g.Key, col, s.Mean, s.StdDev, s.Min, s.Max, s.N); err != nil {
				return "", fmt.Errorf("group %s column %s: %w", g.Key, col, err)
			}
		}
	}
	return id, nil
}

func sortedColumns(m map[string]scalemath.Summary) []string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// ListRuns returns every archived run, newest first.
func (db *DB) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT RunID, Label, Source, Created FROM Runs ORDER BY Day DESC, Seq DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		var created int64
		if err := rows.Scan(&r.ID, &r.Label, &r.Source, &created); err != nil {
			return nil, err
		}
		r.Created = time.Unix(created, 0).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ErrNoRun is returned by LoadRun when the run does not exist.
var ErrNoRun = errors.New("no such run")

// LoadRun returns the run with the given ID and its groups, in
// ascending key order.
func (db *DB) LoadRun(ctx context.Context, id string) (RunInfo, []GroupSummary, error) {
	info := RunInfo{ID: id}
	var created int64
	err := db.sql.QueryRowContext(ctx, "SELECT Label, Source, Created FROM Runs WHERE RunID = ?", id).Scan(&info.Label, &info.Source, &created)
	if err == sql.ErrNoRows {
		return RunInfo{}, nil, fmt.Errorf("run %s: %w", id, ErrNoRun)
	}
	if err != nil {
		return RunInfo{}, nil, err
	}
	info.Created = time.Unix(created, 0).UTC()

	rows, err := db.sql.QueryContext(ctx, "SELECT GroupKey, Procs, N FROM RunGroups WHERE RunID = ? ORDER BY GroupKey", id)
	if err != nil {
		return RunInfo{}, nil, err
	}
	var groups []GroupSummary
	index := make(map[string]int)
	for rows.Next() {
		g := GroupSummary{Columns: make(map[string]scalemath.Summary)}
		if err := rows.Scan(&g.Key, &g.Procs, &g.N); err != nil {
			rows.Close()
			return RunInfo{}, nil, err
		}
		index[g.Key] = len(groups)
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return RunInfo{}, nil, err
	}

	rows, err = db.sql.QueryContext(ctx, "SELECT GroupKey, Col, Mean, StdDev, Min, Max, N FROM Summaries WHERE RunID = ?", id)
	if err != nil {
		return RunInfo{}, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var key, col string
		var s scalemath.Summary
		if err := rows.Scan(&key, &col, &s.Mean, &s.StdDev, &s.Min, &s.Max, &s.N); err != nil {
			return RunInfo{}, nil, err
		}
		i, ok := index[key]
		if !ok {
			return RunInfo{}, nil, fmt.Errorf("run %s: summary for unknown group %s", id, key)
		}
		groups[i].Columns[col] = s
	}
	if err := rows.Err(); err != nil {
		return RunInfo{}, nil, err
	}
	return info, groups, nil
}

// CountRuns returns the number of archived runs.
func (db *DB) CountRuns() (int, error) {
	var n int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	for _, stmt := range []*sql.Stmt{db.nextSeq, db.insertRun, db.insertGroup, db.insertSummary} {
		if err := stmt.Close(); err != nil {
			return err
		}
	}
	return db.sql.Close()
}
