// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dbtest opens throwaway run archives for tests.
//
// By default an archive is an SQLite database. With -mysql or -cloudsql
// each archive is a fresh database on that MySQL server, dropped when
// the test finishes.
package dbtest

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/opendihu/perfscaling/storage/db"
	_ "github.com/opendihu/perfscaling/storage/db/sqlite3"
)

var (
	mysqlServer = flag.String("mysql", "", "run archive tests on the MySQL server with this DSN `prefix` (e.g. root:@tcp(localhost)/)")
	cloudSQL    = flag.String("cloudsql", "", "run archive tests on this Cloud SQL `instance` (e.g. opendihu:europe-west3:scaling)")
)

// An Archive names a database that can be opened more than once
// during a test, so tests can check what survives a reopen.
type Archive struct {
	Driver string
	DSN    string
}

// Open opens a and closes it when the test finishes.
func (a Archive) Open(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.OpenSQL(a.Driver, a.DSN)
	if err != nil {
		t.Fatalf("open %s archive: %v", a.Driver, err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// NewArchive returns a new, empty archive for the test. The SQLite
// archive lives in t.TempDir.
func NewArchive(t *testing.T) Archive {
	t.Helper()
	prefix := *mysqlServer
	if *cloudSQL != "" {
		prefix = fmt.Sprintf("root:@cloudsql(%s)/", *cloudSQL)
	}
	if prefix == "" {
		return Archive{"sqlite3", filepath.Join(t.TempDir(), "runs.db")}
	}
	return Archive{"mysql", prefix + createDatabase(t, prefix)}
}

// createDatabase creates a randomly named database on the server at
// prefix and drops it when the test finishes.
func createDatabase(t *testing.T, prefix string) string {
	t.Helper()
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}
	name := "scaling_test_" + hex.EncodeToString(buf)

	server, err := sql.Open("mysql", prefix)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := server.Exec("CREATE DATABASE `" + name + "`"); err != nil {
		server.Close()
		t.Fatal(err)
	}
	t.Logf("using database %q", name)
	// Cleanups run last-in first-out, after any Archive.Open cleanup.
	t.Cleanup(func() {
		if _, err := server.Exec("DROP DATABASE `" + name + "`"); err != nil {
			t.Error(err)
		}
		server.Close()
	})
	return name
}

// NewDB opens a new, empty archive for the test.
func NewDB(t *testing.T) *db.DB {
	t.Helper()
	d := NewArchive(t).Open(t)
	if runs, err := d.CountRuns(); err != nil {
		t.Fatal(err)
	} else if runs != 0 {
		t.Fatalf("new archive has %d run(s), want 0", runs)
	}
	return d
}
