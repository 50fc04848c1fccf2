package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "nested", "test.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEmbeddedMigrations(t *testing.T) {
	db := openTemp(t)
	m := NewMigrationManager(db, Migrations())

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	// a second pass is a no-op
	if err := m.RunMigrations(); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}

	for _, table := range []string{"hotspots", "detection_runs", "cluster_records"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil || !applied[1] {
		t.Errorf("applied = %v, %v", applied, err)
	}
}

func TestLoadMigrationsOrder(t *testing.T) {
	files := fstest.MapFS{
		"010_indexes.sql": {Data: []byte("CREATE INDEX idx_b ON b(x);")},
		"002_b.sql":       {Data: []byte("CREATE TABLE b (x INTEGER);")},
		"001_a.sql":       {Data: []byte("CREATE TABLE a (x INTEGER);")},
		"README.md":       {Data: []byte("not a migration")},
		"notes.sql":       {Data: []byte("SELECT 1;")},
	}

	m := NewMigrationManager(openTemp(t), files)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}

	want := []int{1, 2, 10}
	if len(migrations) != len(want) {
		t.Fatalf("got %d migrations, want %d", len(migrations), len(want))
	}
	for i, v := range want {
		if migrations[i].Version != v {
			t.Errorf("migration %d version = %d, want %d", i, migrations[i].Version, v)
		}
	}
	if migrations[0].Name != "001_a" {
		t.Errorf("name = %q", migrations[0].Name)
	}

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	db := openTemp(t)
	files := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE ok (x INTEGER); CREATE TABLE;")},
	}

	if err := NewMigrationManager(db, files).RunMigrations(); err == nil {
		t.Fatal("broken migration succeeded")
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&n); err != nil || n != 0 {
		t.Errorf("recorded migrations = %d, %v", n, err)
	}
}

func TestTransaction(t *testing.T) {
	db := openTemp(t)
	if _, err := db.Exec("CREATE TABLE t (x INTEGER)"); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := Transaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO t (x) VALUES (1)"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Transaction error = %v, want boom", err)
	}

	err = Transaction(db, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO t (x) VALUES (2)")
		return err
	})
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}

	var sum int
	if err := db.QueryRow("SELECT COALESCE(SUM(x), 0) FROM t").Scan(&sum); err != nil || sum != 2 {
		t.Errorf("sum = %d, %v; want only the committed row", sum, err)
	}
}
