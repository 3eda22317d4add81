package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyMigrationsRecordsAppliedOnce(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"0001_snapshots.sql": &fstest.MapFile{
			Data: []byte("-- +migrate Up\nCREATE TABLE snapshots(key TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE snapshots;"),
		},
	}

	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(context.Background(), db, migrations, ""); err != nil {
			t.Fatalf("apply migrations pass %d: %v", i, err)
		}
	}

	if got := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 1 {
		t.Fatalf("migration rows = %d, want 1", got)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='snapshots'"); got != 1 {
		t.Fatal("expected snapshots table to exist")
	}
}

func TestApplyMigrationsDoesNotRecordFailedMigration(t *testing.T) {
	db := openInMemoryDB(t)
	bad := fstest.MapFS{
		"0001_bad.sql": &fstest.MapFile{Data: []byte("CREAT TABLE things(id INT);")},
	}
	if err := ApplyMigrations(context.Background(), db, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 0 {
		t.Fatalf("migration rows = %d, want 0", got)
	}
}

func TestLoadUsesRootInMigrationKey(t *testing.T) {
	migrations := fstest.MapFS{
		"queue/0002_meta.sql":  &fstest.MapFile{Data: []byte("CREATE TABLE meta(k TEXT);")},
		"queue/0001_queue.sql": &fstest.MapFile{Data: []byte("CREATE TABLE q(id TEXT);")},
		"queue/README.md":      &fstest.MapFile{Data: []byte("ignored")},
	}

	loaded, err := Load(migrations, "queue")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded = %d, want 2", len(loaded))
	}
	if loaded[0].Name != "queue/0001_queue.sql" {
		t.Fatalf("first migration = %q, want queue/0001_queue.sql", loaded[0].Name)
	}
}

func TestUpSection(t *testing.T) {
	content := "-- header\n-- +migrate Up\nCREATE TABLE a(x);\n-- +migrate Down\nDROP TABLE a;"
	if got := UpSection(content); got != "\nCREATE TABLE a(x);\n" {
		t.Fatalf("up section = %q", got)
	}
	if got := UpSection("CREATE TABLE b(y);"); got != "CREATE TABLE b(y);" {
		t.Fatalf("marker-less up section = %q", got)
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	if !IsAlreadyExistsError(errors.New("table snapshots already exists")) {
		t.Fatal("expected already exists match")
	}
	if IsAlreadyExistsError(errors.New("syntax error")) {
		t.Fatal("unexpected match")
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func countRows(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return value
}
