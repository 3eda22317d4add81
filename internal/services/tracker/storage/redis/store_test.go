package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
)

func TestSnapshotKey(t *testing.T) {
	if got := snapshotKey(" default "); got != "pitchside:snapshot:default" {
		t.Fatalf("key = %q", got)
	}
}

func TestParseRecord(t *testing.T) {
	record, err := parseRecord("default", map[string]string{
		"version":    "7",
		"payload":    `{"teamTitle":"T"}`,
		"updated_at": "1772359200000",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if record.Key != "default" || record.Version != 7 || string(record.Payload) != `{"teamTitle":"T"}` {
		t.Fatalf("record = %+v", record)
	}
	if want := time.UnixMilli(1772359200000).UTC(); !record.UpdatedAt.Equal(want) {
		t.Fatalf("updated at = %v, want %v", record.UpdatedAt, want)
	}
}

func TestParseRecord_Errors(t *testing.T) {
	if _, err := parseRecord("k", map[string]string{}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("empty hash err = %v, want ErrNotFound", err)
	}
	tests := []map[string]string{
		{"version": "1"},
		{"version": "x", "payload": "{}"},
		{"version": "1", "payload": "{}", "updated_at": "soon"},
	}
	for _, fields := range tests {
		if _, err := parseRecord("k", fields); err == nil {
			t.Fatalf("fields %v: expected error", fields)
		}
	}
}

func TestNilStoreNotConfigured(t *testing.T) {
	var store *Store
	if err := store.SaveSnapshot(context.Background(), storage.SnapshotRecord{Key: "k"}); !errors.Is(err, storage.ErrNotConfigured) {
		t.Fatalf("save err = %v, want ErrNotConfigured", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestDial(t *testing.T) {
	if _, err := Dial("not-a-redis-url"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Dial(" "); err == nil {
		t.Fatal("expected error for empty url")
	}
	store, err := Dial("redis://localhost:6379/2")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
