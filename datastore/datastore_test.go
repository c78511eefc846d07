package datastore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type payload struct {
	Prefixes map[string]string `json:"prefixes"`
	Count    int               `json:"count"`
}

func newStore(t *testing.T, backups int) *DataStore {
	t.Helper()
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "nested", "data_test"))
	cfg.BackupCount = backups
	ds, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestLoadMissing(t *testing.T) {
	ds := newStore(t, 0)
	var p payload
	if err := ds.Load(&p); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load = %v, want ErrNotFound", err)
	}
}

func TestRoundTrip(t *testing.T) {
	ds := newStore(t, 0)
	in := payload{Prefixes: map[string]string{"g1": "!"}, Count: 3}
	if err := ds.Save(in); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(ds.Path())
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) > 0 && raw[0] == '{' {
		t.Fatal("file is not compressed")
	}

	other, err := New(DefaultConfig(ds.Path()))
	if err != nil {
		t.Fatal(err)
	}
	var out payload
	if err := other.Load(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 3 || out.Prefixes["g1"] != "!" {
		t.Fatalf("got %+v", out)
	}
}

func TestUnchangedSaveIsSkipped(t *testing.T) {
	ds := newStore(t, 0)
	if err := ds.Save(payload{Count: 1}); err != nil {
		t.Fatal(err)
	}
	first := ds.Stats().LastSave
	if err := ds.Save(payload{Count: 1}); err != nil {
		t.Fatal(err)
	}
	if !ds.Stats().LastSave.Equal(first) {
		t.Fatal("identical snapshot was written again")
	}
	if err := ds.Save(payload{Count: 2}); err != nil {
		t.Fatal(err)
	}
	if ds.Stats().LastSave.Equal(first) {
		t.Fatal("changed snapshot was skipped")
	}
}

func TestCorruptFile(t *testing.T) {
	ds := newStore(t, 0)
	if err := os.WriteFile(ds.Path(), []byte("definitely not zstd"), 0644); err != nil {
		t.Fatal(err)
	}
	var p payload
	err := ds.Load(&p)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Load = %v, want a corruption error", err)
	}
}

func TestBackupsAreRotated(t *testing.T) {
	ds := newStore(t, 2)
	for i := 0; i < 6; i++ {
		if err := ds.Save(payload{Count: i}); err != nil {
			t.Fatal(err)
		}
	}
	matches, err := filepath.Glob(ds.Path() + ".backup.*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d backups, want 2", len(matches))
	}
}

func TestAutoSaveSavesOnShutdown(t *testing.T) {
	ds := newStore(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ds.AutoSave(ctx, time.Hour, func() any { return payload{Count: 42} })
	}()
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	var out payload
	if err := ds.Load(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 42 {
		t.Fatalf("Count = %d", out.Count)
	}
}
