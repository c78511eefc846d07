package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"bernbot/internal/bot"
	"bernbot/internal/storage"
)

func writeState(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data_test")
	store, err := storage.New(path, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := bot.New(bot.Options{Poems: []string{"Poem."}, Insults: []string{"nerd."}})
	b.ToggleInsults("g1")
	b.RecordTaunt("c1", "m1")
	if err := store.Save(b); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectTable(t *testing.T) {
	path := writeState(t)
	cmd := inspectCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"snapshot version 1", "g1", "m1", "CHANNEL"} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q:\n%s", want, got)
		}
	}
}

func TestInspectJSON(t *testing.T) {
	path := writeState(t)
	cmd := inspectCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json", path})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	var s summary
	if err := json.Unmarshal(out.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if len(s.Insults) != 2 || s.Insults[0].Key != "c1" || s.Insults[0].LastTaunt != "m1" {
		t.Fatalf("insults = %+v", s.Insults)
	}
}

func TestInspectMissingFile(t *testing.T) {
	cmd := inspectCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope")})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error")
	}
}
