package jobmgr

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
)

type events struct {
	mu  sync.Mutex
	got []string
}

func (e *events) report(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, s)
}

func (e *events) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.got)
}

func TestStartStop(t *testing.T) {
	ev := &events{}
	m := NewManager(ev.report)

	started := make(chan struct{})
	if err := m.Start(context.Background(), "autosave", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}); err != nil {
		t.Fatal(err)
	}
	<-started

	if err := m.Start(context.Background(), "autosave", func(context.Context) error { return nil }); err == nil {
		t.Fatal("duplicate job started")
	}
	if got := m.Status(); got != "Running jobs: autosave" {
		t.Fatalf("status = %q", got)
	}

	if err := m.Stop("autosave"); err != nil {
		t.Fatal(err)
	}
	if err := m.Stop("autosave"); err == nil {
		t.Fatal("stopping a stopped job succeeded")
	}
	m.Wait()

	want := []string{"running:autosave", "done:autosave"}
	if got := ev.list(); !slices.Equal(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if got := m.Status(); got != "No jobs are running." {
		t.Fatalf("status = %q", got)
	}
}

func TestErrorsAreReported(t *testing.T) {
	ev := &events{}
	m := NewManager(ev.report)
	if err := m.Start(context.Background(), "save", func(context.Context) error {
		return errors.New("disk full")
	}); err != nil {
		t.Fatal(err)
	}
	m.Wait()

	if got := ev.list(); !slices.Contains(got, "error:save:disk full") {
		t.Fatalf("events = %v", got)
	}
	if len(m.List()) != 0 {
		t.Fatal("finished job still listed")
	}
}

func TestParentCancelStopsJobs(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	for _, name := range []string{"a", "b"} {
		if err := m.Start(ctx, name, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	cancel()
	m.Wait()
	if len(m.List()) != 0 {
		t.Fatalf("jobs left: %v", m.List())
	}
}
