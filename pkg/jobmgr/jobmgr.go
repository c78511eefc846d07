// Package jobmgr runs named background jobs with cancellation, lifecycle
// reporting and a Wait for orderly shutdown.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(func(msg string) { log.Println("job:", msg) })
//	_ = jm.Start(ctx, "autosave", func(ctx context.Context) error {
//	    // work until ctx is cancelled
//	    return nil
//	})
//	// later...
//	jm.StopAll()
//	jm.Wait()
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Job is a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
	done   chan struct{}
}

// StatusReporter receives lifecycle events for jobs:
//
//	running:autosave
//	error:autosave:disk full
//	done:autosave
type StatusReporter func(string)

// Manager starts, stops and tracks jobs. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	wg       sync.WaitGroup
	Reporter StatusReporter
}

// NewManager creates a Manager. reporter may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// Start runs runner in its own goroutine under a context derived from
// parent. Starting a name that is already running is an error. Jobs are
// removed once runner returns.
func (m *Manager) Start(parent context.Context, name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job '%s' is already running", name)
	}

	ctx, cancel := context.WithCancel(parent)
	job := &Job{Name: name, Cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = job
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer close(job.done)
		defer cancel()

		m.report("running:" + name)
		err := runner(ctx)
		switch {
		case err == nil, errors.Is(err, context.Canceled):
			m.report("done:" + name)
		default:
			m.report("error:" + name + ":" + err.Error())
		}

		m.mu.Lock()
		if m.jobs[name] == job {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()
	return nil
}

// Stop cancels a running job and waits for it to return.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	job, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}

	job.Cancel()
	<-job.done
	return nil
}

// StopAll cancels every running job without waiting.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		job.Cancel()
	}
}

// Wait blocks until every job started so far has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// List returns the names of active jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary, e.g. "Running jobs: autosave, status".
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
