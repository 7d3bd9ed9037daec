package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/hyperifyio/deepsearch/internal/report"
)

// ErrRunInProgress is returned by Start while a previous run has not finished.
var ErrRunInProgress = errors.New("a run is already in progress")

// Runner executes one Orchestrator run at a time on a background goroutine
// and hands its Report to the caller through Wait.
type Runner struct {
	Orchestrator *Orchestrator

	mu      sync.Mutex
	current *run
}

type run struct {
	done   chan struct{}
	report report.Report
}

// Start launches a run. It fails with ErrRunInProgress while another run is active.
func (r *Runner) Start(ctx context.Context, req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && !r.current.finished() {
		return ErrRunInProgress
	}
	cur := &run{done: make(chan struct{})}
	r.current = cur
	go func() {
		defer close(cur.done)
		cur.report = r.Orchestrator.Run(ctx, req)
	}()
	return nil
}

// Running reports whether a run is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil && !r.current.finished()
}

// Stop requests the active run to stop between hits. Entries collected so far
// stay in the Report.
func (r *Runner) Stop() {
	if r.Orchestrator != nil {
		r.Orchestrator.Stop()
	}
}

// Wait blocks until the latest run finishes and returns its Report. The
// boolean is false when no run was ever started.
func (r *Runner) Wait() (report.Report, bool) {
	r.mu.Lock()
	cur := r.current
	r.mu.Unlock()
	if cur == nil {
		return report.Report{}, false
	}
	<-cur.done
	return cur.report, true
}

func (c *run) finished() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
