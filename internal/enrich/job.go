// file: internal/enrich/job.go
// version: 1.0.0
// guid: 5e6f7a8b-9c0d-4e1f-2a3b-4c5d6e7f8a9b

package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jdfalk/library-enricher/internal/models"
)

// Job is a run started in the background. Each job owns its cancellation;
// cancelling one job never affects another.
type Job struct {
	ID        string
	StartedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.RWMutex
	progress models.ProgressEvent
	summary  models.Summary
}

// Start runs e over entries in a new goroutine. The job stops when ctx is
// cancelled or Cancel is called. The job ID is opts.RunID, or a new ULID
// when that is empty.
func Start(ctx context.Context, e *Enricher, entries []models.LibraryEntry, opts Options) *Job {
	if opts.RunID == "" {
		opts.RunID = ulid.Make().String()
	}
	runCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:        opts.RunID,
		StartedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
		progress:  models.ProgressEvent{Total: len(entries)},
	}
	onProgress := opts.OnProgress
	opts.OnProgress = func(ev models.ProgressEvent) {
		job.mu.Lock()
		job.progress = ev
		job.mu.Unlock()
		if onProgress != nil {
			onProgress(ev)
		}
	}

	go func() {
		defer close(job.done)
		defer cancel()
		summary := e.Run(runCtx, entries, opts)
		job.mu.Lock()
		job.summary = summary
		job.mu.Unlock()
	}()
	return job
}

// Cancel asks the job to stop at the next entry boundary.
func (j *Job) Cancel() { j.cancel() }

// Done is closed once the run has returned.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the run returns and reports its summary.
func (j *Job) Wait() models.Summary {
	<-j.done
	return j.Summary()
}

// Running reports whether the run is still in progress.
func (j *Job) Running() bool {
	select {
	case <-j.done:
		return false
	default:
		return true
	}
}

// Progress returns the most recent progress event.
func (j *Job) Progress() models.ProgressEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.progress
}

// Summary returns the final counts. It is zero until the run has returned.
func (j *Job) Summary() models.Summary {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.summary
}
