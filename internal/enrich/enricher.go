// file: internal/enrich/enricher.go
// version: 1.0.0
// guid: 4d5e6f7a-8b9c-4d0e-1f2a-3b4c5d6e7f8a

package enrich

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jdfalk/library-enricher/internal/matcher"
	"github.com/jdfalk/library-enricher/internal/metadata"
	"github.com/jdfalk/library-enricher/internal/metrics"
	"github.com/jdfalk/library-enricher/internal/models"
)

// DefaultDelay is the pause between consecutive entries.
const DefaultDelay = time.Second

// Record outcomes, used as metric labels.
const (
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Searcher returns candidate metadata for a free-text query.
// *metadata.Aggregator satisfies it.
type Searcher interface {
	Aggregate(ctx context.Context, query string) []metadata.Candidate
}

// Options control a single enrichment run.
type Options struct {
	// Overwrite replaces fields that already have a value.
	Overwrite bool
	// OnProgress receives one event before each entry and a final Done event.
	OnProgress func(models.ProgressEvent)
	// OnApply persists updates for an entry. A returned error marks the
	// entry as failed.
	OnApply func(id string, updates models.FieldUpdates) error
	// RunID tags log lines for this run.
	RunID string
}

// Enricher walks a list of entries one at a time, looking each up through
// the Searcher and applying the best match.
type Enricher struct {
	searcher Searcher
	delay    time.Duration
}

// NewEnricher creates an Enricher. A negative delay is treated as zero.
func NewEnricher(searcher Searcher, delay time.Duration) *Enricher {
	if delay < 0 {
		delay = 0
	}
	return &Enricher{searcher: searcher, delay: delay}
}

// Run enriches entries in order and returns the per-outcome counts.
//
// Cancellation is cooperative. Run checks ctx before each entry and while
// waiting between entries, but an entry already being looked up is always
// finished: provider requests for it are issued under a context that ignores
// ctx's cancellation. The returned summary then covers fewer than
// len(entries) records.
func (e *Enricher) Run(ctx context.Context, entries []models.LibraryEntry, opts Options) models.Summary {
	var summary models.Summary
	total := len(entries)
	processed := 0
	started := time.Now()

	emit := func(ev models.ProgressEvent) {
		if opts.OnProgress != nil {
			opts.OnProgress(ev)
		}
	}

	log.Printf("[INFO] enrichment %s: starting run over %d entries (overwrite=%t)", opts.RunID, total, opts.Overwrite)

	for i, entry := range entries {
		if ctx.Err() != nil {
			log.Printf("[INFO] enrichment %s: cancelled before entry %d/%d", opts.RunID, i+1, total)
			break
		}

		emit(models.ProgressEvent{
			Completed:    i,
			Total:        total,
			CurrentTitle: entry.Label(),
			Updated:      summary.Updated,
			Skipped:      summary.Skipped,
			Failed:       summary.Failed,
		})

		outcome := e.processEntry(context.WithoutCancel(ctx), entry, opts)
		switch outcome {
		case OutcomeUpdated:
			summary.Updated++
		case OutcomeSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		metrics.IncRecord(outcome)
		processed++

		if i < total-1 && !e.wait(ctx) {
			log.Printf("[INFO] enrichment %s: cancelled after entry %d/%d", opts.RunID, i+1, total)
			break
		}
	}

	status := "completed"
	if processed < total {
		status = "cancelled"
	}
	metrics.IncRun(status)
	metrics.ObserveRunDuration(time.Since(started))

	emit(models.ProgressEvent{
		Completed: processed,
		Total:     total,
		Updated:   summary.Updated,
		Skipped:   summary.Skipped,
		Failed:    summary.Failed,
		Done:      true,
	})

	log.Printf("[INFO] enrichment %s: %s, %d updated, %d skipped, %d failed", opts.RunID, status, summary.Updated, summary.Skipped, summary.Failed)
	return summary
}

// wait sleeps for the inter-entry delay. It returns false if ctx ends first.
func (e *Enricher) wait(ctx context.Context) bool {
	if e.delay == 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(e.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Enricher) processEntry(ctx context.Context, entry models.LibraryEntry, opts Options) (outcome string) {
	query := buildQuery(entry)
	if query == "" {
		log.Printf("[DEBUG] enrichment %s: entry %s has no title or author, skipping", opts.RunID, entry.ID)
		return OutcomeSkipped
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] enrichment %s: entry %s panicked: %v", opts.RunID, entry.ID, r)
			outcome = OutcomeFailed
		}
	}()

	candidates := e.searcher.Aggregate(ctx, query)
	best, ok := matcher.SelectBest(candidates, entry)
	if !ok {
		log.Printf("[DEBUG] enrichment %s: no confident match for %q (%d candidates)", opts.RunID, query, len(candidates))
		return OutcomeSkipped
	}

	updates := BuildUpdates(entry, best.Candidate, opts.Overwrite)
	if updates.IsEmpty() {
		return OutcomeSkipped
	}

	if opts.OnApply != nil {
		if err := opts.OnApply(entry.ID, updates); err != nil {
			log.Printf("[ERROR] enrichment %s: %v", opts.RunID, fmt.Errorf("failed to apply updates to %s: %w", entry.ID, err))
			return OutcomeFailed
		}
	}
	log.Printf("[INFO] enrichment %s: updated %q from %s (score %.1f)", opts.RunID, entry.Label(), best.Source, best.Score)
	return OutcomeUpdated
}

func buildQuery(entry models.LibraryEntry) string {
	return strings.TrimSpace(strings.TrimSpace(entry.Title) + " " + strings.TrimSpace(entry.Author))
}
