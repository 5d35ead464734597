// file: internal/library/service.go
// version: 1.0.0
// guid: 9c0d1e2f-3a4b-4c5d-6e7f-8a9b0c1d2e3f

package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jdfalk/library-enricher/internal/covers"
	"github.com/jdfalk/library-enricher/internal/database"
	"github.com/jdfalk/library-enricher/internal/enrich"
	"github.com/jdfalk/library-enricher/internal/matcher"
	"github.com/jdfalk/library-enricher/internal/metrics"
	"github.com/jdfalk/library-enricher/internal/models"
)

// ErrRunInProgress is returned by Start while another run is active.
var ErrRunInProgress = errors.New("an enrichment run is already in progress")

// Service ties the entry store, the cover store and the enrichment pipeline
// together. It allows one enrichment run at a time.
type Service struct {
	store    database.Store
	covers   *covers.Store
	enricher *enrich.Enricher

	mu      sync.Mutex
	current *enrich.Job
}

// NewService creates a Service. coverStore may be nil, in which case cover
// URLs from matches are ignored.
func NewService(store database.Store, coverStore *covers.Store, enricher *enrich.Enricher) *Service {
	return &Service{store: store, covers: coverStore, enricher: enricher}
}

// LoadEntries returns the entries with the given ids, in the order given, or
// every entry when ids is empty.
func (s *Service) LoadEntries(ids []string) ([]models.LibraryEntry, error) {
	if len(ids) == 0 {
		entries, err := s.store.ListEntries()
		if err != nil {
			return nil, fmt.Errorf("failed to list entries: %w", err)
		}
		metrics.SetEntries(len(entries))
		return entries, nil
	}

	entries := make([]models.LibraryEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.store.GetEntry(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load entry %s: %w", id, err)
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Apply persists updates for one entry. Text fields are written first; a
// cover URL is then downloaded into the cover store. A failed cover download
// is logged and does not fail the entry.
func (s *Service) Apply(ctx context.Context, id string, updates models.FieldUpdates) error {
	if _, err := s.store.ApplyUpdates(id, updates); err != nil {
		return fmt.Errorf("failed to persist updates: %w", err)
	}

	if updates.CoverURL == nil || s.covers == nil {
		return nil
	}
	path, err := s.covers.Save(ctx, *updates.CoverURL, id)
	if err != nil {
		log.Printf("[WARN] cover download for %s failed: %v", id, err)
		return nil
	}
	if err := s.store.SetCover(id, path); err != nil {
		return fmt.Errorf("failed to record cover: %w", err)
	}
	return nil
}

// Start launches an enrichment run over the given entries (all when ids is
// empty). The run outlives ctx's values but not its cancellation; pass
// context.Background() for runs that should only stop via Job.Cancel.
func (s *Service) Start(ctx context.Context, ids []string, opts enrich.Options) (*enrich.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Running() {
		return nil, ErrRunInProgress
	}

	entries, err := s.LoadEntries(ids)
	if err != nil {
		return nil, err
	}

	if opts.OnApply == nil {
		applyCtx := context.WithoutCancel(ctx)
		opts.OnApply = func(id string, updates models.FieldUpdates) error {
			return s.Apply(applyCtx, id, updates)
		}
	}

	job := enrich.Start(ctx, s.enricher, entries, opts)
	log.Printf("[INFO] started enrichment run %s over %d entries", job.ID, len(entries))
	s.current = job
	return job, nil
}

// Current returns the most recent run, or nil if none was started.
func (s *Service) Current() *enrich.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Cancel stops the active run. It reports whether a run was active.
func (s *Service) Cancel() bool {
	job := s.Current()
	if job == nil || !job.Running() {
		return false
	}
	job.Cancel()
	log.Printf("[INFO] cancellation requested for enrichment run %s", job.ID)
	return true
}

// Search ranks stored entries against query.
func (s *Service) Search(query string) ([]matcher.EntryMatch, error) {
	entries, err := s.store.ListEntries()
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return matcher.SearchEntries(entries, query), nil
}
