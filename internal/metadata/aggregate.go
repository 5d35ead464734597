// file: internal/metadata/aggregate.go
// version: 1.0.0
// guid: 9f0a1b2c-3d4e-4f5a-8b6c-7d8e9f0a1b2c

package metadata

import (
	"context"
	"log"
	"sync"
)

// Aggregator queries every configured source concurrently for one query.
type Aggregator struct {
	sources []MetadataSource
}

// NewAggregator creates an aggregator over sources. Result order follows the
// order given here.
func NewAggregator(sources ...MetadataSource) *Aggregator {
	return &Aggregator{sources: sources}
}

// Sources returns the configured sources in aggregation order.
func (a *Aggregator) Sources() []MetadataSource {
	return a.sources
}

// Aggregate fans the query out to all sources, waits for every branch to
// settle and concatenates their candidates in source order. A branch that
// panics contributes nothing and does not affect its siblings.
func (a *Aggregator) Aggregate(ctx context.Context, query string) []Candidate {
	tasks := make([]func() []Candidate, len(a.sources))
	for i, src := range a.sources {
		tasks[i] = func() []Candidate { return src.Search(ctx, query) }
	}
	branches := fanOut(tasks, func(i int, r any) {
		log.Printf("[ERROR] metadata source %s panicked for %q: %v", a.sources[i].Name(), query, r)
	})

	var all []Candidate
	for _, b := range branches {
		all = append(all, b...)
	}
	return all
}

// fanOut runs every task in its own goroutine and returns each task's result
// in its own slot, in task order. onPanic is called from the failing
// goroutine with the task index and the recovered value.
func fanOut[T any](tasks []func() []T, onPanic func(i int, r any)) [][]T {
	results := make([][]T, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = nil
					if onPanic != nil {
						onPanic(i, r)
					}
				}
			}()
			results[i] = task()
		}()
	}
	wg.Wait()
	return results
}
