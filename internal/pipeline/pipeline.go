// Package pipeline fans catalog records across a bounded worker pool and
// collects the eligible subset.
package pipeline

import (
	"context"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openshelf/gutenlist/internal/catalog"
	"github.com/openshelf/gutenlist/internal/classify"
	"github.com/openshelf/gutenlist/internal/model"
)

// DefaultWorkers is the default degree of parallelism for a build pass.
const DefaultWorkers = 8

// Stats aggregates per-record outcomes of one build pass.
type Stats struct {
	Scanned  int
	Eligible int
	Rejected map[model.RejectReason]int
}

// RejectedTotal returns the number of records dropped for any reason.
func (s Stats) RejectedTotal() int {
	var n int
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// Builder runs Parse→Classify over raw records concurrently.
type Builder struct {
	Workers    int
	Classifier *classify.Classifier

	// Progress, when set, is invoked by the collecting goroutine after each
	// record completes, with the number done so far and the batch total.
	Progress func(done, total int)
}

// Build classifies every record file and returns the eligible set. Ordering
// of the result carries no meaning: records are collected as workers finish.
// Per-record failures only drop that record; they never abort the batch.
func (b *Builder) Build(ctx context.Context, paths []string) ([]model.BookRecord, Stats, error) {
	workers := b.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	stats := Stats{Rejected: make(map[model.RejectReason]int)}
	outcomes := make(chan model.Outcome)

	// Single aggregating owner: workers never touch the result slice.
	var records []model.BookRecord
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		var done int
		for out := range outcomes {
			stats.Scanned++
			if out.Accepted {
				stats.Eligible++
				records = append(records, out.Book)
			} else {
				stats.Rejected[out.Reason]++
			}
			done++
			if b.Progress != nil {
				b.Progress(done, len(paths))
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range paths {
		g.Go(func() error {
			out := b.processOne(gctx, path)
			select {
			case outcomes <- out:
			case <-gctx.Done():
			}
			return nil
		})
	}

	err := g.Wait()
	close(outcomes)
	<-collected
	if err != nil {
		return nil, stats, err
	}
	if ctx.Err() != nil {
		return nil, stats, ctx.Err()
	}
	return records, stats, nil
}

// processOne runs Parse→Classify for a single record. Every failure mode maps
// to a rejection outcome.
func (b *Builder) processOne(ctx context.Context, path string) model.Outcome {
	id := catalog.IDFromPath(path)

	f, err := os.Open(path)
	if err != nil {
		zap.L().Debug("pipeline: open record failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return model.Reject(id, model.RejectMalformed)
	}
	cand, reason := catalog.Parse(id, f)
	_ = f.Close()
	if cand == nil {
		return model.Reject(id, reason)
	}

	res := b.Classifier.Classify(ctx, *cand)
	if !res.Eligible {
		return model.Reject(id, model.RejectIneligible)
	}
	return model.Accept(cand.Record())
}
