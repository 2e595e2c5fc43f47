// Package store persists build-run history and the fallback-verification
// verdict cache, behind interchangeable SQLite and Postgres drivers.
package store

import (
	"context"
	"time"

	"github.com/openshelf/gutenlist/internal/model"
)

// Store is the persistence interface for run history and verdict caching.
type Store interface {
	// Runs
	RecordRun(ctx context.Context, run model.BuildRun) (*model.BuildRun, error)
	ListRuns(ctx context.Context, limit int) ([]model.BuildRun, error)

	// Verdict cache. Only positive verdicts are stored; a false result from
	// GetCachedVerdict means "unknown", never "confirmed ineligible".
	GetCachedVerdict(ctx context.Context, bookID string) (bool, error)
	SetCachedVerdict(ctx context.Context, bookID string, ttl time.Duration) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
