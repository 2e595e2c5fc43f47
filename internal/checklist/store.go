// Package checklist persists the eligible dataset and per-item completion
// markers. The CSV rows are rewritten wholesale on rebuild; markers live in a
// separate directory keyed by id so user progress survives rebuilds.
package checklist

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/natefinch/atomic"
	"github.com/rotisserie/eris"

	"github.com/openshelf/gutenlist/internal/model"
)

// ErrNotBuilt is returned when the dataset has never been persisted.
var ErrNotBuilt = eris.New("checklist: dataset not built, run 'build' first")

// ErrMarkerNotFound is returned when unmarking an id that has no marker.
var ErrMarkerNotFound = eris.New("checklist: marker not found")

// Store is the on-disk checklist dataset plus its completion markers.
type Store struct {
	csvPath    string
	markersDir string
}

// NewStore creates a store rooted at the given CSV path and markers directory.
func NewStore(csvPath, markersDir string) *Store {
	return &Store{csvPath: csvPath, markersDir: markersDir}
}

// Rebuild atomically replaces the dataset with exactly the given records. The
// completed column is written as 0 for every row: markers, not rows, are the
// source of truth for completion.
func (s *Store) Rebuild(records []model.BookRecord) error {
	rows := make([]model.BookRecord, len(records))
	for i, r := range records {
		r.Completed = false
		rows[i] = r
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "checklist: marshal dataset")
	}

	if dir := filepath.Dir(s.csvPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "checklist: create dataset directory")
		}
	}
	if err := atomic.WriteFile(s.csvPath, bytes.NewReader(data)); err != nil {
		return eris.Wrap(err, "checklist: write dataset")
	}
	return nil
}

// All returns a lazy, restartable sequence over the dataset in persisted
// order. Each range re-opens the file. Fails with ErrNotBuilt when no dataset
// has ever been persisted.
func (s *Store) All() (iter.Seq2[model.BookRecord, error], error) {
	if _, err := os.Stat(s.csvPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotBuilt
		}
		return nil, eris.Wrap(err, "checklist: stat dataset")
	}

	return func(yield func(model.BookRecord, error) bool) {
		f, err := os.Open(s.csvPath)
		if err != nil {
			yield(model.BookRecord{}, eris.Wrap(err, "checklist: open dataset"))
			return
		}
		defer f.Close() //nolint:errcheck

		dec, err := csvutil.NewDecoder(csv.NewReader(f))
		if err != nil {
			yield(model.BookRecord{}, eris.Wrap(err, "checklist: read header"))
			return
		}
		for {
			var rec model.BookRecord
			if err := dec.Decode(&rec); err == io.EOF {
				return
			} else if err != nil {
				yield(model.BookRecord{}, eris.Wrap(err, "checklist: decode row"))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}, nil
}

// SetCompleted creates or removes the marker for id. Marking is idempotent;
// unmarking an absent marker returns ErrMarkerNotFound without mutating
// anything.
func (s *Store) SetCompleted(id string, value bool) error {
	path := s.markerPath(id)
	if value {
		if err := os.MkdirAll(s.markersDir, 0o755); err != nil {
			return eris.Wrap(err, "checklist: create markers directory")
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return eris.Wrapf(err, "checklist: write marker %s", id)
		}
		return nil
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrMarkerNotFound
		}
		return eris.Wrapf(err, "checklist: remove marker %s", id)
	}
	return nil
}

// IsCompleted reports whether a marker exists for id, independent of whether
// the id is present in the dataset.
func (s *Store) IsCompleted(id string) bool {
	_, err := os.Stat(s.markerPath(id))
	return err == nil
}

func (s *Store) markerPath(id string) string {
	return filepath.Join(s.markersDir, id+".txt")
}
