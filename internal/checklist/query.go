package checklist

import (
	"strings"

	"github.com/openshelf/gutenlist/internal/model"
)

// Entry pairs a dataset row with its live completion state.
type Entry struct {
	Book      model.BookRecord
	Completed bool
}

// QueryService is the read side of the checklist.
type QueryService struct {
	store *Store
}

// NewQueryService creates a query service over the given store.
func NewQueryService(store *Store) *QueryService {
	return &QueryService{store: store}
}

// List returns every dataset row joined with its completion marker, in
// persisted order. Fails with ErrNotBuilt when the dataset is absent.
func (q *QueryService) List() ([]Entry, error) {
	return q.collect(func(model.BookRecord) bool { return true })
}

// Search returns rows whose title or author contains the keyword,
// case-insensitively. An empty result is a normal outcome, not an error.
func (q *QueryService) Search(keyword string) ([]Entry, error) {
	needle := strings.ToLower(keyword)
	return q.collect(func(rec model.BookRecord) bool {
		return strings.Contains(strings.ToLower(rec.Title), needle) ||
			strings.Contains(strings.ToLower(rec.Author), needle)
	})
}

func (q *QueryService) collect(match func(model.BookRecord) bool) ([]Entry, error) {
	seq, err := q.store.All()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		if match(rec) {
			entries = append(entries, Entry{
				Book:      rec,
				Completed: q.store.IsCompleted(rec.ID),
			})
		}
	}
	return entries, nil
}
