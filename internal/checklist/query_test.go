package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuery(t *testing.T) (*QueryService, *Store) {
	t.Helper()
	s := newTestStore(t)
	require.NoError(t, s.Rebuild(sampleRecords()))
	return NewQueryService(s), s
}

func TestList_JoinsCompletionMarkers(t *testing.T) {
	q, s := newTestQuery(t)
	require.NoError(t, s.SetCompleted("100", true))

	entries, err := q.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byID := map[string]bool{}
	for _, e := range entries {
		byID[e.Book.ID] = e.Completed
	}
	assert.True(t, byID["100"])
	assert.False(t, byID["1342"])
	assert.False(t, byID["84"])
}

func TestList_NotBuilt(t *testing.T) {
	q := NewQueryService(newTestStore(t))
	_, err := q.List()
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	q, _ := newTestQuery(t)

	entries, err := q.Search("shakespeare")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "100", entries[0].Book.ID)
}

func TestSearch_MatchesTitleOrAuthor(t *testing.T) {
	q, _ := newTestQuery(t)

	byTitle, err := q.Search("frankenstein")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "84", byTitle[0].Book.ID)

	byAuthor, err := q.Search("austen")
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "1342", byAuthor[0].Book.ID)
}

func TestSearch_NoMatchesIsNotAnError(t *testing.T) {
	q, _ := newTestQuery(t)

	entries, err := q.Search("zzzz no such book")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSearch_PhraseWithSpaces(t *testing.T) {
	q, _ := newTestQuery(t)

	entries, err := q.Search("pride and prejudice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1342", entries[0].Book.ID)
}
