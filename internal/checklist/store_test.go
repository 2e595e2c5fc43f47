package checklist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/gutenlist/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "books.csv"), filepath.Join(dir, "markers"))
}

func year(n int) *int { return &n }

func sampleRecords() []model.BookRecord {
	return []model.BookRecord{
		{ID: "1342", Title: "Pride and Prejudice", Author: "Austen, Jane", Year: year(1998)},
		{ID: "100", Title: "The Complete Works", Author: "William Shakespeare"},
		{ID: "84", Title: "Frankenstein", Author: "Shelley, Mary", Year: year(1818)},
	}
}

func collect(t *testing.T, s *Store) []model.BookRecord {
	t.Helper()
	seq, err := s.All()
	require.NoError(t, err)

	var out []model.BookRecord
	for rec, err := range seq {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func TestAll_NotBuilt(t *testing.T) {
	s := newTestStore(t)
	_, err := s.All()
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestRebuild_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Rebuild(sampleRecords()))

	got := collect(t, s)
	require.Len(t, got, 3)
	assert.Equal(t, "1342", got[0].ID)
	assert.Equal(t, "Pride and Prejudice", got[0].Title)
	require.NotNil(t, got[0].Year)
	assert.Equal(t, 1998, *got[0].Year)
	assert.Nil(t, got[1].Year, "absent year round-trips as absent")
}

func TestRebuild_FileFormat(t *testing.T) {
	s := newTestStore(t)
	records := sampleRecords()
	records[0].Completed = true // must not leak into the dataset
	require.NoError(t, s.Rebuild(records))

	raw, err := os.ReadFile(s.csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,title,author,year,completed", lines[0])
	assert.Equal(t, `1342,Pride and Prejudice,"Austen, Jane",1998,0`, lines[1])
	assert.Equal(t, "100,The Complete Works,William Shakespeare,,0", lines[2])
}

func TestRebuild_ReplacesDataset(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Rebuild(sampleRecords()))
	require.NoError(t, s.Rebuild(sampleRecords()[:1]))

	got := collect(t, s)
	require.Len(t, got, 1)
	assert.Equal(t, "1342", got[0].ID)
}

func TestRebuild_EmptySetKeepsHeader(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Rebuild(nil))

	assert.Empty(t, collect(t, s))

	raw, err := os.ReadFile(s.csvPath)
	require.NoError(t, err)
	assert.Equal(t, "id,title,author,year,completed", strings.TrimSpace(string(raw)))
}

func TestAll_Restartable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Rebuild(sampleRecords()))

	seq, err := s.All()
	require.NoError(t, err)

	// Partial consumption, then a full re-range over the same sequence.
	for range seq {
		break
	}
	var n int
	for _, err := range seq {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 3, n)
}

func TestSetCompleted_MarkAndUnmark(t *testing.T) {
	s := newTestStore(t)

	assert.False(t, s.IsCompleted("1342"))
	require.NoError(t, s.SetCompleted("1342", true))
	assert.True(t, s.IsCompleted("1342"))

	// Marking twice is a no-op.
	require.NoError(t, s.SetCompleted("1342", true))
	assert.True(t, s.IsCompleted("1342"))

	require.NoError(t, s.SetCompleted("1342", false))
	assert.False(t, s.IsCompleted("1342"))
}

func TestSetCompleted_UnmarkAbsent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetCompleted("1", true))

	err := s.SetCompleted("999", false)
	assert.ErrorIs(t, err, ErrMarkerNotFound)
	assert.True(t, s.IsCompleted("1"), "failed unmark must not mutate the marker store")
}

func TestMarkers_SurviveRebuild(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Rebuild(sampleRecords()))
	require.NoError(t, s.SetCompleted("84", true))

	// Rebuild with different settings that still include the id.
	require.NoError(t, s.Rebuild(sampleRecords()))
	assert.True(t, s.IsCompleted("84"))

	// Rebuild that excludes the id: the marker remains queryable.
	require.NoError(t, s.Rebuild(sampleRecords()[:1]))
	assert.True(t, s.IsCompleted("84"))
}

func TestIsCompleted_IndependentOfDataset(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetCompleted("no-such-book", true))
	assert.True(t, s.IsCompleted("no-such-book"))
}
