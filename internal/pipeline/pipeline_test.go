package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/gutenlist/internal/classify"
	"github.com/openshelf/gutenlist/internal/model"
)

// writeRecord writes a minimal English RDF record for book id.
func writeRecord(t *testing.T, dir, id, rights, date string) string {
	t.Helper()
	var extra string
	if rights != "" {
		extra += "<dcterms:rights>" + rights + "</dcterms:rights>"
	}
	if date != "" {
		extra += "<dcterms:issued>" + date + "</dcterms:issued>"
	}
	rdf := fmt.Sprintf(`<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:dcterms="http://purl.org/dc/terms/"
         xmlns:pgterms="http://www.gutenberg.org/2009/pgterms/">
  <pgterms:ebook>
    <dcterms:title>Book %s</dcterms:title>
    <dcterms:language>en</dcterms:language>
    %s
  </pgterms:ebook>
</rdf:RDF>`, id, extra)

	path := filepath.Join(dir, "pg"+id+".rdf")
	require.NoError(t, os.WriteFile(path, []byte(rdf), 0o644))
	return path
}

func ids(records []model.BookRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestBuild_EndToEndScenario(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeRecord(t, dir, "1", "This work is in the Public Domain.", "2010"), // rights win
		writeRecord(t, dir, "2", "", "1900"),                                  // under cutoff
		writeRecord(t, dir, "3", "", "2005"),                                  // over cutoff, no fallback
	}

	b := &Builder{
		Workers:    4,
		Classifier: &classify.Classifier{CutoffYear: 1927},
	}
	records, stats, err := b.Build(context.Background(), paths)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"1", "2"}, ids(records))
	assert.Equal(t, 3, stats.Scanned)
	assert.Equal(t, 2, stats.Eligible)
	assert.Equal(t, 1, stats.Rejected[model.RejectIneligible])
}

func TestBuild_SoftFailuresNeverAbortBatch(t *testing.T) {
	dir := t.TempDir()

	badPath := filepath.Join(dir, "pg8.rdf")
	require.NoError(t, os.WriteFile(badPath, []byte("<rdf:RDF><broken"), 0o644))

	frenchPath := filepath.Join(dir, "pg9.rdf")
	require.NoError(t, os.WriteFile(frenchPath, []byte(`<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:dcterms="http://purl.org/dc/terms/"
         xmlns:pgterms="http://www.gutenberg.org/2009/pgterms/">
  <pgterms:ebook><dcterms:language>fr</dcterms:language></pgterms:ebook>
</rdf:RDF>`), 0o644))

	paths := []string{
		badPath,
		frenchPath,
		filepath.Join(dir, "pg10.rdf"), // does not exist
		writeRecord(t, dir, "11", "", "1850"),
	}

	b := &Builder{Classifier: &classify.Classifier{CutoffYear: 1927}}
	records, stats, err := b.Build(context.Background(), paths)
	require.NoError(t, err, "per-record failures must not surface as build errors")

	assert.ElementsMatch(t, []string{"11"}, ids(records))
	assert.Equal(t, 4, stats.Scanned)
	assert.Equal(t, 2, stats.Rejected[model.RejectMalformed])
	assert.Equal(t, 1, stats.Rejected[model.RejectNonEnglish])
	assert.Equal(t, 3, stats.RejectedTotal())
}

func TestBuild_ProgressReported(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 5 {
		paths = append(paths, writeRecord(t, dir, fmt.Sprintf("%d", 100+i), "", "1900"))
	}

	var mu sync.Mutex
	var calls []int
	b := &Builder{
		Workers:    2,
		Classifier: &classify.Classifier{CutoffYear: 1927},
		Progress: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 5, total)
			calls = append(calls, done)
		},
	}

	_, _, err := b.Build(context.Background(), paths)
	require.NoError(t, err)

	// The collector is the sole caller, so done counts arrive in order.
	assert.Equal(t, []int{1, 2, 3, 4, 5}, calls)
}

func TestBuild_IdempotentResultSet(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 20 {
		paths = append(paths, writeRecord(t, dir, fmt.Sprintf("%d", i), "", "1901"))
	}

	b := &Builder{Workers: 8, Classifier: &classify.Classifier{CutoffYear: 1927}}

	first, _, err := b.Build(context.Background(), paths)
	require.NoError(t, err)
	second, _, err := b.Build(context.Background(), paths)
	require.NoError(t, err)

	// Arrival order may differ between passes; the id set may not.
	assert.ElementsMatch(t, ids(first), ids(second))
}

func TestBuild_EmptyBatch(t *testing.T) {
	b := &Builder{Classifier: &classify.Classifier{CutoffYear: 1927}}
	records, stats, err := b.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, stats.Scanned)
}
