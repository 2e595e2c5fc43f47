package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/openshelf/gutenlist/internal/checklist"
	"github.com/openshelf/gutenlist/internal/store"
)

// initStore opens the run-history store for the configured driver.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DSN)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DSN)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newChecklistStore() *checklist.Store {
	return checklist.NewStore(cfg.Checklist.CSVPath, cfg.Checklist.MarkersDir)
}

// printEntries writes one checklist line per entry: status glyph, title,
// author, id.
func printEntries(w io.Writer, entries []checklist.Entry) {
	for _, e := range entries {
		glyph := "✗"
		if e.Completed {
			glyph = "✓"
		}
		fmt.Fprintf(w, "[%s] %s by %s (ID: %s)\n", glyph, e.Book.Title, e.Book.Author, e.Book.ID)
	}
}
