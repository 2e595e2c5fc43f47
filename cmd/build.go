package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openshelf/gutenlist/internal/classify"
	"github.com/openshelf/gutenlist/internal/fetcher"
	"github.com/openshelf/gutenlist/internal/gutenberg"
	"github.com/openshelf/gutenlist/internal/model"
	"github.com/openshelf/gutenlist/internal/pipeline"
)

var (
	buildYear   int
	buildScrape bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the public-domain checklist from the catalog",
	Long: `Downloads and extracts the RDF catalog if needed, classifies every
record concurrently, and replaces the checklist dataset with the eligible
set. Completion markers are untouched.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		started := time.Now()

		if !cmd.Flags().Changed("year") {
			buildYear = cfg.Build.CutoffYear
		}

		catalog := &fetcher.Catalog{
			URL:         cfg.Catalog.URL,
			ArchivePath: cfg.Catalog.ArchivePath,
			Dir:         cfg.Catalog.Dir,
			Downloader:  fetcher.NewDownloader(fetcher.DownloadOptions{}),
		}
		if err := catalog.Ensure(ctx); err != nil {
			return eris.Wrap(err, "build: ensure catalog")
		}

		paths, err := catalog.ListRecords()
		if err != nil {
			return eris.Wrap(err, "build: list records")
		}
		zap.L().Info("classifying catalog records",
			zap.Int("records", len(paths)),
			zap.Int("cutoff_year", buildYear),
			zap.Bool("scrape", buildScrape),
		)

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "build: init store")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var verifier classify.Verifier
		if buildScrape {
			verifier = gutenberg.New(gutenberg.Options{
				BaseURL:    cfg.Scrape.BaseURL,
				Timeout:    time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
				RatePerSec: cfg.Scrape.RatePerSec,
				Cache:      st,
				CacheTTL:   time.Duration(cfg.Scrape.CacheTTLHours) * time.Hour,
			})
		}

		builder := &pipeline.Builder{
			Workers:    cfg.Build.Workers,
			Classifier: &classify.Classifier{CutoffYear: buildYear, Verifier: verifier},
			Progress: func(done, total int) {
				if done%10000 == 0 || done == total {
					zap.L().Info("classification progress",
						zap.Int("done", done),
						zap.Int("total", total),
					)
				}
			},
		}

		records, stats, err := builder.Build(ctx, paths)
		if err != nil {
			return eris.Wrap(err, "build: classify records")
		}

		if err := newChecklistStore().Rebuild(records); err != nil {
			return eris.Wrap(err, "build: rebuild dataset")
		}

		run, err := st.RecordRun(ctx, model.BuildRun{
			CutoffYear: buildYear,
			Scrape:     buildScrape,
			Scanned:    stats.Scanned,
			Eligible:   stats.Eligible,
			Rejected:   stats.RejectedTotal(),
			Duration:   time.Since(started),
			StartedAt:  started.UTC(),
		})
		if err != nil {
			zap.L().Warn("build: record run failed", zap.Error(err))
		} else {
			zap.L().Info("build run recorded", zap.String("run_id", run.ID))
		}

		zap.L().Info("build complete",
			zap.Int("eligible", stats.Eligible),
			zap.Int("non_english", stats.Rejected[model.RejectNonEnglish]),
			zap.Int("malformed", stats.Rejected[model.RejectMalformed]),
			zap.Int("ineligible", stats.Rejected[model.RejectIneligible]),
			zap.Duration("took", time.Since(started)),
		)
		fmt.Printf("Found %d books. Saved to %s.\n", len(records), cfg.Checklist.CSVPath)
		return nil
	},
}

func init() {
	buildCmd.Flags().IntVar(&buildYear, "year", 1927, "public domain year cutoff")
	buildCmd.Flags().BoolVar(&buildScrape, "scrape", false, "enable fallback copyright-status scraping")
	rootCmd.AddCommand(buildCmd)
}
