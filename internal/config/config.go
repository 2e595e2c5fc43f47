package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Checklist ChecklistConfig `yaml:"checklist" mapstructure:"checklist"`
	Build     BuildConfig     `yaml:"build" mapstructure:"build"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CatalogConfig locates the raw metadata catalog.
type CatalogConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	ArchivePath string `yaml:"archive_path" mapstructure:"archive_path"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
}

// ChecklistConfig locates the persisted dataset and completion markers.
type ChecklistConfig struct {
	CSVPath    string `yaml:"csv_path" mapstructure:"csv_path"`
	MarkersDir string `yaml:"markers_dir" mapstructure:"markers_dir"`
}

// BuildConfig configures the classification pipeline.
type BuildConfig struct {
	CutoffYear int `yaml:"cutoff_year" mapstructure:"cutoff_year"`
	Workers    int `yaml:"workers" mapstructure:"workers"`
}

// ScrapeConfig configures fallback copyright-status verification.
type ScrapeConfig struct {
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec    float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GUTENLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.url", "https://www.gutenberg.org/cache/epub/feeds/rdf-files.tar.bz2")
	v.SetDefault("catalog.archive_path", "rdf-files.tar.bz2")
	v.SetDefault("catalog.dir", "rdf-files")
	v.SetDefault("checklist.csv_path", "english_public_domain_books.csv")
	v.SetDefault("checklist.markers_dir", "checklist_books")
	v.SetDefault("build.cutoff_year", 1927)
	v.SetDefault("build.workers", 8)
	v.SetDefault("scrape.base_url", "https://www.gutenberg.org/ebooks")
	v.SetDefault("scrape.timeout_secs", 10)
	v.SetDefault("scrape.rate_per_sec", 2.0)
	v.SetDefault("scrape.cache_ttl_hours", 720)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "gutenlist.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
