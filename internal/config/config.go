// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log output encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StorageDriver selects the submission store: memory or postgres.
	StorageDriver string `koanf:"storage_driver"`

	// PostgresDSN is the connection string for the postgres driver.
	PostgresDSN string `koanf:"postgres_dsn"`

	// CatalogSource selects where season catalogs come from: local or s3.
	CatalogSource string `koanf:"catalog_source"`

	// CatalogDir is the directory holding <season>.json files (local source).
	CatalogDir string `koanf:"catalog_dir"`

	// CatalogBucket, CatalogPrefix and CatalogRegion configure the s3 source.
	CatalogBucket string `koanf:"catalog_bucket"`
	CatalogPrefix string `koanf:"catalog_prefix"`
	CatalogRegion string `koanf:"catalog_region"`

	// CatalogEndpoint points the s3 source at an S3-compatible store.
	CatalogEndpoint string `koanf:"catalog_endpoint"`

	// CatalogAccessKey and CatalogSecretKey override the default credential
	// chain for the s3 source.
	CatalogAccessKey string `koanf:"catalog_access_key"`
	CatalogSecretKey string `koanf:"catalog_secret_key"`

	// CatalogIDField names the catalog column used as the item identifier.
	CatalogIDField string `koanf:"catalog_id_field"`

	// CatalogTTLSeconds bounds how long a fetched catalog stays fresh.
	CatalogTTLSeconds int `koanf:"catalog_ttl_seconds"`

	// SeasonCacheTTLSeconds bounds how long cached season submissions stay
	// fresh and how long an idle season survives in the cache.
	SeasonCacheTTLSeconds int `koanf:"season_cache_ttl_seconds"`

	// SweepIntervalSeconds sets how often the refresh sweep runs.
	SweepIntervalSeconds int `koanf:"sweep_interval_seconds"`

	// RateLimitSeconds is the per-user minimum interval between
	// allocation requests.
	RateLimitSeconds int `koanf:"rate_limit_seconds"`

	// RateLimitMaxEntries bounds the rate limiter's memory.
	RateLimitMaxEntries int `koanf:"rate_limit_max_entries"`

	// RefreshQueueSize bounds the in-memory refresh queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// FullBackupCap and UserBackupCap limit backup list lengths for the
	// full-allocation and single-user paths.
	FullBackupCap int `koanf:"full_backup_cap"`
	UserBackupCap int `koanf:"user_backup_cap"`

	// MaxCompetitionDepth caps the preference-depth scenario parameter.
	MaxCompetitionDepth int `koanf:"max_competition_depth"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		StorageDriver:         "memory",
		CatalogSource:         "local",
		CatalogDir:            "./catalogs",
		CatalogRegion:         "eu-west-1",
		CatalogIDField:        "Vacante",
		CatalogTTLSeconds:     3600,
		SeasonCacheTTLSeconds: 900,
		SweepIntervalSeconds:  60,
		RateLimitSeconds:      30,
		RateLimitMaxEntries:   50_000,
		RefreshQueueSize:      1000,
		WorkerCount:           runtime.NumCPU() * 2,
		FullBackupCap:         40,
		UserBackupCap:         50,
		MaxCompetitionDepth:   20,
	}
}
