// Package config provides configuration management for the sync
// pipeline. Values come from a YAML config file and environment
// variables via viper; the recognized environment keys (SYNC_MODE,
// BATCH_SIZE, RETENTION_DAYS, STORE_URL, STORE_KEY) are the operator
// contract shared with the scraper deployment.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/eventscout/eventsync/internal/database"
	"github.com/eventscout/eventsync/internal/logger"
	"github.com/eventscout/eventsync/internal/runcounter"
	"github.com/eventscout/eventsync/internal/syncer"
	"github.com/eventscout/eventsync/internal/tracker"
)

// Default values.
const (
	DefaultDataDir  = "./data"
	DefaultSchedule = "0 */6 * * *" // every six hours
)

// Local state file names under the data directory.
const (
	trackerFileName = "synced_events.json"
	counterFileName = "run_counter"
	intakeFileName  = "pending_events.json"
	lockFileName    = "sync.lock"
)

// ConfigurationError reports a configuration problem that makes the
// sync step impossible. It is fatal for syncing but deliberately not
// for scraping: intake files can still accumulate for a later sync.
type ConfigurationError struct {
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}

// SyncConfig holds sync cadence and batching settings.
type SyncConfig struct {
	// Mode drives the sync-mode gate: 0 never, 1-4 every Nth run,
	// 5+ every run.
	Mode int `yaml:"mode"`
	// BatchSize is the number of events per insert batch.
	BatchSize int `yaml:"batch_size"`
	// RetentionDays is the dedup tracker retention window.
	RetentionDays int `yaml:"retention_days"`
	// Schedule is the cron expression used by the schedule command.
	Schedule string `yaml:"schedule"`
}

// PathsConfig locates the pipeline's local state files.
type PathsConfig struct {
	// DataDir holds the tracker snapshot, run counter, intake file and
	// run lock.
	DataDir string `yaml:"data_dir"`
}

// TrackerFile returns the dedup tracker snapshot path.
func (p PathsConfig) TrackerFile() string { return filepath.Join(p.DataDir, trackerFileName) }

// CounterFile returns the run counter path.
func (p PathsConfig) CounterFile() string { return filepath.Join(p.DataDir, counterFileName) }

// IntakeFile returns the intermediate batch file path.
func (p PathsConfig) IntakeFile() string { return filepath.Join(p.DataDir, intakeFileName) }

// LockFile returns the advisory run lock path.
func (p PathsConfig) LockFile() string { return filepath.Join(p.DataDir, lockFileName) }

// Config is the full application configuration.
type Config struct {
	Sync  SyncConfig      `yaml:"sync"`
	Store database.Config `yaml:"store"`
	Paths PathsConfig     `yaml:"paths"`
	Log   logger.Config   `yaml:"log"`
}

// SetDefaults registers default values on viper. Called once before
// reading the config file so file and env values override them.
func SetDefaults() {
	viper.SetDefault("sync.mode", runcounter.ModeAlways)
	viper.SetDefault("sync.batch_size", syncer.DefaultBatchSize)
	viper.SetDefault("sync.retention_days", tracker.DefaultRetentionDays)
	viper.SetDefault("sync.schedule", DefaultSchedule)
	viper.SetDefault("paths.data_dir", DefaultDataDir)
	viper.SetDefault("store.sslmode", "require")
	viper.SetDefault("log.level", logger.DefaultLevel)
	viper.SetDefault("log.encoding", logger.DefaultEncoding)
}

// envBindings maps viper keys to the environment variables operators
// actually set. viper.AutomaticEnv alone cannot express these names.
var envBindings = map[string]string{
	"sync.mode":           "SYNC_MODE",
	"sync.batch_size":     "BATCH_SIZE",
	"sync.retention_days": "RETENTION_DAYS",
	"sync.schedule":       "SYNC_SCHEDULE",
	"store.url":           "STORE_URL",
	"store.password":      "STORE_KEY",
	"store.host":          "STORE_HOST",
	"store.port":          "STORE_PORT",
	"store.user":          "STORE_USER",
	"store.dbname":        "STORE_DBNAME",
	"paths.data_dir":      "DATA_DIR",
	"log.level":           "LOG_LEVEL",
}

// BindEnv registers the environment variable bindings on viper.
func BindEnv() {
	for key, env := range envBindings {
		_ = viper.BindEnv(key, env)
	}
}

// Load builds the typed configuration from viper's current state.
func Load() (*Config, error) {
	cfg := &Config{
		Sync: SyncConfig{
			Mode:          viper.GetInt("sync.mode"),
			BatchSize:     viper.GetInt("sync.batch_size"),
			RetentionDays: viper.GetInt("sync.retention_days"),
			Schedule:      viper.GetString("sync.schedule"),
		},
		Store: database.Config{
			URL:      viper.GetString("store.url"),
			Host:     viper.GetString("store.host"),
			Port:     viper.GetString("store.port"),
			User:     viper.GetString("store.user"),
			Password: viper.GetString("store.password"),
			DBName:   viper.GetString("store.dbname"),
			SSLMode:  viper.GetString("store.sslmode"),
		},
		Paths: PathsConfig{
			DataDir: viper.GetString("paths.data_dir"),
		},
		Log: logger.Config{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			Encoding:    viper.GetString("log.encoding"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks settings that are wrong in any mode. Store
// credentials are checked separately by ValidateStore because their
// absence skips the sync step rather than failing the whole command.
func (c *Config) validate() error {
	if c.Sync.Mode < 0 {
		return &ConfigurationError{Key: "SYNC_MODE", Reason: "must be >= 0"}
	}
	if c.Sync.BatchSize <= 0 {
		return &ConfigurationError{Key: "BATCH_SIZE", Reason: "must be positive"}
	}
	if c.Sync.RetentionDays <= 0 {
		return &ConfigurationError{Key: "RETENTION_DAYS", Reason: "must be positive"}
	}
	if c.Paths.DataDir == "" {
		return &ConfigurationError{Key: "DATA_DIR", Reason: "must not be empty"}
	}
	return nil
}

// ValidateStore checks that enough store credentials are present to
// connect. Returns a ConfigurationError naming the missing key.
func (c *Config) ValidateStore() error {
	if c.Store.URL != "" {
		return nil
	}
	if c.Store.Host == "" || c.Store.DBName == "" || c.Store.User == "" {
		return &ConfigurationError{
			Key:    "STORE_URL",
			Reason: "store credentials missing: set STORE_URL or STORE_HOST/STORE_USER/STORE_DBNAME",
		}
	}
	return nil
}
