// Package common provides shared dependency construction for the CLI
// commands.
package common

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eventscout/eventsync/internal/config"
	"github.com/eventscout/eventsync/internal/database"
	"github.com/eventscout/eventsync/internal/logger"
)

// Deps bundles the dependencies every command needs.
type Deps struct {
	Config *config.Config
	Logger logger.Interface
}

// NewCommandDeps loads configuration and builds the logger.
func NewCommandDeps() (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &Deps{Config: cfg, Logger: log}, nil
}

// StoreResult holds a live store connection and its event repository.
type StoreResult struct {
	DB     *sqlx.DB
	Events *database.EventRepository
}

// Close releases the store connection.
func (s *StoreResult) Close() error {
	return s.DB.Close()
}

// ConnectStore validates store credentials, connects, and ensures the
// events schema exists. A config.ConfigurationError from here means the
// sync step must be skipped, not that the process is broken.
func ConnectStore(ctx context.Context, cfg *config.Config) (*StoreResult, error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}

	db, err := database.NewPostgresConnection(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}

	if schemaErr := database.EnsureSchema(ctx, db); schemaErr != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", schemaErr)
	}

	return &StoreResult{
		DB:     db,
		Events: database.NewEventRepository(db),
	}, nil
}
