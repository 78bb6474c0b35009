// Package store persists extracted hospital rows and the per-run load log.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/qbdaten/qbsync/internal/config"
	"github.com/qbdaten/qbsync/internal/model"
)

// Load run statuses recorded in the load log.
const (
	LoadStatusRunning  = "running"
	LoadStatusComplete = "complete"
	LoadStatusFailed   = "failed"
)

// LoadEntry is one row of the load log.
type LoadEntry struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	FilesProcessed int        `json:"files_processed"`
	FilesSkipped   int        `json:"files_skipped"`
	RowsUpserted   int64      `json:"rows_upserted"`
	Error          string     `json:"error,omitempty"`
}

// Store is the persistence interface for the import pipeline.
type Store interface {
	// UpsertHospitals writes the batch, overwriting existing rows that share
	// a (ik_number, location_id) key. Returns the number of rows applied.
	UpsertHospitals(ctx context.Context, hospitals []model.Hospital) (int64, error)

	// CountHospitals returns the current number of persisted rows.
	CountHospitals(ctx context.Context) (int64, error)

	// Load log
	StartLoad(ctx context.Context) (string, error)
	CompleteLoad(ctx context.Context, loadID string, processed, skipped int, rows int64) error
	FailLoad(ctx context.Context, loadID string, loadErr error) error
	RecentLoads(ctx context.Context, limit int) ([]LoadEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New creates a Store for the configured driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		return NewPostgres(ctx, cfg.DSN(), cfg.Schema)
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q (valid: postgres, sqlite)", cfg.Driver)
	}
}
