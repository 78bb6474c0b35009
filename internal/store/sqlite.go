package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/qbdaten/qbsync/internal/model"
)

// SQLiteStore implements Store on modernc.org/sqlite for local or
// single-file use. SQLite has no schema namespaces, so the schema setting
// is ignored, and the ordered levels are stored as a JSON array.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dsn.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, eris.New("sqlite: database path is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS hospitals (
	ik_number                   INTEGER NOT NULL,
	location_id                 INTEGER NOT NULL,
	street                      TEXT NOT NULL,
	city                        TEXT NOT NULL,
	house_number                TEXT NOT NULL,
	zip_code                    INTEGER NOT NULL,
	provides_emergency_services INTEGER NOT NULL,
	levels                      TEXT,
	PRIMARY KEY (ik_number, location_id)
);

CREATE TABLE IF NOT EXISTS load_log (
	id              TEXT PRIMARY KEY,
	status          TEXT NOT NULL DEFAULT 'running',
	started_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at    DATETIME,
	files_processed INTEGER NOT NULL DEFAULT 0,
	files_skipped   INTEGER NOT NULL DEFAULT 0,
	rows_upserted   INTEGER NOT NULL DEFAULT 0,
	error           TEXT
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// UpsertHospitals applies the batch row by row inside one transaction.
// Each row's insert-or-update is a single ON CONFLICT statement.
func (s *SQLiteStore) UpsertHospitals(ctx context.Context, hospitals []model.Hospital) (int64, error) {
	if len(hospitals) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hospitals
			(ik_number, location_id, street, city, house_number, zip_code, provides_emergency_services, levels)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ik_number, location_id) DO UPDATE SET
			street = excluded.street,
			city = excluded.city,
			house_number = excluded.house_number,
			zip_code = excluded.zip_code,
			provides_emergency_services = excluded.provides_emergency_services,
			levels = excluded.levels`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	var n int64
	for _, h := range hospitals {
		var levels any
		if h.Levels != nil {
			data, err := json.Marshal(h.Levels)
			if err != nil {
				return 0, eris.Wrapf(err, "sqlite: marshal levels for %d/%d", h.IKNumber, h.LocationID)
			}
			levels = string(data)
		}
		if _, err := stmt.ExecContext(ctx,
			h.IKNumber, h.LocationID,
			h.Street, h.City, h.HouseNumber, h.ZipCode,
			h.ProvidesServices, levels,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert hospital %d/%d", h.IKNumber, h.LocationID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return n, nil
}

func (s *SQLiteStore) CountHospitals(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM hospitals").Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count hospitals")
	}
	return n, nil
}

func (s *SQLiteStore) StartLoad(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO load_log (id, status, started_at) VALUES (?, ?, ?)",
		id, LoadStatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: start load")
	}
	return id, nil
}

func (s *SQLiteStore) CompleteLoad(ctx context.Context, loadID string, processed, skipped int, rows int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE load_log SET status = ?, completed_at = ?,
		 files_processed = ?, files_skipped = ?, rows_upserted = ? WHERE id = ?`,
		LoadStatusComplete, time.Now().UTC(), processed, skipped, rows, loadID,
	)
	return eris.Wrapf(err, "sqlite: complete load %s", loadID)
}

func (s *SQLiteStore) FailLoad(ctx context.Context, loadID string, loadErr error) error {
	msg := ""
	if loadErr != nil {
		msg = loadErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE load_log SET status = ?, completed_at = ?, error = ? WHERE id = ?",
		LoadStatusFailed, time.Now().UTC(), msg, loadID,
	)
	return eris.Wrapf(err, "sqlite: fail load %s", loadID)
}

func (s *SQLiteStore) RecentLoads(ctx context.Context, limit int) ([]LoadEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, started_at, completed_at, files_processed, files_skipped, rows_upserted, COALESCE(error, '')
		 FROM load_log ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query recent loads")
	}
	defer rows.Close()

	var entries []LoadEntry
	for rows.Next() {
		var e LoadEntry
		if err := rows.Scan(&e.ID, &e.Status, &e.StartedAt, &e.CompletedAt,
			&e.FilesProcessed, &e.FilesSkipped, &e.RowsUpserted, &e.Error); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan load entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
