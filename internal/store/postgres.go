package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/qbdaten/qbsync/internal/db"
	"github.com/qbdaten/qbsync/internal/model"
)

// PostgresStore implements Store on pgxpool, with rows living in a
// configurable schema. Levels are stored as a TEXT[] so the source tier
// order survives round trips.
type PostgresStore struct {
	pool   db.Pool
	schema string
}

// NewPostgres connects to Postgres and verifies the connection. An
// unreachable store fails here, before any file is processed.
func NewPostgres(ctx context.Context, dsn, schema string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	if schema == "" {
		schema = "public"
	}
	return &PostgresStore{pool: pool, schema: schema}, nil
}

func (s *PostgresStore) table(name string) string {
	return s.schema + "." + name
}

// hospitalColumns is the full column list of the hospitals table; the first
// two form the composite primary key.
var hospitalColumns = []string{
	"ik_number", "location_id",
	"street", "city", "house_number", "zip_code",
	"provides_emergency_services", "levels",
}

// Migrate creates the target schema and tables if absent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schemaSQL := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{s.schema}.Sanitize())
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return eris.Wrapf(err, "postgres: create schema %s", s.schema)
	}

	tablesSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s.hospitals (
	ik_number                   BIGINT NOT NULL,
	location_id                 BIGINT NOT NULL,
	street                      TEXT NOT NULL,
	city                        TEXT NOT NULL,
	house_number                TEXT NOT NULL,
	zip_code                    INTEGER NOT NULL,
	provides_emergency_services BOOLEAN NOT NULL,
	levels                      TEXT[],
	PRIMARY KEY (ik_number, location_id)
);

CREATE TABLE IF NOT EXISTS %[1]s.load_log (
	id              TEXT PRIMARY KEY,
	status          TEXT NOT NULL DEFAULT 'running',
	started_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at    TIMESTAMPTZ,
	files_processed INTEGER NOT NULL DEFAULT 0,
	files_skipped   INTEGER NOT NULL DEFAULT 0,
	rows_upserted   BIGINT NOT NULL DEFAULT 0,
	error           TEXT
);
`, pgx.Identifier{s.schema}.Sanitize())
	if _, err := s.pool.Exec(ctx, tablesSQL); err != nil {
		return eris.Wrap(err, "postgres: create tables")
	}
	return nil
}

// UpsertHospitals applies the batch with one keyed bulk upsert.
func (s *PostgresStore) UpsertHospitals(ctx context.Context, hospitals []model.Hospital) (int64, error) {
	rows := make([][]any, 0, len(hospitals))
	for _, h := range hospitals {
		var levels any
		if h.Levels != nil {
			levels = h.Levels
		}
		rows = append(rows, []any{
			h.IKNumber, h.LocationID,
			h.Street, h.City, h.HouseNumber, h.ZipCode,
			h.ProvidesServices, levels,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        s.table("hospitals"),
		Columns:      hospitalColumns,
		ConflictKeys: []string{"ik_number", "location_id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert hospitals")
	}
	return n, nil
}

func (s *PostgresStore) CountHospitals(ctx context.Context) (int64, error) {
	var n int64
	sql := fmt.Sprintf("SELECT count(*) FROM %s", quoteQualified(s.schema, "hospitals"))
	if err := s.pool.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count hospitals")
	}
	return n, nil
}

// StartLoad records the beginning of a load run and returns its ID.
func (s *PostgresStore) StartLoad(ctx context.Context) (string, error) {
	id := uuid.New().String()
	sql := fmt.Sprintf(
		"INSERT INTO %s (id, status, started_at) VALUES ($1, $2, now())",
		quoteQualified(s.schema, "load_log"),
	)
	if _, err := s.pool.Exec(ctx, sql, id, LoadStatusRunning); err != nil {
		return "", eris.Wrap(err, "postgres: start load")
	}
	return id, nil
}

// CompleteLoad marks a load run as successfully completed.
func (s *PostgresStore) CompleteLoad(ctx context.Context, loadID string, processed, skipped int, rows int64) error {
	sql := fmt.Sprintf(
		`UPDATE %s SET status = $1, completed_at = now(),
		 files_processed = $2, files_skipped = $3, rows_upserted = $4 WHERE id = $5`,
		quoteQualified(s.schema, "load_log"),
	)
	if _, err := s.pool.Exec(ctx, sql, LoadStatusComplete, processed, skipped, rows, loadID); err != nil {
		return eris.Wrapf(err, "postgres: complete load %s", loadID)
	}
	return nil
}

// FailLoad marks a load run as failed and records the error text.
func (s *PostgresStore) FailLoad(ctx context.Context, loadID string, loadErr error) error {
	msg := ""
	if loadErr != nil {
		msg = loadErr.Error()
	}
	sql := fmt.Sprintf(
		"UPDATE %s SET status = $1, completed_at = now(), error = $2 WHERE id = $3",
		quoteQualified(s.schema, "load_log"),
	)
	if _, err := s.pool.Exec(ctx, sql, LoadStatusFailed, msg, loadID); err != nil {
		return eris.Wrapf(err, "postgres: fail load %s", loadID)
	}
	return nil
}

// RecentLoads returns the most recent load runs, newest first.
func (s *PostgresStore) RecentLoads(ctx context.Context, limit int) ([]LoadEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	sql := fmt.Sprintf(
		`SELECT id, status, started_at, completed_at, files_processed, files_skipped, rows_upserted, COALESCE(error, '')
		 FROM %s ORDER BY started_at DESC LIMIT $1`,
		quoteQualified(s.schema, "load_log"),
	)
	rows, err := s.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query recent loads")
	}
	defer rows.Close()

	var entries []LoadEntry
	for rows.Next() {
		var e LoadEntry
		if err := rows.Scan(&e.ID, &e.Status, &e.StartedAt, &e.CompletedAt,
			&e.FilesProcessed, &e.FilesSkipped, &e.RowsUpserted, &e.Error); err != nil {
			return nil, eris.Wrap(err, "postgres: scan load entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func quoteQualified(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}
