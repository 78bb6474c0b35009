package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbdaten/qbsync/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "qb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testHospital(street string, levels []string) model.Hospital {
	return model.Hospital{
		ReportID:         model.ReportID{IKNumber: 260100023, LocationID: 1},
		Street:           street,
		City:             "Essen",
		HouseNumber:      "12a",
		ZipCode:          45127,
		ProvidesServices: levels != nil,
		Levels:           levels,
	}
}

func TestSQLite_RequiresPath(t *testing.T) {
	_, err := NewSQLite("")
	require.Error(t, err)
}

func TestSQLiteUpsert_InsertAndOverwrite(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	n, err := s.UpsertHospitals(ctx, []model.Hospital{
		testHospital("Lindenallee", []string{"Basisnotfallversorgung", "Erweiterte_Notfallversorgung"}),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Same key again: overwrite, no duplicate, no conflict error.
	n, err = s.UpsertHospitals(ctx, []model.Hospital{testHospital("Neue Lindenallee", nil)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := s.CountHospitals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var street string
	var provides bool
	var levels any
	err = s.db.QueryRowContext(ctx,
		"SELECT street, provides_emergency_services, levels FROM hospitals WHERE ik_number = ? AND location_id = ?",
		260100023, 1,
	).Scan(&street, &provides, &levels)
	require.NoError(t, err)
	assert.Equal(t, "Neue Lindenallee", street)
	assert.False(t, provides)
	assert.Nil(t, levels)
}

func TestSQLiteUpsert_LevelsStoredAsJSON(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.UpsertHospitals(ctx, []model.Hospital{
		testHospital("Lindenallee", []string{"Umfassende_Notfallversorgung", "Basisnotfallversorgung"}),
	})
	require.NoError(t, err)

	var levels string
	err = s.db.QueryRowContext(ctx, "SELECT levels FROM hospitals").Scan(&levels)
	require.NoError(t, err)
	assert.JSONEq(t, `["Umfassende_Notfallversorgung","Basisnotfallversorgung"]`, levels)
}

func TestSQLiteUpsert_Empty(t *testing.T) {
	s := newTestSQLite(t)
	n, err := s.UpsertHospitals(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLiteLoadLog(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	id, err := s.StartLoad(ctx)
	require.NoError(t, err)
	require.NoError(t, s.CompleteLoad(ctx, id, 12, 3, 9))

	id2, err := s.StartLoad(ctx)
	require.NoError(t, err)
	require.NoError(t, s.FailLoad(ctx, id2, assert.AnError))

	entries, err := s.RecentLoads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[string]LoadEntry{entries[0].ID: entries[0], entries[1].ID: entries[1]}

	done := byID[id]
	assert.Equal(t, LoadStatusComplete, done.Status)
	assert.Equal(t, 12, done.FilesProcessed)
	assert.Equal(t, 3, done.FilesSkipped)
	assert.Equal(t, int64(9), done.RowsUpserted)
	assert.NotNil(t, done.CompletedAt)

	failed := byID[id2]
	assert.Equal(t, LoadStatusFailed, failed.Status)
	assert.Equal(t, assert.AnError.Error(), failed.Error)
}
