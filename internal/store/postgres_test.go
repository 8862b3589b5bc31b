package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return New(mock), mock
}

func TestMigrate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS search_runs`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_search_runs_created`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_search_runs_reason`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_Error(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))

	err := s.Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store: migrate")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun(t *testing.T) {
	s, mock := newMockStore(t)
	lat, lon := 39.78, -89.65
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO search_runs .* ON CONFLICT \(run_id\) DO NOTHING`).
		WithArgs("run-1", "1 Main St", &lat, &lon, 12, "complete", 3, int64(1250), at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.RecordRun(context.Background(), Run{
		RunID:         "run-1",
		Address:       "1 Main St",
		Lat:           &lat,
		Lon:           &lon,
		Neighborhoods: 12,
		Reason:        "complete",
		FailedFields:  3,
		Duration:      1250 * time.Millisecond,
		CreatedAt:     at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun_DefaultsCreatedAt(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO search_runs`).
		WithArgs("run-2", "nowhere", pgxmock.AnyArg(), pgxmock.AnyArg(), 0, "geocode_failed", 0, int64(500), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.RecordRun(context.Background(), Run{RunID: "run-2", Address: "nowhere", Reason: "geocode_failed", Duration: 500 * time.Millisecond})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun_Error(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO search_runs`).WillReturnError(errors.New("connection reset"))

	err := s.RecordRun(context.Background(), Run{RunID: "run-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record run run-3")
}
