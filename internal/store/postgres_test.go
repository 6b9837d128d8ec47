package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statemetrics/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func testTable() *model.ResultTable {
	return &model.ResultTable{
		RunID:       "run-123",
		GeneratedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		Correlation: model.Float64Ptr(0.42),
		Records: []model.StateRecord{
			{
				StateName:          "California",
				StateCode:          "CA",
				AvgMedianPrice:     model.Float64Ptr(510000),
				PopulationEstimate: model.Int64Ptr(39000000),
				TotalViolentCrimes: 150000,
				CrimeRatePer100k:   model.Float64Ptr(384.62),
				CrimeRank:          model.IntPtr(1),
				PriceRank:          model.IntPtr(1),
				CrimePriceRatio:    model.Float64Ptr(0.000754),
			},
			{
				StateName: "Wyoming",
				StateCode: "WY",
				// All optional metrics undefined.
			},
		},
	}
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS state_metrics`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WriteResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	table := testTable()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM state_metrics`).
		WillReturnResult(pgxmock.NewResult("DELETE", 51))
	mock.ExpectExec(`DELETE FROM run_summary`).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCopyFrom(pgx.Identifier{"state_metrics"}, stateMetricsColumns).
		WillReturnResult(int64(len(table.Records)))
	mock.ExpectExec(`INSERT INTO run_summary`).
		WithArgs("run-123", table.Correlation, 2, 1, 1, table.GeneratedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, s.WriteResult(context.Background(), table))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_WriteResult_RollsBackOnDeleteError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM state_metrics`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.WriteResult(context.Background(), testTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: exec")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRanked(t *testing.T) {
	price, crime := countRanked(testTable().Records)
	assert.Equal(t, 1, price)
	assert.Equal(t, 1, crime)
}
