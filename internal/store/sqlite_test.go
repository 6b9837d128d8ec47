package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statemetrics/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_WriteAndReadBack(t *testing.T) {
	s := newTestSQLite(t)
	table := testTable()

	require.NoError(t, s.WriteResult(context.Background(), table))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM state_metrics`).Scan(&count))
	assert.Equal(t, 2, count)

	var (
		name  string
		price sql.NullFloat64
		pop   sql.NullInt64
		total int64
		rate  sql.NullFloat64
		rank  sql.NullInt64
	)
	row := s.db.QueryRow(`SELECT state_name, avg_median_price, population_estimate,
		total_violent_crimes, crime_rate_per_100k, crime_rank
		FROM state_metrics WHERE state_code = 'CA'`)
	require.NoError(t, row.Scan(&name, &price, &pop, &total, &rate, &rank))
	assert.Equal(t, "California", name)
	assert.True(t, price.Valid)
	assert.InDelta(t, 510000, price.Float64, 0.001)
	assert.Equal(t, int64(39000000), pop.Int64)
	assert.Equal(t, int64(150000), total)
	assert.InDelta(t, 384.62, rate.Float64, 0.001)
	assert.Equal(t, int64(1), rank.Int64)
}

func TestSQLiteStore_UndefinedMetricsStoredAsNull(t *testing.T) {
	s := newTestSQLite(t)

	require.NoError(t, s.WriteResult(context.Background(), testTable()))

	var (
		price sql.NullFloat64
		pop   sql.NullInt64
		total int64
		rate  sql.NullFloat64
		rank  sql.NullInt64
		ratio sql.NullFloat64
	)
	row := s.db.QueryRow(`SELECT avg_median_price, population_estimate,
		total_violent_crimes, crime_rate_per_100k, crime_rank, crime_price_ratio
		FROM state_metrics WHERE state_code = 'WY'`)
	require.NoError(t, row.Scan(&price, &pop, &total, &rate, &rank, &ratio))
	assert.False(t, price.Valid, "undefined price must be NULL, never 0")
	assert.False(t, pop.Valid)
	assert.Equal(t, int64(0), total)
	assert.False(t, rate.Valid)
	assert.False(t, rank.Valid)
	assert.False(t, ratio.Valid)
}

func TestSQLiteStore_RerunReplacesRows(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.WriteResult(ctx, testTable()))

	second := &model.ResultTable{
		RunID:       "run-456",
		GeneratedAt: testTable().GeneratedAt,
		Records: []model.StateRecord{
			{StateName: "Texas", StateCode: "TX"},
		},
	}
	require.NoError(t, s.WriteResult(ctx, second))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM state_metrics`).Scan(&count))
	assert.Equal(t, 1, count, "rerun replaces, never appends")

	var runID string
	require.NoError(t, s.db.QueryRow(`SELECT run_id FROM run_summary`).Scan(&runID))
	assert.Equal(t, "run-456", runID)
}

func TestSQLiteStore_SummaryRow(t *testing.T) {
	s := newTestSQLite(t)
	table := testTable()

	require.NoError(t, s.WriteResult(context.Background(), table))

	var (
		corr                sql.NullFloat64
		statesTotal, rp, rc int
	)
	row := s.db.QueryRow(`SELECT correlation, states_total, states_ranked_price, states_ranked_crime
		FROM run_summary WHERE run_id = ?`, table.RunID)
	require.NoError(t, row.Scan(&corr, &statesTotal, &rp, &rc))
	assert.InDelta(t, 0.42, corr.Float64, 0.001)
	assert.Equal(t, 2, statesTotal)
	assert.Equal(t, 1, rp)
	assert.Equal(t, 1, rc)
}
