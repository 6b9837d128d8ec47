package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/statemetrics/internal/db"
	"github.com/sells-group/statemetrics/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS state_metrics (
	state_code           TEXT PRIMARY KEY,
	state_name           TEXT NOT NULL,
	avg_median_price     DOUBLE PRECISION,
	population_estimate  BIGINT,
	total_violent_crimes BIGINT NOT NULL DEFAULT 0,
	crime_rate_per_100k  DOUBLE PRECISION,
	crime_rank           INTEGER,
	price_rank           INTEGER,
	crime_price_ratio    DOUBLE PRECISION,
	run_id               TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_summary (
	run_id              TEXT PRIMARY KEY,
	correlation         DOUBLE PRECISION,
	states_total        INTEGER NOT NULL,
	states_ranked_price INTEGER NOT NULL,
	states_ranked_crime INTEGER NOT NULL,
	generated_at        TIMESTAMPTZ NOT NULL
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

var stateMetricsColumns = []string{
	"state_code", "state_name", "avg_median_price", "population_estimate",
	"total_violent_crimes", "crime_rate_per_100k", "crime_rank", "price_rank",
	"crime_price_ratio", "run_id",
}

// WriteResult replaces prior rows with the given table: delete then COPY
// inside one transaction.
func (s *PostgresStore) WriteResult(ctx context.Context, table *model.ResultTable) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, stmt := range []string{`DELETE FROM state_metrics`, `DELETE FROM run_summary`} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return eris.Wrapf(err, "postgres: exec %s", stmt)
		}
	}

	rows := make([][]any, 0, len(table.Records))
	for _, r := range table.Records {
		rows = append(rows, []any{
			r.StateCode, r.StateName, r.AvgMedianPrice, r.PopulationEstimate,
			r.TotalViolentCrimes, r.CrimeRatePer100k, r.CrimeRank, r.PriceRank,
			r.CrimePriceRatio, table.RunID,
		})
	}
	if _, err := db.CopyFrom(ctx, tx, "state_metrics", stateMetricsColumns, rows); err != nil {
		return err
	}

	rankedPrice, rankedCrime := countRanked(table.Records)
	_, err = tx.Exec(ctx,
		`INSERT INTO run_summary (run_id, correlation, states_total, states_ranked_price, states_ranked_crime, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		table.RunID, table.Correlation, len(table.Records), rankedPrice, rankedCrime, table.GeneratedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert summary")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
