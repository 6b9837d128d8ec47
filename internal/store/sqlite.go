package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/statemetrics/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS state_metrics (
	state_code           TEXT PRIMARY KEY,
	state_name           TEXT NOT NULL,
	avg_median_price     REAL,
	population_estimate  INTEGER,
	total_violent_crimes INTEGER NOT NULL DEFAULT 0,
	crime_rate_per_100k  REAL,
	crime_rank           INTEGER,
	price_rank           INTEGER,
	crime_price_ratio    REAL,
	run_id               TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_summary (
	run_id              TEXT PRIMARY KEY,
	correlation         REAL,
	states_total        INTEGER NOT NULL,
	states_ranked_price INTEGER NOT NULL,
	states_ranked_crime INTEGER NOT NULL,
	generated_at        DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_state_metrics_crime_rank ON state_metrics(crime_rank);
CREATE INDEX IF NOT EXISTS idx_state_metrics_price_rank ON state_metrics(price_rank);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// WriteResult replaces prior rows with the given table inside a single
// transaction, so a failed run never leaves a half-written table behind.
func (s *SQLiteStore) WriteResult(ctx context.Context, table *model.ResultTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{`DELETE FROM state_metrics`, `DELETE FROM run_summary`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return eris.Wrapf(err, "sqlite: exec %s", stmt)
		}
	}

	for _, r := range table.Records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO state_metrics (
				state_code, state_name, avg_median_price, population_estimate,
				total_violent_crimes, crime_rate_per_100k, crime_rank, price_rank,
				crime_price_ratio, run_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.StateCode, r.StateName, r.AvgMedianPrice, r.PopulationEstimate,
			r.TotalViolentCrimes, r.CrimeRatePer100k, r.CrimeRank, r.PriceRank,
			r.CrimePriceRatio, table.RunID,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert state %s", r.StateCode)
		}
	}

	rankedPrice, rankedCrime := countRanked(table.Records)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO run_summary (run_id, correlation, states_total, states_ranked_price, states_ranked_crime, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		table.RunID, table.Correlation, len(table.Records), rankedPrice, rankedCrime, table.GeneratedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert summary")
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func countRanked(records []model.StateRecord) (price, crime int) {
	for _, r := range records {
		if r.PriceRank != nil {
			price++
		}
		if r.CrimeRank != nil {
			crime++
		}
	}
	return price, crime
}
