// Package model defines the merged per-state record and the result table
// handed to the output writers.
package model

import "time"

// StateRecord is the merged summary for a single U.S. state. Pointer fields
// are optional: nil means the metric is undefined for that state, which is
// distinct from zero.
type StateRecord struct {
	StateName string `json:"state_name"`
	StateCode string `json:"state_code"`

	// AvgMedianPrice is the mean of monthly median sale prices over the
	// study window. Nil when no housing rows fell inside the window.
	AvgMedianPrice *float64 `json:"avg_median_price"`

	// PopulationEstimate is the population snapshot from the most recent
	// in-window year reported by the crime source. Nil when absent.
	PopulationEstimate *int64 `json:"population_estimate"`

	// TotalViolentCrimes sums violent-offense counts over the study window.
	// Zero when no violent rows matched.
	TotalViolentCrimes int64 `json:"total_violent_crimes"`

	// CrimeRatePer100k is TotalViolentCrimes * 100000 / PopulationEstimate.
	// Nil when the population is nil or zero.
	CrimeRatePer100k *float64 `json:"crime_rate_per_100k"`

	// CrimeRank and PriceRank are dense 1-based ranks (descending metric,
	// ties broken by ascending state code). Nil when the metric is undefined.
	CrimeRank *int `json:"crime_rank"`
	PriceRank *int `json:"price_rank"`

	// CrimePriceRatio is CrimeRatePer100k / AvgMedianPrice. Nil when either
	// operand is undefined or the price is zero.
	CrimePriceRatio *float64 `json:"crime_price_ratio"`
}

// ResultTable is the immutable snapshot produced by the merge stage.
// Records are ordered by state code ascending.
type ResultTable struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Records     []StateRecord `json:"records"`

	// Correlation is the Pearson coefficient between average median price
	// and crime rate over records where both are defined. Nil when fewer
	// than two records qualify.
	Correlation *float64 `json:"correlation"`
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
