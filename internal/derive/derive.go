// Package derive joins the housing and crime aggregates over the state
// reference list and computes the derived metrics: crime rate per 100k,
// dense rankings, crime/price ratio, and the price-rate correlation.
package derive

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/statemetrics/internal/crime"
	"github.com/sells-group/statemetrics/internal/model"
	"github.com/sells-group/statemetrics/internal/reference"
)

// Merge performs an outer join of the two aggregates over the reference
// list: every reference state yields exactly one record regardless of
// presence in either source. Source entries matching no reference state are
// flagged and dropped, never silently rowed.
func Merge(refs []reference.State, housingAvgs map[string]float64, crimeSums map[string]crime.Summary, warns *model.Warnings) []model.StateRecord {
	records := make([]model.StateRecord, 0, len(refs))
	housingSeen := make(map[string]bool, len(housingAvgs))
	crimeSeen := make(map[string]bool, len(crimeSums))

	for _, ref := range refs {
		rec := model.StateRecord{
			StateName: ref.Name,
			StateCode: ref.Code,
		}

		if avg, ok := housingAvgs[ref.Name]; ok {
			rec.AvgMedianPrice = model.Float64Ptr(avg)
			housingSeen[ref.Name] = true
		}

		if sum, ok := crimeSums[ref.Code]; ok {
			rec.TotalViolentCrimes = sum.TotalViolent
			rec.PopulationEstimate = sum.Population
			crimeSeen[ref.Code] = true
		}

		rec.CrimeRatePer100k = ratePer100k(rec.TotalViolentCrimes, rec.PopulationEstimate)
		rec.CrimePriceRatio = ratio(rec.CrimeRatePer100k, rec.AvgMedianPrice)

		records = append(records, rec)
	}

	for name := range housingAvgs {
		if !housingSeen[name] {
			warns.Addf("merge", "housing state %q matches no reference state", name)
		}
	}
	for code := range crimeSums {
		if !crimeSeen[code] {
			warns.Addf("merge", "crime state %q matches no reference state", code)
		}
	}

	rankRecords(records)
	return records
}

// ratePer100k computes total * 100000 / population. The rate is undefined
// (nil), never infinity, when the population is missing or zero.
func ratePer100k(total int64, population *int64) *float64 {
	if population == nil || *population == 0 {
		return nil
	}
	return model.Float64Ptr(float64(total) * 100000 / float64(*population))
}

// ratio computes rate / price, undefined when either operand is undefined
// or the price is zero.
func ratio(rate, price *float64) *float64 {
	if rate == nil || price == nil || *price == 0 {
		return nil
	}
	return model.Float64Ptr(*rate / *price)
}

// rankRecords assigns dense 1..K ranks independently for crime rate and
// price, descending, over defined values only. Ties break on ascending
// state code so reruns are byte-identical. Undefined metrics get no rank.
func rankRecords(records []model.StateRecord) {
	assign := func(metric func(*model.StateRecord) *float64, set func(*model.StateRecord, int)) {
		idx := make([]int, 0, len(records))
		for i := range records {
			if metric(&records[i]) != nil {
				idx = append(idx, i)
			}
		}
		sort.Slice(idx, func(a, b int) bool {
			va, vb := *metric(&records[idx[a]]), *metric(&records[idx[b]])
			if va != vb {
				return va > vb
			}
			return records[idx[a]].StateCode < records[idx[b]].StateCode
		})
		for rank, i := range idx {
			set(&records[i], rank+1)
		}
	}

	assign(
		func(r *model.StateRecord) *float64 { return r.CrimeRatePer100k },
		func(r *model.StateRecord, rank int) { r.CrimeRank = model.IntPtr(rank) },
	)
	assign(
		func(r *model.StateRecord) *float64 { return r.AvgMedianPrice },
		func(r *model.StateRecord, rank int) { r.PriceRank = model.IntPtr(rank) },
	)
}

// Correlation computes the Pearson coefficient between average median price
// and crime rate over the records where both are defined. Fewer than two
// qualifying records makes the coefficient undefined.
func Correlation(records []model.StateRecord, warns *model.Warnings) *float64 {
	var prices, rates []float64
	for _, r := range records {
		if r.AvgMedianPrice != nil && r.CrimeRatePer100k != nil {
			prices = append(prices, *r.AvgMedianPrice)
			rates = append(rates, *r.CrimeRatePer100k)
		}
	}

	if len(prices) < 2 {
		warns.Addf("merge", "correlation undefined: only %d state(s) with both metrics", len(prices))
		return nil
	}

	corr := stat.Correlation(prices, rates, nil)
	zap.L().Info("computed correlation",
		zap.Float64("coefficient", corr),
		zap.Int("states", len(prices)),
	)
	return model.Float64Ptr(corr)
}

// BuildTable finalizes the immutable result table: records ordered by state
// code ascending, plus the summary correlation.
func BuildTable(records []model.StateRecord, warns *model.Warnings) *model.ResultTable {
	sorted := make([]model.StateRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(a, b int) bool {
		return sorted[a].StateCode < sorted[b].StateCode
	})

	return &model.ResultTable{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Records:     sorted,
		Correlation: Correlation(sorted, warns),
	}
}
