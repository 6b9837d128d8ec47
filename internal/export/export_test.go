package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statemetrics/internal/model"
)

func exportTable() *model.ResultTable {
	return &model.ResultTable{
		RunID:       "run-abc",
		GeneratedAt: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		Correlation: model.Float64Ptr(0.123456789),
		Records: []model.StateRecord{
			{
				StateName:          "California",
				StateCode:          "CA",
				AvgMedianPrice:     model.Float64Ptr(510000.006),
				PopulationEstimate: model.Int64Ptr(39000000),
				TotalViolentCrimes: 150000,
				CrimeRatePer100k:   model.Float64Ptr(384.61538),
				CrimeRank:          model.IntPtr(1),
				PriceRank:          model.IntPtr(1),
				CrimePriceRatio:    model.Float64Ptr(0.0007541478),
			},
			{
				StateName: "Wyoming",
				StateCode: "WY",
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged_data.csv")
	require.NoError(t, WriteCSV(exportTable(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvColumns, rows[0])
	assert.Equal(t, []string{"CA", "California", "510000.01", "39000000", "150000", "384.62", "1", "1", "0.000754"}, rows[1])
	assert.Equal(t, []string{"WY", "Wyoming", "", "", "0", "", "", "", ""}, rows[2],
		"undefined metrics must be empty cells, never zeros")
}

func TestWriteCSV_Deterministic(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.csv")
	p2 := filepath.Join(dir, "b.csv")
	require.NoError(t, WriteCSV(exportTable(), p1))
	require.NoError(t, WriteCSV(exportTable(), p2))

	b1, err := os.ReadFile(p1)
	require.NoError(t, err)
	b2, err := os.ReadFile(p2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged_data.json")
	require.NoError(t, WriteJSON(exportTable(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got model.ResultTable
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got.Records, 2)

	assert.Equal(t, "run-abc", got.RunID)
	require.NotNil(t, got.Correlation)
	assert.InDelta(t, 0.1235, *got.Correlation, 1e-9, "correlation rounds to 4 decimals")

	ca := got.Records[0]
	require.NotNil(t, ca.AvgMedianPrice)
	assert.InDelta(t, 510000.01, *ca.AvgMedianPrice, 1e-9)
	require.NotNil(t, ca.CrimeRatePer100k)
	assert.InDelta(t, 384.62, *ca.CrimeRatePer100k, 1e-9)
	require.NotNil(t, ca.CrimePriceRatio)
	assert.InDelta(t, 0.000754, *ca.CrimePriceRatio, 1e-9)

	wy := got.Records[1]
	assert.Nil(t, wy.AvgMedianPrice, "undefined metrics serialize as null")
	assert.Nil(t, wy.CrimeRatePer100k)
	assert.Nil(t, wy.CrimeRank)
}

func TestWriteScatterPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crime_vs_price_scatter.png")
	require.NoError(t, WriteScatterPlot(exportTable(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteScatterPlot_AllUndefined(t *testing.T) {
	table := &model.ResultTable{
		RunID: "run-empty",
		Records: []model.StateRecord{
			{StateName: "Wyoming", StateCode: "WY"},
		},
	}

	// No state has both operands; the plot renders empty rather than failing.
	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, WriteScatterPlot(table, path))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestCorrelationCaption(t *testing.T) {
	assert.Equal(t, "correlation: undefined", correlationCaption(nil))
	assert.Equal(t, "correlation: 0.1235", correlationCaption(model.Float64Ptr(0.123456789)))
}
