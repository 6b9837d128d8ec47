package export

import (
	"encoding/json"
	"math"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/statemetrics/internal/model"
)

// WriteJSON writes the result table as a structured record sequence.
// Undefined metrics serialize as null. Money and rates are rounded to 2
// decimal places, the ratio to 6, and the correlation to 4, so reruns on
// identical input are byte-identical.
func WriteJSON(table *model.ResultTable, outputPath string) error {
	out := model.ResultTable{
		RunID:       table.RunID,
		GeneratedAt: table.GeneratedAt,
		Records:     make([]model.StateRecord, len(table.Records)),
		Correlation: roundPtr(table.Correlation, 4),
	}
	for i, r := range table.Records {
		r.AvgMedianPrice = roundPtr(r.AvgMedianPrice, 2)
		r.CrimeRatePer100k = roundPtr(r.CrimeRatePer100k, 2)
		r.CrimePriceRatio = roundPtr(r.CrimePriceRatio, 6)
		out.Records[i] = r
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create json")
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return eris.Wrap(err, "export: encode json")
	}

	return eris.Wrap(f.Sync(), "export: sync json")
}

func roundPtr(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	pow := math.Pow(10, float64(decimals))
	return model.Float64Ptr(math.Round(*v*pow) / pow)
}
