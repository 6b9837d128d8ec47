// Package export serializes the result table to delimited text, structured
// records, and a scatter-plot image.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/statemetrics/internal/model"
)

// csvColumns defines the ordered output columns.
var csvColumns = []string{
	"state_code",
	"state_name",
	"avg_median_price",
	"population_estimate",
	"total_violent_crimes",
	"crime_rate_per_100k",
	"crime_rank",
	"price_rank",
	"crime_price_ratio",
}

// WriteCSV writes the result table as delimited text. Undefined metrics
// become empty cells, never zeros. Rows follow the table's state-code
// ordering, so identical input produces byte-identical output.
func WriteCSV(table *model.ResultTable, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	for _, r := range table.Records {
		row := []string{
			r.StateCode,
			r.StateName,
			formatFloat(r.AvgMedianPrice, 2),
			formatInt64(r.PopulationEstimate),
			strconv.FormatInt(r.TotalViolentCrimes, 10),
			formatFloat(r.CrimeRatePer100k, 2),
			formatInt(r.CrimeRank),
			formatInt(r.PriceRank),
			formatFloat(r.CrimePriceRatio, 6),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", r.StateCode)
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}

func formatFloat(v *float64, decimals int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

func formatInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
