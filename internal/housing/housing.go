// Package housing loads raw housing-price rows and aggregates them into one
// average median sale price per state over the study window.
package housing

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/statemetrics/internal/fetcher"
	"github.com/sells-group/statemetrics/internal/model"
)

// Column names are a fixed external contract (Redfin export).
const (
	colRegion = "Region"
	colPeriod = "Month of Period End"
	colPrice  = "Median Sale Price"
)

// Row is one parsed housing record: a state, the month the period ends,
// and the median sale price for that month.
type Row struct {
	StateName   string
	Year        int
	Month       time.Month
	MedianPrice float64
}

type columnIndex struct {
	region, period, price int
}

// Load reads the housing file at path and returns parsed rows. CSV and TSV
// inputs may be UTF-8 or UTF-16 (Redfin exports the latter); .xlsx inputs
// are read from the named sheet, or the first sheet when sheetName is
// empty. Rows failing the schema are skipped with a data-quality warning.
func Load(ctx context.Context, path, sheetName string, warns *model.Warnings) ([]Row, error) {
	var raw [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		raw, err = fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: sheetName})
	default:
		raw, err = readDelimited(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, eris.Errorf("housing: %s is empty", path)
	}

	idx, err := indexColumns(raw[0])
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(raw)-1)
	for i, rec := range raw[1:] {
		row, ok := parseRecord(rec, idx, i+2, warns)
		if ok {
			rows = append(rows, row)
		}
	}

	zap.L().Info("loaded housing rows",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("skipped", len(raw)-1-len(rows)),
	)
	return rows, nil
}

// readDelimited reads a CSV or TSV file in full, picking the delimiter from
// the header line. The table is small (states x months), so one pass into
// memory is fine.
func readDelimited(ctx context.Context, path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "housing: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	decoded, err := fetcher.DecodeReader(f)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, eris.Wrapf(err, "housing: read %s", path)
	}

	delim := ','
	if head, _, found := bytes.Cut(data, []byte("\n")); found || len(head) > 0 {
		if bytes.Count(head, []byte("\t")) > bytes.Count(head, []byte(",")) {
			delim = '\t'
		}
	}

	rowCh, errCh := fetcher.StreamCSV(ctx, bytes.NewReader(data), fetcher.CSVOptions{
		Delimiter:  delim,
		LazyQuotes: true,
		TrimSpace:  true,
	})

	var rows [][]string
	for rec := range rowCh {
		rows = append(rows, rec)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return rows, nil
}

func indexColumns(header []string) (columnIndex, error) {
	idx := columnIndex{region: -1, period: -1, price: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case colRegion:
			idx.region = i
		case colPeriod:
			idx.period = i
		case colPrice:
			idx.price = i
		}
	}
	if idx.region < 0 || idx.period < 0 || idx.price < 0 {
		return idx, eris.Errorf("housing: header missing required columns %q, %q, %q",
			colRegion, colPeriod, colPrice)
	}
	return idx, nil
}

// parseRecord applies the strict per-row schema check. Failures are flagged
// as data-quality warnings, never fatal.
func parseRecord(rec []string, idx columnIndex, line int, warns *model.Warnings) (Row, bool) {
	max := idx.region
	for _, i := range []int{idx.period, idx.price} {
		if i > max {
			max = i
		}
	}
	if len(rec) <= max {
		warns.Addf("housing", "line %d: %d fields, need at least %d", line, len(rec), max+1)
		return Row{}, false
	}

	state := strings.TrimSpace(rec[idx.region])
	if state == "" {
		warns.Addf("housing", "line %d: empty state", line)
		return Row{}, false
	}

	year, month, err := parsePeriod(rec[idx.period])
	if err != nil {
		warns.Addf("housing", "line %d: bad period %q", line, rec[idx.period])
		return Row{}, false
	}

	price, err := ParsePrice(rec[idx.price])
	if err != nil {
		warns.Addf("housing", "line %d: bad price %q", line, rec[idx.price])
		return Row{}, false
	}

	return Row{StateName: state, Year: year, Month: month, MedianPrice: price}, true
}

var periodLayouts = []string{"January 2006", "2006-01", "2006-01-02"}

func parsePeriod(s string) (int, time.Month, error) {
	s = strings.TrimSpace(s)
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), t.Month(), nil
		}
	}
	return 0, 0, eris.Errorf("housing: unrecognized period %q", s)
}

// ParsePrice parses price strings like "$510K", "$1.2M", "512,300", or a
// plain number. The value must be positive.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, eris.New("housing: empty price")
	}

	mult := 1.0
	switch s[len(s)-1] {
	case 'K', 'k':
		mult = 1e3
		s = s[:len(s)-1]
	case 'M', 'm':
		mult = 1e6
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "housing: parse price %q", s)
	}
	v *= mult
	if v <= 0 {
		return 0, eris.Errorf("housing: non-positive price %v", v)
	}
	return v, nil
}

// Aggregate computes the arithmetic mean of in-window median prices per
// state name. States with zero in-window rows are absent from the map:
// their average is undefined, not zero.
func Aggregate(rows []Row, w model.Window) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, r := range rows {
		if !w.Contains(r.Year, r.Month) {
			continue
		}
		sums[r.StateName] += r.MedianPrice
		counts[r.StateName]++
	}

	avgs := make(map[string]float64, len(sums))
	for state, sum := range sums {
		avgs[state] = sum / float64(counts[state])
	}
	return avgs
}
