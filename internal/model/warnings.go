package model

import (
	"fmt"

	"go.uber.org/zap"
)

// Warning records a single data-quality problem found during ingestion or
// aggregation. Warnings are never fatal; they accumulate and are reported
// at end of run.
type Warning struct {
	Source string // "housing", "crime", "merge"
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Source, w.Detail)
}

// Warnings accumulates data-quality warnings across pipeline stages.
type Warnings struct {
	items []Warning
}

// Addf appends a formatted warning and logs it at Warn level.
func (ws *Warnings) Addf(source, format string, args ...any) {
	w := Warning{Source: source, Detail: fmt.Sprintf(format, args...)}
	ws.items = append(ws.items, w)
	zap.L().Warn("data quality warning",
		zap.String("source", w.Source),
		zap.String("detail", w.Detail),
	)
}

// Items returns the accumulated warnings in order of occurrence.
func (ws *Warnings) Items() []Warning {
	return ws.items
}

// Len returns the number of accumulated warnings.
func (ws *Warnings) Len() int { return len(ws.items) }

// LogSummary emits the end-of-run warning summary.
func (ws *Warnings) LogSummary() {
	if len(ws.items) == 0 {
		zap.L().Info("no data quality warnings")
		return
	}
	zap.L().Warn("data quality warning summary", zap.Int("count", len(ws.items)))
	for _, w := range ws.items {
		zap.L().Warn("  " + w.String())
	}
}
