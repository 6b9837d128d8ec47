package model

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// Window is the inclusive year-month study window over which housing prices
// and crime counts are aggregated.
type Window struct {
	From time.Time // first day of the first month
	To   time.Time // first day of the last month
}

// ParseWindow parses "YYYY-MM" bounds into a Window.
func ParseWindow(from, to string) (Window, error) {
	f, err := time.Parse("2006-01", from)
	if err != nil {
		return Window{}, eris.Wrapf(err, "window: parse from %q", from)
	}
	t, err := time.Parse("2006-01", to)
	if err != nil {
		return Window{}, eris.Wrapf(err, "window: parse to %q", to)
	}
	if t.Before(f) {
		return Window{}, eris.Errorf("window: to %q precedes from %q", to, from)
	}
	return Window{From: f, To: t}, nil
}

// Contains reports whether the given year and month fall inside the window.
func (w Window) Contains(year int, month time.Month) bool {
	m := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return !m.Before(w.From) && !m.After(w.To)
}

// ContainsYear reports whether any month of the given year falls inside the
// window. Crime counts are keyed by year only.
func (w Window) ContainsYear(year int) bool {
	return year >= w.From.Year() && year <= w.To.Year()
}

// FromMonthYear returns the lower bound as "MM-YYYY", the crime API's
// parameter format.
func (w Window) FromMonthYear() string {
	return fmt.Sprintf("%02d-%d", int(w.From.Month()), w.From.Year())
}

// ToMonthYear returns the upper bound as "MM-YYYY".
func (w Window) ToMonthYear() string {
	return fmt.Sprintf("%02d-%d", int(w.To.Month()), w.To.Year())
}
