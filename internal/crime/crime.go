// Package crime aggregates raw crime-source rows into one violent-crime
// total and population snapshot per state over the study window.
package crime

import (
	"strings"

	"github.com/sells-group/statemetrics/internal/model"
	"github.com/sells-group/statemetrics/pkg/fbi"
)

// violentOffenses is the fixed set of offense labels counted as violent
// crime, matching the Crime Data Explorer's violent-crime rollup.
var violentOffenses = map[string]bool{
	"aggravated-assault": true,
	"homicide":           true,
	"rape":               true,
	"rape-legacy":        true,
	"robbery":            true,
}

// IsViolent reports whether the offense label counts toward the violent
// crime total.
func IsViolent(offense string) bool {
	return violentOffenses[strings.ToLower(strings.TrimSpace(offense))]
}

// Summary is the per-state crime aggregate. Population is nil when no
// in-window row carried a figure for the state.
type Summary struct {
	TotalViolent   int64
	Population     *int64
	PopulationYear int
}

// Aggregate filters rows to violent offenses inside the window, sums counts
// per state code, and takes the population snapshot from the most recent
// in-window year that reported one. Population is a snapshot, not a flow:
// it is never summed, and when a year reports several conflicting figures
// the largest wins so reruns are deterministic. States absent from the
// source are absent from the map.
func Aggregate(rows []fbi.CrimeRow, w model.Window, warns *model.Warnings) map[string]Summary {
	out := make(map[string]Summary)
	unknownOffenses := make(map[string]bool)

	for _, r := range rows {
		code := strings.ToUpper(strings.TrimSpace(r.State))
		if code == "" {
			warns.Addf("crime", "row with empty state (year %d, offense %q)", r.Year, r.Offense)
			continue
		}
		if !w.ContainsYear(r.Year) {
			continue
		}

		s := out[code]

		if r.Population != nil {
			switch {
			case s.Population == nil, r.Year > s.PopulationYear:
				s.Population = r.Population
				s.PopulationYear = r.Year
			case r.Year == s.PopulationYear && *r.Population > *s.Population:
				s.Population = r.Population
			}
		}

		offense := strings.ToLower(strings.TrimSpace(r.Offense))
		if !violentOffenses[offense] {
			if offense != "" && !unknownOffenses[offense] && !knownNonViolent[offense] {
				unknownOffenses[offense] = true
				warns.Addf("crime", "ignoring unrecognized offense category %q", offense)
			}
			out[code] = s
			continue
		}

		if r.Count < 0 {
			warns.Addf("crime", "%s %d: negative count %d for %s", code, r.Year, r.Count, offense)
			out[code] = s
			continue
		}

		s.TotalViolent += r.Count
		out[code] = s
	}

	return out
}

// knownNonViolent lists property-crime labels the source also reports.
// They are excluded silently rather than flagged as unrecognized.
var knownNonViolent = map[string]bool{
	"arson":               true,
	"burglary":            true,
	"larceny":             true,
	"motor-vehicle-theft": true,
	"property-crime":      true,
}
