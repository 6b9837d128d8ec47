// Package reference holds the canonical list of U.S. states used to join
// the housing and crime sources. The reference list defines completeness
// for the merged table: every listed state gets exactly one output row.
package reference

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed states.yaml
var statesYAML []byte

// State identifies one U.S. state across both data sources.
type State struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
	FIPS string `yaml:"fips"`

	// District marks non-state entries (D.C.) that are excluded unless
	// explicitly requested.
	District bool `yaml:"district"`
}

type statesFile struct {
	States []State `yaml:"states"`
}

var (
	loadOnce sync.Once
	loaded   []State
	loadErr  error
)

func load() ([]State, error) {
	loadOnce.Do(func() {
		var f statesFile
		if err := yaml.Unmarshal(statesYAML, &f); err != nil {
			loadErr = eris.Wrap(err, "reference: unmarshal states")
			return
		}
		loaded = f.States
	})
	return loaded, loadErr
}

// List returns the reference states in state-code ascending order as stored.
// District entries (D.C.) are included only when includeDC is true.
func List(includeDC bool) ([]State, error) {
	all, err := load()
	if err != nil {
		return nil, err
	}
	out := make([]State, 0, len(all))
	for _, s := range all {
		if s.District && !includeDC {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// ByCode returns the state with the given two-letter code, or false.
// Matching is case-insensitive.
func ByCode(code string) (State, bool) {
	all, err := load()
	if err != nil {
		return State{}, false
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, s := range all {
		if s.Code == code {
			return s, true
		}
	}
	return State{}, false
}

// ByName returns the state with the given full name, or false.
// Matching is case-insensitive and ignores surrounding whitespace.
func ByName(name string) (State, bool) {
	all, err := load()
	if err != nil {
		return State{}, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range all {
		if strings.ToLower(s.Name) == name {
			return s, true
		}
	}
	return State{}, false
}
