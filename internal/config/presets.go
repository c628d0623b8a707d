package config

import (
	"sort"

	"github.com/san-kum/seirsim/internal/scenario"
)

var Presets = map[string]scenario.Spec{
	"baseline": scenario.Baseline(),
	"hygiene":  scenario.Intervention(),
	"closed":   scenario.Closed(),
	"carved":   carved(),
	"strict":   strict(),
	"long":     long(),
}

func carved() scenario.Spec {
	s := scenario.Baseline()
	s.Name = "carved"
	s.Label = "Baseline, E0 taken from S0"
	s.CarveExposed = true
	return s
}

func strict() scenario.Spec {
	s := scenario.Intervention()
	s.Name = "strict"
	s.Label = "Hygiene, 30% compliance"
	s.Hygiene.CompliantFraction = 0.3
	return s
}

func long() scenario.Spec {
	s := scenario.Baseline()
	s.Name = "long"
	s.Label = "Baseline, one year"
	s.Grid = scenario.GridSpec{Start: 0, Stop: 365, Points: 366}
	return s
}

// GetPreset returns a copy that the caller may modify.
func GetPreset(name string) (scenario.Spec, bool) {
	spec, ok := Presets[name]
	if !ok {
		return scenario.Spec{}, false
	}
	if spec.Hygiene != nil {
		h := *spec.Hygiene
		spec.Hygiene = &h
	}
	return spec, true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
