package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/sim"
)

var builders = map[string]func() sim.Metric{
	"peak_E":           func() sim.Metric { return NewPeak(epidemic.E) },
	"peak_I":           func() sim.Metric { return NewPeak(epidemic.I) },
	"peak_time_I":      func() sim.Metric { return NewPeakTime(epidemic.I) },
	"final_S":          func() sim.Metric { return NewFinal(epidemic.S) },
	"final_R":          func() sim.Metric { return NewFinal(epidemic.R) },
	"population_drift": func() sim.Metric { return NewPopulationDrift() },
	"non_negative":     func() sim.Metric { return NewNonNegative(1e-9) },
}

// New returns a fresh metric by name.
func New(name string) (sim.Metric, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return b(), nil
}

func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Standard is the set attached to every scenario run.
func Standard() []sim.Metric {
	out := make([]sim.Metric, 0, len(builders))
	for _, name := range Names() {
		out = append(out, builders[name]())
	}
	return out
}
