package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/seirsim/internal/analysis"
	"github.com/san-kum/seirsim/internal/scenario"
	"github.com/san-kum/seirsim/internal/sim"
)

// Comparison is one integrator measured against the reference run.
type Comparison struct {
	Integrator string
	Elapsed    time.Duration
	Steps      int
	Summary    analysis.Summary
	Diff       analysis.Difference
	Err        error
}

// CompareIntegrators runs sc once per integrator. The first name is the
// reference and must succeed; later failures are reported per entry.
func CompareIntegrators(ctx context.Context, registry *Registry, sc *scenario.Scenario, names []string, opts sim.Options) ([]Comparison, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no integrators to compare")
	}

	out := make([]Comparison, 0, len(names))
	var ref *sim.Trajectory

	for i, name := range names {
		integ, err := registry.GetIntegrator(name)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		tr, err := sim.New(sc.System(), integ).Run(ctx, sc.State(), sc.Grid(), opts)
		c := Comparison{Integrator: name, Elapsed: time.Since(start), Err: err}
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("reference %s: %w", name, err)
			}
			out = append(out, c)
			continue
		}

		c.Steps = tr.StepsTaken
		c.Summary = analysis.Summarize(sc, tr)
		if ref == nil {
			ref = tr
		}
		if c.Diff, err = analysis.MaxDifference(ref, tr); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
