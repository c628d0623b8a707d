package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/metrics"
	"github.com/san-kum/seirsim/internal/scenario"
	"github.com/san-kum/seirsim/internal/sim"
)

// SweepPoint is the outbreak outcome for one value of the swept input.
type SweepPoint struct {
	Param     float64 `json:"param"`
	Peak      float64 `json:"peak"`
	PeakTime  float64 `json:"peakTime"`
	FinalSize float64 `json:"finalSize"`
}

// SweepRange is an inclusive, evenly spaced set of values.
type SweepRange struct {
	Min, Max float64
	Steps    int
}

func (r SweepRange) Values() []float64 {
	steps := r.Steps
	if steps < 2 {
		steps = 2
	}
	return dynamo.Linspace(r.Min, r.Max, steps)
}

type sweepInput struct {
	sys  dynamo.System
	x0   dynamo.State
	grid dynamo.Grid
}

// Sweep varies one model parameter of sc. Each value runs on its own
// cloned system and integrator.
func Sweep(ctx context.Context, sc *scenario.Scenario, param string, r SweepRange, newIntegrator func() dynamo.Integrator, opts sim.Options) ([]SweepPoint, error) {
	if _, ok := sc.Params().Map()[param]; !ok {
		return nil, &dynamo.InvalidParameterError{Name: param, Value: math.NaN(), Reason: "unknown parameter"}
	}
	return sweep(ctx, r.Values(), newIntegrator, opts, func(v float64) (sweepInput, error) {
		sys := sc.System()
		if err := sys.SetParam(param, v); err != nil {
			return sweepInput{}, err
		}
		return sweepInput{sys: sys, x0: sc.State(), grid: sc.Grid()}, nil
	})
}

// SweepHygiene varies the compliant fraction of a spec, rebuilding the
// initial compartments for every value.
func SweepHygiene(ctx context.Context, spec scenario.Spec, r SweepRange, newIntegrator func() dynamo.Integrator, opts sim.Options) ([]SweepPoint, error) {
	return sweep(ctx, r.Values(), newIntegrator, opts, func(v float64) (sweepInput, error) {
		s := spec
		h := scenario.DefaultHygiene()
		if spec.Hygiene != nil {
			*h = *spec.Hygiene
		}
		h.CompliantFraction = v
		s.Hygiene = h

		sc, err := s.Build()
		if err != nil {
			return sweepInput{}, err
		}
		return sweepInput{sys: sc.System(), x0: sc.State(), grid: sc.Grid()}, nil
	})
}

func sweep(ctx context.Context, values []float64, newIntegrator func() dynamo.Integrator, opts sim.Options, build func(float64) (sweepInput, error)) ([]SweepPoint, error) {
	results := make([]SweepPoint, len(values))
	errs := make([]error, len(values))

	dynamo.ParallelFor(len(values), 1, func(start, end int) {
		for i := start; i < end; i++ {
			in, err := build(values[i])
			if err != nil {
				errs[i] = err
				continue
			}

			peakI := metrics.NewPeak(epidemic.I)
			s := sim.New(in.sys, newIntegrator())
			s.AddMetric(peakI)

			tr, err := s.Run(ctx, in.x0, in.grid, opts)
			if err != nil {
				errs[i] = err
				continue
			}
			results[i] = SweepPoint{
				Param:     values[i],
				Peak:      peakI.Value(),
				PeakTime:  peakI.Time(),
				FinalSize: tr.Final()[epidemic.R],
			}
		}
	})

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep at %g: %w", values[i], err)
		}
	}
	return results, nil
}

// SweepToASCII plots peak prevalence against the swept value.
func SweepToASCII(points []SweepPoint, caption string, width, height int) string {
	if len(points) == 0 {
		return ""
	}
	peaks := make([]float64, len(points))
	for i, p := range points {
		peaks[i] = p.Peak
	}
	return asciigraph.Plot(peaks,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s (%g .. %g)", caption, points[0].Param, points[len(points)-1].Param)),
	)
}
