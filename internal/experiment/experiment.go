package experiment

import (
	"context"
	"fmt"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/seirsim/internal/analysis"
	"github.com/san-kum/seirsim/internal/render"
	"github.com/san-kum/seirsim/internal/scenario"
	"github.com/san-kum/seirsim/internal/sim"
	"github.com/san-kum/seirsim/internal/storage"
)

// Result is one finished scenario run.
type Result struct {
	Scenario   *scenario.Scenario
	Trajectory *sim.Trajectory
	Summary    analysis.Summary
	// RunID is set when the run was persisted.
	RunID string
}

// Runner wires scenario construction, integration, logging, rendering and
// storage together.
type Runner struct {
	registry    *Registry
	integrator  string
	opts        sim.Options
	logger      kitlog.Logger
	store       *storage.Store
	newRenderer func(sc *scenario.Scenario) (render.Renderer, error)
	workers     int
}

type Option func(*Runner)

func WithIntegrator(name string) Option {
	return func(r *Runner) { r.integrator = name }
}

func WithOptions(opts sim.Options) Option {
	return func(r *Runner) { r.opts = opts }
}

func WithLogger(l kitlog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func WithStore(s *storage.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithWorkers bounds RunAll's concurrency; n <= 0 means unbounded.
func WithWorkers(n int) Option { return func(r *Runner) { r.workers = n } }

// WithRenderer uses the same renderer for every scenario.
func WithRenderer(rd render.Renderer) Option {
	return func(r *Runner) {
		r.newRenderer = func(*scenario.Scenario) (render.Renderer, error) { return rd, nil }
	}
}

// WithRendererFactory builds a renderer per scenario, for file outputs.
func WithRendererFactory(fn func(sc *scenario.Scenario) (render.Renderer, error)) Option {
	return func(r *Runner) { r.newRenderer = fn }
}

func NewRunner(registry *Registry, opts ...Option) *Runner {
	r := &Runner{
		registry:   registry,
		integrator: "rk45",
		opts:       sim.DefaultOptions(),
		logger:     kitlog.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Integrator() string { return r.integrator }

// Run integrates one scenario and then renders and stores it.
func (r *Runner) Run(ctx context.Context, sc *scenario.Scenario) (*Result, error) {
	res, err := r.integrate(ctx, sc)
	if err != nil {
		return nil, err
	}
	if err := r.emit(res); err != nil {
		return nil, err
	}
	return res, nil
}

// RunAll integrates the scenarios, concurrently when parallel is set, and
// emits the results in input order.
func (r *Runner) RunAll(ctx context.Context, scenarios []*scenario.Scenario, parallel bool) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	if parallel {
		g, gctx := errgroup.WithContext(ctx)
		if r.workers > 0 {
			g.SetLimit(r.workers)
		}
		for i, sc := range scenarios {
			g.Go(func() error {
				res, err := r.integrate(gctx, sc)
				results[i] = res
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, sc := range scenarios {
			res, err := r.integrate(ctx, sc)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
	}

	for _, res := range results {
		if err := r.emit(res); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *Runner) integrate(ctx context.Context, sc *scenario.Scenario) (*Result, error) {
	logger := kitlog.With(r.logger, "scenario", sc.Name(), "integrator", r.integrator)

	integ, err := r.registry.GetIntegrator(r.integrator)
	if err != nil {
		return nil, err
	}

	s := sim.New(sc.System(), integ)
	for _, m := range r.registry.DefaultMetrics() {
		s.AddMetric(m)
	}

	grid := sc.Grid()
	level.Debug(logger).Log("msg", "starting", "r0", sc.R0(), "points", len(grid), "t0", grid.Start(), "t1", grid.End())

	tr, err := s.Run(ctx, sc.State(), grid, r.opts)
	if err != nil {
		level.Error(logger).Log("msg", "integration failed", "err", err)
		return nil, fmt.Errorf("scenario %s: %w", sc.Name(), err)
	}

	summary := analysis.Summarize(sc, tr)
	peak, _ := summary.Peak("I")
	level.Info(logger).Log(
		"msg", "run complete",
		"peak_I", peak.Value,
		"peak_day", peak.Time,
		"final_R", summary.FinalSize,
		"steps", tr.StepsTaken,
		"rejected", tr.StepsRejected,
	)
	if !summary.Conservation.Conserved && sc.Params().Mu == 0 {
		level.Warn(logger).Log("msg", "population not conserved", "drift", summary.Conservation.MaxDrift)
	}

	return &Result{Scenario: sc, Trajectory: tr, Summary: summary}, nil
}

func (r *Runner) emit(res *Result) error {
	sc := res.Scenario

	if r.newRenderer != nil {
		rd, err := r.newRenderer(sc)
		if err != nil {
			return err
		}
		if rd != nil {
			if err := rd.Render(sc.Label(), res.Trajectory); err != nil {
				return fmt.Errorf("render %s: %w", sc.Name(), err)
			}
		}
	}

	if r.store != nil {
		id, err := r.store.Save(storage.Describe(sc, r.integrator, r.opts, res.Trajectory), res.Trajectory)
		if err != nil {
			return fmt.Errorf("store %s: %w", sc.Name(), err)
		}
		res.RunID = id
		level.Debug(r.logger).Log("msg", "saved run", "scenario", sc.Name(), "id", id)
	}
	return nil
}
