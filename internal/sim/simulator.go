package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
)

type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	metrics    []Metric
	observers  []Observer
}

func New(sys dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 at grid[0] and samples the solution at every grid
// point. States[0] is a copy of x0. On failure no trajectory is returned.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, grid dynamo.Grid, opts Options) (*Trajectory, error) {
	if err := s.validate(x0, grid, opts); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	tr := &Trajectory{
		Times:   grid.Clone(),
		States:  make([]dynamo.State, 0, len(grid)),
		Metrics: make(map[string]float64),
	}
	s.record(tr, x0.Clone(), grid[0])

	var err error
	if adaptive, ok := s.integrator.(dynamo.AdaptiveIntegrator); ok {
		err = s.runAdaptive(ctx, adaptive, x0.Clone(), grid, opts, tr)
	} else {
		err = s.runFixed(ctx, x0.Clone(), grid, opts, tr)
	}
	if err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		tr.Metrics[m.Name()] = m.Value()
	}

	return tr, nil
}

func (s *Simulator) validate(x0 dynamo.State, grid dynamo.Grid, opts Options) error {
	if dim := s.sys.StateDim(); len(x0) != dim {
		return &dynamo.InvalidParameterError{
			Name:   "initial",
			Value:  float64(len(x0)),
			Reason: fmt.Sprintf("expected %d components", dim),
		}
	}
	for i, v := range x0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &dynamo.InvalidParameterError{Name: fmt.Sprintf("initial[%d]", i), Value: v, Reason: "not finite"}
		}
	}
	if err := grid.Validate(); err != nil {
		return err
	}
	if !(opts.RelTol > 0) || math.IsInf(opts.RelTol, 0) {
		return &dynamo.InvalidParameterError{Name: "rtol", Value: opts.RelTol, Reason: "must be positive and finite"}
	}
	if !(opts.AbsTol >= 0) || math.IsInf(opts.AbsTol, 0) {
		return &dynamo.InvalidParameterError{Name: "atol", Value: opts.AbsTol, Reason: "must be non-negative and finite"}
	}
	if opts.MaxSteps <= 0 {
		return &dynamo.InvalidParameterError{Name: "max_steps", Value: float64(opts.MaxSteps), Reason: "must be positive"}
	}
	if !(opts.InitialStep >= 0) || !(opts.MaxStep >= 0) {
		return &dynamo.InvalidParameterError{Name: "step", Value: math.Min(opts.InitialStep, opts.MaxStep), Reason: "must be non-negative"}
	}
	if _, adaptive := s.integrator.(dynamo.AdaptiveIntegrator); !adaptive && !(opts.FixedStep > 0) {
		return &dynamo.InvalidParameterError{Name: "fixed_step", Value: opts.FixedStep, Reason: "must be positive"}
	}
	return nil
}

func (s *Simulator) record(tr *Trajectory, x dynamo.State, t float64) {
	tr.States = append(tr.States, x)
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

var machineEps = math.Nextafter(1, 2) - 1

func minStep(t float64) float64 {
	return 10 * machineEps * math.Max(math.Abs(t), 1)
}

func (s *Simulator) runAdaptive(ctx context.Context, integ dynamo.AdaptiveIntegrator, x dynamo.State, grid dynamo.Grid, opts Options, tr *Trajectory) error {
	if len(grid) == 1 {
		return nil
	}

	tol := dynamo.Tolerance{Rel: opts.RelTol, Abs: opts.AbsTol}
	t, end := grid.Start(), grid.End()

	maxStep := opts.MaxStep
	if maxStep == 0 {
		maxStep = end - t
	}
	dt := opts.InitialStep
	if dt == 0 {
		dt = initialStep(s.sys, x, t, end-t, tol, integ.Order())
	}
	dt = math.Min(dt, maxStep)

	fail := func(cause error) error {
		return &dynamo.IntegrationError{Step: tr.StepsTaken, Time: t, State: x.Clone(), Wrapped: cause}
	}

	next, dense := 1, true
	for attempts := 0; next < len(grid); attempts++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if attempts >= opts.MaxSteps {
			return fail(dynamo.ErrTooManySteps)
		}
		if !(dt >= minStep(t)) {
			return fail(dynamo.ErrStepTooSmall)
		}

		// Without dense output the solver has to land on every grid point.
		target := end
		if !dense {
			target = grid[next]
		}
		snap := false
		if t+dt >= target {
			dt, snap = target-t, true
		}

		res := integ.StepAdaptive(s.sys, x, t, dt, tol)
		if res.Dense == nil && dense {
			dense = false
			if !snap && t+dt > grid[next] {
				continue
			}
		}

		if !(res.ErrNorm <= 1) {
			tr.StepsRejected++
			dt = integ.NextDt(dt, res.ErrNorm)
			continue
		}
		if !res.X.IsValid() {
			return fail(dynamo.ErrInvalidState)
		}

		tNew := t + dt
		if snap {
			tNew = target
		}

		for next < len(grid) && grid[next] <= tNew {
			var xk dynamo.State
			if grid[next] == tNew || res.Dense == nil {
				xk = res.X.Clone()
			} else {
				xk = res.Dense.At(grid[next])
			}
			if !xk.IsValid() {
				return fail(dynamo.ErrInvalidState)
			}
			s.record(tr, xk, grid[next])
			next++
		}

		tr.StepsTaken++
		t, x = tNew, res.X
		dt = math.Min(integ.NextDt(dt, res.ErrNorm), maxStep)
	}

	return nil
}

func (s *Simulator) runFixed(ctx context.Context, x dynamo.State, grid dynamo.Grid, opts Options, tr *Trajectory) error {
	for k := 1; k < len(grid); k++ {
		t0, t1 := grid[k-1], grid[k]
		n := int(math.Ceil((t1-t0)/opts.FixedStep - 1e-9))
		if n < 1 {
			n = 1
		}
		h := (t1 - t0) / float64(n)

		for j := 0; j < n; j++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			t := t0 + float64(j)*h
			if tr.StepsTaken >= opts.MaxSteps {
				return &dynamo.IntegrationError{Step: tr.StepsTaken, Time: t, State: x.Clone(), Wrapped: dynamo.ErrTooManySteps}
			}

			x = s.integrator.Step(s.sys, x, t, h)
			tr.StepsTaken++

			if !x.IsValid() {
				return &dynamo.IntegrationError{Step: tr.StepsTaken, Time: t + h, State: x.Clone(), Wrapped: dynamo.ErrInvalidState}
			}
		}

		s.record(tr, x.Clone(), t1)
	}

	return nil
}

// initialStep picks a first trial step from the local derivative scale
// (Hairer, Norsett & Wanner, section II.4).
func initialStep(sys dynamo.System, x0 dynamo.State, t0, span float64, tol dynamo.Tolerance, order int) float64 {
	n := len(x0)
	f0 := sys.Derive(x0, t0)

	scale := make([]float64, n)
	for i := range x0 {
		scale[i] = tol.Abs + math.Abs(x0[i])*tol.Rel
	}
	rms := func(v []float64) float64 {
		sum := 0.0
		for i := range v {
			e := v[i] / scale[i]
			sum += e * e
		}
		return math.Sqrt(sum / float64(n))
	}

	d0, d1 := rms(x0), rms(f0)
	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}

	x1 := make(dynamo.State, n)
	for i := range x0 {
		x1[i] = x0[i] + h0*f0[i]
	}
	f1 := sys.Derive(x1, t0+h0)
	diff := make([]float64, n)
	for i := range f1 {
		diff[i] = f1[i] - f0[i]
	}
	d2 := rms(diff) / h0

	var h1 float64
	if m := math.Max(d1, d2); m <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/m, 1/float64(order))
	}

	h := math.Min(math.Min(100*h0, h1), span)
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		h = math.Min(h0, span)
	}
	return h
}
