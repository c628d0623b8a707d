package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/seirsim/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

type decay struct{ rate float64 }

func (d *decay) StateDim() int { return 1 }

func (d *decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-d.rate * x[0]}
}

func TestRK45_Step(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}
	dt := 0.01

	for i := 0; i < 1000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	if !x.IsValid() {
		t.Error("RK45 produced invalid state")
	}
	if math.Abs(x[0]-math.Cos(10)) > 1e-8 {
		t.Errorf("x(10) = %.10f, want %.10f", x[0], math.Cos(10))
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	initialEnergy := dyn.Energy(x0)
	x := x0.Clone()
	dt := 0.01

	for i := 0; i < 10000; i++ {
		x = integrator.Step(dyn, x, float64(i)*dt, dt)
	}

	drift := math.Abs(dyn.Energy(x)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}
	tol := dynamo.Tolerance{Rel: 1e-8, Abs: 1e-10}

	res := integrator.StepAdaptive(dyn, x0, 0, 0.1, tol)
	if !res.X.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if res.Dense == nil {
		t.Fatal("StepAdaptive returned no dense output")
	}

	newDt := integrator.NextDt(0.1, res.ErrNorm)
	if newDt <= 0 {
		t.Errorf("NextDt returned invalid dt: %f", newDt)
	}
}

func TestRK45_ErrorShrinksWithStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}
	tol := dynamo.Tolerance{Rel: 1e-8, Abs: 1e-10}

	big := integrator.StepAdaptive(dyn, x0, 0, 0.5, tol).ErrNorm
	small := integrator.StepAdaptive(dyn, x0, 0, 0.05, tol).ErrNorm

	if !(small < big) {
		t.Errorf("error norm did not shrink with step: dt=0.5 -> %e, dt=0.05 -> %e", big, small)
	}
}

func TestRK45_DenseOutput(t *testing.T) {
	integrator := NewRK45()
	dyn := &decay{rate: 1}
	x0 := dynamo.State{1.0}
	dt := 0.2

	res := integrator.StepAdaptive(dyn, x0, 0, dt, dynamo.Tolerance{Rel: 1e-8, Abs: 1e-12})

	if got := res.Dense.At(0); got[0] != x0[0] {
		t.Errorf("dense output at step start = %v, want %v", got[0], x0[0])
	}
	if got := res.Dense.At(dt); math.Abs(got[0]-res.X[0]) > 1e-14 {
		t.Errorf("dense output at step end = %.16f, want %.16f", got[0], res.X[0])
	}

	for _, tm := range []float64{0.05, 0.1, 0.15} {
		got := res.Dense.At(tm)[0]
		want := math.Exp(-tm)
		if math.Abs(got-want)/want > 1e-6 {
			t.Errorf("dense output at t=%.2f = %.10f, want %.10f", tm, got, want)
		}
	}
}

func TestRK45_DenseWeightsMatchSolution(t *testing.T) {
	weights := []float64{c1, 0, c3, c4, c5, c6, 0}
	for i, p := range densePoly {
		sum := p[0] + p[1] + p[2] + p[3]
		if math.Abs(sum-weights[i]) > 1e-12 {
			t.Errorf("dense row %d sums to %.15f, want %.15f", i, sum, weights[i])
		}
	}
}

func TestRK45_NextDt(t *testing.T) {
	r := NewRK45()

	tests := []struct {
		name    string
		errNorm float64
		check   func(float64) bool
	}{
		{"zero error grows to max", 0, func(dt float64) bool { return dt == 10 }},
		{"tiny error capped", 1e-30, func(dt float64) bool { return dt == 10 }},
		{"rejected step shrinks", 4, func(dt float64) bool { return dt < 1 && dt >= 0.2 }},
		{"huge error floored", 1e20, func(dt float64) bool { return dt == 0.2 }},
		{"NaN error shrinks", math.NaN(), func(dt float64) bool { return dt == 0.2 }},
		{"Inf error shrinks", math.Inf(1), func(dt float64) bool { return dt == 0.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.NextDt(1, tt.errNorm)
			if !tt.check(got) {
				t.Errorf("NextDt(1, %v) = %v", tt.errNorm, got)
			}
		})
	}
}

func TestRK45_VsRK4_Accuracy(t *testing.T) {
	rk4 := NewRK4()
	rk45 := NewRK45()
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	x4 := x0.Clone()
	x45 := x0.Clone()
	dt := 0.1

	for i := 0; i < 100; i++ {
		x4 = rk4.Step(dyn, x4, float64(i)*dt, dt)
		x45 = rk45.Step(dyn, x45, float64(i)*dt, dt)
	}

	e4 := math.Abs(x4[0] - math.Cos(10))
	e45 := math.Abs(x45[0] - math.Cos(10))

	if e45 > e4 {
		t.Errorf("RK45 error %e larger than RK4 error %e", e45, e4)
	}
}
