package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

// Sum returns the total over all components.
func (s State) Sum() float64 {
	return floats.Sum(s)
}

func (s State) Add(other State) State {
	result := s.Clone()
	n := min(len(s), len(other))
	floats.Add(result[:n], other[:n])
	return result
}

func (s State) Scale(factor float64) State {
	result := s.Clone()
	floats.Scale(factor, result)
	return result
}

func (s State) Sub(other State) State {
	result := s.Clone()
	n := min(len(s), len(other))
	floats.Sub(result[:n], other[:n])
	return result
}

// System is a right-hand side f in dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Integrator advances a state by one fixed step.
type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// Tolerance is the mixed absolute/relative local error target.
type Tolerance struct {
	Rel float64
	Abs float64
}

// Interpolant evaluates the solution anywhere inside an accepted step.
type Interpolant interface {
	At(t float64) State
}

// StepResult is one trial step of an adaptive integrator.
type StepResult struct {
	X State
	// ErrNorm is the RMS local error scaled by the tolerance; <= 1 means accept.
	ErrNorm float64
	Dense   Interpolant
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt float64, tol Tolerance) StepResult
	NextDt(dt, errNorm float64) float64
	Order() int
}
