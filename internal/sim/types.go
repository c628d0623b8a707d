package sim

import "github.com/san-kum/seirsim/internal/dynamo"

// Metric accumulates a scalar over the recorded output points.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x dynamo.State, t float64)
}

type Options struct {
	RelTol float64
	AbsTol float64
	// MaxSteps bounds accepted plus rejected steps over the whole run.
	MaxSteps int
	// InitialStep of 0 selects the first adaptive step automatically.
	InitialStep float64
	// MaxStep caps adaptive steps; 0 means no cap.
	MaxStep float64
	// FixedStep is the largest substep used by fixed-step integrators.
	FixedStep float64
}

func DefaultOptions() Options {
	return Options{
		RelTol:    1e-8,
		AbsTol:    1e-10,
		MaxSteps:  100000,
		FixedStep: 0.01,
	}
}

// Trajectory holds one state per requested output time.
type Trajectory struct {
	Times         []float64
	States        []dynamo.State
	Metrics       map[string]float64
	StepsTaken    int
	StepsRejected int
}

func (tr *Trajectory) Len() int {
	return len(tr.States)
}

func (tr *Trajectory) Final() dynamo.State {
	return tr.States[len(tr.States)-1]
}

// Series extracts component idx over time.
func (tr *Trajectory) Series(idx int) []float64 {
	out := make([]float64, len(tr.States))
	for k, x := range tr.States {
		out[k] = x[idx]
	}
	return out
}
