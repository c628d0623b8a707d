package integrators

import (
	"github.com/san-kum/seirsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	result := x.Clone()
	floats.AddScaled(result, dt, sys.Derive(x, t))
	return result
}
