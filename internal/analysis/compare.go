package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/sim"
)

// Difference is the worst disagreement between two runs, per compartment.
type Difference struct {
	Shared int                `json:"shared"`
	Abs    map[string]float64 `json:"abs"`
	Rel    map[string]float64 `json:"rel"`
}

// Max is the largest relative difference over all compartments.
func (d Difference) Max() float64 {
	m := 0.0
	for _, v := range d.Rel {
		m = math.Max(m, v)
	}
	return m
}

// MaxDifference compares a and b at every time of a that also appears in b.
// Relative differences are scaled by max(1, |a|). Every time in a must be
// present in b.
func MaxDifference(a, b *sim.Trajectory) (Difference, error) {
	d := Difference{
		Abs: make(map[string]float64, epidemic.NumCompartments),
		Rel: make(map[string]float64, epidemic.NumCompartments),
	}
	for _, name := range epidemic.CompartmentNames {
		d.Abs[name], d.Rel[name] = 0, 0
	}

	for k, t := range a.Times {
		j := sort.SearchFloat64s(b.Times, t)
		if j == len(b.Times) || b.Times[j] != t {
			return Difference{}, fmt.Errorf("time %g missing from second trajectory", t)
		}
		x, y := a.States[k], b.States[j]
		for c, name := range epidemic.CompartmentNames {
			diff := math.Abs(y[c] - x[c])
			d.Abs[name] = math.Max(d.Abs[name], diff)
			d.Rel[name] = math.Max(d.Rel[name], diff/math.Max(1, math.Abs(x[c])))
		}
		d.Shared++
	}
	return d, nil
}
