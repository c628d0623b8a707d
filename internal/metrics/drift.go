package metrics

import (
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
)

// PopulationDrift is the largest relative deviation of S+E+I+R from its
// initial value. It stays near zero only when mu = 0.
type PopulationDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewPopulationDrift() *PopulationDrift {
	return &PopulationDrift{name: "population_drift"}
}

func (d *PopulationDrift) Name() string { return d.name }

func (d *PopulationDrift) Observe(x dynamo.State, _ float64) {
	total := x.Sum()
	if d.samples == 0 {
		d.initial = total
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(total-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *PopulationDrift) Value() float64 {
	return d.maxDrift
}

func (d *PopulationDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
