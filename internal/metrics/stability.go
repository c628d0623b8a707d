package metrics

import (
	"github.com/san-kum/seirsim/internal/dynamo"
)

// NonNegative is the fraction of output points at which no compartment
// dropped below -tolerance.
type NonNegative struct {
	name       string
	tolerance  float64
	violations int
	samples    int
}

func NewNonNegative(tolerance float64) *NonNegative {
	return &NonNegative{
		name:      "non_negative",
		tolerance: tolerance,
	}
}

func (n *NonNegative) Name() string {
	return n.name
}

func (n *NonNegative) Observe(x dynamo.State, _ float64) {
	n.samples++
	for _, val := range x {
		if val < -n.tolerance {
			n.violations++
			break
		}
	}
}

func (n *NonNegative) Value() float64 {
	if n.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(n.violations)/float64(n.samples)
}

func (n *NonNegative) Reset() {
	n.violations = 0
	n.samples = 0
}
