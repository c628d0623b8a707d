package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/scenario"
	"github.com/san-kum/seirsim/internal/sim"
)

// Peak is the global maximum of one compartment, at its first occurrence.
type Peak struct {
	Variable string  `json:"variable"`
	Time     float64 `json:"time"`
	Value    float64 `json:"value"`
}

type Stat struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// Conservation compares S+E+I+R at the first and last output point.
type Conservation struct {
	Initial   float64 `json:"initial"`
	Final     float64 `json:"final"`
	MaxDrift  float64 `json:"maxDrift"`
	Conserved bool    `json:"conserved"`
}

type Summary struct {
	Label        string          `json:"label"`
	R0           float64         `json:"r0"`
	Peaks        []Peak          `json:"peaks"`
	FinalSize    float64         `json:"finalSize"`
	AttackRate   float64         `json:"attackRate"`
	Conservation Conservation    `json:"conservation"`
	Statistics   map[string]Stat `json:"statistics"`
	Steps        int             `json:"steps"`
	Rejected     int             `json:"rejected"`
}

// Peak returns the entry for one compartment name.
func (s Summary) Peak(variable string) (Peak, bool) {
	for _, p := range s.Peaks {
		if p.Variable == variable {
			return p, true
		}
	}
	return Peak{}, false
}

func Peaks(tr *sim.Trajectory) []Peak {
	if tr.Len() == 0 {
		return nil
	}
	peaks := make([]Peak, 0, epidemic.NumCompartments)
	for c, name := range epidemic.CompartmentNames {
		series := tr.Series(c)
		k := floats.MaxIdx(series)
		peaks = append(peaks, Peak{Variable: name, Time: tr.Times[k], Value: series[k]})
	}
	return peaks
}

func Statistics(tr *sim.Trajectory) map[string]Stat {
	out := make(map[string]Stat, epidemic.NumCompartments)
	if tr.Len() == 0 {
		return out
	}
	for c, name := range epidemic.CompartmentNames {
		series := tr.Series(c)
		sorted := append([]float64(nil), series...)
		sort.Float64s(sorted)

		st := Stat{
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
			Mean:   stat.Mean(series, nil),
			Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		}
		if len(series) > 1 {
			st.Std = stat.StdDev(series, nil)
		}
		out[name] = st
	}
	return out
}

// CheckConservation reports whether the population total stayed within
// tol (relative) of its initial value at every output point.
func CheckConservation(tr *sim.Trajectory, tol float64) Conservation {
	if tr.Len() == 0 {
		return Conservation{}
	}
	c := Conservation{
		Initial: tr.States[0].Sum(),
		Final:   tr.Final().Sum(),
	}
	scale := math.Max(math.Abs(c.Initial), 1)
	for _, x := range tr.States {
		c.MaxDrift = math.Max(c.MaxDrift, math.Abs(x.Sum()-c.Initial)/scale)
	}
	c.Conserved = c.MaxDrift <= tol
	return c
}

func Summarize(sc *scenario.Scenario, tr *sim.Trajectory) Summary {
	s := Summary{
		Label:        sc.Label(),
		R0:           sc.R0(),
		Peaks:        Peaks(tr),
		Conservation: CheckConservation(tr, 1e-6),
		Statistics:   Statistics(tr),
		Steps:        tr.StepsTaken,
		Rejected:     tr.StepsRejected,
	}
	if tr.Len() > 0 {
		s.FinalSize = tr.Final()[epidemic.R]
		if n := sc.Params().N; n != 0 {
			s.AttackRate = s.FinalSize / n
		}
	}
	return s
}
