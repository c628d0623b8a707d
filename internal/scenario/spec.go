package scenario

import (
	"fmt"
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
)

// Spec is the serializable description a Scenario is built from.
type Spec struct {
	Name       string   `yaml:"name" json:"name"`
	Label      string   `yaml:"label,omitempty" json:"label,omitempty"`
	Population float64  `yaml:"population" json:"population"`
	Initial    Seed     `yaml:"initial" json:"initial"`
	Rates      Rates    `yaml:"rates" json:"rates"`
	Grid       GridSpec `yaml:"grid" json:"grid"`
	// CarveExposed also subtracts the exposed seed from S0. Off by default,
	// so S0 = N - I0 - R0 and the exposed seed is counted on top of N.
	CarveExposed bool     `yaml:"carve_exposed,omitempty" json:"carve_exposed,omitempty"`
	Hygiene      *Hygiene `yaml:"hygiene,omitempty" json:"hygiene,omitempty"`
}

type Seed struct {
	Exposed   float64 `yaml:"exposed" json:"exposed"`
	Infected  float64 `yaml:"infected" json:"infected"`
	Recovered float64 `yaml:"recovered" json:"recovered"`
}

// Rates are per day.
type Rates struct {
	Alpha float64 `yaml:"alpha" json:"alpha"`
	Beta  float64 `yaml:"beta" json:"beta"`
	Gamma float64 `yaml:"gamma" json:"gamma"`
	Mu    float64 `yaml:"mu" json:"mu"`
}

// GridSpec is an evenly spaced output grid including both ends.
type GridSpec struct {
	Start  float64 `yaml:"start" json:"start"`
	Stop   float64 `yaml:"stop" json:"stop"`
	Points int     `yaml:"points" json:"points"`
}

func (g GridSpec) Build() (dynamo.Grid, error) {
	if g.Points <= 0 {
		return nil, &dynamo.InvalidParameterError{Name: "grid.points", Value: float64(g.Points), Reason: "must be positive"}
	}
	grid := dynamo.Linspace(g.Start, g.Stop, g.Points)
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return grid, nil
}

// Hygiene models a compliant share of the population that withdraws from
// circulation. The scale factors are applied to the baseline seeds and to
// the incubation rate alpha.
type Hygiene struct {
	CompliantFraction float64 `yaml:"compliant_fraction" json:"compliant_fraction"`
	InfectedScale     float64 `yaml:"infected_scale" json:"infected_scale"`
	ExposedScale      float64 `yaml:"exposed_scale" json:"exposed_scale"`
	IncubationScale   float64 `yaml:"incubation_scale" json:"incubation_scale"`
}

func DefaultHygiene() *Hygiene {
	return &Hygiene{
		CompliantFraction: 0.1,
		InfectedScale:     0.1,
		ExposedScale:      0.9,
		IncubationScale:   0.9,
	}
}

func (h *Hygiene) validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"hygiene.compliant_fraction", h.CompliantFraction},
		{"hygiene.infected_scale", h.InfectedScale},
		{"hygiene.exposed_scale", h.ExposedScale},
		{"hygiene.incubation_scale", h.IncubationScale},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &dynamo.InvalidParameterError{Name: f.name, Value: f.v, Reason: "not finite"}
		}
	}
	return nil
}

// Baseline is the reference outbreak: one exposed and one infected person
// in a population of 1000, observed for 80 days.
func Baseline() Spec {
	return Spec{
		Name:       "baseline",
		Label:      "Baseline",
		Population: 1000,
		Initial:    Seed{Exposed: 1, Infected: 1},
		Rates:      Rates{Alpha: 0.1, Beta: 0.2, Gamma: 0.1, Mu: 3.2e-5},
		Grid:       GridSpec{Start: 0, Stop: 80, Points: 80},
	}
}

// Intervention is the baseline with ten percent hygiene compliance.
func Intervention() Spec {
	s := Baseline()
	s.Name = "hygiene"
	s.Label = "Hygiene intervention"
	s.Hygiene = DefaultHygiene()
	return s
}

// Closed is the baseline without births or deaths, so N is conserved.
func Closed() Spec {
	s := Baseline()
	s.Name = "closed"
	s.Label = "Closed population"
	s.Rates.Mu = 0
	return s
}

// Build derives the initial compartments and returns an immutable scenario.
func (s Spec) Build() (*Scenario, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("scenario name is required: %w", dynamo.ErrInvalidParameter)
	}

	grid, err := s.Grid.Build()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	n := s.Population
	params := epidemic.Params{N: n, Alpha: s.Rates.Alpha, Beta: s.Rates.Beta, Gamma: s.Rates.Gamma, Mu: s.Rates.Mu}
	e0, i0, r0 := s.Initial.Exposed, s.Initial.Infected, s.Initial.Recovered

	var notes []Note
	removed := 0.0

	if h := s.Hygiene; h != nil {
		if err := h.validate(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		removed = h.CompliantFraction * n
		i0 *= h.InfectedScale
		e0 *= h.ExposedScale
		params.Alpha *= h.IncubationScale

		notes = append(notes,
			Note{"M", removed, fmt.Sprintf("compliant fraction %g of N withdrawn from circulation", h.CompliantFraction)},
			Note{"I0", i0, fmt.Sprintf("seed infections scaled by %g under hygiene", h.InfectedScale)},
			Note{"E0", e0, fmt.Sprintf("seed exposures scaled by %g under hygiene", h.ExposedScale)},
			Note{"alpha", params.Alpha, fmt.Sprintf("incubation rate scaled by %g under hygiene", h.IncubationScale)},
		)
	}

	s0 := n - removed - i0 - r0
	rationale := "N - M - I0 - R0"
	if s.CarveExposed {
		s0 -= e0
		rationale = "N - M - E0 - I0 - R0"
	}
	notes = append(notes, Note{"S0", s0, rationale})

	sc, err := New(s.Name, s.Label, params, epidemic.Compartments{S: s0, E: e0, I: i0, R: r0}, grid, notes...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return sc, nil
}
