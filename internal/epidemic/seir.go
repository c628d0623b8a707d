package epidemic

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/seirsim/internal/dynamo"
)

// Compartment indices into a state vector.
const (
	S = iota
	E
	I
	R
	NumCompartments
)

var (
	CompartmentNames  = [NumCompartments]string{"S", "E", "I", "R"}
	CompartmentLabels = [NumCompartments]string{"Susceptible", "Exposed", "Infected", "Recovered"}
)

// CompartmentIndex maps "S", "E", "I" or "R" to its state index.
func CompartmentIndex(name string) (int, error) {
	for i, n := range CompartmentNames {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown compartment %q", name)
}

// Params holds the rate constants. Rates are per day.
type Params struct {
	N     float64 `yaml:"n" json:"n"`
	Alpha float64 `yaml:"alpha" json:"alpha"`
	Beta  float64 `yaml:"beta" json:"beta"`
	Gamma float64 `yaml:"gamma" json:"gamma"`
	Mu    float64 `yaml:"mu" json:"mu"`
}

// Validate checks that every parameter is finite. Signs are the caller's business.
func (p Params) Validate() error {
	m := p.Map()
	for _, name := range paramNames {
		v := m[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &dynamo.InvalidParameterError{Name: name, Value: v, Reason: "not finite"}
		}
	}
	return nil
}

var paramNames = []string{"n", "alpha", "beta", "gamma", "mu"}

func (p Params) Map() map[string]float64 {
	return map[string]float64{
		"n":     p.N,
		"alpha": p.Alpha,
		"beta":  p.Beta,
		"gamma": p.Gamma,
		"mu":    p.Mu,
	}
}

// ParamsFromMap builds a parameter set, failing when any name is missing.
func ParamsFromMap(m map[string]float64) (Params, error) {
	var p Params
	for _, name := range paramNames {
		v, ok := m[name]
		if !ok {
			return Params{}, &dynamo.InvalidParameterError{Name: name, Value: math.NaN(), Reason: "missing"}
		}
		if err := p.set(name, v); err != nil {
			return Params{}, err
		}
	}
	return p, p.Validate()
}

func (p *Params) set(name string, value float64) error {
	switch name {
	case "n":
		p.N = value
	case "alpha":
		p.Alpha = value
	case "beta":
		p.Beta = value
	case "gamma":
		p.Gamma = value
	case "mu":
		p.Mu = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

// ParamNames lists the settable parameter names in sorted order.
func ParamNames() []string {
	names := append([]string(nil), paramNames...)
	sort.Strings(names)
	return names
}

// BasicReproductionNumber is beta*s0*alpha / ((alpha+mu)(gamma+mu)) for
// mass-action incidence with s0 initial susceptibles.
func (p Params) BasicReproductionNumber(s0 float64) float64 {
	return p.Beta * s0 * p.Alpha / ((p.Alpha + p.Mu) * (p.Gamma + p.Mu))
}

type SEIR struct {
	Params
}

func NewSEIR(p Params) *SEIR {
	return &SEIR{Params: p}
}

func (m *SEIR) StateDim() int {
	return NumCompartments
}

// Derive returns (dS/dt, dE/dt, dI/dt, dR/dt). The system is autonomous; t is ignored.
func (m *SEIR) Derive(x dynamo.State, _ float64) dynamo.State {
	s, e, i, r := x[S], x[E], x[I], x[R]
	p := m.Params

	incidence := p.Beta * s * i
	return dynamo.State{
		p.Mu*p.N - incidence - p.Mu*s,
		incidence - p.Alpha*e - p.Mu*e,
		p.Alpha*e - p.Gamma*i - p.Mu*i,
		p.Gamma*i - p.Mu*r,
	}
}

func (m *SEIR) GetParams() map[string]float64 {
	return m.Params.Map()
}

func (m *SEIR) SetParam(name string, value float64) error {
	return m.Params.set(name, value)
}

// Clone returns an independent copy, for sweeps that mutate parameters.
func (m *SEIR) Clone() *SEIR {
	c := *m
	return &c
}

// Compartments is the named form of a state vector.
type Compartments struct {
	S float64 `yaml:"s" json:"s"`
	E float64 `yaml:"e" json:"e"`
	I float64 `yaml:"i" json:"i"`
	R float64 `yaml:"r" json:"r"`
}

func (c Compartments) State() dynamo.State {
	return dynamo.State{c.S, c.E, c.I, c.R}
}

func (c Compartments) Total() float64 {
	return c.S + c.E + c.I + c.R
}

func (c Compartments) Validate() error {
	for k, v := range c.State() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &dynamo.InvalidParameterError{Name: CompartmentNames[k] + "0", Value: v, Reason: "not finite"}
		}
	}
	return nil
}

// FromState converts a four-component vector.
func FromState(x []float64) (Compartments, error) {
	if len(x) != NumCompartments {
		return Compartments{}, &dynamo.InvalidParameterError{
			Name:   "initial",
			Value:  float64(len(x)),
			Reason: fmt.Sprintf("expected %d compartments", NumCompartments),
		}
	}
	c := Compartments{S: x[S], E: x[E], I: x[I], R: x[R]}
	return c, c.Validate()
}
