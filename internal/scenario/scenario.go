package scenario

import (
	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/sim"
)

// Note explains how a derived quantity was obtained.
type Note struct {
	Quantity  string  `json:"quantity" yaml:"quantity"`
	Value     float64 `json:"value" yaml:"value"`
	Rationale string  `json:"rationale" yaml:"rationale"`
}

type Scenario struct {
	name    string
	label   string
	params  epidemic.Params
	initial epidemic.Compartments
	grid    dynamo.Grid
	notes   []Note
}

// New validates its inputs and returns a scenario that owns copies of them.
func New(name, label string, params epidemic.Params, initial epidemic.Compartments, grid dynamo.Grid, notes ...Note) (*Scenario, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if label == "" {
		label = name
	}

	return &Scenario{
		name:    name,
		label:   label,
		params:  params,
		initial: initial,
		grid:    grid.Clone(),
		notes:   append([]Note(nil), notes...),
	}, nil
}

// FromVector builds a scenario from a parameter map and a raw [S, E, I, R] vector.
func FromVector(name, label string, params map[string]float64, x0 []float64, grid dynamo.Grid) (*Scenario, error) {
	p, err := epidemic.ParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	initial, err := epidemic.FromState(x0)
	if err != nil {
		return nil, err
	}
	return New(name, label, p, initial, grid)
}

func (s *Scenario) Name() string                   { return s.name }
func (s *Scenario) Label() string                  { return s.label }
func (s *Scenario) Params() epidemic.Params        { return s.params }
func (s *Scenario) Initial() epidemic.Compartments { return s.initial }
func (s *Scenario) Grid() dynamo.Grid              { return s.grid.Clone() }
func (s *Scenario) Notes() []Note                  { return append([]Note(nil), s.notes...) }

// State returns the initial compartments as a fresh state vector.
func (s *Scenario) State() dynamo.State {
	return s.initial.State()
}

// System returns a new model instance; callers may mutate it freely.
func (s *Scenario) System() *epidemic.SEIR {
	return epidemic.NewSEIR(s.params)
}

// R0 is the basic reproduction number at the initial susceptible count.
func (s *Scenario) R0() float64 {
	return s.params.BasicReproductionNumber(s.initial.S)
}

// WithParam returns a copy with one rate replaced.
func (s *Scenario) WithParam(name string, value float64) (*Scenario, error) {
	m := s.params.Map()
	if _, ok := m[name]; !ok {
		return nil, &dynamo.InvalidParameterError{Name: name, Value: value, Reason: "unknown parameter"}
	}
	m[name] = value
	p, err := epidemic.ParamsFromMap(m)
	if err != nil {
		return nil, err
	}
	return New(s.name, s.label, p, s.initial, s.grid, s.notes...)
}

// Job packages the scenario for an ensemble run.
func (s *Scenario) Job(metrics func() []sim.Metric) sim.Job {
	return sim.Job{
		Name:    s.name,
		System:  s.System(),
		Initial: s.State(),
		Grid:    s.Grid(),
		Metrics: metrics,
	}
}
