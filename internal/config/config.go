package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/seirsim/internal/scenario"
	"github.com/san-kum/seirsim/internal/sim"
)

const (
	DefaultIntegrator = "rk45"
	DefaultRenderer   = "ascii"
	DefaultRelTol     = 1e-8
	DefaultAbsTol     = 1e-10
	DefaultMaxSteps   = 100000
	DefaultFixedStep  = 0.01
)

type SolverConfig struct {
	RelTol    float64 `yaml:"rtol"`
	AbsTol    float64 `yaml:"atol"`
	MaxSteps  int     `yaml:"max_steps"`
	MaxStep   float64 `yaml:"max_step,omitempty"`
	FixedStep float64 `yaml:"fixed_step"`
}

type OutputConfig struct {
	Renderer string `yaml:"renderer"`
	// Path is the chart or CSV file for renderers that write files.
	Path string `yaml:"path,omitempty"`
	Save bool   `yaml:"save"`
}

type Config struct {
	Integrator string          `yaml:"integrator"`
	Solver     SolverConfig    `yaml:"solver"`
	Parallel   bool            `yaml:"parallel"`
	Scenarios  []ScenarioEntry `yaml:"scenarios"`
	Output     OutputConfig    `yaml:"output"`
}

// ScenarioEntry is a scenario spec that may start from a named preset:
//
//	scenarios:
//	  - preset: hygiene
//	    hygiene:
//	      compliant_fraction: 0.3
type ScenarioEntry struct {
	scenario.Spec
}

func (e *ScenarioEntry) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	if head.Preset != "" {
		spec, ok := GetPreset(head.Preset)
		if !ok {
			return fmt.Errorf("line %d: unknown preset %q", node.Line, head.Preset)
		}
		e.Spec = spec
	}
	return node.Decode(&e.Spec)
}

func (e ScenarioEntry) MarshalYAML() (interface{}, error) {
	return e.Spec, nil
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: DefaultIntegrator,
		Solver: SolverConfig{
			RelTol:    DefaultRelTol,
			AbsTol:    DefaultAbsTol,
			MaxSteps:  DefaultMaxSteps,
			FixedStep: DefaultFixedStep,
		},
		Output: OutputConfig{Renderer: DefaultRenderer},
	}
}

func Load(path string) (*Config, error) {
	return LoadWith(path, DefaultConfig())
}

// LoadWith decodes path on top of base; keys absent from the file keep
// base's values.
func LoadWith(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Options() sim.Options {
	return sim.Options{
		RelTol:    c.Solver.RelTol,
		AbsTol:    c.Solver.AbsTol,
		MaxSteps:  c.Solver.MaxSteps,
		MaxStep:   c.Solver.MaxStep,
		FixedStep: c.Solver.FixedStep,
	}
}

// Build turns every entry into a scenario, failing on the first bad one.
func (c *Config) Build() ([]*scenario.Scenario, error) {
	if len(c.Scenarios) == 0 {
		return nil, fmt.Errorf("config has no scenarios")
	}
	out := make([]*scenario.Scenario, 0, len(c.Scenarios))
	seen := make(map[string]bool, len(c.Scenarios))
	for i, entry := range c.Scenarios {
		sc, err := entry.Build()
		if err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		if seen[sc.Name()] {
			return nil, fmt.Errorf("scenarios[%d]: duplicate name %q", i, sc.Name())
		}
		seen[sc.Name()] = true
		out = append(out, sc)
	}
	return out, nil
}
