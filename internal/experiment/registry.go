package experiment

import (
	"fmt"
	"io"
	"sort"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/integrators"
	"github.com/san-kum/seirsim/internal/metrics"
	"github.com/san-kum/seirsim/internal/render"
	"github.com/san-kum/seirsim/internal/sim"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	renderers   map[string]func(w io.Writer, path string) render.Renderer
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		renderers:   make(map[string]func(io.Writer, string) render.Renderer),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	r.renderers["ascii"] = func(w io.Writer, _ string) render.Renderer { return render.NewASCII(w) }
	r.renderers["table"] = func(w io.Writer, _ string) render.Renderer { return &render.Table{W: w, Every: 10} }
	r.renderers["csv"] = func(w io.Writer, _ string) render.Renderer { return &render.CSV{W: w} }
	r.renderers["chart"] = func(_ io.Writer, path string) render.Renderer { return render.NewChart(path) }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, err := r.IntegratorFactory(name)
	if err != nil {
		return nil, err
	}
	return fn(), nil
}

// IntegratorFactory is for callers that need one integrator per goroutine.
func (r *Registry) IntegratorFactory(name string) (func() dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

// GetRenderer builds a renderer. "none" yields nil. File renderers use path.
func (r *Registry) GetRenderer(name string, w io.Writer, path string) (render.Renderer, error) {
	if name == "none" {
		return nil, nil
	}
	fn, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown renderer: %s", name)
	}
	if name == "chart" && path == "" {
		return nil, fmt.Errorf("renderer chart needs an output path")
	}
	return fn(w, path), nil
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListRenderers() []string {
	return append(sortedKeys(r.renderers), "none")
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Standard()
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
