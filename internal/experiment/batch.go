package experiment

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/render"
	"github.com/san-kum/seirsim/internal/scenario"
)

// Batch runs every scenario of cfg with cfg's integrator, solver settings
// and output. Extra options are applied last.
func Batch(ctx context.Context, registry *Registry, cfg *config.Config, w io.Writer, extra ...Option) ([]*Result, error) {
	scenarios, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if _, err := registry.IntegratorFactory(cfg.Integrator); err != nil {
		return nil, err
	}

	opts := []Option{
		WithIntegrator(cfg.Integrator),
		WithOptions(cfg.Options()),
		WithRendererFactory(RendererFactory(registry, cfg.Output.Renderer, cfg.Output.Path, w, len(scenarios) > 1)),
	}
	runner := NewRunner(registry, append(opts, extra...)...)
	return runner.RunAll(ctx, scenarios, cfg.Parallel)
}

// RendererFactory resolves an output name per scenario. With perScenario
// set, file paths get the scenario name appended so runs do not overwrite
// each other.
func RendererFactory(registry *Registry, name, path string, w io.Writer, perScenario bool) func(*scenario.Scenario) (render.Renderer, error) {
	return func(sc *scenario.Scenario) (render.Renderer, error) {
		p := path
		if perScenario && p != "" {
			p = SuffixPath(p, sc.Name())
		}
		return registry.GetRenderer(name, w, p)
	}
}

// SuffixPath turns dir/run.png into dir/run_<suffix>.png.
func SuffixPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}
