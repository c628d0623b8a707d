package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/seirsim/internal/dynamo"
)

// Job is one independent run inside an Ensemble.
type Job struct {
	Name    string
	System  dynamo.System
	Initial dynamo.State
	Grid    dynamo.Grid
	// Metrics builds fresh metric instances for this job. May be nil.
	Metrics func() []Metric
}

// Ensemble runs jobs concurrently. Integrators carry scratch buffers, so
// each job gets its own instance from newIntegrator.
type Ensemble struct {
	newIntegrator func() dynamo.Integrator
	opts          Options
	limit         int
}

func NewEnsemble(newIntegrator func() dynamo.Integrator, opts Options) *Ensemble {
	return &Ensemble{newIntegrator: newIntegrator, opts: opts, limit: -1}
}

// SetLimit bounds the number of concurrent jobs; n <= 0 removes the bound.
func (e *Ensemble) SetLimit(n int) {
	if n <= 0 {
		n = -1
	}
	e.limit = n
}

// Run returns trajectories in job order. The first failure cancels the
// remaining jobs.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*Trajectory, error) {
	results := make([]*Trajectory, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i, job := range jobs {
		g.Go(func() error {
			s := New(job.System, e.newIntegrator())
			if job.Metrics != nil {
				for _, m := range job.Metrics() {
					s.AddMetric(m)
				}
			}

			tr, err := s.Run(ctx, job.Initial, job.Grid, e.opts)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			results[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
