// Package render turns trajectories into something a person can look at.
//
// Every output implements [Renderer]. Renderers only read the trajectory
// they are handed; the caller keeps ownership.
package render

import "github.com/san-kum/seirsim/internal/sim"

type Renderer interface {
	Render(label string, tr *sim.Trajectory) error
}
