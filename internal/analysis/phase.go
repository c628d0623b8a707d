package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/sim"
)

type Point struct {
	X, Y float64
}

// PhasePortrait is a trajectory projected onto two compartments.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

func NewPhasePortrait(tr *sim.Trajectory, xIdx, yIdx int) (*PhasePortrait, error) {
	if xIdx < 0 || xIdx >= epidemic.NumCompartments || yIdx < 0 || yIdx >= epidemic.NumCompartments {
		return nil, fmt.Errorf("phase portrait: compartment index out of range (%d, %d)", xIdx, yIdx)
	}
	p := &PhasePortrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, tr.Len())}
	for k, x := range tr.States {
		p.Points[k] = Point{X: x[xIdx], Y: x[yIdx]}
	}
	return p, nil
}

func (p *PhasePortrait) bounds() (minX, maxX, minY, maxY float64) {
	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	return floats.Min(xs), floats.Max(xs), floats.Min(ys), floats.Max(ys)
}

// ToASCII draws the portrait on a width x height canvas. The first point is
// marked 'o' and the last 'x'.
func (p *PhasePortrait) ToASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := p.bounds()
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(pt Point) (int, int) {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		return row, col
	}

	for _, pt := range p.Points {
		row, col := cell(pt)
		canvas[row][col] = '•'
	}
	row, col := cell(p.Points[0])
	canvas[row][col] = 'o'
	row, col = cell(p.Points[len(p.Points)-1])
	canvas[row][col] = 'x'

	xName := epidemic.CompartmentNames[p.XIndex]
	yName := epidemic.CompartmentNames[p.YIndex]

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %.4g\n", yName, maxY)
	for _, r := range canvas {
		sb.WriteRune('│')
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	sb.WriteString("└" + strings.Repeat("─", width) + "\n")
	fmt.Fprintf(&sb, "%s %.4g .. %.4g (%s min %.4g)\n", xName, minX, maxX, yName, minY)
	return sb.String()
}
