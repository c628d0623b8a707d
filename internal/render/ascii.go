package render

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/sim"
)

var seriesColors = [epidemic.NumCompartments]asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Yellow,
	asciigraph.Red,
	asciigraph.Green,
}

// ASCII plots compartments in the terminal.
type ASCII struct {
	W      io.Writer
	Width  int
	Height int
	// Compartments to draw; all four when empty.
	Compartments []int
}

func NewASCII(w io.Writer) *ASCII {
	return &ASCII{W: w, Width: 80, Height: 15}
}

func (a *ASCII) Render(label string, tr *sim.Trajectory) error {
	if tr.Len() == 0 {
		return fmt.Errorf("render %s: empty trajectory", label)
	}

	idx := a.Compartments
	if len(idx) == 0 {
		idx = []int{epidemic.S, epidemic.E, epidemic.I, epidemic.R}
	}

	data := make([][]float64, 0, len(idx))
	colors := make([]asciigraph.AnsiColor, 0, len(idx))
	legends := make([]string, 0, len(idx))
	for _, c := range idx {
		if c < 0 || c >= epidemic.NumCompartments {
			return fmt.Errorf("render %s: no compartment %d", label, c)
		}
		data = append(data, tr.Series(c))
		colors = append(colors, seriesColors[c])
		legends = append(legends, epidemic.CompartmentLabels[c])
	}

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(a.Height),
		asciigraph.Width(a.Width),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(fmt.Sprintf("%s, %g..%g days", label, tr.Times[0], tr.Times[len(tr.Times)-1])),
	)

	_, err := fmt.Fprintln(a.W, graph)
	return err
}
