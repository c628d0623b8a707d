package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/sim"
)

var strokeColors = [epidemic.NumCompartments]drawing.Color{
	chart.ColorBlue,
	{R: 255, G: 165, B: 0, A: 255},
	chart.ColorRed,
	chart.ColorGreen,
}

// Chart writes a PNG or SVG line chart. The format follows the file
// extension of Path.
type Chart struct {
	Path   string
	Width  int
	Height int
}

func NewChart(path string) *Chart {
	return &Chart{Path: path, Width: 1024, Height: 512}
}

func (c *Chart) Render(label string, tr *sim.Trajectory) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	f, err := os.Create(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	format := chart.PNG
	if strings.EqualFold(filepath.Ext(c.Path), ".svg") {
		format = chart.SVG
	}
	if err := c.Write(f, format, label, tr); err != nil {
		f.Close()
		os.Remove(c.Path)
		return err
	}
	return f.Close()
}

// Write renders to w with the given go-chart renderer provider.
func (c *Chart) Write(w io.Writer, format chart.RendererProvider, label string, tr *sim.Trajectory) error {
	if tr.Len() < 2 {
		return fmt.Errorf("chart %s: need at least two points, have %d", label, tr.Len())
	}

	series := make([]chart.Series, 0, epidemic.NumCompartments)
	for i, name := range epidemic.CompartmentLabels {
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: tr.Times,
			YValues: tr.Series(i),
			Style:   chart.Style{StrokeColor: strokeColors[i], StrokeWidth: 2.0},
		})
	}

	graph := chart.Chart{
		Title:  label,
		Width:  c.Width,
		Height: c.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "days",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "people",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(format, w)
}
