package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is a strictly increasing sequence of output times.
type Grid []float64

// Linspace returns n evenly spaced points over [start, stop], endpoint included.
func Linspace(start, stop float64, n int) Grid {
	if n <= 0 {
		return Grid{}
	}
	if n == 1 {
		return Grid{start}
	}
	g := Grid(floats.Span(make([]float64, n), start, stop))
	g[n-1] = stop
	return g
}

func (g Grid) Validate() error {
	if len(g) == 0 {
		return &InvalidParameterError{Name: "grid", Reason: "no time points"}
	}
	for i, v := range g {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidParameterError{Name: fmt.Sprintf("grid[%d]", i), Value: v, Reason: "not finite"}
		}
		if i > 0 && v <= g[i-1] {
			return &InvalidParameterError{Name: fmt.Sprintf("grid[%d]", i), Value: v, Reason: "not strictly increasing"}
		}
	}
	return nil
}

func (g Grid) Clone() Grid {
	c := make(Grid, len(g))
	copy(c, g)
	return c
}

func (g Grid) Start() float64 { return g[0] }
func (g Grid) End() float64   { return g[len(g)-1] }
func (g Grid) Span() float64  { return g.End() - g.Start() }

// Refine splits every interval into factor equal parts. Original points keep
// their exact values and end up at indices k*factor.
func (g Grid) Refine(factor int) Grid {
	if factor <= 1 || len(g) < 2 {
		return g.Clone()
	}
	out := make(Grid, 0, (len(g)-1)*factor+1)
	for k := 0; k < len(g)-1; k++ {
		width := g[k+1] - g[k]
		out = append(out, g[k])
		for j := 1; j < factor; j++ {
			out = append(out, g[k]+width*float64(j)/float64(factor))
		}
	}
	return append(out, g[len(g)-1])
}
