package metrics

import (
	"math"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
)

// Peak tracks the largest value of one compartment.
type Peak struct {
	name  string
	idx   int
	value float64
	time  float64
	seen  bool
}

func NewPeak(idx int) *Peak {
	return &Peak{name: "peak_" + epidemic.CompartmentNames[idx], idx: idx}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, t float64) {
	if !p.seen || x[p.idx] > p.value {
		p.value, p.time, p.seen = x[p.idx], t, true
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.value
}

// Time is when the peak was first reached.
func (p *Peak) Time() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.time
}

func (p *Peak) Reset() {
	p.value, p.time, p.seen = 0, 0, false
}

// PeakTime reports Peak.Time as its own metric.
type PeakTime struct {
	*Peak
}

func NewPeakTime(idx int) *PeakTime {
	p := NewPeak(idx)
	p.name = "peak_time_" + epidemic.CompartmentNames[idx]
	return &PeakTime{Peak: p}
}

func (p *PeakTime) Value() float64 { return p.Time() }

// Final is the last observed value of one compartment.
type Final struct {
	name  string
	idx   int
	value float64
}

func NewFinal(idx int) *Final {
	return &Final{name: "final_" + epidemic.CompartmentNames[idx], idx: idx, value: math.NaN()}
}

func (f *Final) Name() string                      { return f.name }
func (f *Final) Observe(x dynamo.State, _ float64) { f.value = x[f.idx] }
func (f *Final) Value() float64                    { return f.value }
func (f *Final) Reset()                            { f.value = math.NaN() }
