package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/san-kum/seirsim/internal/analysis"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/sim"
)

// Table prints every Every-th output point plus the last one.
type Table struct {
	W     io.Writer
	Every int
}

func (t *Table) Render(label string, tr *sim.Trajectory) error {
	fmt.Fprintln(t.W, TitleStyle.Render(label))

	every := t.Every
	if every < 1 {
		every = 1
	}

	tw := tabwriter.NewWriter(t.W, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "day\tS\tE\tI\tR\t")
	for k, x := range tr.States {
		if k%every != 0 && k != tr.Len()-1 {
			continue
		}
		fmt.Fprintf(tw, "%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n", tr.Times[k], x[epidemic.S], x[epidemic.E], x[epidemic.I], x[epidemic.R])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for i, name := range epidemic.CompartmentNames {
		fmt.Fprintf(t.W, "%s %s\n", LabelStyle.Render(name), Sparkline(tr.Series(i), 60))
	}
	return nil
}

// WriteSummaries prints one line per run for side-by-side comparison.
func WriteSummaries(w io.Writer, summaries []analysis.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "scenario\tR0\tpeak I\tpeak day\tfinal R\tattack rate\tdrift\tsteps")
	for _, s := range summaries {
		peak, _ := s.Peak("I")
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f%%\t%.2e\t%d\n",
			s.Label, s.R0, peak.Value, peak.Time, s.FinalSize, 100*s.AttackRate, s.Conservation.MaxDrift, s.Steps)
	}
	return tw.Flush()
}

// WriteSummary prints the detail block for one run.
func WriteSummary(w io.Writer, s analysis.Summary) {
	fmt.Fprintln(w, TitleStyle.Render(s.Label))
	row := func(k, v string) {
		fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render(fmt.Sprintf("%-14s", k)), ValueStyle.Render(v))
	}
	row("R0", fmt.Sprintf("%.3f", s.R0))
	for _, p := range s.Peaks {
		row("peak "+p.Variable, fmt.Sprintf("%.3f on day %.2f", p.Value, p.Time))
	}
	row("final size", fmt.Sprintf("%.3f", s.FinalSize))
	row("attack rate", fmt.Sprintf("%.2f%%", 100*s.AttackRate))
	row("drift", fmt.Sprintf("%.3e", s.Conservation.MaxDrift))
	row("steps", fmt.Sprintf("%d accepted, %d rejected", s.Steps, s.Rejected))
}
