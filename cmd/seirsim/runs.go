package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/seirsim/internal/analysis"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/render"
	"github.com/san-kum/seirsim/internal/sim"
	"github.com/san-kum/seirsim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDAYS\tINTEG\tPEAK_I\tFINAL_R")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%s\t%.2f\t%.2f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid.Stop-run.Grid.Start,
			run.Integrator,
			run.Metrics["peak_I"],
			run.Metrics["final_R"],
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *sim.Trajectory, error) {
	st := storage.New(settings.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if tr.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta, tr, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var rd render.Renderer = render.NewASCII(os.Stdout)
	if outPath != "" {
		rd = render.NewChart(outPath)
	}
	if err := rd.Render(meta.Label, tr); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Printf("wrote %s\n", outPath)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	xIdx, err := epidemic.CompartmentIndex(xAxis)
	if err != nil {
		return err
	}
	yIdx, err := epidemic.CompartmentIndex(yAxis)
	if err != nil {
		return err
	}

	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	portrait, err := analysis.NewPhasePortrait(tr, xIdx, yIdx)
	if err != nil {
		return err
	}

	fmt.Println(render.TitleStyle.Render(fmt.Sprintf("%s: %s vs %s", meta.Label, yAxis, xAxis)))
	fmt.Print(portrait.ToASCII(70, 20))
	fmt.Println(render.Subtle.Render("o = start, x = end"))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return render.WriteCSV(os.Stdout, tr)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := render.WriteCSV(f, tr); err != nil {
		return err
	}
	return f.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	sc, err := meta.Rebuild()
	if err != nil {
		return err
	}

	data := storage.NewExport(*meta, analysis.Summarize(sc, tr), tr)
	if outPath == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	return storage.ExportJSON(outPath, data)
}
