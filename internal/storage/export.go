package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/seirsim/internal/analysis"
	"github.com/san-kum/seirsim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Summary analysis.Summary `json:"summary"`
	Times   []float64        `json:"times"`
	States  [][]float64      `json:"states"`
}

func NewExport(meta RunMetadata, summary analysis.Summary, tr *sim.Trajectory) ExportData {
	data := ExportData{
		RunMetadata: meta,
		Summary:     summary,
		Times:       tr.Times,
		States:      make([][]float64, len(tr.States)),
	}
	for i, x := range tr.States {
		data.States[i] = x
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, data); err != nil {
		return err
	}
	return file.Close()
}
