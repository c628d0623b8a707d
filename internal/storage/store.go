package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/epidemic"
	"github.com/san-kum/seirsim/internal/render"
	"github.com/san-kum/seirsim/internal/scenario"
	"github.com/san-kum/seirsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type GridInfo struct {
	Start  float64 `json:"start"`
	Stop   float64 `json:"stop"`
	Points int     `json:"points"`
}

type Solver struct {
	RelTol    float64 `json:"rtol"`
	AbsTol    float64 `json:"atol"`
	MaxSteps  int     `json:"max_steps"`
	FixedStep float64 `json:"fixed_step,omitempty"`
}

type RunMetadata struct {
	ID         string                `json:"id"`
	Scenario   string                `json:"scenario"`
	Label      string                `json:"label"`
	Timestamp  time.Time             `json:"timestamp"`
	Integrator string                `json:"integrator"`
	Solver     Solver                `json:"solver"`
	Params     epidemic.Params       `json:"params"`
	Initial    epidemic.Compartments `json:"initial"`
	Grid       GridInfo              `json:"grid"`
	Notes      []scenario.Note       `json:"notes,omitempty"`
	Metrics    map[string]float64    `json:"metrics"`
	Steps      int                   `json:"steps"`
	Rejected   int                   `json:"rejected"`
}

// Describe fills the metadata for one finished run. ID and Timestamp are
// assigned by Save.
func Describe(sc *scenario.Scenario, integrator string, opts sim.Options, tr *sim.Trajectory) RunMetadata {
	grid := sc.Grid()
	return RunMetadata{
		Scenario:   sc.Name(),
		Label:      sc.Label(),
		Integrator: integrator,
		Solver:     Solver{RelTol: opts.RelTol, AbsTol: opts.AbsTol, MaxSteps: opts.MaxSteps, FixedStep: opts.FixedStep},
		Params:     sc.Params(),
		Initial:    sc.Initial(),
		Grid:       GridInfo{Start: grid.Start(), Stop: grid.End(), Points: len(grid)},
		Notes:      sc.Notes(),
		Metrics:    tr.Metrics,
		Steps:      tr.StepsTaken,
		Rejected:   tr.StepsRejected,
	}
}

// Rebuild recreates the scenario a stored run was made from.
func (m RunMetadata) Rebuild() (*scenario.Scenario, error) {
	grid := dynamo.Linspace(m.Grid.Start, m.Grid.Stop, m.Grid.Points)
	return scenario.New(m.Scenario, m.Label, m.Params, m.Initial, grid, m.Notes...)
}

// Save writes <base>/<id>/states.csv and metadata.json and returns the id.
// A failed save leaves no run directory behind.
func (s *Store) Save(meta RunMetadata, tr *sim.Trajectory) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scenario, now.UnixNano())
	meta.Timestamp = now
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	// metadata.json goes last: List only sees runs whose states are complete.
	err := writeCSV(filepath.Join(runDir, "states.csv"), tr)
	if err == nil {
		err = writeJSON(filepath.Join(runDir, "metadata.json"), meta)
	}
	if err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save %s: %w", meta.ID, err)
	}
	return meta.ID, nil
}

func writeCSV(path string, tr *sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := render.WriteCSV(f, tr); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads states.csv back. Metrics and step counts come from
// the metadata.
func (s *Store) LoadTrajectory(runID string) (*sim.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 1 + epidemic.NumCompartments

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	tr := &sim.Trajectory{
		Metrics:       meta.Metrics,
		StepsTaken:    meta.Steps,
		StepsRejected: meta.Rejected,
	}
	for i, record := range records {
		if i == 0 {
			continue
		}
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: line %d: %w", runID, i+1, err)
			}
			row[j] = v
		}
		tr.Times = append(tr.Times, row[0])
		tr.States = append(tr.States, dynamo.State(row[1:]))
	}
	return tr, nil
}
