// Package storage persists simulation runs to disk: one directory per
// run holding metadata, the scenario file, and the full history as csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/controldev/mracsim/internal/config"
	"github.com/controldev/mracsim/internal/dynamo"
	"github.com/controldev/mracsim/internal/sim"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Kind       string             `json:"kind"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Status     string             `json:"status"`
	StepsTaken int                `json:"steps_taken"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one run directory: metadata.json, scenario.yaml, and
// history.csv. It returns the run ID.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	name := cfg.Scenario
	if name == "" {
		name = cfg.Kind
	}
	runID := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   cfg.Scenario,
		Kind:       cfg.Kind,
		Timestamp:  time.Now(),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      cfg.Steps,
		Integrator: cfg.Integrator,
		Status:     result.Status.String(),
		StepsTaken: result.StepsTaken,
		Metrics:    result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, "scenario.yaml"), cfg); err != nil {
		return "", err
	}

	if err := writeHistory(filepath.Join(runDir, "history.csv"), result.Records); err != nil {
		return "", err
	}
	return runID, nil
}

func writeHistory(path string, records []sim.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if len(records) == 0 {
		return nil
	}
	first := records[0]

	header := []string{"time"}
	for i := range first.XP {
		header = append(header, fmt.Sprintf("xp%d", i))
	}
	for i := range first.XM {
		header = append(header, fmt.Sprintf("xm%d", i))
	}
	for i := range first.Theta {
		header = append(header, fmt.Sprintf("theta%d", i))
	}
	for i := range first.U {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	for i := range first.E {
		header = append(header, fmt.Sprintf("e%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for _, rec := range records {
		row = row[:0]
		row = append(row, strconv.FormatFloat(rec.T, 'f', 6, 64))
		for _, block := range [][]float64{rec.XP, rec.XM, rec.Theta, rec.U, rec.E} {
			for _, v := range block {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadHistory reads a run's history.csv back into records, using the
// header to recover the block widths.
func (s *Store) LoadHistory(runID string) ([]sim.Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "history.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []sim.Record{}, nil
	}

	var np, nm, nt, nu, ne int
	for _, col := range rows[0][1:] {
		switch {
		case len(col) > 2 && col[:2] == "xp":
			np++
		case len(col) > 2 && col[:2] == "xm":
			nm++
		case len(col) > 5 && col[:5] == "theta":
			nt++
		case len(col) > 1 && col[0] == 'u':
			nu++
		case len(col) > 1 && col[0] == 'e':
			ne++
		}
	}

	records := make([]sim.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != 1+np+nm+nt+nu+ne {
			return nil, fmt.Errorf("history row has %d columns, want %d", len(row), 1+np+nm+nt+nu+ne)
		}
		vals := make([]float64, len(row))
		for i, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}

		rec := sim.Record{T: vals[0]}
		at := 1
		rec.XP = dynamo.State(vals[at : at+np : at+np])
		at += np
		rec.XM = dynamo.State(vals[at : at+nm : at+nm])
		at += nm
		rec.Theta = dynamo.State(vals[at : at+nt : at+nt])
		at += nt
		rec.U = dynamo.Control(vals[at : at+nu : at+nu])
		at += nu
		if ne > 0 {
			rec.E = dynamo.State(vals[at : at+ne : at+ne])
		}
		records = append(records, rec)
	}
	return records, nil
}
