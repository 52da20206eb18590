package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/strucsim/internal/sim"
	"github.com/san-kum/strucsim/internal/structure"
)

const (
	metadataFile  = "metadata.json"
	framesFile    = "frames.csv"
	structureFile = "structure.yaml"
)

var ErrNoFrames = errors.New("storage: run has no frames")

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
	ID        string             `json:"id"`
	Structure string             `json:"structure"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Nodes     int                `json:"nodes"`
	Segments  int                `json:"segments"`
	Weights   int                `json:"weights"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding metadata, every recorded frame as CSV
// and the structure in its final (post-run) state.
func (s *Store) Save(name string, cfg sim.Config, st *structure.Structure, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%s", slug(name), now.Format("20060102-150405.000"))
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Structure: name,
		Timestamp: now,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Steps:     result.StepsTaken,
		Nodes:     len(result.Nodes),
		Segments:  len(result.Segments),
		Weights:   len(st.Weights()),
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := structure.Save(filepath.Join(runDir, structureFile), st); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteFramesCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadStructure returns the structure as it stood at the end of the run.
func (s *Store) LoadStructure(runID string) (*structure.Structure, error) {
	return structure.Load(filepath.Join(s.baseDir, runID, structureFile))
}

// FrameTable is frames.csv read back as columns of numbers.
type FrameTable struct {
	Header []string
	Rows   [][]float64
}

// Column returns the named column, or false when it does not exist.
func (t *FrameTable) Column(name string) ([]float64, bool) {
	idx := -1
	for i, h := range t.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			out = append(out, row[idx])
		}
	}
	return out, true
}

func (s *Store) LoadFrames(runID string) (*FrameTable, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNoFrames)
	}

	table := &FrameTable{
		Header: records[0],
		Rows:   make([][]float64, 0, len(records)-1),
	}
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}

		row := make([]float64, 0, len(record))
		for _, field := range record {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			row = append(row, val)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func slug(name string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, name)
	if out == "" {
		return "run"
	}
	return out
}
