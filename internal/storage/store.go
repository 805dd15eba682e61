package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/orrery/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var samplesHeader = []string{"step", "time", "body", "x", "y", "vx", "vy", "distance"}

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
	ID          string             `json:"id"`
	System      string             `json:"system"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	G           float64            `json:"g"`
	Steps       int                `json:"steps"`
	Ordering    string             `json:"ordering"`
	Degenerate  string             `json:"degenerate"`
	Bodies      []string           `json:"bodies"`
	Anchor      string             `json:"anchor,omitempty"`
	Masses      map[string]float64 `json:"masses,omitempty"`
	Colors      map[string]string  `json:"colors,omitempty"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes meta and samples under a new run directory and returns the
// run ID. meta.ID and meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, samples []sim.Sample) (string, error) {
	now := time.Now()
	runID, err := s.newRunID(meta.System, now)
	if err != nil {
		return "", err
	}
	runDir := filepath.Join(s.baseDir, runID)

	meta.ID = runID
	meta.Timestamp = now

	if err := writeRun(runDir, meta, samples); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, samples []sim.Sample) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	if err := WriteSamplesCSV(csvFile, samples); err != nil {
		return err
	}
	return csvFile.Sync()
}

// newRunID creates the run directory, suffixing the ID when several runs of
// one system land in the same second.
func (s *Store) newRunID(system string, now time.Time) (string, error) {
	system = runPrefix(system)
	base := fmt.Sprintf("%s_%d", system, now.Unix())
	for i := 1; ; i++ {
		runID := base
		if i > 1 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		err := os.Mkdir(filepath.Join(s.baseDir, runID), 0755)
		if err == nil {
			return runID, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
	}
}

// runPrefix reduces a system name to a single path element.
func runPrefix(system string) string {
	system = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, system)
	system = strings.Trim(system, ".")
	if system == "" {
		return "run"
	}
	return system
}

// List returns the metadata of every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadSamplesCSV(file)
}

// WriteSamplesCSV writes samples with a header row.
func WriteSamplesCSV(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(samplesHeader); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{
			strconv.Itoa(smp.Step),
			formatFloat(smp.Time),
			smp.Body,
			formatFloat(smp.X),
			formatFloat(smp.Y),
			formatFloat(smp.VX),
			formatFloat(smp.VY),
			formatFloat(smp.Distance),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadSamplesCSV parses the output of WriteSamplesCSV.
func ReadSamplesCSV(r io.Reader) ([]sim.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(samplesHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		smp, err := parseSample(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", samplesFile, i+2, err)
		}
		samples = append(samples, smp)
	}
	return samples, nil
}

func parseSample(record []string) (sim.Sample, error) {
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return sim.Sample{}, err
	}

	var vals [6]float64
	for i, field := range []string{record[1], record[3], record[4], record[5], record[6], record[7]} {
		vals[i], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return sim.Sample{}, err
		}
	}

	return sim.Sample{
		Step:     step,
		Time:     vals[0],
		Body:     record[2],
		X:        vals[1],
		Y:        vals[2],
		VX:       vals[3],
		VY:       vals[4],
		Distance: vals[5],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
