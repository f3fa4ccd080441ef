package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/shatterblade/internal/config"
	"github.com/san-kum/shatterblade/internal/experiment"
	"github.com/san-kum/shatterblade/internal/metrics"
)

var (
	ErrUnknownRun = errors.New("storage: unknown run")
	ErrBadSamples = errors.New("storage: malformed samples file")
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

// SampleHeader is the column layout of samples.csv.
var SampleHeader = []string{"time", "mode", "free", "reforming", "locked", "residual", "violations", "switches", "holstered"}

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
	Session    string             `json:"session"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Events     map[string]int     `json:"events"`
	Pulses     int                `json:"pulses"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a run under a new directory and returns its ID.
func (s *Store) Save(cfg *config.Config, res *experiment.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d_%s", res.Scenario, now.Unix(), res.Session.String()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	events := make(map[string]int)
	for _, e := range res.Events {
		events[string(e.Kind)]++
	}
	meta := RunMetadata{
		ID:         runID,
		Scenario:   res.Scenario,
		Session:    res.Session.String(),
		Timestamp:  now,
		Seed:       res.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		Steps:      res.StepsTaken,
		Events:     events,
		Pulses:     res.Pulses,
		Metrics:    res.Metrics,
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

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteSamples(csvFile, res.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteSamples writes samples as CSV with [SampleHeader].
func WriteSamples(out io.Writer, samples []metrics.Sample) error {
	w := csv.NewWriter(out)
	if err := w.Write(SampleHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.Time, 'f', 6, 64),
			s.Mode,
			strconv.Itoa(s.Free),
			strconv.Itoa(s.Reforming),
			strconv.Itoa(s.Locked),
			strconv.FormatFloat(s.Residual, 'f', 6, 64),
			strconv.Itoa(s.Violations),
			strconv.Itoa(s.Switches),
			strconv.FormatBool(s.Holstered),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// SamplesPath is where a run's samples live.
func (s *Store) SamplesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, samplesFile)
}

func (s *Store) LoadSamples(runID string) ([]metrics.Sample, error) {
	file, err := os.Open(s.SamplesPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(SampleHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSamples, err)
	}
	if len(records) < 2 {
		return []metrics.Sample{}, nil
	}

	samples := make([]metrics.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		s, err := parseSample(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadSamples, i+2, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseSample(rec []string) (metrics.Sample, error) {
	var s metrics.Sample
	var err error
	if s.Time, err = strconv.ParseFloat(rec[0], 64); err != nil {
		return s, err
	}
	s.Mode = rec[1]
	ints := []*int{&s.Free, &s.Reforming, &s.Locked}
	for k, p := range ints {
		if *p, err = strconv.Atoi(rec[2+k]); err != nil {
			return s, err
		}
	}
	if s.Residual, err = strconv.ParseFloat(rec[5], 64); err != nil {
		return s, err
	}
	if s.Violations, err = strconv.Atoi(rec[6]); err != nil {
		return s, err
	}
	if s.Switches, err = strconv.Atoi(rec[7]); err != nil {
		return s, err
	}
	if s.Holstered, err = strconv.ParseBool(rec[8]); err != nil {
		return s, err
	}
	return s, nil
}
