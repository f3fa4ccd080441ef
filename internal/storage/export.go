package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/shatterblade/internal/metrics"
)

// ExportData is a run's metadata together with every sample.
type ExportData struct {
	Run     RunMetadata      `json:"run"`
	Samples []metrics.Sample `json:"samples"`
}

// Export reads a stored run in full.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Samples: samples}, nil
}

// ExportJSON writes a stored run in full as indented JSON.
func (s *Store) ExportJSON(out io.Writer, runID string) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
