package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestStore persists pipeline runs as a JSON manifest next to the run outputs.
type ManifestStore struct {
	dir  string
	name string
}

// NewManifestStore creates a store writing name inside dir.
func NewManifestStore(dir, name string) *ManifestStore {
	return &ManifestStore{dir: dir, name: name}
}

// Path returns the manifest location.
func (s *ManifestStore) Path() string {
	return filepath.Join(s.dir, s.name)
}

// Save writes run to the manifest, replacing any previous one.
func (s *ManifestStore) Save(run *PipelineRun) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(s.Path(), append(data, '\n'), 0644)
}

// Load reads the last saved run.
func (s *ManifestStore) Load() (*PipelineRun, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, err
	}
	var run PipelineRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", s.Path(), err)
	}
	return &run, nil
}
