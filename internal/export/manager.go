package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrExporterNotFound is returned when a requested exporter has not been
// discovered.
var ErrExporterNotFound = errors.New("exporter not found")

// Manager discovers exporters and hands them out by name.
type Manager struct {
	exporterDir string
	exporters   map[string]*Exporter
	mu          sync.RWMutex
}

// NewManager creates a Manager rooted at the given exporter directory.
func NewManager(exporterDir string) *Manager {
	return &Manager{
		exporterDir: exporterDir,
		exporters:   make(map[string]*Exporter),
	}
}

// Discover rescans the exporter directory. Every subdirectory holding a
// plugin.json manifest becomes an exporter; unreadable or malformed
// manifests are skipped so one broken exporter cannot block the rest.
// A missing exporter directory is not an error, it just means there is
// nothing to run.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exporters = make(map[string]*Exporter)

	info, err := os.Stat(m.exporterDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.exporterDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		exporterPath := filepath.Join(m.exporterDir, entry.Name())

		manifestData, err := os.ReadFile(filepath.Join(exporterPath, "plugin.json"))
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(manifestData, &manifest); err != nil {
			continue
		}

		m.exporters[manifest.Name] = &Exporter{
			Manifest:   manifest,
			Path:       exporterPath,
			Executable: filepath.Join(exporterPath, manifest.Executable),
		}
	}

	return nil
}

// Get returns a discovered exporter by name.
// Returns ErrExporterNotFound if no exporter with that name exists.
func (m *Manager) Get(name string) (*Exporter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exp, ok := m.exporters[name]
	if !ok {
		return nil, ErrExporterNotFound
	}

	return exp, nil
}

// List returns all discovered exporters.
func (m *Manager) List() []*Exporter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	exporters := make([]*Exporter, 0, len(m.exporters))
	for _, exp := range m.exporters {
		exporters = append(exporters, exp)
	}

	return exporters
}

// ExporterDir returns the directory the manager scans.
func (m *Manager) ExporterDir() string {
	return m.exporterDir
}
