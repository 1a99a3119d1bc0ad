// Package registry persists the mapping from service name to launch
// metadata as a single JSON object:
//
//	{"web": {"mainfile": "/srv/web/run.py", "startup": true}}
//
// Every mutation rewrites the whole file through an atomic rename. No lock
// is taken, so two svcman processes mutating the registry at the same time
// race and the last writer wins.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"svcman/internal/models"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
)

// Record is the persisted launch metadata of one service.
type Record struct {
	MainFile string `json:"mainfile"`
	Startup  bool   `json:"startup"`
}

// Store reads and writes the registry file.
type Store struct {
	path   string
	logger *logrus.Logger
}

func Open(path string, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the registry file location.
func (s *Store) Path() string { return s.path }

// Ensure creates an empty registry when none exists yet.
func (s *Store) Ensure() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat registry: %w", err)
	}
	s.logger.WithField("path", s.path).Debug("creating empty registry")
	return s.Save(map[string]Record{})
}

// Load returns every record. A missing file is an empty registry.
func (s *Store) Load() (map[string]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	records := map[string]Record{}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", s.path, err)
	}
	if records == nil {
		// a literal null decodes to a nil map
		records = map[string]Record{}
	}
	return records, nil
}

// Save replaces the registry file with records.
func (s *Store) Save(records map[string]Record) error {
	if records == nil {
		records = map[string]Record{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// Get returns the record registered under name.
func (s *Store) Get(name string) (Record, error) {
	records, err := s.Load()
	if err != nil {
		return Record{}, err
	}
	rec, ok := records[name]
	if !ok {
		return Record{}, models.NotFound(name)
	}
	return rec, nil
}

// Add registers a new service. Existing names are never overwritten.
func (s *Store) Add(name string, rec Record) error {
	records, err := s.Load()
	if err != nil {
		return err
	}
	if _, ok := records[name]; ok {
		return models.AlreadyExists(name)
	}

	records[name] = rec
	if err := s.Save(records); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"service":  name,
		"mainfile": rec.MainFile,
	}).Debug("registered service")
	return nil
}

// Remove drops name from the registry. The file is left untouched when the
// name is absent.
func (s *Store) Remove(name string) error {
	records, err := s.Load()
	if err != nil {
		return err
	}
	if _, ok := records[name]; !ok {
		return models.NotFound(name)
	}

	delete(records, name)
	if err := s.Save(records); err != nil {
		return err
	}
	s.logger.WithField("service", name).Debug("removed service from registry")
	return nil
}

// SetStartup flips the start-on-login flag of an existing service.
func (s *Store) SetStartup(name string, startup bool) error {
	records, err := s.Load()
	if err != nil {
		return err
	}
	rec, ok := records[name]
	if !ok {
		return models.NotFound(name)
	}
	if rec.Startup == startup {
		return nil
	}

	rec.Startup = startup
	records[name] = rec
	return s.Save(records)
}

// Names returns the registered service names in sorted order.
func (s *Store) Names() ([]string, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
