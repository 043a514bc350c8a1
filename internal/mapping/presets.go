package mapping

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v2"
)

// PresetStore persists named field-mapping presets. The pipeline itself
// only ever needs a FieldMapping; where it was loaded from is the
// caller's concern, so the store is passed in explicitly rather than
// living as ambient global state.
type PresetStore interface {
	Save(name string, m FieldMapping) error
	Load(name string) (FieldMapping, bool, error)
	List() ([]string, error)
	Delete(name string) error
}

// MemoryStore is an in-process PresetStore, safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	presets map[string]FieldMapping
}

// NewMemoryStore creates an empty in-memory preset store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{presets: make(map[string]FieldMapping)}
}

// Save stores a copy of the mapping under the given name.
func (s *MemoryStore) Save(name string, m FieldMapping) error {
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets[name] = m.Clone()
	return nil
}

// Load returns a copy of the named preset.
func (s *MemoryStore) Load(name string) (FieldMapping, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.presets[name]
	if !ok {
		return nil, false, nil
	}
	return m.Clone(), true, nil
}

// List returns preset names in sorted order.
func (s *MemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a preset. Deleting a missing preset is not an error.
func (s *MemoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.presets, name)
	return nil
}

// FileStore is a YAML-file-backed PresetStore. The whole file is read
// and rewritten per operation; preset files are small.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the given YAML file. The file
// is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) read() (map[string]map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preset file: %w", err)
	}
	out := make(map[string]map[string]string)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse preset file: %w", err)
	}
	return out, nil
}

func (s *FileStore) write(all map[string]map[string]string) error {
	data, err := yaml.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write preset file: %w", err)
	}
	return nil
}

// Save persists a preset to the backing file.
func (s *FileStore) Save(name string, m FieldMapping) error {
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	all[name] = m.Assignments()
	return s.write(all)
}

// Load reads a preset from the backing file.
func (s *FileStore) Load(name string) (FieldMapping, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, false, err
	}
	assignments, ok := all[name]
	if !ok {
		return nil, false, nil
	}
	return Resolve(assignments), true, nil
}

// List returns preset names in sorted order.
func (s *FileStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a preset from the backing file.
func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	delete(all, name)
	return s.write(all)
}
