package board

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownBoard is returned when a registry has no manifest for an id.
var ErrUnknownBoard = errors.New("board: unknown board")

// Registry knows how to look up board manifests by id.
type Registry interface {
	Board(id string) (*Manifest, error)
	IDs() []string
}

// MemoryRegistry is an in-memory registry, filled either by hand or from a
// directory of JSON manifests.
type MemoryRegistry struct {
	mu     sync.RWMutex
	boards map[string]*Manifest
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{boards: make(map[string]*Manifest)}
}

// Add registers a manifest under id. The manifest's ID is set to id when it
// is empty.
func (r *MemoryRegistry) Add(id string, m *Manifest) {
	if m.ID == "" {
		m.ID = id
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boards[id] = m
}

// Board implements Registry. The returned manifest is a copy.
func (r *MemoryRegistry) Board(id string) (*Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.boards[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownBoard, id)
	}
	return m.Clone(), nil
}

// IDs implements Registry.
func (r *MemoryRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.boards))
	for id := range r.boards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadDir recursively loads every .json manifest below root. A board's id is
// its file name without extension unless the manifest sets one.
func (r *MemoryRegistry) LoadDir(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		m, err := LoadFile(path)
		if err != nil {
			return err
		}
		r.Add(m.ID, m)
		return nil
	})
}
