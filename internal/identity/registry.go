// Package identity manages registered people and matches face embeddings
// against their reference sets.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"facereel/internal/store"
)

// Registry holds the registered identities: name -> ordered reference
// embeddings. Multiple references per person accumulate over time and
// matching takes the minimum distance across all of them.
type Registry struct {
	mu     sync.RWMutex
	path   string
	people map[string][][]float32
}

// LoadRegistry reads the registry file at path. A missing file yields an
// empty registry.
func LoadRegistry(path string) (*Registry, error) {
	r := &Registry{path: path, people: make(map[string][][]float32)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	if err := json.Unmarshal(data, &r.people); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return r, nil
}

// Save persists the registry atomically.
func (r *Registry) Save() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return store.WriteJSONAtomic(r.path, r.people)
}

// Register appends a reference embedding for name, creating the identity if
// it is new.
func (r *Registry) Register(name string, embedding []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref := append([]float32(nil), embedding...)
	r.people[name] = append(r.people[name], ref)
}

// Delete removes an identity and all its references. Reports whether the
// identity existed. Callers own the cascade into the scan store.
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.people[name]; !ok {
		return false
	}
	delete(r.people, name)
	return true
}

// Names returns the registered identity names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.people))
	for name := range r.people {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// References returns the number of reference embeddings stored for name.
func (r *Registry) References(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.people[name])
}

// references returns the raw reference list for matching.
func (r *Registry) references() map[string][][]float32 {
	return r.people
}
