// Package store persists confirmed appearance events as a single JSON
// document with atomic-replace writes and a recoverable backup copy.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store is the long-lived scan result store. All mutations happen under a
// single lock; the scan orchestrator is the only writer during a scan, but
// the web UI may read concurrently.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  document
}

// BackupPath returns the backup file location for a store path.
func BackupPath(path string) string {
	if strings.HasSuffix(path, ".json") {
		return strings.TrimSuffix(path, ".json") + "_bk.json"
	}
	return path + "_bk"
}

// WriteJSONAtomic marshals v and writes it to path via a temporary file and
// rename, so readers never observe a partially written document.
func WriteJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Load opens the store at path. A missing file yields an empty store; an
// unreadable primary falls back to the backup copy; if both fail the caller
// still gets an empty store rather than an error.
func Load(path string, logger *slog.Logger) *Store {
	s := &Store{path: path, doc: newDocument()}

	if tryLoadDocument(path, &s.doc) {
		return s
	}
	bk := BackupPath(path)
	if tryLoadDocument(bk, &s.doc) {
		if logger != nil {
			logger.Warn("recovered scan store from backup", "path", bk)
		}
		return s
	}
	if logger != nil {
		if _, err := os.Stat(path); err == nil {
			logger.Error("scan store unreadable, starting empty", "path", path)
		}
	}
	s.doc = newDocument()
	return s
}

func tryLoadDocument(path string, doc *document) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var d document
	if err := json.Unmarshal(data, &d); err != nil {
		return false
	}
	if d.People == nil {
		d.People = make(map[string]map[string][]Event)
	}
	if d.Metadata == nil {
		d.Metadata = make(map[string]VideoMeta)
	}
	*doc = d
	return true
}

// Save writes the store atomically and refreshes the backup copy.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := WriteJSONAtomic(s.path, s.doc); err != nil {
		return err
	}
	// Backup is refreshed after a successful primary write; a crash in
	// between leaves a stale but valid backup.
	return WriteJSONAtomic(BackupPath(s.path), s.doc)
}

// Scanned reports whether a video path has complete scan metadata.
func (s *Store) Scanned(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.doc.Metadata[path]
	return ok
}

// Meta returns the scan metadata for a video path.
func (s *Store) Meta(path string) (VideoMeta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.doc.Metadata[path]
	return m, ok
}

// MergeVideo records one fully scanned video: its metadata and the events of
// every identity for that path are replaced wholesale, so a forced re-scan
// never accumulates duplicates.
func (s *Store) MergeVideo(path string, meta VideoMeta, events map[string][]Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Metadata[path] = meta
	for name := range s.doc.People {
		delete(s.doc.People[name], path)
	}
	for name, evs := range events {
		if len(evs) == 0 {
			continue
		}
		if s.doc.People[name] == nil {
			s.doc.People[name] = make(map[string][]Event)
		}
		s.doc.People[name][path] = evs
	}
}

// EnsurePeople creates empty buckets for newly registered identities so the
// document shape stays in sync with the registry.
func (s *Store) EnsurePeople(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		if s.doc.People[name] == nil {
			s.doc.People[name] = make(map[string][]Event)
		}
	}
}

// PurgePerson removes an identity and all its events (cascade on profile
// deletion).
func (s *Store) PurgePerson(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.People, name)
}

// DeleteEvent removes a single event (manual curation). Reports whether
// anything was deleted.
func (s *Store) DeleteEvent(name, videoPath string, t float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos, ok := s.doc.People[name]
	if !ok {
		return false
	}
	events := videos[videoPath]
	for i, ev := range events {
		if ev.Time == t {
			events = append(events[:i], events[i+1:]...)
			if len(events) == 0 {
				delete(videos, videoPath)
			} else {
				videos[videoPath] = events
			}
			return true
		}
	}
	return false
}

// EventsFor returns a copy of one identity's events keyed by video path.
func (s *Store) EventsFor(name string) (map[string][]Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	videos, ok := s.doc.People[name]
	if !ok {
		return nil, false
	}
	out := make(map[string][]Event, len(videos))
	for path, evs := range videos {
		out[path] = append([]Event(nil), evs...)
	}
	return out, true
}

// People returns the registered identity names present in the store, sorted.
func (s *Store) People() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.doc.People))
	for name := range s.doc.People {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Videos returns all scanned video paths, sorted.
func (s *Store) Videos() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.doc.Metadata))
	for path := range s.doc.Metadata {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// EventCount returns the total number of events stored for an identity.
func (s *Store) EventCount(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, evs := range s.doc.People[name] {
		n += len(evs)
	}
	return n
}
