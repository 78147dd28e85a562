// Package cachestore implements the persistent action cache entry store.
package cachestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EntryStore = (*Store)(nil)

// hotEntries bounds the decoded-entry cache in front of the raw store.
const hotEntries = 1024

// Store implements ports.EntryStore using a flat JSON file.
//
// Entries are held as raw JSON so that one undecodable record surfaces as a
// corrupted entry for its key instead of poisoning the whole store. Decoded
// entries are kept in a small LRU so repeated probes of hot keys skip the
// unmarshal.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]json.RawMessage
	hot     *lru.Cache[string, *domain.Entry]

	statsMu sync.Mutex
	hits    int64
	misses  map[domain.MissReason]int64
}

// Stats is a point-in-time snapshot of the hit/miss counters.
type Stats struct {
	Hits   int64
	Misses map[domain.MissReason]int64
}

// NewStore creates an EntryStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	hot, err := lru.New[string, *domain.Entry](hotEntries)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create entry cache")
	}
	s := &Store{
		path:    filepath.Clean(path),
		entries: make(map[string]json.RawMessage),
		hot:     hot,
		misses:  make(map[domain.MissReason]int64),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read entry store")
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return zerr.Wrap(err, "failed to unmarshal entry store")
	}
	return nil
}

// save writes the store file. Callers must hold mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal entry store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for entry store")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write entry store")
	}
	return nil
}

// Get retrieves the entry stored under key. A record that fails to decode is
// returned as a corrupted entry, never as an error: corruption downgrades to
// a miss at the caller.
func (s *Store) Get(key string) (*domain.Entry, error) {
	if entry, ok := s.hot.Get(key); ok {
		return entry, nil
	}

	s.mu.RLock()
	raw, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var entry domain.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.CorruptedEntry(), nil
	}
	if err := entry.Validate(); err != nil {
		return &entry, nil
	}

	// Re-check under the lock before warming the hot cache: the record may
	// have been removed or replaced while it was being decoded, and adding
	// the stale decode would resurrect it for every future Get.
	s.mu.RLock()
	if current, ok := s.entries[key]; ok && bytes.Equal(current, raw) {
		s.hot.Add(key, &entry)
	}
	s.mu.RUnlock()
	return &entry, nil
}

// Put stores the entry under key.
func (s *Store) Put(key string, entry *domain.Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to marshal cache entry"), "key", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = raw
	s.hot.Add(key, entry)
	return s.save()
}

// Remove drops the entry stored under key, if any.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hot.Remove(key)
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.save()
}

// Clear drops every entry and resets the counters.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.entries = make(map[string]json.RawMessage)
	s.hot.Purge()
	err := s.save()
	s.mu.Unlock()

	s.statsMu.Lock()
	s.hits = 0
	s.misses = make(map[domain.MissReason]int64)
	s.statsMu.Unlock()
	return err
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CountHit increments the hit counter.
func (s *Store) CountHit() {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.hits++
}

// CountMiss increments the miss counter for the given reason.
func (s *Store) CountMiss(reason domain.MissReason) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.misses[reason]++
}

// Snapshot returns a copy of the current counters.
func (s *Store) Snapshot() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	misses := make(map[domain.MissReason]int64, len(s.misses))
	for reason, n := range s.misses {
		misses[reason] = n
	}
	return Stats{Hits: s.hits, Misses: misses}
}
