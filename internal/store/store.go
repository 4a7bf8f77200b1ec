// Package store persists accepted sequences so a file entry can be reset or
// reopened later.
package store

import (
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned by Load when no record exists for a key.
var ErrNotFound = errors.New("sequence record not found")

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Record is the persisted state of one file entry: the accepted file, the
// ordered list of sequence members (full paths) and the selected timestep.
type Record struct {
	Key      string    `json:"key"`
	Value    string    `json:"value"`
	Files    []string  `json:"files"`
	TimeStep int       `json:"timestep"`
	Updated  time.Time `json:"updated"`
}

// Dir returns the directory shared by the sequence members.
func (r *Record) Dir() string {
	if r.Value == "" {
		return ""
	}
	return filepath.Dir(r.Value)
}

// Current returns the file at TimeStep, falling back to Value.
func (r *Record) Current() string {
	if r.TimeStep >= 0 && r.TimeStep < len(r.Files) {
		return r.Files[r.TimeStep]
	}
	return r.Value
}

func (r Record) clone() Record {
	r.Files = append([]string(nil), r.Files...)
	return r
}

// SequenceStore abstracts record persistence for easier testing.
type SequenceStore interface {
	Load(key string) (*Record, error)
	Save(rec Record) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

// MemoryStore is a SequenceStore kept in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Load(key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	rec = rec.clone()
	return &rec, nil
}

func (m *MemoryStore) Save(rec Record) error {
	if rec.Key == "" {
		return errors.New("record key cannot be empty")
	}
	if rec.Updated.IsZero() {
		rec.Updated = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Key] = rec.clone()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
