package cache

import (
	"time"
)

// Entry is a cached flag value together with the moment it was written.
type Entry struct {
	Value     bool
	Timestamp time.Time
	TTL       time.Duration
}

// Fresh reports whether the entry may still be served at now.
// An entry is fresh while now - Timestamp <= TTL.
func (e Entry) Fresh(now time.Time) bool {
	return now.Sub(e.Timestamp) <= e.TTL
}

// Store holds cache entries. Freshness is decided by Cache, never by the store.
type Store interface {
	// Load returns the entry stored under key
	Load(key string) (Entry, bool)

	// Save inserts or overwrites the entry for key
	Save(key string, entry Entry)

	// Delete removes key; absence is not an error
	Delete(key string)

	// Clear removes every entry
	Clear()

	// Close releases resources held by the store
	Close() error
}

// mapStore is the default unbounded store. Cache serializes access to it.
type mapStore struct {
	entries map[string]Entry
}

func newMapStore() *mapStore {
	return &mapStore{entries: make(map[string]Entry)}
}

func (m *mapStore) Load(key string) (Entry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

func (m *mapStore) Save(key string, entry Entry) {
	m.entries[key] = entry
}

func (m *mapStore) Delete(key string) {
	delete(m.entries, key)
}

func (m *mapStore) Clear() {
	m.entries = make(map[string]Entry)
}

func (m *mapStore) Close() error {
	return nil
}
