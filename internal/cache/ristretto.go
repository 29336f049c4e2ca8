package cache

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// ristrettoStore is a size-bounded Store. Each entry costs 1, so MaxCost is
// the entry limit. Entries dropped by the admission policy become misses.
type ristrettoStore struct {
	cache *ristretto.Cache
}

func newRistrettoStore(cfg Config) (*ristrettoStore, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        cfg.MaxEntries * 10, // ristretto recommends 10x the item count
		MaxCost:            cfg.MaxEntries,
		BufferItems:        cfg.BufferItems,
		IgnoreInternalCost: true, // cost counts entries, not bytes
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}

	return &ristrettoStore{cache: c}, nil
}

func (r *ristrettoStore) Load(key string) (Entry, bool) {
	value, found := r.cache.Get(key)
	if !found {
		return Entry{}, false
	}

	entry, ok := value.(Entry)
	return entry, ok
}

func (r *ristrettoStore) Save(key string, entry Entry) {
	r.cache.Set(key, entry, 1)
	// Sets are buffered; make the write visible to the next Load.
	r.cache.Wait()
}

func (r *ristrettoStore) Delete(key string) {
	r.cache.Del(key)
}

func (r *ristrettoStore) Clear() {
	r.cache.Clear()
}

func (r *ristrettoStore) Close() error {
	r.cache.Close()
	return nil
}
