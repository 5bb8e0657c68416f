// Package cache holds resolved application categories and persists them as a
// single serialized blob.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jask/catswitch/internal/category"
)

// Store reads and writes the whole serialized cache.
type Store interface {
	// Load returns nil data when nothing has been stored yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Cache maps application identifiers to categories.
//
// Reads only take the map lock. Writes update the map and then persist the
// whole map; persistence is serialized and coalesced, so a Put whose change
// was already covered by a concurrent save does not write again. Put returns
// once a save containing its change has succeeded.
type Cache struct {
	store Store
	log   *zap.Logger

	mu      sync.RWMutex
	entries map[string]category.Category
	version uint64

	persistMu sync.Mutex
	saved     uint64
}

// Open loads the cache from store. A missing, unreadable or corrupt blob
// yields an empty cache; it never fails.
func Open(ctx context.Context, store Store, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Cache{store: store, log: log, entries: map[string]category.Category{}}

	data, err := store.Load(ctx)
	if err != nil {
		log.Warn("cache load failed, starting empty", zap.Error(err))
		return c
	}
	if len(data) == 0 {
		return c
	}
	entries, dropped, err := decode(data)
	if err != nil {
		log.Warn("cache blob corrupt, starting empty", zap.Error(err))
		return c
	}
	if dropped > 0 {
		log.Warn("cache entries with unknown labels dropped", zap.Int("dropped", dropped))
	}
	c.entries = entries
	log.Debug("cache loaded", zap.Int("entries", len(entries)))
	return c
}

func decode(data []byte) (map[string]category.Category, int, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}
	out := make(map[string]category.Category, len(raw))
	dropped := 0
	for id, label := range raw {
		c, ok := category.Parse(label)
		if !ok {
			dropped++
			continue
		}
		out[id] = c
	}
	return out, dropped, nil
}

// Get returns the cached category for id.
func (c *Cache) Get(id string) (category.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cat, ok := c.entries[id]
	return cat, ok
}

// Len is the number of entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entry is one cached mapping.
type Entry struct {
	ID       string
	Category category.Category
}

// Entries returns all mappings sorted by identifier.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	out := make([]Entry, 0, len(c.entries))
	for id, cat := range c.entries {
		out = append(out, Entry{ID: id, Category: cat})
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Put records id → cat and persists the cache.
func (c *Cache) Put(ctx context.Context, id string, cat category.Category) error {
	if !cat.Valid() {
		return fmt.Errorf("cache: invalid category %d", int(cat))
	}
	c.mu.Lock()
	if cur, ok := c.entries[id]; ok && cur == cat {
		c.mu.Unlock()
		return c.persist(ctx, c.currentVersion())
	}
	c.entries[id] = cat
	c.version++
	v := c.version
	c.mu.Unlock()
	return c.persist(ctx, v)
}

// Delete removes id and persists the cache.
func (c *Cache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if _, ok := c.entries[id]; !ok {
		c.mu.Unlock()
		return nil
	}
	delete(c.entries, id)
	c.version++
	v := c.version
	c.mu.Unlock()
	return c.persist(ctx, v)
}

// Reset removes every entry and persists the empty cache.
func (c *Cache) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.entries = map[string]category.Category{}
	c.version++
	v := c.version
	c.mu.Unlock()
	return c.persist(ctx, v)
}

func (c *Cache) currentVersion() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// persist makes sure a save covering version want has completed.
func (c *Cache) persist(ctx context.Context, want uint64) error {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	if c.saved >= want {
		return nil
	}

	c.mu.RLock()
	snapshot := make(map[string]category.Category, len(c.entries))
	for id, cat := range c.entries {
		snapshot[id] = cat
	}
	v := c.version
	c.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := c.store.Save(ctx, data); err != nil {
		return fmt.Errorf("cache: save: %w", err)
	}
	c.saved = v
	return nil
}
