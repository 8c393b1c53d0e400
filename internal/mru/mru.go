// Package mru keeps the bounded, move-to-front recent-items lists, one
// per kind key ("files", "folders", "conflicts", ...). The in-memory
// lists ride on an LRU cache; persistence goes through the Store
// collaborator, which the core only ever writes to.
package mru

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"collate/internal/logger"
)

// Store persists a kind key's recent list. The core calls it and never
// reads it back except at startup seeding.
type Store interface {
	SaveRecent(kindKey string, items []string)
	LoadRecent(kindKey string) []string
}

// History is the MRU front end over all kind keys.
type History struct {
	store Store
	lists map[string]*lru.Cache[string, struct{}]
	max   int
}

// DefaultMaxItems bounds each recent list.
const DefaultMaxItems = 20

// New creates a history bound to maxItems per kind key, seeded from the
// store.
func New(store Store, maxItems int) *History {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &History{
		store: store,
		lists: make(map[string]*lru.Cache[string, struct{}]),
		max:   maxItems,
	}
}

func (h *History) list(kindKey string) *lru.Cache[string, struct{}] {
	if c, ok := h.lists[kindKey]; ok {
		return c
	}
	c, err := lru.New[string, struct{}](h.max)
	if err != nil {
		// Only reachable with a non-positive size, which New prevents.
		panic(err)
	}
	if h.store != nil {
		// Seed oldest-first so the persisted front ends up most recent.
		seed := h.store.LoadRecent(kindKey)
		for i := len(seed) - 1; i >= 0; i-- {
			c.Add(seed[i], struct{}{})
		}
	}
	h.lists[kindKey] = c
	return c
}

// AddRecent moves item to the front of the kind key's list, evicting
// past the bound, and persists the result.
func (h *History) AddRecent(kindKey, item string, maxItems int) {
	c := h.list(kindKey)
	c.Add(item, struct{}{})
	for maxItems > 0 && c.Len() > maxItems {
		c.RemoveOldest()
	}
	if h.store != nil {
		h.store.SaveRecent(kindKey, h.Recent(kindKey))
	}
	logger.Debug("MRU: added %q to %s", item, kindKey)
}

// Recent returns the kind key's list, most recent first.
func (h *History) Recent(kindKey string) []string {
	keys := h.list(kindKey).Keys() // oldest to newest
	out := make([]string, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		out = append(out, keys[i])
	}
	return out
}
