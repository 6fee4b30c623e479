package catalog

import (
	"sync"

	"awesomearcade/internal/models"
)

// Holder keeps the canonical catalog in memory. The catalog is replaced
// wholesale and never mutated, so readers may keep using a previous value.
type Holder struct {
	mu  sync.RWMutex
	cat *models.Catalog
}

// NewHolder creates a holder with an initial catalog, which may be nil.
func NewHolder(cat *models.Catalog) *Holder {
	return &Holder{cat: cat}
}

// Get returns the current catalog, or nil before one is loaded. Callers
// must not mutate it.
func (h *Holder) Get() *models.Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cat
}

// Replace swaps in a new catalog.
func (h *Holder) Replace(cat *models.Catalog) {
	if cat == nil {
		return
	}
	h.mu.Lock()
	h.cat = cat
	h.mu.Unlock()
}
