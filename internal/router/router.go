// Package router implements the venue registry: a flat map from lowercased
// venue key to the adapter that serves it.
package router

import (
	"strings"
	"sync"

	"github.com/latentspeed/execengine/internal/adapter"
)

// Router maps venue keys to adapters. Registration happens once at startup
// (cmd/execengine registers every configured adapter before calling
// internal/core.New and starting the Receiver thread), so lookups after
// Start need no locking; the mutex here
// only guards against a future caller registering after Start begins, which
// would otherwise race the Receiver's reads.
type Router struct {
	mu       sync.RWMutex
	adapters map[string]adapter.Adapter
}

// New returns an empty Router.
func New() *Router {
	return &Router{adapters: make(map[string]adapter.Adapter)}
}

// RegisterAdapter inserts a, keyed by its lowercased Name().
func (r *Router) RegisterAdapter(a adapter.Adapter) {
	key := strings.ToLower(a.Name())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[key] = a
}

// Route returns the adapter registered for venueKey, or ok=false if no
// adapter has been registered under that key.
func (r *Router) Route(venueKey string) (adapter.Adapter, bool) {
	key := strings.ToLower(venueKey)
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[key]
	return a, ok
}

// Venues returns the lowercased keys of every registered adapter.
func (r *Router) Venues() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		out = append(out, k)
	}
	return out
}
