package chathub

import "sync"

// Registry is the single source of truth for which users are connected
// to this process. At most one client is mapped per user id; the last
// successful registration wins, and the superseded client is not
// closed by the registry.
//
// Every registration is stamped with a generation token. Remove is a
// compare-and-delete on that token, so a slow disconnect of an old
// connection can never evict a newer session's entry.
type Registry struct {
	mu      sync.RWMutex
	seq     uint64
	entries map[string]registryEntry
}

type registryEntry struct {
	client Client
	gen    uint64
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register maps userID to client and returns the generation token the
// owning connection must present to Remove.
func (r *Registry) Register(userID string, c Client) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.entries[userID] = registryEntry{client: c, gen: r.seq}
	return r.seq
}

// Lookup returns the live client for userID, if any. Safe to call from
// any goroutine.
func (r *Registry) Lookup(userID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return e.client, true
}

// Remove deletes the mapping only if gen still matches the current
// registration, and reports whether anything was removed.
func (r *Registry) Remove(userID string, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok || e.gen != gen {
		return false
	}
	delete(r.entries, userID)
	return true
}

// Online returns a snapshot of every registered user id.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}
