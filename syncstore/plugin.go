package syncstore

import (
	lru "github.com/hashicorp/golang-lru"
)

// Plugin is the pluggable blob-storage contract spec.md §4.5 and §6
// describe: a simple get/set/delete keyed store plus the eviction
// bound the store enforces. Keys are ASCII strings of the form
// "states_<chain_id>" or "sync_<chain_id>_<period>".
type Plugin interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
	MaxSyncStates() uint32
}

// MemPlugin is the default in-process Plugin, backed by an LRU cache
// so a host that never wires a persistent key-value store (the
// production deployment this module expects, per spec.md §1's
// out-of-scope list) still gets working eviction semantics out of the
// box — useful for the companion proofer/verifier CLIs and for tests.
type MemPlugin struct {
	cache   *lru.Cache
	maxSync uint32
}

// NewMemPlugin returns a MemPlugin bounding the sync-committee store
// to maxSyncStates periods per chain.
func NewMemPlugin(maxSyncStates uint32) *MemPlugin {
	// Generously sized: each chain's "states_*" index entry plus up to
	// maxSyncStates pubkey blobs; the LRU bound here guards total key
	// count, the store's own eviction (store.go) guards period count.
	c, _ := lru.New(int(maxSyncStates)*4 + 16)
	return &MemPlugin{cache: c, maxSync: maxSyncStates}
}

func (m *MemPlugin) Get(key string) ([]byte, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (m *MemPlugin) Set(key string, value []byte) {
	m.cache.Add(key, value)
}

func (m *MemPlugin) Del(key string) {
	m.cache.Remove(key)
}

func (m *MemPlugin) MaxSyncStates() uint32 { return m.maxSync }
