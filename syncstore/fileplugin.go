package syncstore

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// FilePlugin is a Plugin backed by a single JSON file, so the
// companion verifier CLI keeps trusted sync-committee periods across
// invocations instead of re-bootstrapping from a weak-subjectivity
// checkpoint (or a full LightClientUpdate chain) on every run. Layout
// mirrors MemPlugin's key space; values are base64 inside the JSON
// document since they are opaque blobs.
type FilePlugin struct {
	path    string
	maxSync uint32
	mu      sync.Mutex
	data    map[string]string
}

// NewFilePlugin loads path if it exists (a missing file is treated as
// an empty store, not an error) and returns a FilePlugin that persists
// every Set/Del back to path immediately — durability over throughput,
// since a verifier CLI invocation issues at most a handful of writes.
func NewFilePlugin(path string, maxSyncStates uint32) (*FilePlugin, error) {
	p := &FilePlugin{path: path, maxSync: maxSyncStates, data: map[string]string{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, errors.Wrapf(err, "syncstore: reading store file %s", path)
	}
	if len(raw) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p.data); err != nil {
		return nil, errors.Wrapf(err, "syncstore: parsing store file %s", path)
	}
	return p, nil
}

func (p *FilePlugin) Get(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	enc, ok := p.data[key]
	if !ok {
		return nil, false
	}
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, false
	}
	return b, true
}

func (p *FilePlugin) Set(key string, value []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = base64.StdEncoding.EncodeToString(value)
	p.save()
}

func (p *FilePlugin) Del(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, key)
	p.save()
}

func (p *FilePlugin) MaxSyncStates() uint32 { return p.maxSync }

// save persists the store under p.mu; errors are swallowed to keep the
// Plugin interface's Set/Del void-returning shape — a verifier run
// that can't persist still completes the verification at hand with
// the trust it already has in memory.
func (p *FilePlugin) save() {
	raw, err := json.Marshal(p.data)
	if err != nil {
		return
	}
	_ = os.WriteFile(p.path, raw, 0o600)
}
