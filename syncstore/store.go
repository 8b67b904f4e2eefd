// Package syncstore is the trusted sync-committee store spec.md §4.5
// describes: a per-chain, per-period cache of the 512 validator
// pubkeys a light client trusts, advanced only by verifying
// LightClientUpdates against the committee already on file, and
// bounded to a configurable number of periods via LRU-style eviction.
package syncstore

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/corpus-core/c4go/beacon"
)

const pubkeysBlobLen = beacon.SyncCommitteeSize * 48

// TrustedCommittee is one stored sync-committee period.
type TrustedCommittee struct {
	Period  uint64
	Root    [32]byte // hash_tree_root of the SyncCommittee container, kept for diagnostics
	Pubkeys []byte   // 512 concatenated 48-byte compressed G1 points
}

// Store is a chain-scoped view over a Plugin, enforcing the period
// bound the plugin reports via MaxSyncStates.
type Store struct {
	plugin Plugin
	mu     sync.Mutex
}

// New wraps plugin in a Store.
func New(plugin Plugin) *Store {
	return &Store{plugin: plugin}
}

func statesKey(chainID uint64) string { return fmt.Sprintf("states_%d", chainID) }

func committeeKey(chainID, period uint64) string { return fmt.Sprintf("sync_%d_%d", chainID, period) }

// Trust installs c as a trust anchor, bypassing ApplyUpdates'
// signature verification — the root of trust a light client starts
// from (e.g. a weak-subjectivity checkpoint synced out of band).
func (s *Store) Trust(chainID uint64, c TrustedCommittee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(chainID, c)
}

// Get returns the trusted committee for chainID at period, or
// *MissingPeriodError if the store has not verified that period yet.
func (s *Store) Get(chainID, period uint64) (*TrustedCommittee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.plugin.Get(committeeKey(chainID, period))
	if !ok {
		return nil, &MissingPeriodError{Period: period}
	}
	if len(blob) != 32+pubkeysBlobLen {
		return nil, errors.Errorf("syncstore: corrupt committee blob for period %d", period)
	}
	c := &TrustedCommittee{Period: period}
	copy(c.Root[:], blob[:32])
	c.Pubkeys = append([]byte(nil), blob[32:]...)
	return c, nil
}

// GetValidators is Get under the name spec.md §4.5 uses for it.
func (s *Store) GetValidators(chainID, period uint64) (*TrustedCommittee, error) {
	return s.Get(chainID, period)
}

// Range reports the lowest and highest periods currently trusted for
// chainID, used by the verifier to phrase a first/last-missing-period
// hint when an update list doesn't connect to what is on file.
func (s *Store) Range(chainID uint64) (first, last uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	periods, err := s.loadPeriods(chainID)
	if err != nil || len(periods) == 0 {
		return 0, 0, false
	}
	return periods[0], periods[len(periods)-1], true
}

func (s *Store) put(chainID uint64, c TrustedCommittee) error {
	if len(c.Pubkeys) != pubkeysBlobLen {
		return errors.Errorf("syncstore: committee pubkeys blob must be %d bytes, got %d", pubkeysBlobLen, len(c.Pubkeys))
	}
	blob := make([]byte, 32+pubkeysBlobLen)
	copy(blob[:32], c.Root[:])
	copy(blob[32:], c.Pubkeys)
	s.plugin.Set(committeeKey(chainID, c.Period), blob)

	periods, err := s.loadPeriods(chainID)
	if err != nil {
		return err
	}
	periods = insertSorted(periods, c.Period)
	max := int(s.plugin.MaxSyncStates())
	for max > 0 && len(periods) > max {
		evict := periods[0]
		periods = periods[1:]
		s.plugin.Del(committeeKey(chainID, evict))
	}
	return s.savePeriods(chainID, periods)
}

func insertSorted(periods []uint64, p uint64) []uint64 {
	i := sort.Search(len(periods), func(i int) bool { return periods[i] >= p })
	if i < len(periods) && periods[i] == p {
		return periods
	}
	periods = append(periods, 0)
	copy(periods[i+1:], periods[i:])
	periods[i] = p
	return periods
}

func (s *Store) loadPeriods(chainID uint64) ([]uint64, error) {
	raw, ok := s.plugin.Get(statesKey(chainID))
	if !ok {
		return nil, nil
	}
	if len(raw)%8 != 0 {
		return nil, errors.New("syncstore: corrupt period index")
	}
	out := make([]uint64, len(raw)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
	}
	return out, nil
}

func (s *Store) savePeriods(chainID uint64, periods []uint64) error {
	raw := make([]byte, len(periods)*8)
	for i, p := range periods {
		binary.LittleEndian.PutUint64(raw[i*8:i*8+8], p)
	}
	s.plugin.Set(statesKey(chainID), raw)
	return nil
}
