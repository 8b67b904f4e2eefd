// Package config holds the per-chain parameters the verifier and
// proofer need and cannot derive from an artifact alone: fork
// schedule, sync-committee sizing, default beacon/execution API
// endpoints, and the sync-committee store's eviction bound. Defaults
// are compiled in; a host may override them with a JSON blob matching
// ChainParams' field names.
package config

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/corpus-core/c4go/beacon"
)

// ChainParams is the full set of chain-specific constants this module
// needs.
type ChainParams struct {
	ChainID             uint64            `json:"chain_id"`
	Name                string            `json:"name"`
	GenesisForkVersion  beacon.ForkVersion `json:"genesis_fork_version"`
	AltairForkVersion   beacon.ForkVersion `json:"altair_fork_version"`
	SlotsPerEpoch       uint64             `json:"slots_per_epoch"`
	EpochsPerSyncPeriod uint64             `json:"epochs_per_sync_period"`
	SecondsPerSlot      uint64             `json:"seconds_per_slot"`
	GenesisTime         uint64             `json:"genesis_time"`
	BeaconAPIURL        string             `json:"beacon_api_url"`
	ExecutionRPCURL     string             `json:"execution_rpc_url"`
	MaxSyncStates       uint32             `json:"max_sync_states"`
}

// SlotForTimestamp maps an execution block's unix timestamp to the
// beacon slot that produced it — the proofer's only way to locate a
// beacon header given an execution-layer block, since execution RPCs
// carry no slot number.
func (p ChainParams) SlotForTimestamp(timestamp uint64) uint64 {
	if timestamp <= p.GenesisTime || p.SecondsPerSlot == 0 {
		return 0
	}
	return (timestamp - p.GenesisTime) / p.SecondsPerSlot
}

// GenesisValidatorsRoot is looked up separately because it is a
// 32-byte hash, not conveniently expressed as a small struct literal;
// Registry keeps it alongside ChainParams per chain id.
type entry struct {
	Params                ChainParams
	GenesisValidatorsRoot [32]byte
}

var registry = map[uint64]entry{
	1: {
		Params: ChainParams{
			ChainID:             1,
			Name:                "mainnet",
			GenesisForkVersion:  beacon.ForkVersion{0x00, 0x00, 0x00, 0x00},
			AltairForkVersion:   beacon.ForkVersion{0x01, 0x00, 0x00, 0x00},
			SlotsPerEpoch:       32,
			EpochsPerSyncPeriod: 256,
			SecondsPerSlot:      12,
			GenesisTime:         1606824023,
			BeaconAPIURL:        "https://www.lightclientdata.org",
			ExecutionRPCURL:     "https://rpc.ankr.com/eth",
			MaxSyncStates:       32,
		},
	},
	11155111: {
		Params: ChainParams{
			ChainID:             11155111,
			Name:                "sepolia",
			GenesisForkVersion:  beacon.ForkVersion{0x90, 0x00, 0x00, 0x69},
			AltairForkVersion:   beacon.ForkVersion{0x90, 0x00, 0x00, 0x70},
			SlotsPerEpoch:       32,
			EpochsPerSyncPeriod: 256,
			SecondsPerSlot:      12,
			GenesisTime:         1655733600,
			BeaconAPIURL:        "https://sepolia.beaconcha.in",
			ExecutionRPCURL:     "https://rpc.sepolia.org",
			MaxSyncStates:       32,
		},
	},
}

// For returns the chain parameters for chainID, or an error if the
// chain is not configured.
func For(chainID uint64) (ChainParams, error) {
	e, ok := registry[chainID]
	if !ok {
		return ChainParams{}, errors.Errorf("config: unknown chain id %d", chainID)
	}
	return e.Params, nil
}

// GenesisValidatorsRoot returns the genesis validators root for
// chainID, used to compute the sync-committee signing domain.
func GenesisValidatorsRoot(chainID uint64) ([32]byte, error) {
	e, ok := registry[chainID]
	if !ok {
		return [32]byte{}, errors.Errorf("config: unknown chain id %d", chainID)
	}
	return e.GenesisValidatorsRoot, nil
}

// LoadOverrides merges a JSON blob of ChainParams (by chain id, string
// keys) into the compiled-in registry, replacing any chain already
// present. Used by the CLI's -config flag.
func LoadOverrides(raw []byte) error {
	var overrides map[string]ChainParams
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return errors.Wrap(err, "config: invalid overrides JSON")
	}
	for _, p := range overrides {
		e := registry[p.ChainID]
		e.Params = p
		registry[p.ChainID] = e
	}
	return nil
}

// Register installs or replaces a chain's parameters directly (used
// by tests and by hosts wiring a private devnet).
func Register(p ChainParams, genesisValidatorsRoot [32]byte) {
	registry[p.ChainID] = entry{Params: p, GenesisValidatorsRoot: genesisValidatorsRoot}
}
