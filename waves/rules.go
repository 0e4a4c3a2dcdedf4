// Package waves defines the network rules and configuration parameters for
// a chain deployment.
//
// This package provides:
//   - Network identification constants (MainNet, TestNet, FakeNet)
//   - Proof-of-stake timing parameters (target delay, minimum block time,
//     delay tolerance)
//   - Protocol upgrade configuration (FairPoS, VRF) with activation heights
//
// The Rules type is the central configuration bundle for all
// consensus-critical parameters. It is constructed once at process start and
// shared by reference; nothing in it is mutable after construction. The
// chain-ID byte used for address formatting lives here too, threaded
// explicitly through every component that needs it rather than held in a
// process-wide global.
package waves

import (
	"encoding/json"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// Network identification constants. The chain ID byte doubles as the
// address scheme byte, so addresses cannot be replayed across networks.
const (
	MainNetChainID byte = 'W'
	TestNetChainID byte = 'T'
	FakeNetChainID byte = 'F'

	MainNetName = "main"
	TestNetName = "test"
	FakeNetName = "fake"
)

// Upgrade flags (bit positions for compact upgrade encoding)
const (
	fairPosBit = 1 << 0 // fair PoS difficulty/delay formulas
	vrfBit     = 1 << 1 // VRF generation signatures
)

// Upgrades tracks which consensus upgrades are enabled at some height.
// The flags select the PoS calculator variant and the generation-signature
// derivation mode; once a chain passes an activation height the flags never
// flip back.
type Upgrades struct {
	// FairPoS switches difficulty and delay arithmetic from the legacy
	// (NXT-derived) formulas to the fair ones.
	FairPoS bool
	// VRF switches generation signatures from hash chaining to verifiable
	// random function proofs.
	VRF bool
}

// UpgradeHeight specifies at which block height a set of upgrades becomes
// active, allowing scheduled protocol upgrades.
type UpgradeHeight struct {
	Upgrades Upgrades
	Height   idx.Block
}

// Bits packs the flags into an integer, used by the genesis configuration
// artifact and tests.
func (u Upgrades) Bits() uint64 {
	v := uint64(0)
	if u.FairPoS {
		v |= fairPosBit
	}
	if u.VRF {
		v |= vrfBit
	}
	return v
}

// UpgradesFromBits is the inverse of Bits.
func UpgradesFromBits(v uint64) Upgrades {
	return Upgrades{
		FairPoS: v&fairPosBit != 0,
		VRF:     v&vrfBit != 0,
	}
}

// Rules describes the complete consensus configuration for a network.
// All durations are in milliseconds, matching block timestamps.
type Rules struct {
	// Name is the human-readable network name ("main", "test", "fake").
	Name string
	// ChainID is the network/address-scheme byte.
	ChainID byte

	// AvgBlockDelay is the target average delay between blocks that the
	// base-target control loop steers toward.
	AvgBlockDelay uint64
	// MinBlockDelay is the hard floor for any computed eligibility delay.
	MinBlockDelay uint64
	// DelayDelta is the tolerance band around AvgBlockDelay within which
	// the fair base-target adjustment leaves difficulty unchanged.
	DelayDelta uint64
	// MaxBaseTarget caps difficulty so the control loop can never run away.
	MaxBaseTarget uint64

	// Heights is the upgrade activation schedule, ascending by height.
	// Earlier entries are overridden by later ones once their height is
	// reached.
	Heights []UpgradeHeight
}

// Upgrades returns the upgrade flags in force at the given height.
// Variant selection is monotonic: whatever a later entry activates stays
// active for the rest of the schedule.
func (r Rules) Upgrades(height idx.Block) Upgrades {
	u := Upgrades{}
	for _, h := range r.Heights {
		if height >= h.Height {
			u = h.Upgrades
		}
	}
	return u
}

// Copy returns a deep copy of the rules, so callers can derive modified
// configurations without aliasing the schedule slice.
func (r Rules) Copy() Rules {
	cp := r
	cp.Heights = make([]UpgradeHeight, len(r.Heights))
	copy(cp.Heights, r.Heights)
	return cp
}

// String returns the JSON form, used in logs and config dumps.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}

// MainNetRules returns the production configuration: one-minute blocks,
// FairPoS and VRF activated at their historical heights.
func MainNetRules() Rules {
	return Rules{
		Name:          MainNetName,
		ChainID:       MainNetChainID,
		AvgBlockDelay: 60000,
		MinBlockDelay: 5000,
		DelayDelta:    30000,
		MaxBaseTarget: 1000000000,
		Heights: []UpgradeHeight{
			{Upgrades: Upgrades{}, Height: 0},
			{Upgrades: Upgrades{FairPoS: true}, Height: 1740000},
			{Upgrades: Upgrades{FairPoS: true, VRF: true}, Height: 2700000},
		},
	}
}

// TestNetRules returns the public-testnet configuration. Same timing as
// mainnet, earlier activations.
func TestNetRules() Rules {
	return Rules{
		Name:          TestNetName,
		ChainID:       TestNetChainID,
		AvgBlockDelay: 60000,
		MinBlockDelay: 5000,
		DelayDelta:    30000,
		MaxBaseTarget: 1000000000,
		Heights: []UpgradeHeight{
			{Upgrades: Upgrades{}, Height: 0},
			{Upgrades: Upgrades{FairPoS: true}, Height: 10000},
			{Upgrades: Upgrades{FairPoS: true, VRF: true}, Height: 100000},
		},
	}
}

// FakeNetRules returns a configuration for local development networks:
// short blocks and every upgrade active from genesis.
func FakeNetRules() Rules {
	return Rules{
		Name:          FakeNetName,
		ChainID:       FakeNetChainID,
		AvgBlockDelay: 10000,
		MinBlockDelay: 1000,
		DelayDelta:    5000,
		MaxBaseTarget: 1000000000,
		Heights: []UpgradeHeight{
			{Upgrades: Upgrades{FairPoS: true, VRF: true}, Height: 0},
		},
	}
}
