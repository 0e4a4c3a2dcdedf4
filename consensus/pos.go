// Package consensus implements the proof-of-stake eligibility arithmetic:
// generation-signature derivation, hit extraction, delay computation, and
// the base-target (difficulty) control loop.
//
// Key concepts:
//   - Hit: a large integer extracted from a generation signature, the
//     randomness source for eligibility timing
//   - Delay: how long a given account must wait after the parent block
//     before it may produce the next one; decreases with stake
//   - BaseTarget: the difficulty parameter steered block-by-block toward
//     the configured average delay
//   - Score: cumulative chain weight, the sole fork-choice metric
//
// Two interchangeable Calculator variants exist, legacy (NXT-derived) and
// fair, selected once per height range by the upgrade schedule. Both are
// stateless and safe for concurrent use.
package consensus

import (
	"errors"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

// Invalid-state errors: these indicate malformed numeric input that honest
// callers never produce, not a property of the block being evaluated.
var (
	ErrZeroBalance    = errors.New("zero effective balance")
	ErrZeroBaseTarget = errors.New("zero base target")
)

// hitSize is the byte length of the generation-signature prefix interpreted
// as the hit integer.
const hitSize = 8

// maxHit is 2^64, one past the largest possible hit value.
var maxHit = new(big.Int).Lsh(big.NewInt(1), hitSize*8)

// Calculator is the proof-of-stake strategy interface. Implementations are
// pure: every method is a deterministic function of its arguments and the
// immutable Rules captured at construction.
type Calculator interface {
	// Hit extracts the eligibility randomness from a generation signature.
	// The result is non-negative and below 2^64.
	Hit(gs inter.GenSignature) *big.Int

	// CalculateDelay returns the eligibility delay in milliseconds for an
	// account with the given stake under the given difficulty. The result
	// is never below the configured minimum block delay. A zero balance or
	// base target is invalid input.
	CalculateDelay(hit *big.Int, baseTarget uint64, effectiveBalance uint64) (uint64, error)

	// CalculateBaseTarget adjusts difficulty toward the target average
	// delay, given the delay the previous block actually took. The result
	// is strictly positive and its per-step change is bounded.
	CalculateBaseTarget(prevBaseTarget uint64, prevBlockDelay uint64, height idx.Block) uint64

	// CalculateInitialBaseTarget inverts CalculateDelay for genesis
	// construction: the base target at which the given hit and balance
	// yield approximately the target delay. May return a non-positive
	// value when no such target exists at this delay; the genesis search
	// then retries with a longer delay.
	CalculateInitialBaseTarget(hit *big.Int, targetDelay uint64, effectiveBalance uint64) int64
}

// NewCalculator returns the calculator variant in force at the given
// height. The choice is made once per construction from the activation
// schedule; callers keep the returned value for as long as the activation
// state cannot change.
func NewCalculator(rules waves.Rules, height idx.Block) Calculator {
	if rules.Upgrades(height).FairPoS {
		return &FairCalculator{rules: rules}
	}
	return &NxtCalculator{rules: rules}
}

// hitFromBytes interprets the 8-byte big-endian prefix of a generation
// signature as an unsigned integer. Shared by both variants.
func hitFromBytes(gs inter.GenSignature) *big.Int {
	return new(big.Int).SetBytes(gs[:hitSize])
}

// BlockScore returns the weight contributed by one block: 2^64 divided by
// its base target. Lower difficulty targets mean slower chains and smaller
// per-block weight.
func BlockScore(baseTarget uint64) *big.Int {
	if baseTarget == 0 {
		// can't happen on a valid chain; contribute nothing rather
		// than divide by zero
		return new(big.Int)
	}
	return new(big.Int).Div(maxHit, new(big.Int).SetUint64(baseTarget))
}

// AddScore returns prevScore plus the score of a block with the given base
// target. The input is not mutated.
func AddScore(prevScore *big.Int, baseTarget uint64) *big.Int {
	return new(big.Int).Add(prevScore, BlockScore(baseTarget))
}
