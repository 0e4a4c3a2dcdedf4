package genesis

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/hengkyherdianto/Waves/consensus"
	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/inter/minerpk"
	"github.com/hengkyherdianto/Waves/waves"
)

// Account is one stake holder considered by the bootstrap search.
type Account struct {
	PublicKey minerpk.PubKey
	Stake     uint64
}

// Candidate is a search result: the account chosen as the first producer
// and the base target adopted for the chain.
type Candidate struct {
	Index      int     // position in the input account list
	Account    Account
	BaseTarget uint64
	Delay      uint64 // the delay the account actually achieves, >= target
}

// ErrNoEligibleAccount is returned when the search exhausts every account
// without finding one that satisfies the delay constraint.
var ErrNoEligibleAccount = errors.New("no account satisfies the target delay constraint")

const (
	// delayStepMs is how much the candidate delay grows per search
	// iteration while the closed-form initial estimate stays non-positive.
	delayStepMs = 10

	// maxSearchSteps bounds the per-account search loop. The estimate
	// turning positive normally takes a handful of steps; hitting the cap
	// means the stake and delay are mutually unsatisfiable.
	maxSearchSteps = 1_000_000
)

// genesisHitSource is the canonical all-zero hit source that every chain
// starts from.
var genesisHitSource inter.GenSignature

// SearchInitialBaseTarget finds the initial base target for a chain with
// the given stake distribution and target average block delay.
//
// For each account it derives the genesis-time hit, then walks candidate
// delays upward from the target in fixed increments until the closed-form
// base-target estimate turns positive. Accounts whose achieved delay falls
// below the target are discarded. Among the survivors the one with the
// tightest fit (smallest delay overshoot, ties broken by input order)
// becomes the first producer and donates its base target to the chain.
//
// The result is deterministic given the same accounts, delay, and rules.
func SearchInitialBaseTarget(rules waves.Rules, accounts []Account, targetDelay uint64) (Candidate, error) {
	if len(accounts) == 0 {
		return Candidate{}, errors.New("empty stake distribution")
	}
	if targetDelay == 0 {
		return Candidate{}, errors.New("zero target delay")
	}
	calc := consensus.NewCalculator(rules, 1)

	best := Candidate{}
	found := false
	for i, acc := range accounts {
		if acc.Stake == 0 {
			continue
		}
		hit := calc.Hit(consensus.GenerationSignature(genesisHitSource, acc.PublicKey))

		baseTarget, ok := searchBaseTarget(calc, hit, targetDelay, acc.Stake)
		if !ok {
			continue
		}
		delay, err := calc.CalculateDelay(hit, baseTarget, acc.Stake)
		if err != nil || delay < targetDelay {
			continue
		}
		if !found || delay-targetDelay < best.Delay-targetDelay {
			best = Candidate{Index: i, Account: acc, BaseTarget: baseTarget, Delay: delay}
			found = true
		}
	}
	if !found {
		return Candidate{}, fmt.Errorf("%w (target %dms, %d accounts)", ErrNoEligibleAccount, targetDelay, len(accounts))
	}
	return best, nil
}

// searchBaseTarget walks the delay upward until the closed-form estimate
// yields a positive base target. Bounded; reports failure instead of
// looping forever on unsatisfiable input.
func searchBaseTarget(calc consensus.Calculator, hit *big.Int, targetDelay, stake uint64) (uint64, bool) {
	delay := targetDelay
	for step := 0; step < maxSearchSteps; step++ {
		bt := calc.CalculateInitialBaseTarget(hit, delay, stake)
		if bt > 0 {
			return uint64(bt), true
		}
		delay += delayStepMs
	}
	return 0, false
}
