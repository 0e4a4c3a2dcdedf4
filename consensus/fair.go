// fair.go implements the fair proof-of-stake variant, in force from the
// FairPoS activation height.
//
// The legacy delay is linear in the hit, which over-rewards large stakes:
// doubling the stake more than doubles the share of blocks won. The fair
// variant makes the delay logarithmic in the (normalized) hit, so that the
// probability of producing the next block is proportional to stake.
package consensus

import (
	"math"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

// Smoothing constants of the fair delay formula. Consensus-critical: every
// implementation must use bit-identical values.
const (
	fairC1 = float64(70000)
	fairC2 = float64(5e17)
)

// FairCalculator is the fair variant: logarithmic delay, additive
// percent-bounded difficulty adjustment.
type FairCalculator struct {
	rules waves.Rules
}

var _ Calculator = (*FairCalculator)(nil)

func (c *FairCalculator) Hit(gs inter.GenSignature) *big.Int {
	return hitFromBytes(gs)
}

// hitFraction normalizes a hit into (0, 1]: the hit divided by 2^64.
// A zero hit is nudged to the smallest representable fraction, since the
// formula takes its logarithm.
func hitFraction(hit *big.Int) float64 {
	h, _ := new(big.Float).Quo(new(big.Float).SetInt(hit), new(big.Float).SetInt(maxHit)).Float64()
	if h <= 0 {
		h = math.Nextafter(0, 1)
	}
	return h
}

// CalculateDelay computes
//
//	delay = tMin + C1 * ln(1 - C2 * ln(h) / (baseTarget * balance))
//
// milliseconds, where h is the hit normalized into (0, 1] and tMin is the
// configured minimum block delay. ln(h) is non-positive, so the outer
// logarithm's argument is >= 1 and the delay never drops below tMin.
func (c *FairCalculator) CalculateDelay(hit *big.Int, baseTarget uint64, effectiveBalance uint64) (uint64, error) {
	if effectiveBalance == 0 {
		return 0, ErrZeroBalance
	}
	if baseTarget == 0 {
		return 0, ErrZeroBaseTarget
	}

	tMin := float64(c.rules.MinBlockDelay)
	x := fairC2 * math.Log(hitFraction(hit)) / (float64(baseTarget) * float64(effectiveBalance))
	delay := tMin + fairC1*math.Log1p(-x)

	if math.IsNaN(delay) || math.IsInf(delay, 0) || delay > math.MaxUint64 {
		return math.MaxUint64, nil
	}
	if delay < tMin {
		delay = tMin
	}
	return uint64(delay), nil
}

// CalculateBaseTarget nudges difficulty by one percent (at least one unit)
// whenever the observed delay leaves the tolerance band around the target
// average, and leaves it unchanged inside the band. The one-percent step
// bounds per-block movement, so a single producer cannot swing difficulty.
func (c *FairCalculator) CalculateBaseTarget(prevBaseTarget uint64, prevBlockDelay uint64, height idx.Block) uint64 {
	avg := c.rules.AvgBlockDelay
	delta := c.rules.DelayDelta

	step := prevBaseTarget / 100
	if step < 1 {
		step = 1
	}

	bt := prevBaseTarget
	switch {
	case prevBlockDelay > avg+delta:
		// blocks are coming too slowly: raise the target
		bt = prevBaseTarget + step
	case prevBlockDelay < avg-delta:
		// blocks are coming too quickly: lower the target
		if prevBaseTarget > step {
			bt = prevBaseTarget - step
		} else {
			bt = 1
		}
	}

	if bt < 1 {
		bt = 1
	}
	if bt > c.rules.MaxBaseTarget {
		bt = c.rules.MaxBaseTarget
	}
	return bt
}

// CalculateInitialBaseTarget inverts CalculateDelay:
//
//	baseTarget = -C2 * ln(h) / (balance * (exp((delay - tMin) / C1) - 1))
//
// Returns a non-positive value when the delay is at or below the minimum
// block time, where the formula has no solution; the genesis search then
// retries with a longer delay.
func (c *FairCalculator) CalculateInitialBaseTarget(hit *big.Int, targetDelay uint64, effectiveBalance uint64) int64 {
	if effectiveBalance == 0 {
		return 0
	}
	tMin := float64(c.rules.MinBlockDelay)
	if float64(targetDelay) <= tMin {
		return 0
	}

	denom := float64(effectiveBalance) * math.Expm1((float64(targetDelay)-tMin)/fairC1)
	bt := -fairC2 * math.Log(hitFraction(hit)) / denom

	if math.IsNaN(bt) || bt >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(bt)
}
