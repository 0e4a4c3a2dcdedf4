// nxt.go implements the legacy (NXT-derived) proof-of-stake variant, in
// force from genesis until the FairPoS activation height.
package consensus

import (
	"math"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

// NxtCalculator is the legacy variant: linear delay in hit, multiplicative
// difficulty adjustment.
type NxtCalculator struct {
	rules waves.Rules
}

var _ Calculator = (*NxtCalculator)(nil)

func (c *NxtCalculator) Hit(gs inter.GenSignature) *big.Int {
	return hitFromBytes(gs)
}

// CalculateDelay computes delay = hit * 1000 / (baseTarget * balance)
// milliseconds: a uniformly random wait whose expectation shrinks linearly
// with stake and with difficulty. Clamped below by the configured minimum
// block delay.
func (c *NxtCalculator) CalculateDelay(hit *big.Int, baseTarget uint64, effectiveBalance uint64) (uint64, error) {
	if effectiveBalance == 0 {
		return 0, ErrZeroBalance
	}
	if baseTarget == 0 {
		return 0, ErrZeroBaseTarget
	}

	d := new(big.Int).Mul(hit, big.NewInt(1000))
	div := new(big.Int).Mul(new(big.Int).SetUint64(baseTarget), new(big.Int).SetUint64(effectiveBalance))
	d.Div(d, div)

	if !d.IsUint64() {
		return math.MaxUint64, nil
	}
	delay := d.Uint64()
	if delay < c.rules.MinBlockDelay {
		delay = c.rules.MinBlockDelay
	}
	return delay, nil
}

// CalculateBaseTarget scales difficulty by the ratio of the observed delay
// to the target delay. The observed delay is clamped into
// [avg/2, avg*2] first, which bounds any single step to a factor of two in
// either direction and keeps the arithmetic inside uint64.
func (c *NxtCalculator) CalculateBaseTarget(prevBaseTarget uint64, prevBlockDelay uint64, height idx.Block) uint64 {
	avg := c.rules.AvgBlockDelay

	observed := prevBlockDelay
	if observed > avg*2 {
		observed = avg * 2
	}
	if observed < avg/2 {
		observed = avg / 2
	}

	// big.Int keeps prevBaseTarget*observed exact for any configured
	// MaxBaseTarget
	scaled := new(big.Int).SetUint64(prevBaseTarget)
	scaled.Mul(scaled, new(big.Int).SetUint64(observed))
	scaled.Div(scaled, new(big.Int).SetUint64(avg))

	bt := scaled.Uint64()
	if !scaled.IsUint64() {
		bt = math.MaxUint64
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
// baseTarget = hit * 1000 / (targetDelay * balance). A zero result means the
// target delay is unreachable for this hit/balance pair and the genesis
// search must retry with a longer delay.
func (c *NxtCalculator) CalculateInitialBaseTarget(hit *big.Int, targetDelay uint64, effectiveBalance uint64) int64 {
	if targetDelay == 0 || effectiveBalance == 0 {
		return 0
	}
	bt := new(big.Int).Mul(hit, big.NewInt(1000))
	div := new(big.Int).Mul(new(big.Int).SetUint64(targetDelay), new(big.Int).SetUint64(effectiveBalance))
	bt.Div(bt, div)

	if !bt.IsInt64() {
		return math.MaxInt64
	}
	return bt.Int64()
}
