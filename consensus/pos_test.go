package consensus

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

func testRules() waves.Rules {
	return waves.MainNetRules()
}

func calculators() map[string]Calculator {
	rules := testRules()
	return map[string]Calculator{
		"nxt":  &NxtCalculator{rules: rules},
		"fair": &FairCalculator{rules: rules},
	}
}

// some fixed generation signatures spread over the hit domain
func sampleSignatures() []inter.GenSignature {
	gss := []inter.GenSignature{
		{}, // zero hit
		inter.BytesToGenSignature([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}), // max hit
	}
	for i := 0; i < 16; i++ {
		gss = append(gss, inter.BytesToGenSignature(crypto.Keccak256([]byte{byte(i)})))
	}
	return gss
}

// TestVariantSelection verifies that the activation schedule picks the
// legacy calculator below the FairPoS height and the fair one at and above
// it.
func TestVariantSelection(t *testing.T) {
	require := require.New(t)
	rules := testRules()

	require.IsType(&NxtCalculator{}, NewCalculator(rules, 0))
	require.IsType(&NxtCalculator{}, NewCalculator(rules, 1739999))
	require.IsType(&FairCalculator{}, NewCalculator(rules, 1740000))
	require.IsType(&FairCalculator{}, NewCalculator(rules, 99999999))
}

// TestHit verifies that hit extraction is a pure function of the signature
// prefix, non-negative and below 2^64.
func TestHit(t *testing.T) {
	require := require.New(t)

	for name, c := range calculators() {
		for _, gs := range sampleSignatures() {
			h1 := c.Hit(gs)
			h2 := c.Hit(gs)
			require.Equal(h1, h2, name)
			require.True(h1.Sign() >= 0, name)
			require.True(h1.Cmp(maxHit) < 0, name)
		}
		// only the 8-byte prefix matters
		a := inter.BytesToGenSignature(crypto.Keccak256([]byte("x")))
		b := a
		b[hitSize] ^= 0xff
		require.Equal(c.Hit(a), c.Hit(b), name)
		b[0] ^= 0xff
		require.NotEqual(c.Hit(a), c.Hit(b), name)
	}
}

// TestDelayMonotonicInBalance verifies that for a fixed hit and base
// target, more stake never means a longer wait.
func TestDelayMonotonicInBalance(t *testing.T) {
	require := require.New(t)
	balances := []uint64{1, 10, 1000, 1e6, 1e9, 1e12, 1e15}

	for name, c := range calculators() {
		for _, gs := range sampleSignatures() {
			hit := c.Hit(gs)
			prev := uint64(0)
			for i := len(balances) - 1; i >= 0; i-- {
				// iterate balances descending: delays ascend
				delay, err := c.CalculateDelay(hit, 153722867, balances[i])
				require.NoError(err)
				require.True(delay >= prev, "%s: delay %d at balance %d below delay %d at larger balance", name, delay, balances[i], prev)
				require.True(delay >= testRules().MinBlockDelay, name)
				prev = delay
			}
		}
	}
}

// TestDelayInvalidInput verifies the zero-balance and zero-base-target
// guards: these fail with a typed error, never divide by zero.
func TestDelayInvalidInput(t *testing.T) {
	require := require.New(t)

	for name, c := range calculators() {
		hit := c.Hit(sampleSignatures()[2])

		_, err := c.CalculateDelay(hit, 153722867, 0)
		require.ErrorIs(err, ErrZeroBalance, name)

		_, err = c.CalculateDelay(hit, 0, 1e9)
		require.ErrorIs(err, ErrZeroBaseTarget, name)
	}
}

// TestBaseTargetPositiveAndBounded verifies the two invariants of the
// difficulty control loop: the result is strictly positive, and one step
// never moves the target by more than the variant's multiplicative bound
// (x2 for legacy, 1% plus one unit for fair).
func TestBaseTargetPositiveAndBounded(t *testing.T) {
	require := require.New(t)

	prevTargets := []uint64{1, 2, 50, 99, 100, 153722867, testRules().MaxBaseTarget}
	delays := []uint64{0, 1, 5000, 30000, 59999, 60000, 60001, 90001, 120000, 1 << 40}

	for name, c := range calculators() {
		for _, prev := range prevTargets {
			for _, delay := range delays {
				bt := c.CalculateBaseTarget(prev, delay, 10)
				require.True(bt >= 1, "%s: zero base target from prev=%d delay=%d", name, prev, delay)
				require.True(bt <= testRules().MaxBaseTarget, name)

				require.True(bt <= prev*2+1, "%s: upward jump from %d to %d", name, prev, bt)
				require.True(bt+1 >= prev/2, "%s: downward jump from %d to %d", name, prev, bt)
				if name == "fair" {
					require.True(bt <= prev+prev/100+1, name)
					require.True(bt+prev/100+1 >= prev, name)
				}
			}
		}
	}
}

// TestBaseTargetSteering verifies the control direction: slow blocks raise
// the target, fast blocks lower it, and (for the fair variant) delays
// inside the tolerance band leave it unchanged.
func TestBaseTargetSteering(t *testing.T) {
	require := require.New(t)
	rules := testRules()
	avg := rules.AvgBlockDelay

	for name, c := range calculators() {
		slow := c.CalculateBaseTarget(1000000, avg*2, 10)
		fast := c.CalculateBaseTarget(1000000, avg/4, 10)
		require.True(slow > 1000000, "%s: slow blocks must raise the base target", name)
		require.True(fast < 1000000, "%s: fast blocks must lower the base target", name)
	}

	fair := &FairCalculator{rules: rules}
	within := fair.CalculateBaseTarget(1000000, avg+rules.DelayDelta, 10)
	require.Equal(uint64(1000000), within)
	within = fair.CalculateBaseTarget(1000000, avg-rules.DelayDelta, 10)
	require.Equal(uint64(1000000), within)
}

// TestInitialBaseTargetInvertsDelay verifies the genesis closed form: when
// the inversion yields a positive target, plugging it back into
// CalculateDelay lands close to the requested delay.
func TestInitialBaseTargetInvertsDelay(t *testing.T) {
	require := require.New(t)

	const balance = uint64(1e10)
	targetDelay := testRules().AvgBlockDelay

	for name, c := range calculators() {
		for _, gs := range sampleSignatures()[2:] {
			hit := c.Hit(gs)
			bt := c.CalculateInitialBaseTarget(hit, targetDelay, balance)
			if bt <= 0 {
				continue // inversion has no solution at this delay
			}
			delay, err := c.CalculateDelay(hit, uint64(bt), balance)
			require.NoError(err)

			// integer truncation of the base target makes the
			// recomputed delay land within a few percent
			require.InEpsilon(float64(targetDelay), float64(delay), 0.1, "%s: delay %d too far from target %d", name, delay, targetDelay)
		}
	}
}

// TestScore verifies the fork-choice weight arithmetic: per-block scores
// are positive, lower base targets weigh more, and accumulation is
// strictly monotonic.
func TestScore(t *testing.T) {
	require := require.New(t)

	require.True(BlockScore(153722867).Sign() > 0)
	require.True(BlockScore(1).Cmp(BlockScore(2)) > 0)
	require.Equal(new(big.Int).Lsh(big.NewInt(1), 64), BlockScore(1))

	total := new(big.Int)
	for i := 0; i < 10; i++ {
		next := AddScore(total, 153722867)
		require.True(next.Cmp(total) > 0)
		total = next
	}
}
