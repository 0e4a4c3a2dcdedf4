package genesis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hengkyherdianto/Waves/consensus"
	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

// TestSearchSingleAccount verifies the selection against an independent
// brute-force replay of the search sequence: the adopted base target must
// be the first positive estimate along the delay sequence, and the delay
// it yields must reach the target.
func TestSearchSingleAccount(t *testing.T) {
	require := require.New(t)

	// legacy rules at height 1: the estimate is exact integer arithmetic,
	// so every step of the replay is bit-reproducible
	for _, rules := range []waves.Rules{waves.MainNetRules(), waves.TestNetRules()} {
		const stake = 1000000
		const targetDelay = 60000
		accounts := FakeAccounts(1, stake)

		got, err := SearchInitialBaseTarget(rules, accounts, targetDelay)
		require.NoError(err, rules.Name)
		require.Equal(0, got.Index, rules.Name)

		// replay the sequence by hand
		calc := consensus.NewCalculator(rules, 1)
		hit := calc.Hit(consensus.GenerationSignature(inter.GenSignature{}, accounts[0].PublicKey))
		var bruteForce uint64
		for delay := uint64(targetDelay); delay < targetDelay+100000; delay += 10 {
			if bt := calc.CalculateInitialBaseTarget(hit, delay, stake); bt > 0 {
				bruteForce = uint64(bt)
				break
			}
		}
		require.Equal(bruteForce, got.BaseTarget, rules.Name)

		actual, err := calc.CalculateDelay(hit, got.BaseTarget, stake)
		require.NoError(err, rules.Name)
		require.GreaterOrEqual(actual, uint64(targetDelay), rules.Name)
		require.Equal(actual, got.Delay, rules.Name)
	}
}

// TestSearchPicksTightestFit verifies that among eligible accounts the one
// with the smallest delay overshoot wins, with ties broken by input order.
func TestSearchPicksTightestFit(t *testing.T) {
	require := require.New(t)

	rules := waves.TestNetRules()
	const targetDelay = 60000
	accounts := FakeAccounts(5, 0)
	for i := range accounts {
		accounts[i].Stake = uint64(100000 * (i + 1))
	}

	got, err := SearchInitialBaseTarget(rules, accounts, targetDelay)
	require.NoError(err)

	// recompute every account's fit independently
	calc := consensus.NewCalculator(rules, 1)
	bestIdx, bestOver := -1, uint64(0)
	for i, acc := range accounts {
		hit := calc.Hit(consensus.GenerationSignature(inter.GenSignature{}, acc.PublicKey))
		var bt uint64
		for delay := uint64(targetDelay); delay < targetDelay+100000; delay += 10 {
			if est := calc.CalculateInitialBaseTarget(hit, delay, acc.Stake); est > 0 {
				bt = uint64(est)
				break
			}
		}
		if bt == 0 {
			continue
		}
		delay, err := calc.CalculateDelay(hit, bt, acc.Stake)
		if err != nil || delay < targetDelay {
			continue
		}
		if bestIdx < 0 || delay-targetDelay < bestOver {
			bestIdx, bestOver = i, delay-targetDelay
		}
	}
	require.Equal(bestIdx, got.Index)
	require.Equal(bestOver, got.Delay-uint64(targetDelay))
}

// TestSearchDeterministic verifies reproducibility: same stake
// distribution, same rules, same result.
func TestSearchDeterministic(t *testing.T) {
	require := require.New(t)

	rules := waves.FakeNetRules()
	accounts := FakeAccounts(3, 500000)

	a, err := SearchInitialBaseTarget(rules, accounts, rules.AvgBlockDelay)
	require.NoError(err)
	b, err := SearchInitialBaseTarget(rules, accounts, rules.AvgBlockDelay)
	require.NoError(err)
	require.Equal(a, b)
}

// TestSearchFailures verifies the descriptive failure paths.
func TestSearchFailures(t *testing.T) {
	require := require.New(t)
	rules := waves.TestNetRules()

	_, err := SearchInitialBaseTarget(rules, nil, 60000)
	require.Error(err)

	_, err = SearchInitialBaseTarget(rules, FakeAccounts(1, 100000), 0)
	require.Error(err)

	// accounts with zero stake are never eligible
	_, err = SearchInitialBaseTarget(rules, FakeAccounts(3, 0), 60000)
	require.Error(err)
	require.True(errors.Is(err, ErrNoEligibleAccount))
}

// TestGenerate verifies the full artifact assembly: balances summed,
// transfers ordered, and the artifact signed when the selected producer's
// key is held.
func TestGenerate(t *testing.T) {
	require := require.New(t)

	rules := waves.TestNetRules()
	accounts := FakeAccounts(3, 0)
	stakes := []uint64{100000, 250000, 150000}
	for i := range accounts {
		accounts[i].Stake = stakes[i]
	}
	req := Request{
		Rules:       rules,
		Accounts:    accounts,
		TargetDelay: 60000,
		Timestamp:   FakeGenesisTime,
	}
	for i := range accounts {
		req.Keys = append(req.Keys, FakeKey(i+1))
	}

	g, candidate, err := Generate(req)
	require.NoError(err)
	require.Equal(candidate.BaseTarget, g.InitialBaseTarget)
	require.Equal(uint64(500000), g.InitialBalance)
	require.Len(g.Transfers, 3)
	for i, tr := range g.Transfers {
		addr, err := accounts[i].PublicKey.Address()
		require.NoError(err)
		require.Equal(addr, tr.Recipient)
		require.Equal(stakes[i], tr.Amount)
	}
	require.NotEmpty(g.Signature)
}
