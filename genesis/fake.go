package genesis

import (
	"crypto/ecdsa"
	"math/rand"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/inter/minerpk"
	"github.com/hengkyherdianto/Waves/waves"
)

// FakeGenesisTime is the timestamp carried by fake-network genesis blocks.
// December 22, 2020, in milliseconds.
var FakeGenesisTime = inter.Timestamp(1608600000000)

// FakeKey returns a deterministic private key for fake networks and tests.
// The same n always yields the same key.
func FakeKey(n int) *ecdsa.PrivateKey {
	reader := &fakeKeyReader{prng: rand.New(rand.NewSource(int64(n)))}
	key, err := ecdsa.GenerateKey(crypto.S256(), reader)
	if err != nil {
		panic(err)
	}
	return key
}

// fakeKeyReader feeds ecdsa.GenerateKey from a seeded PRNG. GenerateKey
// randomly consumes one extra byte from its randomness source
// (crypto/internal/randutil.MaybeReadByte), which would shift the seeded
// stream and make the resulting key nondeterministic; those single-byte
// probes are answered with a constant without advancing the stream.
type fakeKeyReader struct {
	prng *rand.Rand
}

func (r *fakeKeyReader) Read(p []byte) (int, error) {
	if len(p) == 1 {
		p[0] = 0
		return 1, nil
	}
	return r.prng.Read(p)
}

// FakeAccounts returns n deterministic stake holders with equal stakes,
// keyed by FakeKey(1..n).
func FakeAccounts(n int, stake uint64) []Account {
	accounts := make([]Account, n)
	for i := range accounts {
		key := FakeKey(i + 1)
		accounts[i] = Account{
			PublicKey: minerpk.FromECDSA(&key.PublicKey),
			Stake:     stake,
		}
	}
	return accounts
}

// FakeGenesis manufactures a complete fake-network genesis: it runs the
// bootstrap search over n equal stake holders, builds the artifact, and
// signs the genesis block with the selected first producer's key.
// Returns the signed block and the initial balance map.
func FakeGenesis(rules waves.Rules, n int, stake uint64) (*inter.Block, map[common.Address]uint64, error) {
	accounts := FakeAccounts(n, stake)
	candidate, err := SearchInitialBaseTarget(rules, accounts, rules.AvgBlockDelay)
	if err != nil {
		return nil, nil, err
	}

	g := &Genesis{
		AvgBlockDelay:     rules.AvgBlockDelay,
		InitialBaseTarget: candidate.BaseTarget,
		Timestamp:         FakeGenesisTime,
		BlockTimestamp:    FakeGenesisTime,
		InitialBalance:    stake * uint64(n),
	}
	balances := make(map[common.Address]uint64, n)
	for _, acc := range accounts {
		addr, err := acc.PublicKey.Address()
		if err != nil {
			return nil, nil, err
		}
		balances[addr] = acc.Stake
		g.Transfers = append(g.Transfers, Transfer{Recipient: addr, Amount: acc.Stake})
	}

	block, err := g.Build(FakeKey(candidate.Index + 1))
	if err != nil {
		return nil, nil, err
	}
	return block, balances, nil
}
