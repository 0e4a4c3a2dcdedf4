package fakechain

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hengkyherdianto/Waves/blockproc"
	"github.com/hengkyherdianto/Waves/consensus"
	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/inter/minerpk"
)

// legacyBlockVersion is the version forged before VRF activation.
const legacyBlockVersion = 3

// Forge produces the earliest block the given key is eligible to generate
// on top of the canonical tip, signed and ready for the append pipeline.
// The block's timestamp is exactly the eligibility instant; real miners
// would wait for wall-clock time to reach it before releasing the block.
func (c *Chain) Forge(key *ecdsa.PrivateKey, txs []common.Hash) (*inter.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tip := c.blocks[c.tip]
	parent := tip.block
	height := tip.height + 1
	upgrades := c.rules.Upgrades(height)
	generator := minerpk.FromECDSA(&key.PublicKey)

	b := &inter.Block{
		BlockHeader: inter.BlockHeader{
			Version:   legacyBlockVersion,
			Parent:    c.tip,
			Generator: generator,
		},
		Txs: txs,
	}

	if upgrades.VRF {
		gs, proof, err := consensus.GenerationVRF(parent.GenSignature, key)
		if err != nil {
			return nil, err
		}
		b.Version = inter.VRFBlockVersion
		b.GenSignature = gs
		b.VRFProof = proof
	} else {
		b.GenSignature = consensus.GenerationSignature(parent.GenSignature, generator)
	}

	addr, err := generator.Address()
	if err != nil {
		return nil, err
	}
	balance := c.balances[addr]
	if balance == 0 {
		return nil, blockproc.Validationf("generator %s has no stake", addr.Hex())
	}

	calc := consensus.NewCalculator(c.rules, height)
	delay, err := calc.CalculateDelay(calc.Hit(b.GenSignature), parent.BaseTarget, balance)
	if err != nil {
		return nil, err
	}
	b.Time = parent.Time.Add(delay)
	b.BaseTarget = c.expectedBaseTarget(tip, height, calc)

	if err := b.Sign(key); err != nil {
		return nil, err
	}
	return b, nil
}
