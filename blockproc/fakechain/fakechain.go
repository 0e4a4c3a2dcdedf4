// Package fakechain is an in-memory implementation of the blockproc.Chain
// storage contract, used by tests and fake (development) networks.
//
// It implements the apply-side consensus checks for real: on every
// ProcessBlock it re-derives the generation signature, re-computes the hit
// and the eligibility delay through the PoS calculator, re-computes the
// expected base target, and runs fork choice by cumulative score. Only the
// storage medium is fake; the consensus semantics are the ones a
// persistent chain store must implement.
package fakechain

import (
	"math/big"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"

	"github.com/hengkyherdianto/Waves/blockproc"
	"github.com/hengkyherdianto/Waves/consensus"
	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

type entry struct {
	block  *inter.Block
	height idx.Block
	score  *big.Int // cumulative score including this block
}

// Chain is an in-memory block store with score-based fork choice.
// Reads are safe concurrently with the single serialized writer.
type Chain struct {
	rules    waves.Rules
	balances map[common.Address]uint64

	mu     sync.RWMutex
	blocks map[inter.BlockID]*entry
	tip    inter.BlockID
}

// genesisHeight is the height assigned to the genesis block.
const genesisHeight idx.Block = 1

// New creates a chain holding only the given genesis block. The balances
// map fixes each account's effective stake for the lifetime of the chain;
// transaction execution is out of scope here.
func New(rules waves.Rules, genesis *inter.Block, balances map[common.Address]uint64) (*Chain, error) {
	if genesis.BaseTarget == 0 {
		return nil, blockproc.Validationf("genesis base target is zero")
	}
	c := &Chain{
		rules:    rules,
		balances: balances,
		blocks:   make(map[inter.BlockID]*entry),
	}
	id := genesis.ID()
	c.blocks[id] = &entry{
		block:  genesis,
		height: genesisHeight,
		score:  consensus.BlockScore(genesis.BaseTarget),
	}
	c.tip = id
	return c, nil
}

// Contains reports whether the block is stored, canonical or not.
func (c *Chain) Contains(id inter.BlockID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.blocks[id]
	return ok
}

// HeightOf returns the height of a stored block.
func (c *Chain) HeightOf(id inter.BlockID) (idx.Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.blocks[id]
	if !ok {
		return 0, false
	}
	return e.height, true
}

// Height returns the canonical tip height.
func (c *Chain) Height() idx.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[c.tip].height
}

// Score returns the canonical cumulative score. The result is a copy.
func (c *Chain) Score() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return new(big.Int).Set(c.blocks[c.tip].score)
}

// Tip returns the canonical tip block.
func (c *Chain) Tip() *inter.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[c.tip].block
}

// Balance returns the effective stake of an account.
func (c *Chain) Balance(addr common.Address) uint64 {
	return c.balances[addr]
}

// ProcessBlock validates the candidate's consensus eligibility and stores
// it. Returns the new canonical score when the block extends or overtakes
// the canonical chain, nil when it lands on a losing fork, and a
// ValidationError when the candidate is ineligible. All-or-nothing: a
// failed candidate leaves no trace.
//
// Callers must serialize ProcessBlock invocations; the appender's executor
// does exactly that.
func (c *Chain) ProcessBlock(b *inter.Block) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := b.ID()
	if _, ok := c.blocks[id]; ok {
		return nil, blockproc.Validationf("block %s is already stored", id.Hex())
	}

	parent, ok := c.blocks[b.Parent]
	if !ok {
		return nil, blockproc.Validationf("unknown parent %s", b.Parent.Hex())
	}
	height := parent.height + 1

	// re-check relevance under serialization; the appender's earlier
	// check may have run against a stale tip
	if height+1 < c.blocks[c.tip].height {
		return nil, blockproc.Validationf("parent at height %d is too far behind tip %d", parent.height, c.blocks[c.tip].height)
	}

	if err := c.validateEligibility(b, parent, height); err != nil {
		return nil, err
	}

	score := consensus.AddScore(parent.score, b.BaseTarget)
	c.blocks[id] = &entry{block: b, height: height, score: score}

	// fork choice: strictly greater cumulative score wins; an equal
	// score retains the incumbent tip
	if score.Cmp(c.blocks[c.tip].score) > 0 {
		c.tip = id
		return new(big.Int).Set(score), nil
	}
	return nil, nil
}

// validateEligibility re-derives everything the generator claimed:
// generation signature, eligibility delay at the claimed timestamp, and
// the base-target adjustment.
func (c *Chain) validateEligibility(b *inter.Block, parent *entry, height idx.Block) error {
	upgrades := c.rules.Upgrades(height)
	hitSource := parent.block.GenSignature

	if upgrades.VRF {
		if b.Version < inter.VRFBlockVersion {
			return blockproc.Validationf("v%d block after VRF activation", b.Version)
		}
		if err := consensus.VerifyGenerationVRF(hitSource, b.Generator, b.VRFProof, b.GenSignature); err != nil {
			return blockproc.Validationf("generation signature: %v", err)
		}
	} else {
		if b.Version >= inter.VRFBlockVersion {
			return blockproc.Validationf("v%d block before VRF activation", b.Version)
		}
		expected := consensus.GenerationSignature(hitSource, b.Generator)
		if expected != b.GenSignature {
			return blockproc.Validationf("generation signature mismatch")
		}
	}

	addr, err := b.Generator.Address()
	if err != nil {
		return blockproc.Validationf("generator key: %v", err)
	}
	balance := c.balances[addr]
	if balance == 0 {
		return blockproc.Validationf("generator %s has no stake", addr.Hex())
	}

	calc := consensus.NewCalculator(c.rules, height)

	hit := calc.Hit(b.GenSignature)
	delay, err := calc.CalculateDelay(hit, parent.block.BaseTarget, balance)
	if err != nil {
		return blockproc.Validationf("delay: %v", err)
	}
	earliest := parent.block.Time.Add(delay)
	if b.Time < earliest {
		return blockproc.Validationf("block timestamp %d is %dms before eligibility at %d", b.Time, uint64(earliest-b.Time), earliest)
	}

	if expected := c.expectedBaseTarget(parent, height, calc); b.BaseTarget != expected {
		return blockproc.Validationf("base target %d, expected %d", b.BaseTarget, expected)
	}
	return nil
}

// expectedBaseTarget computes the difficulty a block at the given height
// must carry: the parent's target adjusted by the delay the parent block
// itself took. The child of the genesis block inherits the genesis target
// unchanged, there being no observed delay yet.
func (c *Chain) expectedBaseTarget(parent *entry, height idx.Block, calc consensus.Calculator) uint64 {
	grandparent, ok := c.blocks[parent.block.Parent]
	if !ok {
		return parent.block.BaseTarget
	}
	prevDelay := parent.block.Time.DelaySince(grandparent.block.Time)
	return calc.CalculateBaseTarget(parent.block.BaseTarget, prevDelay, height)
}
