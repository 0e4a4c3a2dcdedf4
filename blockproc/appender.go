// appender.go is the block-append state machine. One candidate goes in,
// one Outcome comes out, and the chain mutates at most once per candidate:
//
//	duplicate?  -> AlreadyPresent
//	stale ref?  -> Irrelevant
//	bad block?  -> Rejected (signature failures flagged distinctly)
//	chain apply -> Applied(newScore) or Rejected(validation error)
//
// Every append is funneled through one serialized executor, so appends
// complete in submission order and the chain never sees two concurrent
// mutations. Out-of-order and duplicate network delivery is absorbed by
// the AlreadyPresent/Irrelevant classification rather than by locking.
package blockproc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/log"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

// Chain is the storage-collaborator contract consumed by the appender.
// ProcessBlock is the only mutating operation; it re-derives the generation
// signature and re-computes hit, delay, and base target via the PoS
// calculator to confirm the candidate was eligible at its claimed
// timestamp. It is all-or-nothing: a failed apply leaves no partial state.
type Chain interface {
	ChainReader
	// Score returns the cumulative score of the canonical chain.
	Score() *big.Int
	// ProcessBlock stores and applies the block. It returns the new
	// cumulative score when the canonical chain changed, nil when the
	// block landed on a losing fork, and a ValidationError when the
	// block is ineligible.
	ProcessBlock(b *inter.Block) (*big.Int, error)
}

// Appender owns the append pipeline. Create one per chain; the zero value
// is not usable.
type Appender struct {
	validator *Validator
	chain     Chain
	exec      *Executor

	Log log.Logger
}

// appendQueueSize bounds pending appends; beyond it, submitters block.
const appendQueueSize = 16

// NewAppender wires the pipeline to a chain.
func NewAppender(rules waves.Rules, chain Chain) *Appender {
	return &Appender{
		validator: NewValidator(rules),
		chain:     chain,
		exec:      NewExecutor(appendQueueSize),
		Log:       log.New("module", "appender"),
	}
}

// Append schedules the candidate for serialized application and waits for
// its outcome. The context cancels only the wait, never the application
// itself: once the chain apply has begun it always runs to completion, so
// no partially applied block is ever observable.
func (a *Appender) Append(ctx context.Context, b *inter.Block) (Outcome, error) {
	res := make(chan Outcome, 1)
	err := a.exec.Submit(func() {
		res <- a.append(b)
	})
	if err != nil {
		return Outcome{}, err
	}
	select {
	case out := <-res:
		return out, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// append classifies and applies one candidate. Runs on the executor.
func (a *Appender) append(b *inter.Block) Outcome {
	id := b.ID()

	// 1: duplicate short-circuit, an idempotent no-op
	if a.chain.Contains(id) {
		return Outcome{Status: AlreadyPresent}
	}

	// 2: reference linkage; the tip height read here may be stale with
	// respect to a concurrently submitted append, which is fine because
	// ProcessBlock re-checks under serialization
	if err := a.validator.ValidateReference(a.chain, b); err != nil {
		a.Log.Debug("Block is irrelevant", "id", id.Hex(), "reason", err)
		return Outcome{Status: Irrelevant, Reason: err}
	}

	// 3: structure and signature; signature failures must propagate as
	// their own class so the caller can penalize the origin
	if err := a.validator.ValidateStructure(b); err != nil {
		a.Log.Warn("Block is malformed", "id", id.Hex(), "reason", err)
		return Outcome{Status: Rejected, Reason: err}
	}
	if err := a.validator.ValidateSignature(b); err != nil {
		a.Log.Warn("Block signature is invalid", "id", id.Hex())
		return Outcome{Status: Rejected, Reason: err}
	}

	// 4: the one mutating step
	newScore, err := a.chain.ProcessBlock(b)
	if err != nil {
		a.Log.Info("Block declined", "id", id.Hex(), "reason", err)
		return Outcome{Status: Rejected, Reason: err}
	}

	a.Log.Info("New block", "id", id.Hex(), "height", a.chain.Height(), "txs", len(b.Txs))
	return Outcome{Status: Applied, Score: newScore}
}

// Close drains pending appends and shuts the executor down.
func (a *Appender) Close() {
	a.exec.Close()
}
