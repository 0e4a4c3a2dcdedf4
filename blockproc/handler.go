// handler.go is the network-facing wrapper around the appender: it turns
// Outcomes into side effects. The appender itself never touches sockets or
// the miner; everything outward goes through the Hooks callbacks owned by
// the networking and mining collaborators.
package blockproc

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"

	"github.com/hengkyherdianto/Waves/inter"
)

// Hooks are the collaborator callbacks invoked on append outcomes. Any nil
// hook is skipped.
type Hooks struct {
	// Broadcast propagates an accepted block to peers other than its
	// source. Called only for empty blocks: those are cheap to push
	// further, while blocks with transactions follow the networking
	// layer's own propagation path.
	Broadcast func(b *inter.Block, exceptPeer string)

	// PenalizePeer punishes the origin of a block whose signature failed
	// verification. This is the single punitive path: every other
	// rejection can happen between honest nodes during forks.
	PenalizePeer func(peer string, reason error)

	// ReconsiderMining signals the mining component that the chain tip
	// changed and the next block attempt should be re-evaluated.
	ReconsiderMining func()
}

// Handler consumes candidate blocks from peer connections, drives them
// through the appender, and applies the outcome policy.
type Handler struct {
	appender *Appender
	hooks    Hooks

	accepted uint64
	declined uint64

	Log log.Logger
}

// NewHandler wraps an appender with outcome side effects.
func NewHandler(appender *Appender, hooks Hooks) *Handler {
	return &Handler{
		appender: appender,
		hooks:    hooks,
		Log:      log.New("module", "blocks"),
	}
}

// OnBlock processes one candidate received from the given peer (empty peer
// for locally mined blocks) and applies side effects per the outcome:
//
//   - AlreadyPresent: log only, no side effects, so replayed deliveries
//     stay free of duplicate broadcasts
//   - Irrelevant: log only; expected during forks
//   - Applied: acceptance telemetry, rebroadcast when the block carries no
//     transactions, and a mining wake-up
//   - Rejected with an invalid signature: penalize the peer
//   - Rejected otherwise: decline telemetry, no punitive action
func (h *Handler) OnBlock(ctx context.Context, peer string, b *inter.Block) (Outcome, error) {
	out, err := h.appender.Append(ctx, b)
	if err != nil {
		return out, err
	}

	switch out.Status {
	case AlreadyPresent:
		h.Log.Debug("Duplicate block", "peer", peer)

	case Irrelevant:
		h.Log.Debug("Irrelevant block", "peer", peer, "reason", out.Reason)

	case Applied:
		atomic.AddUint64(&h.accepted, 1)
		if len(b.Txs) == 0 && h.hooks.Broadcast != nil {
			h.hooks.Broadcast(b, peer)
		}
		if h.hooks.ReconsiderMining != nil {
			h.hooks.ReconsiderMining()
		}

	case Rejected:
		if errors.Is(out.Reason, ErrInvalidSignature) {
			h.Log.Warn("Peer sent a forged block", "peer", peer)
			if h.hooks.PenalizePeer != nil {
				h.hooks.PenalizePeer(peer, out.Reason)
			}
		} else {
			atomic.AddUint64(&h.declined, 1)
			h.Log.Info("Declined block", "peer", peer, "reason", out.Reason)
		}
	}
	return out, nil
}

// Accepted returns the count of applied blocks, for telemetry.
func (h *Handler) Accepted() uint64 {
	return atomic.LoadUint64(&h.accepted)
}

// Declined returns the count of non-punitive rejections, for telemetry.
func (h *Handler) Declined() uint64 {
	return atomic.LoadUint64(&h.declined)
}
