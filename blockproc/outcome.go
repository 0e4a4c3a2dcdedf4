// Package blockproc implements the block-append pipeline: the state machine
// that takes a candidate block from the network or the local miner, decides
// whether it is a duplicate, irrelevant, invalid, or appendable, and applies
// it to the chain exactly once.
//
// Key concepts:
//   - Outcome: the per-candidate classification of one append attempt
//   - Validator: cheap structural/cryptographic checks run before apply
//   - Appender: the serialized state machine funneling every append through
//     one execution queue
//   - Handler: the network-facing wrapper translating outcomes into
//     broadcast, telemetry, and peer-penalty side effects
package blockproc

import (
	"errors"
	"fmt"
	"math/big"
)

// Status classifies one append attempt. Each candidate transitions exactly
// once into one of these during a single append; nothing is persisted.
type Status uint8

const (
	// AlreadyPresent: the chain already contains this block; the append is
	// an idempotent no-op, not an error.
	AlreadyPresent Status = iota
	// Irrelevant: the block does not extend the chain near the tip; benign,
	// expected during forks and out-of-order delivery.
	Irrelevant
	// Applied: the block was appended.
	Applied
	// Rejected: the block failed validation.
	Rejected
)

func (s Status) String() string {
	switch s {
	case AlreadyPresent:
		return "already-present"
	case Irrelevant:
		return "irrelevant"
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("status-%d", uint8(s))
}

// Outcome is the result of one append attempt.
type Outcome struct {
	Status Status
	// Score is the chain's new cumulative score after an Applied outcome.
	// Nil when the block was stored on a losing fork and the canonical
	// score did not change.
	Score *big.Int
	// Reason explains Irrelevant and Rejected outcomes.
	Reason error
}

// Error kinds of the append pipeline. ErrInvalidSignature is deliberately
// distinct from every other rejection: it cannot result from an honest
// fork, so it is the only class that triggers punitive peer action.
var (
	ErrInvalidSignature = errors.New("invalid block signature")
	ErrStaleReference   = errors.New("stale reference: block does not extend near the tip")
	ErrUnknownReference = errors.New("unknown reference: parent block not found")
)

// ValidationError is a rejection produced during chain apply: the
// re-derived generation signature, hit, delay, or base target disagrees
// with the block's claimed values. A protocol violation, but non-punitive
// by default since buggy-yet-honest forks can produce it.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "block validation failed: " + e.Reason
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a chain-apply validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
