// validator.go holds the cheap pre-apply checks: block structure, reference
// linkage against the current chain, and the generator's signature.
package blockproc

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

// ChainReader is the read-only slice of the storage collaborator the
// validator needs. Reads may race with a completing append; that is safe
// because the chain re-validates the reference under the serialized apply.
type ChainReader interface {
	// Contains reports whether the block is already stored, canonical
	// or not.
	Contains(id inter.BlockID) bool
	// HeightOf returns the height of a stored block.
	HeightOf(id inter.BlockID) (idx.Block, bool)
	// Height returns the height of the canonical tip.
	Height() idx.Block
}

// Validator performs structural and cryptographic validation of candidate
// blocks. Stateless apart from the immutable rules; safe for concurrent
// use.
type Validator struct {
	rules waves.Rules
}

// NewValidator creates a validator for the given network rules.
func NewValidator(rules waves.Rules) *Validator {
	return &Validator{rules: rules}
}

// ValidateStructure checks the block's self-contained invariants, without
// touching the chain: version bounds, a positive base target, and the
// presence (or absence) of the VRF proof matching the version.
func (v *Validator) ValidateStructure(b *inter.Block) error {
	if b.Version == 0 || b.Version > inter.MaxBlockVersion {
		return Validationf("unsupported block version %d", b.Version)
	}
	if b.BaseTarget == 0 {
		return Validationf("zero base target")
	}
	if b.BaseTarget > v.rules.MaxBaseTarget {
		return Validationf("base target %d above protocol maximum %d", b.BaseTarget, v.rules.MaxBaseTarget)
	}
	if b.Version >= inter.VRFBlockVersion && len(b.VRFProof) == 0 {
		return Validationf("missing VRF proof on v%d block", b.Version)
	}
	if b.Version < inter.VRFBlockVersion && len(b.VRFProof) != 0 {
		return Validationf("unexpected VRF proof on v%d block", b.Version)
	}
	return nil
}

// ValidateReference checks that the candidate extends the chain at the tip
// or one block below it. One block of reorganization tolerance, no deeper:
// anything older cannot win fork choice against the incumbent and is
// classified Irrelevant instead of invalid.
func (v *Validator) ValidateReference(chain ChainReader, b *inter.Block) error {
	parentHeight, ok := chain.HeightOf(b.Parent)
	if !ok {
		return ErrUnknownReference
	}
	if parentHeight+1 < chain.Height() {
		return fmt.Errorf("%w: parent at height %d, tip at %d", ErrStaleReference, parentHeight, chain.Height())
	}
	return nil
}

// ValidateSignature verifies the generator's signature over the block.
// Any failure is reported as ErrInvalidSignature: the severe, peer-punitive
// class, since a bad signature implies corruption or forgery, never an
// honest fork.
func (v *Validator) ValidateSignature(b *inter.Block) error {
	if err := b.VerifySignature(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
