// Package inter defines the core consensus data structures of the node:
// blocks, block identifiers, and timestamps. This file contains the Block
// structure produced by proof-of-stake mining.
//
// Key concepts:
//   - BlockHeader: consensus fields signed by the generator
//   - GenSignature: pseudorandom value chaining from the parent block,
//     the source of mining eligibility randomness
//   - BaseTarget: adjustable difficulty parameter carried in every block
//   - BlockID: hash identity of a signed block
//
// A Block is created by a generator, signed once, and never mutated after
// signing; it then flows through validation and append exactly once.
package inter

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hengkyherdianto/Waves/inter/minerpk"
)

const (
	// GenSignatureSize is the size of a generation signature: a Keccak-256
	// digest for legacy blocks, a VRF beta string for VRF blocks. Both are
	// 32 bytes, which is relied upon by the hit extraction.
	GenSignatureSize = 32

	// SignatureSize is the size of a block signature: secp256k1 [R || S || V].
	SignatureSize = 65

	// VRFBlockVersion is the first header version whose generation signature
	// is a VRF output and which therefore carries a VRF proof.
	VRFBlockVersion = 5

	// MaxFeatureVotes caps the feature-vote list; a header voting for more
	// features than exist in the protocol is malformed.
	MaxFeatureVotes = 64

	// MaxBlockTxs caps the number of transaction references per block.
	MaxBlockTxs = 65535
)

// BlockID is the identity of a signed block: the Keccak-256 hash of its
// canonical serialization, signature included.
type BlockID common.Hash

// Bytes returns the raw 32 bytes of the ID.
func (id BlockID) Bytes() []byte {
	return common.Hash(id).Bytes()
}

// Hex returns the 0x-prefixed hex form, used in logs.
func (id BlockID) Hex() string {
	return common.Hash(id).Hex()
}

// BytesToBlockID converts raw bytes to an ID, left-padding if necessary.
func BytesToBlockID(b []byte) BlockID {
	return BlockID(common.BytesToHash(b))
}

// GenSignature is the per-block pseudorandom value chaining from the
// previous block. For legacy blocks it is Keccak256(parent hit-source ||
// generator pubkey); for VRF blocks it is the VRF output over the parent
// hit-source, verifiable against the proof carried next to it.
type GenSignature [GenSignatureSize]byte

// Bytes returns the signature as a byte slice.
func (gs GenSignature) Bytes() []byte {
	return gs[:]
}

// BytesToGenSignature converts raw bytes, truncating or zero-padding to the
// fixed size.
func BytesToGenSignature(b []byte) (gs GenSignature) {
	copy(gs[:], b)
	return gs
}

// BlockHeader carries the consensus fields of a block. All fields are
// covered by the generator's signature.
type BlockHeader struct {
	// Version selects the header format. Versions below VRFBlockVersion use
	// hash-derived generation signatures; later versions use VRF.
	Version uint8

	// Time is the generator's claimed timestamp in milliseconds. Its
	// consistency with the PoS delay is re-verified on append.
	Time Timestamp

	// Parent references the block this one extends.
	Parent BlockID

	// BaseTarget is the difficulty parameter in force for this block.
	// Strictly positive on any valid chain.
	BaseTarget uint64

	// GenSignature chains the eligibility randomness from the parent.
	GenSignature GenSignature

	// VRFProof carries the proof for GenSignature when Version >=
	// VRFBlockVersion, and is empty otherwise. Any holder of the generator
	// public key can recompute GenSignature from it.
	VRFProof []byte

	// Generator is the public key of the block producer. It both verifies
	// the block signature and feeds the generation-signature derivation.
	Generator minerpk.PubKey

	// FeatureVotes lists the protocol feature IDs this generator votes to
	// activate. Ordered ascending, no duplicates.
	FeatureVotes []uint16

	// RewardVote is the generator's vote on the block reward adjustment.
	// Negative values vote to decrease.
	RewardVote int64
}

// Block is a signed block: the header, the ordered transaction references,
// and the generator's signature over both.
//
// Transaction payloads are owned by the execution layer; consensus only
// carries their hashes, which is enough for the empty-block broadcast rule
// and for the signature to commit to the transaction list.
type Block struct {
	BlockHeader

	// Txs contains the hashes of the transactions included in this block,
	// in execution order.
	Txs []common.Hash

	// Signature is the secp256k1 signature over HashToSign().
	Signature []byte
}

// HashToSign returns the digest covered by the block signature: the
// Keccak-256 hash of the canonical serialization of the header and the
// transaction list, without the signature itself.
func (b *Block) HashToSign() common.Hash {
	raw, err := b.marshalUnsigned()
	if err != nil {
		// only a malformed in-memory structure fails to serialize,
		// which is a programming error, not an input error
		panic(err)
	}
	return common.BytesToHash(crypto.Keccak256(raw))
}

// ID returns the block's identity: the Keccak-256 hash over the full signed
// serialization. Calling ID on an unsigned block is a programming error.
func (b *Block) ID() BlockID {
	raw, err := b.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return BytesToBlockID(crypto.Keccak256(raw))
}

// EstimateSize returns an approximate serialized size of the block in
// bytes, used for queue accounting and message size planning.
func (b *Block) EstimateSize() int {
	return 1 + 8 + 32 + 8 + GenSignatureSize +
		len(b.VRFProof) + len(b.Generator.Raw) + 1 +
		len(b.FeatureVotes)*2 + 8 +
		len(b.Txs)*32 + len(b.Signature)
}
