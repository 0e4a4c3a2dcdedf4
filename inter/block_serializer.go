// block_serializer.go defines the canonical binary format of blocks.
//
// Blocks are serialized with CSER (see utils/cser): a compact, strictly
// canonical format. Canonicality matters here more than anywhere else in the
// node, because the serialized bytes feed Keccak-256 twice: once for the
// digest the generator signs, once for the block ID. Two encodings of the
// same block would mean two IDs for the same block.
package inter

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hengkyherdianto/Waves/inter/minerpk"
	"github.com/hengkyherdianto/Waves/utils/cser"
)

// Errors related to block serialization and signing.
var (
	ErrSerMalformedBlock = errors.New("serialization of malformed block: structure violates protocol rules")
	ErrUnknownVersion    = errors.New("unknown block version: client is likely outdated")
	ErrUnexpectedProof   = errors.New("VRF proof on a pre-VRF block version")
	ErrNoSignature       = errors.New("block is not signed")
	ErrWrongSigner       = errors.New("private key does not match block generator")
)

// MaxBlockVersion is the highest header version this node understands.
const MaxBlockVersion = VRFBlockVersion

// MaxVRFProofSize bounds the VRF proof length on decoding.
// A secp256k1 ECVRF proof is 81 bytes; the bound leaves headroom for
// future suites without allowing large allocations.
const MaxVRFProofSize = 128

// marshalCSER writes the header and transaction list; the signature is
// excluded so the same routine serves both signing and identity hashing.
func (b *Block) marshalCSER(w *cser.Writer) error {
	if b.Version == 0 || b.Version > MaxBlockVersion {
		return ErrUnknownVersion
	}
	if len(b.VRFProof) > 0 && b.Version < VRFBlockVersion {
		return ErrUnexpectedProof
	}
	if len(b.FeatureVotes) > MaxFeatureVotes || len(b.Txs) > MaxBlockTxs {
		return ErrSerMalformedBlock
	}

	w.U8(b.Version)
	w.U64(uint64(b.Time))
	w.FixedBytes(b.Parent.Bytes())
	w.U64(b.BaseTarget)
	w.FixedBytes(b.GenSignature.Bytes())
	if b.Version >= VRFBlockVersion {
		w.SliceBytes(b.VRFProof)
	}
	w.SliceBytes(b.Generator.Bytes())

	// feature votes must be strictly ascending, which both rejects
	// duplicates and keeps the encoding canonical
	w.U32(uint32(len(b.FeatureVotes)))
	for i, f := range b.FeatureVotes {
		if i > 0 && f <= b.FeatureVotes[i-1] {
			return ErrSerMalformedBlock
		}
		w.U16(f)
	}

	w.I64(b.RewardVote)

	w.U32(uint32(len(b.Txs)))
	for _, tx := range b.Txs {
		w.FixedBytes(tx.Bytes())
	}
	return nil
}

func (b *Block) unmarshalCSER(r *cser.Reader) error {
	b.Version = r.U8()
	if b.Version == 0 || b.Version > MaxBlockVersion {
		return ErrUnknownVersion
	}
	b.Time = Timestamp(r.U64())

	parent := make([]byte, 32)
	r.FixedBytes(parent)
	b.Parent = BytesToBlockID(parent)

	b.BaseTarget = r.U64()

	gs := make([]byte, GenSignatureSize)
	r.FixedBytes(gs)
	b.GenSignature = BytesToGenSignature(gs)

	if b.Version >= VRFBlockVersion {
		b.VRFProof = r.SliceBytes(MaxVRFProofSize)
	} else {
		b.VRFProof = nil
	}

	generator, err := minerpk.FromBytes(r.SliceBytes(1 + minerpk.RawSizeSecp256k1))
	if err != nil {
		return err
	}
	b.Generator = generator

	votesNum := r.U32()
	if votesNum > MaxFeatureVotes {
		return cser.ErrTooLargeAlloc
	}
	b.FeatureVotes = make([]uint16, 0, votesNum)
	for i := uint32(0); i < votesNum; i++ {
		f := r.U16()
		if i > 0 && f <= b.FeatureVotes[i-1] {
			return ErrSerMalformedBlock
		}
		b.FeatureVotes = append(b.FeatureVotes, f)
	}
	if votesNum == 0 {
		b.FeatureVotes = nil
	}

	b.RewardVote = r.I64()

	txsNum := r.U32()
	if txsNum > MaxBlockTxs {
		return cser.ErrTooLargeAlloc
	}
	b.Txs = nil
	if txsNum > 0 {
		b.Txs = make([]common.Hash, 0, txsNum)
		for i := uint32(0); i < txsNum; i++ {
			tx := make([]byte, 32)
			r.FixedBytes(tx)
			b.Txs = append(b.Txs, common.BytesToHash(tx))
		}
	}
	return nil
}

// marshalUnsigned returns the canonical bytes covered by the signature.
func (b *Block) marshalUnsigned() ([]byte, error) {
	return cser.MarshalBinaryAdapter(b.marshalCSER)
}

// MarshalBinary implements encoding.BinaryMarshaler for a signed block.
func (b *Block) MarshalBinary() ([]byte, error) {
	if len(b.Signature) != SignatureSize {
		return nil, ErrNoSignature
	}
	return cser.MarshalBinaryAdapter(func(w *cser.Writer) error {
		if err := b.marshalCSER(w); err != nil {
			return err
		}
		w.FixedBytes(b.Signature)
		return nil
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for a signed block.
func (b *Block) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, func(r *cser.Reader) error {
		if err := b.unmarshalCSER(r); err != nil {
			return err
		}
		b.Signature = make([]byte, SignatureSize)
		r.FixedBytes(b.Signature)
		return nil
	})
}

// Sign computes and attaches the generator's signature. The block's
// Generator field must already hold the public key matching the given
// private key; signing with a foreign key is rejected.
func (b *Block) Sign(key *ecdsa.PrivateKey) error {
	pk := minerpk.FromECDSA(&key.PublicKey)
	if b.Generator.Empty() {
		b.Generator = pk
	} else if b.Generator.String() != pk.String() {
		return ErrWrongSigner
	}
	raw, err := b.marshalUnsigned()
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(crypto.Keccak256(raw), key)
	if err != nil {
		return err
	}
	b.Signature = sig
	return nil
}

// VerifySignature checks the block's signature against its Generator key.
// Returns nil for a valid signature; any failure, including a malformed
// signature or key, is reported as an error.
func (b *Block) VerifySignature() error {
	if len(b.Signature) != SignatureSize {
		return ErrNoSignature
	}
	if b.Generator.Type != minerpk.Types.Secp256k1 || len(b.Generator.Raw) != minerpk.RawSizeSecp256k1 {
		return errors.New("unsupported generator pubkey")
	}
	raw, err := b.marshalUnsigned()
	if err != nil {
		return err
	}
	// the recovery byte is not part of the curve equation check
	if !crypto.VerifySignature(b.Generator.Raw, crypto.Keccak256(raw), b.Signature[:SignatureSize-1]) {
		return errors.New("invalid block signature")
	}
	return nil
}
