// generation.go derives generation signatures: the per-block pseudorandom
// values that chain eligibility randomness from block to block.
//
// Two modes exist, selected by the VRF upgrade:
//   - legacy: Keccak256(parent hit-source || generator public key).
//     Deterministic and verifiable by recomputation, but the generator can
//     grind over keys.
//   - VRF: an ECVRF-SECP256K1-SHA256-TAI proof over the parent hit-source.
//     The block carries the 32-byte VRF output as its generation signature
//     plus the proof; any holder of the generator's public key can verify
//     the output, and the generator cannot bias it without a new key at
//     stake.
//
// For fixed inputs every derivation is bit-identical across runs and
// implementations, since the outputs are consensus-critical.
package consensus

import (
	"bytes"
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
	ecvrf "github.com/vechain/go-ecvrf"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/inter/minerpk"
)

// ErrVRFProof reports a generation signature whose VRF proof does not
// verify. This is a hard rejection: an invalid proof cannot result from an
// honest fork, only from corruption or forgery.
var ErrVRFProof = errors.New("invalid VRF proof for generation signature")

var vrf = ecvrf.Secp256k1Sha256Tai

// GenerationSignature derives a legacy (pre-VRF) generation signature from
// the parent's hit-source and the generator's public key. Pure function,
// no key material needed.
func GenerationSignature(hitSource inter.GenSignature, generator minerpk.PubKey) inter.GenSignature {
	return inter.BytesToGenSignature(crypto.Keccak256(hitSource.Bytes(), generator.Bytes()))
}

// GenerationVRF derives a VRF generation signature on the generator side.
// It returns the VRF output, which becomes the block's generation
// signature, and the proof to be carried next to it.
func GenerationVRF(hitSource inter.GenSignature, key *ecdsa.PrivateKey) (inter.GenSignature, []byte, error) {
	beta, pi, err := vrf.Prove(key, hitSource.Bytes())
	if err != nil {
		return inter.GenSignature{}, nil, err
	}
	return inter.BytesToGenSignature(beta), pi, nil
}

// VerifyGenerationVRF checks a claimed VRF generation signature against its
// proof, holding only the generator's public key. Returns ErrVRFProof when
// the proof fails to verify or verifies to a different output.
func VerifyGenerationVRF(hitSource inter.GenSignature, generator minerpk.PubKey, proof []byte, claimed inter.GenSignature) error {
	pk, err := generator.ECDSA()
	if err != nil {
		return err
	}
	beta, err := vrf.Verify(pk, hitSource.Bytes(), proof)
	if err != nil {
		return ErrVRFProof
	}
	if !bytes.Equal(beta, claimed.Bytes()) {
		return ErrVRFProof
	}
	return nil
}
