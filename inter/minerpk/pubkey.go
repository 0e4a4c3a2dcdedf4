// Package minerpk provides abstractions for handling block-generator public
// keys. It defines a generic PubKey structure that supports multiple
// cryptographic schemes (currently Secp256k1) and provides utilities for
// serialization, deserialization, and hex string conversion. The consensus
// core carries generator keys through this type so that signature and VRF
// verification never need to know curve details at the call site.
package minerpk

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RawSizeSecp256k1 is the size of a compressed secp256k1 public key.
const RawSizeSecp256k1 = 33

// PubKey represents a block generator's public key.
// It decouples the key type from the raw bytes, allowing support for
// different signature schemes in the future.
type PubKey struct {
	// Type identifies the cryptographic curve or algorithm used.
	Type uint8
	// Raw contains the actual public key bytes (compressed form for
	// Secp256k1).
	Raw []byte
}

// Types defines the supported public key type constants.
var Types = struct {
	Secp256k1 uint8
}{
	// 0xc0 is an arbitrary byte value chosen to identify this type.
	Secp256k1: 0xc0,
}

// Empty checks if the public key is uninitialized or zeroed out.
func (pk PubKey) Empty() bool {
	return len(pk.Raw) == 0 && pk.Type == 0
}

// String returns the hexadecimal representation of the public key,
// prefixed with "0x". It includes the Type byte followed by the Raw bytes.
func (pk PubKey) String() string {
	return "0x" + common.Bytes2Hex(pk.Bytes())
}

// Bytes returns the flat byte slice representation of the public key.
// The format is [Type byte] + [Raw bytes...].
func (pk PubKey) Bytes() []byte {
	return append([]byte{pk.Type}, pk.Raw...)
}

// Copy creates a deep copy of the PubKey. The Raw field is a slice, so a
// plain assignment would share the underlying memory.
func (pk PubKey) Copy() PubKey {
	return PubKey{
		Type: pk.Type,
		Raw:  common.CopyBytes(pk.Raw),
	}
}

// ECDSA decompresses the key into its ecdsa.PublicKey form, as required by
// the signature and VRF verification primitives.
func (pk PubKey) ECDSA() (*ecdsa.PublicKey, error) {
	if pk.Type != Types.Secp256k1 {
		return nil, errors.New("unsupported pubkey type")
	}
	if len(pk.Raw) != RawSizeSecp256k1 {
		return nil, errors.New("wrong secp256k1 pubkey size")
	}
	return crypto.DecompressPubkey(pk.Raw)
}

// Address derives the 20-byte account address controlled by this key.
func (pk PubKey) Address() (common.Address, error) {
	ecdsaPk, err := pk.ECDSA()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*ecdsaPk), nil
}

// FromECDSA compresses an ecdsa.PublicKey into the PubKey form carried in
// block headers.
func FromECDSA(pk *ecdsa.PublicKey) PubKey {
	return PubKey{
		Type: Types.Secp256k1,
		Raw:  crypto.CompressPubkey(pk),
	}
}

// FromString parses a hex string (with or without "0x" prefix) into a PubKey.
func FromString(str string) (PubKey, error) {
	return FromBytes(common.FromHex(str))
}

// FromBytes reconstructs a PubKey from a flat byte slice.
// It expects the first byte to be the Type and the rest to be the Raw key.
func FromBytes(b []byte) (PubKey, error) {
	if len(b) == 0 {
		return PubKey{}, errors.New("empty pubkey")
	}
	return PubKey{b[0], b[1:]}, nil
}

// MarshalText implements the encoding.TextMarshaler interface, so the PubKey
// marshals into a JSON hex string with standard Go JSON encoding.
func (pk *PubKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (pk *PubKey) UnmarshalText(input []byte) error {
	res, err := FromString(string(input))
	if err != nil {
		return err
	}
	*pk = res
	return nil
}
