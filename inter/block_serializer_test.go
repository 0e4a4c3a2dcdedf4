package inter

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/hengkyherdianto/Waves/inter/minerpk"
)

// testBlock builds a representative signed block for codec tests.
func testBlock(t *testing.T, version uint8) *Block {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	b := &Block{
		BlockHeader: BlockHeader{
			Version:      version,
			Time:         1606556700000,
			Parent:       BytesToBlockID([]byte{1, 2, 3}),
			BaseTarget:   153722867,
			GenSignature: BytesToGenSignature(crypto.Keccak256([]byte("prev"))),
			Generator:    minerpk.FromECDSA(&key.PublicKey),
			FeatureVotes: []uint16{3, 9, 14},
			RewardVote:   -1,
		},
		Txs: []common.Hash{
			common.BytesToHash([]byte("tx1")),
			common.BytesToHash([]byte("tx2")),
		},
	}
	if version >= VRFBlockVersion {
		b.VRFProof = make([]byte, 81)
		for i := range b.VRFProof {
			b.VRFProof[i] = byte(i)
		}
	}
	require.NoError(t, b.Sign(key))
	return b
}

// TestBlockRoundTrip verifies that signed blocks of every supported version
// survive a marshal/unmarshal cycle unchanged, keeping the same ID.
func TestBlockRoundTrip(t *testing.T) {
	require := require.New(t)

	for version := uint8(1); version <= MaxBlockVersion; version++ {
		exp := testBlock(t, version)
		raw, err := exp.MarshalBinary()
		require.NoError(err)

		got := &Block{}
		require.NoError(got.UnmarshalBinary(raw))
		require.Equal(exp, got, "version %d", version)
		require.Equal(exp.ID(), got.ID())
		require.NoError(got.VerifySignature())
	}
}

// TestBlockDeterministicEncoding verifies that serializing the same block
// twice yields identical bytes. The encoding feeds signing and identity
// hashing, so any nondeterminism here would split consensus.
func TestBlockDeterministicEncoding(t *testing.T) {
	require := require.New(t)

	b := testBlock(t, MaxBlockVersion)
	raw1, err := b.MarshalBinary()
	require.NoError(err)
	raw2, err := b.MarshalBinary()
	require.NoError(err)
	require.Equal(raw1, raw2)
}

// TestBlockSignature covers signing rules: a valid signature verifies, a
// tampered block or signature does not, an unsigned block cannot be hashed
// for identity, and signing with a foreign key is refused.
func TestBlockSignature(t *testing.T) {
	require := require.New(t)

	b := testBlock(t, MaxBlockVersion)
	require.NoError(b.VerifySignature())

	// tampering with any signature byte must break verification
	{
		tampered := *b
		tampered.Signature = common.CopyBytes(b.Signature)
		tampered.Signature[10] ^= 0xff
		require.Error(tampered.VerifySignature())
	}
	// tampering with a header field must break verification too
	{
		tampered := *b
		tampered.BaseTarget++
		require.Error(tampered.VerifySignature())
	}
	// unsigned blocks aren't serializable in signed form
	{
		unsigned := *b
		unsigned.Signature = nil
		_, err := unsigned.MarshalBinary()
		require.ErrorIs(err, ErrNoSignature)
		require.ErrorIs(unsigned.VerifySignature(), ErrNoSignature)
	}
	// a key that doesn't match the Generator field is rejected
	{
		foreign, err := crypto.GenerateKey()
		require.NoError(err)
		resigned := *b
		require.ErrorIs(resigned.Sign(foreign), ErrWrongSigner)
	}
}

// TestBlockMalformed verifies the structural rules enforced by the codec.
func TestBlockMalformed(t *testing.T) {
	require := require.New(t)

	// unknown version
	{
		b := testBlock(t, MaxBlockVersion)
		b.Version = MaxBlockVersion + 1
		_, err := b.marshalUnsigned()
		require.ErrorIs(err, ErrUnknownVersion)
	}
	// VRF proof on a legacy version
	{
		b := testBlock(t, 1)
		b.VRFProof = []byte{1}
		_, err := b.marshalUnsigned()
		require.ErrorIs(err, ErrUnexpectedProof)
	}
	// unordered feature votes
	{
		b := testBlock(t, MaxBlockVersion)
		b.FeatureVotes = []uint16{9, 3}
		_, err := b.marshalUnsigned()
		require.ErrorIs(err, ErrSerMalformedBlock)
	}
	// truncated input never round-trips
	{
		raw, err := testBlock(t, MaxBlockVersion).MarshalBinary()
		require.NoError(err)
		got := &Block{}
		require.Error(got.UnmarshalBinary(raw[:len(raw)/2]))
	}
}
