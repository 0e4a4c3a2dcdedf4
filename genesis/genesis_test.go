package genesis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/inter/minerpk"
)

func sampleGenesis(t *testing.T, signed bool) *Genesis {
	g := &Genesis{
		AvgBlockDelay:     60000,
		InitialBaseTarget: 153722867,
		Timestamp:         inter.Timestamp(1608600000000),
		BlockTimestamp:    inter.Timestamp(1608600001000),
		InitialBalance:    300000,
	}
	for i, stake := range []uint64{100000, 150000, 50000} {
		key := FakeKey(i + 1)
		addr, err := minerpk.FromECDSA(&key.PublicKey).Address()
		require.NoError(t, err)
		g.Transfers = append(g.Transfers, Transfer{Recipient: addr, Amount: stake})
	}
	if signed {
		_, err := g.Build(FakeKey(1))
		require.NoError(t, err)
	}
	return g
}

// TestArtifactRoundTrip verifies that serializing and re-parsing the
// configuration text yields an identical artifact, signed or not.
func TestArtifactRoundTrip(t *testing.T) {
	require := require.New(t)

	for _, signed := range []bool{false, true} {
		g := sampleGenesis(t, signed)

		data, err := g.MarshalText()
		require.NoError(err)

		parsed := &Genesis{}
		require.NoError(parsed.UnmarshalText(data))
		require.Equal(g, parsed)
	}
}

// TestArtifactTolerantParsing verifies that comments, blank lines, and
// loose whitespace are accepted.
func TestArtifactTolerantParsing(t *testing.T) {
	require := require.New(t)

	text := "# genesis configuration\n" +
		"\n" +
		"  average-block-delay =  60000 \n" +
		"initial-base-target= 12345\n" +
		"timestamp = 1\n" +
		"block-timestamp = 2\n" +
		"initial-balance = 500\n" +
		"transfer.0.recipient = 0x00000000000000000000000000000000000000aa\n" +
		"transfer.0.amount = 500\n"

	g := &Genesis{}
	require.NoError(g.UnmarshalText([]byte(text)))
	require.Equal(uint64(60000), g.AvgBlockDelay)
	require.Equal(uint64(12345), g.InitialBaseTarget)
	require.Equal(uint64(500), g.InitialBalance)
	require.Len(g.Transfers, 1)
	require.Equal(uint64(500), g.Transfers[0].Amount)
}

// TestArtifactRejectsMalformed verifies parse failures on typos and
// structural defects, so hand-edited files cannot pass silently.
func TestArtifactRejectsMalformed(t *testing.T) {
	for name, text := range map[string]string{
		"unknown key":      "averge-block-delay = 60000\n",
		"no equals":        "average-block-delay 60000\n",
		"bad number":       "initial-base-target = twelve\n",
		"bad recipient":    "transfer.0.recipient = nonsense\n",
		"gap in transfers": "transfer.1.recipient = 0x00000000000000000000000000000000000000aa\ntransfer.1.amount = 1\n",
		"bad signature":    "signature = 0xzz\n",
	} {
		g := &Genesis{}
		if err := g.UnmarshalText([]byte(text)); err == nil {
			t.Errorf("%s: parsed without error", name)
		}
	}
}

// TestBuildSignsBlock verifies that the built genesis block carries the
// artifact's parameters, verifies under the builder's key, and chains from
// the all-zero hit source.
func TestBuildSignsBlock(t *testing.T) {
	require := require.New(t)

	g := sampleGenesis(t, false)
	key := FakeKey(1)
	b, err := g.Build(key)
	require.NoError(err)

	require.Equal(g.InitialBaseTarget, b.BaseTarget)
	require.Equal(g.BlockTimestamp, b.Time)
	require.Equal(inter.GenSignature{}, b.GenSignature)
	require.Equal(minerpk.FromECDSA(&key.PublicKey), b.Generator)
	require.NoError(b.VerifySignature())
	require.Equal(b.Signature, g.Signature)
}
