// Package genesis manufactures genesis block definitions: the one-shot
// bootstrap search for the initial base target, the configuration artifact
// consumed by storage initialization, and the companion report of generated
// account key material.
//
// Nothing in this package runs during steady-state consensus.
package genesis

import (
	"bufio"
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/inter/minerpk"
)

// Transfer is one initial allocation: the recipient receives the amount at
// genesis.
type Transfer struct {
	Recipient common.Address
	Amount    uint64
}

// Genesis is the configuration artifact describing a genesis block. It is
// an offline batch product serialized as human-readable key/value text,
// not a live protocol message.
type Genesis struct {
	AvgBlockDelay     uint64 // milliseconds
	InitialBaseTarget uint64
	Timestamp         inter.Timestamp // when the artifact was produced
	BlockTimestamp    inter.Timestamp // timestamp carried by the genesis block
	Signature         []byte          // genesis block signature, empty until signed
	InitialBalance    uint64          // total initial token supply
	Transfers         []Transfer      // ordered initial allocations
}

// Build assembles and signs the genesis block described by the artifact.
// The generation signature is all zeroes: the canonical hit source that
// the first real block chains from. The artifact's Signature field is
// updated to the produced signature.
func (g *Genesis) Build(key *ecdsa.PrivateKey) (*inter.Block, error) {
	b := &inter.Block{
		BlockHeader: inter.BlockHeader{
			Version:    1,
			Time:       g.BlockTimestamp,
			BaseTarget: g.InitialBaseTarget,
			Generator:  minerpk.FromECDSA(&key.PublicKey),
		},
	}
	if err := b.Sign(key); err != nil {
		return nil, err
	}
	g.Signature = append([]byte{}, b.Signature...)
	return b, nil
}

// MarshalText renders the artifact as `key = value` lines. The layout is
// stable: fixed keys first, then transfers in order.
func (g *Genesis) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	put := func(key string, value interface{}) {
		fmt.Fprintf(&buf, "%s = %v\n", key, value)
	}
	put("average-block-delay", g.AvgBlockDelay)
	put("initial-base-target", g.InitialBaseTarget)
	put("timestamp", uint64(g.Timestamp))
	put("block-timestamp", uint64(g.BlockTimestamp))
	if len(g.Signature) > 0 {
		put("signature", hexutil.Encode(g.Signature))
	}
	put("initial-balance", g.InitialBalance)
	for i, t := range g.Transfers {
		put(fmt.Sprintf("transfer.%d.recipient", i), t.Recipient.Hex())
		put(fmt.Sprintf("transfer.%d.amount", i), t.Amount)
	}
	return buf.Bytes(), nil
}

// UnmarshalText parses the `key = value` form produced by MarshalText.
// Blank lines and `#` comments are tolerated; unknown keys are an error so
// typos in hand-edited files do not pass silently.
func (g *Genesis) UnmarshalText(data []byte) error {
	parsed := Genesis{}
	transfers := map[int]*Transfer{}

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("genesis config line %d: no '=' in %q", lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		var err error
		switch {
		case key == "average-block-delay":
			parsed.AvgBlockDelay, err = strconv.ParseUint(value, 10, 64)
		case key == "initial-base-target":
			parsed.InitialBaseTarget, err = strconv.ParseUint(value, 10, 64)
		case key == "timestamp":
			var v uint64
			v, err = strconv.ParseUint(value, 10, 64)
			parsed.Timestamp = inter.Timestamp(v)
		case key == "block-timestamp":
			var v uint64
			v, err = strconv.ParseUint(value, 10, 64)
			parsed.BlockTimestamp = inter.Timestamp(v)
		case key == "signature":
			parsed.Signature, err = hexutil.Decode(value)
		case key == "initial-balance":
			parsed.InitialBalance, err = strconv.ParseUint(value, 10, 64)
		case strings.HasPrefix(key, "transfer."):
			err = parseTransferKey(transfers, key, value)
		default:
			return fmt.Errorf("genesis config line %d: unknown key %q", lineNo, key)
		}
		if err != nil {
			return fmt.Errorf("genesis config line %d: %s: %v", lineNo, key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	parsed.Transfers = make([]Transfer, 0, len(transfers))
	indexes := make([]int, 0, len(transfers))
	for i := range transfers {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	for want, i := range indexes {
		if i != want {
			return fmt.Errorf("genesis config: transfer indexes are not contiguous, missing %d", want)
		}
		parsed.Transfers = append(parsed.Transfers, *transfers[i])
	}

	*g = parsed
	return nil
}

// parseTransferKey handles `transfer.<N>.recipient` and
// `transfer.<N>.amount` keys.
func parseTransferKey(transfers map[int]*Transfer, key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed transfer key")
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 {
		return fmt.Errorf("malformed transfer index %q", parts[1])
	}
	t := transfers[idx]
	if t == nil {
		t = &Transfer{}
		transfers[idx] = t
	}
	switch parts[2] {
	case "recipient":
		if !common.IsHexAddress(value) {
			return fmt.Errorf("malformed recipient address %q", value)
		}
		t.Recipient = common.HexToAddress(value)
	case "amount":
		t.Amount, err = strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown transfer field %q", parts[2])
	}
	return nil
}

// WriteTo streams the marshalled artifact.
func (g *Genesis) WriteTo(w io.Writer) (int64, error) {
	data, err := g.MarshalText()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}
