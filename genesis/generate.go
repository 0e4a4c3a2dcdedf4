package genesis

import (
	"crypto/ecdsa"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

// Request bundles the inputs of one genesis generation run.
type Request struct {
	Rules       waves.Rules
	Accounts    []Account
	Keys        []*ecdsa.PrivateKey // parallel to Accounts; nil entries for accounts whose keys are not held
	TargetDelay uint64              // milliseconds
	Timestamp   inter.Timestamp
}

// Generate runs the bootstrap search and assembles the genesis artifact.
// When the selected first producer's private key is held, the genesis
// block is built and its signature embedded in the artifact; otherwise the
// artifact is left unsigned for out-of-band signing.
func Generate(req Request) (*Genesis, Candidate, error) {
	candidate, err := SearchInitialBaseTarget(req.Rules, req.Accounts, req.TargetDelay)
	if err != nil {
		return nil, Candidate{}, err
	}

	g := &Genesis{
		AvgBlockDelay:     req.TargetDelay,
		InitialBaseTarget: candidate.BaseTarget,
		Timestamp:         req.Timestamp,
		BlockTimestamp:    req.Timestamp,
	}
	for _, acc := range req.Accounts {
		addr, err := acc.PublicKey.Address()
		if err != nil {
			return nil, Candidate{}, err
		}
		g.InitialBalance += acc.Stake
		g.Transfers = append(g.Transfers, Transfer{Recipient: addr, Amount: acc.Stake})
	}

	if candidate.Index < len(req.Keys) && req.Keys[candidate.Index] != nil {
		if _, err := g.Build(req.Keys[candidate.Index]); err != nil {
			return nil, Candidate{}, err
		}
	}
	return g, candidate, nil
}

// WriteAccountsReport renders the human-readable account report companion
// to the genesis artifact. Private keys appear only for accounts whose
// keys were generated during this run.
func WriteAccountsReport(w io.Writer, accounts []Account, keys []*ecdsa.PrivateKey) error {
	for i, acc := range accounts {
		addr, err := acc.PublicKey.Address()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "account %d\n", i); err != nil {
			return err
		}
		fmt.Fprintf(w, "  address:     %s\n", addr.Hex())
		fmt.Fprintf(w, "  public key:  %s\n", acc.PublicKey.String())
		if i < len(keys) && keys[i] != nil {
			fmt.Fprintf(w, "  private key: %s\n", hexutil.Encode(crypto.FromECDSA(keys[i])))
		}
		if _, err := fmt.Fprintf(w, "  stake:       %d\n\n", acc.Stake); err != nil {
			return err
		}
	}
	return nil
}
