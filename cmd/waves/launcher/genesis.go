// genesis.go implements the generate command: load or fabricate the stake
// distribution, run the bootstrap search, and write the genesis artifact
// with its companion account report.
package launcher

import (
	"crypto/ecdsa"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/hengkyherdianto/Waves/genesis"
)

func generateAction(ctx *cli.Context) error {
	cfg, err := MakeConfig(ctx)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Logging); err != nil {
		return err
	}

	accounts, keys, err := loadAccounts(cfg)
	if err != nil {
		logrus.WithError(err).Error("Failed to load the stake distribution")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"network":  cfg.Rules.Name,
		"accounts": len(accounts),
		"delay":    cfg.TargetDelay,
	}).Info("Searching the initial base target")

	g, candidate, err := genesis.Generate(genesis.Request{
		Rules:       cfg.Rules,
		Accounts:    accounts,
		Keys:        keys,
		TargetDelay: cfg.TargetDelay,
		Timestamp:   cfg.Timestamp,
	})
	if err != nil {
		logrus.WithError(err).Error("Genesis bootstrap search failed")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"baseTarget": candidate.BaseTarget,
		"producer":   candidate.Index,
		"delay":      candidate.Delay,
		"signed":     len(g.Signature) > 0,
	}).Info("Selected the first producer")

	if err := writeArtifact(cfg.OutPath, g); err != nil {
		logrus.WithError(err).Error("Failed to write the genesis configuration")
		return err
	}
	if err := writeReport(cfg.ReportPath, accounts, keys); err != nil {
		logrus.WithError(err).Error("Failed to write the accounts report")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"conf":   cfg.OutPath,
		"report": cfg.ReportPath,
	}).Info("Genesis generated")
	return nil
}

// loadAccounts returns the stake distribution, either parsed from the
// stakes file or fabricated deterministically. Private keys are known only
// in the fabricated case.
func loadAccounts(cfg Config) ([]genesis.Account, []*ecdsa.PrivateKey, error) {
	if cfg.StakesFile != "" {
		f, err := os.Open(cfg.StakesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open stakes file: %w", err)
		}
		defer f.Close()
		accounts, err := genesis.ParseStakes(f)
		return accounts, nil, err
	}

	accounts := genesis.FakeAccounts(cfg.FakeAccounts, cfg.FakeBalance)
	keys := make([]*ecdsa.PrivateKey, len(accounts))
	for i := range keys {
		keys[i] = genesis.FakeKey(i + 1)
	}
	return accounts, keys, nil
}

func writeArtifact(path string, g *genesis.Genesis) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := g.WriteTo(f); err != nil {
		return err
	}
	return f.Close()
}

func writeReport(path string, accounts []genesis.Account, keys []*ecdsa.PrivateKey) error {
	// the report may contain private keys
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := genesis.WriteAccountsReport(f, accounts, keys); err != nil {
		return err
	}
	return f.Close()
}
