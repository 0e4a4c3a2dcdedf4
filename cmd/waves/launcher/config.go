// config.go maps CLI context onto the generation run configuration.
package launcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/hengkyherdianto/Waves/inter"
	"github.com/hengkyherdianto/Waves/waves"
)

// Config aggregates everything one generation run needs.
type Config struct {
	Rules       waves.Rules
	TargetDelay uint64 // milliseconds
	Timestamp   inter.Timestamp

	StakesFile   string // when empty, deterministic fake accounts are used
	FakeAccounts int
	FakeBalance  uint64

	OutPath    string
	ReportPath string

	Logging LoggingConfig
}

// LoggingConfig controls log verbosity, format and error reporting.
type LoggingConfig struct {
	Verbosity int
	Format    string
	SentryDSN string
}

// MakeConfig merges the network preset defaults with CLI flag overrides.
func MakeConfig(ctx *cli.Context) (Config, error) {
	rules, err := rulesPreset(ctx.String("network"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Rules:        rules,
		TargetDelay:  rules.AvgBlockDelay,
		Timestamp:    inter.FromTime(time.Now()),
		StakesFile:   resolvePath(ctx.String("stakes")),
		FakeAccounts: ctx.Int("fake.accounts"),
		FakeBalance:  ctx.Uint64("fake.balance"),
		OutPath:      resolvePath(ctx.String("out")),
		ReportPath:   resolvePath(ctx.String("report")),
		Logging: LoggingConfig{
			Verbosity: ctx.Int("log.verbosity"),
			Format:    ctx.String("log.format"),
			SentryDSN: ctx.String("sentry.dsn"),
		},
	}
	if ctx.IsSet("delay") {
		cfg.TargetDelay = ctx.Uint64("delay")
	}
	if ctx.IsSet("timestamp") {
		cfg.Timestamp = inter.Timestamp(ctx.Uint64("timestamp"))
	}

	if cfg.TargetDelay == 0 {
		return Config{}, fmt.Errorf("target delay must be positive")
	}
	if cfg.StakesFile == "" && cfg.FakeAccounts < 1 {
		return Config{}, fmt.Errorf("either --stakes or --fake.accounts is required")
	}
	return cfg, nil
}

func rulesPreset(name string) (waves.Rules, error) {
	switch strings.ToLower(name) {
	case "main", "mainnet":
		return waves.MainNetRules(), nil
	case "test", "testnet":
		return waves.TestNetRules(), nil
	case "fake", "fakenet":
		return waves.FakeNetRules(), nil
	default:
		return waves.Rules{}, fmt.Errorf("unknown network preset %q", name)
	}
}

func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
