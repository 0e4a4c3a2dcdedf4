// Package launcher wires the genesis tool's CLI: flag parsing, logging
// setup, and the generate command.
package launcher

import (
	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/hengkyherdianto/Waves/flags"
)

var app = flags.NewApp("proof-of-stake genesis block generator")

func init() {
	app.Flags = flags.CommonFlags()
	app.Commands = []cli.Command{
		{
			Name:   "generate",
			Usage:  "Search the initial base target and write the genesis configuration",
			Flags:  append(flags.CommonFlags(), flags.GenesisFlags()...),
			Action: generateAction,
		},
	}
}

// Launch runs the CLI with the given arguments.
func Launch(args []string) error {
	return app.Run(args)
}

// setupLogging configures logrus per the CLI flags. A Sentry hook is
// attached when a DSN is supplied, so one-shot runs in CI report failures
// without anyone watching the console.
func setupLogging(cfg LoggingConfig) error {
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.Verbosity >= 0 && cfg.Verbosity <= int(logrus.TraceLevel) {
		logrus.SetLevel(logrus.Level(cfg.Verbosity))
	}
	if cfg.SentryDSN != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return err
		}
		logrus.AddHook(hook)
	}
	return nil
}
