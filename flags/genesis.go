package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// GenesisFlags covers the inputs and outputs of the generate command.
func GenesisFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network rules preset (main|test|fake)",
			Value: "fake",
		},
		cli.StringFlag{
			Name:  "stakes",
			Usage: "Stake distribution file, one `<pubkey> <stake>` pair per line",
		},
		cli.IntFlag{
			Name:  "fake.accounts",
			Usage: "Generate N deterministic accounts instead of reading --stakes",
			Value: 3,
		},
		cli.Uint64Flag{
			Name:  "fake.balance",
			Usage: "Stake given to each generated account",
			Value: 1000000,
		},
		cli.Uint64Flag{
			Name:  "delay",
			Usage: "Target average block delay in milliseconds (defaults to the preset's)",
		},
		cli.Uint64Flag{
			Name:  "timestamp",
			Usage: "Genesis timestamp in Unix milliseconds (defaults to now)",
		},
		cli.StringFlag{
			Name:  "out",
			Usage: "Output path of the genesis configuration",
			Value: "genesis.conf",
		},
		cli.StringFlag{
			Name:  "report",
			Usage: "Output path of the account key-material report",
			Value: "accounts.txt",
		},
	}
}
