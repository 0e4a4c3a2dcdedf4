package flags

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

// NewApp builds the base CLI application shared by the tool's commands.
func NewApp(usage string) *cli.App {
	app := cli.NewApp()
	app.Name = "waves-genesis"
	app.Usage = usage
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	return app
}
