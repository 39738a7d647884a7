package launcher

import (
	"gopkg.in/urfave/cli.v1"

	"github.com/burninrubber0/libbinaryio/flags"
)

// newApp wires the commands onto the flag-configured app.
func newApp() *cli.App {
	app := flags.NewApp()
	app.Commands = []cli.Command{
		dumpCommand(),
		verifyCommand(),
		buildCommand(),
	}
	return app
}

// Launch parses args and runs the selected command.
func Launch(args []string) error {
	return newApp().Run(args)
}
