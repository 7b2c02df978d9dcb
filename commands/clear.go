package commands

import (
	"fmt"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// Clear implements the UNIX clear command.
func Clear(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	if term := ctx.Env.Getenv(EnvTerm); term != "" && term != "dumb" {
		// Assumes VT100 compatibility.
		fmt.Fprintf(io.Stdout, "\033[H\033[2J")
	}
	return 0
}

// True does nothing, successfully.
func True(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	return shell.ExitSuccess
}

// False does nothing, unsuccessfully.
func False(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	return shell.ExitFailure
}

var _ shell.CommandFunc = Clear

func init() {
	addBinCmd(shell.Definition{
		Name:        "clear",
		Description: "Clear the terminal screen.",
		Usage:       "clear",
		Command:     shell.CommandFunc(Clear),
	})
	addBinCmd(shell.Definition{
		Name:        "true",
		Description: "Do nothing, successfully.",
		Usage:       "true",
		Command:     shell.CommandFunc(True),
	})
	addBinCmd(shell.Definition{
		Name:        "false",
		Description: "Do nothing, unsuccessfully.",
		Usage:       "false",
		Command:     shell.CommandFunc(False),
	})
}
