package commands

import (
	"fmt"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// Pwd implements the UNIX pwd command.
func Pwd(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "pwd",
		Short: "Print the name of the current working directory.",
	}

	return cmd.Run(args, ctx, io, func() int {
		fmt.Fprintln(io.Stdout, ctx.Getwd())
		return 0
	})
}

var _ shell.CommandFunc = Pwd

func init() {
	addBinCmd(shell.Definition{
		Name:        "pwd",
		Description: "Print the name of the current working directory.",
		Usage:       "pwd",
		Command:     shell.CommandFunc(Pwd),
	})
}
