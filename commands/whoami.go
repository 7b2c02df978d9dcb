package commands

import (
	"fmt"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// Whoami implements the POSIX whoami command.
func Whoami(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "whoami [OPTION]...",
		Short: "Print the current user.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.Run(args, ctx, io, func() int {
		fmt.Fprintln(io.Stdout, ctx.Cred().User)
		return 0
	})
}

var _ shell.CommandFunc = Whoami

func init() {
	addBinCmd(shell.Definition{
		Name:        "whoami",
		Description: "Print effective user name.",
		Usage:       "whoami [OPTION]...",
		Command:     shell.CommandFunc(Whoami),
	})
}
