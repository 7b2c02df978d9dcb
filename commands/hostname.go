package commands

import (
	"fmt"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// currentHostname prefers the session's HOSTNAME over the machine's.
func currentHostname(ctx *shell.Context) string {
	if host := ctx.Env.Getenv(shell.EnvHostname); host != "" {
		return host
	}
	return ctx.FS.System.Hostname
}

// Hostname implements the Linux command by the same name.
func Hostname(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "hostname [hostname]",
		Short: "Get or set the system's hostname.",
		// Never bail, even if flags are bad.
		NeverBail: true,
	}

	return cmd.Run(args, ctx, io, func() int {
		operands := cmd.Args()
		if len(operands) == 0 {
			fmt.Fprintln(io.Stdout, currentHostname(ctx))
			return 0
		}

		if ctx.Cred().User != vfs.RootUser {
			fmt.Fprintln(io.Stderr, "hostname: you must be root to change the host name")
			return 1
		}

		ctx.FS.System.Hostname = operands[0]
		ctx.Env.Setenv(shell.EnvHostname, operands[0])
		return 0
	})
}

var _ shell.CommandFunc = Hostname

func init() {
	addBinCmd(shell.Definition{
		Name:        "hostname",
		Description: "Show or set the system's host name.",
		Usage:       "hostname [hostname]",
		Command:     shell.CommandFunc(Hostname),
	})
}
