package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// Chown implements a POSIX chown command. Only root may change ownership.
func Chown(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "chown [OPTION]... OWNER[:[GROUP]] FILE...",
		Short: "Change the owner and/or group of each FILE to OWNER and/or GROUP.",
	}
	verbose := cmd.Flags().BoolLong("verbose", 'v', "output a diagnostic for every file processed")

	return cmd.Run(args, ctx, io, func() int {
		operands := cmd.Args()
		if len(operands) < 2 {
			fmt.Fprintln(io.Stderr, "chown: missing operand")
			return 1
		}

		owner, group, _ := strings.Cut(operands[0], ":")
		if owner == "" && group == "" {
			fmt.Fprintf(io.Stderr, "chown: invalid spec: '%s'\n", operands[0])
			return 1
		}

		anyFailed := false
		for _, path := range operands[1:] {
			if err := ctx.FS.Chown(ctx.Cred(), ctx.Abs(path), owner, group); err != nil {
				fmt.Fprintf(io.Stderr, "chown: changing ownership of '%s': %s\n", path, vfs.Reason(err))
				anyFailed = true
				continue
			}
			if *verbose {
				fmt.Fprintf(io.Stdout, "ownership of '%s' retained as %s\n", path, operands[0])
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ shell.CommandFunc = Chown

func init() {
	addBinCmd(shell.Definition{
		Name:        "chown",
		Description: "Change file owner and group.",
		Usage:       "chown [OPTION]... OWNER[:[GROUP]] FILE...",
		Command:     shell.CommandFunc(Chown),
	})
}
