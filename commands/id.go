package commands

import (
	"fmt"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// defaultUID is reported for users missing from /etc/passwd.
const defaultUID = 1000

// Id implements the POSIX id command using /etc/passwd.
func Id(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "id [OPTION]... [USER]",
		Short: "Print user and group information.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.Run(args, ctx, io, func() int {
		passwd := readPasswd(ctx)

		cred := ctx.Cred()
		user, group := cred.User, cred.Group
		if operands := cmd.Args(); len(operands) > 0 {
			if _, ok := passwd[operands[0]]; !ok {
				fmt.Fprintf(io.Stderr, "id: '%s': no such user\n", operands[0])
				return 1
			}
			user, group = operands[0], operands[0]
		}

		uid, gid := defaultUID, defaultUID
		if entry, ok := passwd[user]; ok {
			uid, gid = entry.UID, entry.GID
		}
		if entry, ok := passwd[group]; ok {
			gid = entry.GID
		}

		fmt.Fprintf(io.Stdout, "uid=%d(%s) gid=%d(%s) groups=%[3]d(%[4]s)\n", uid, user, gid, group)
		return 0
	})
}

var _ shell.CommandFunc = Id

func init() {
	addBinCmd(shell.Definition{
		Name:        "id",
		Description: "Print real and effective user and group IDs.",
		Usage:       "id [OPTION]... [USER]",
		Command:     shell.CommandFunc(Id),
	})
}
