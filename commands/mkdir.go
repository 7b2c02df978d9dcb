package commands

import (
	"fmt"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// Mkdir implements a POSIX mkdir command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/mkdir.html
func Mkdir(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "mkdir [OPTION...] DIRECTORY...",
		Short: "Create directories if they don't exist.",
	}

	makeParents := cmd.Flags().BoolLong("parents", 'p', "make parents if needed")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print line for every created directory")
	mode := cmd.Flags().StringLong("mode", 'm', "", "set file mode (as in chmod), not a=rwx - umask")

	return cmd.Run(args, ctx, io, func() int {
		directories := cmd.Args()
		if len(directories) == 0 {
			fmt.Fprintln(io.Stderr, "mkdir: missing operand")

			cmd.PrintHelp(io.Stdout)
			return 1
		}

		perm := vfs.DefaultDirPerm
		if *mode != "" {
			parsed, err := ChmodApplyMode(*mode, 0777)
			if err != nil {
				fmt.Fprintf(io.Stderr, "mkdir: invalid mode '%s'\n", *mode)
				return 1
			}
			perm = vfs.FormatPerm(parsed)
		}

		op := ctx.FS.Mkdir
		if *makeParents {
			op = ctx.FS.MkdirAll
		}

		anyFailed := false
		for _, dir := range directories {
			err := op(ctx.Cred(), ctx.Abs(dir), perm)
			switch {
			case err != nil:
				fmt.Fprintf(io.Stderr, "mkdir: cannot create directory '%s': %s\n", dir, vfs.Reason(err))
				anyFailed = true

			case *verbose:
				fmt.Fprintf(io.Stdout, "mkdir: created directory '%s'\n", dir)
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ shell.CommandFunc = Mkdir

func init() {
	addBinCmd(shell.Definition{
		Name:        "mkdir",
		Description: "Make directories.",
		Usage:       "mkdir [OPTION...] DIRECTORY...",
		Command:     shell.CommandFunc(Mkdir),
	})
}
