package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// Touch implements a POSIX touch command.
func Touch(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "touch [OPTION...] FILE...",
		Short: "Update the access and modification times of files to now.",
	}

	// Ignored flags to make the help look more robust. Realistically, access time
	// isn't always recorded by systems for performance reasons.
	cmd.Flags().Bool('a', "only change the access time")
	cmd.Flags().Bool('m', "only change the modification time")

	noCreate := cmd.Flags().BoolLong("no-create", 'c', "don't create files")

	return cmd.Run(args, ctx, io, func() int {
		paths := cmd.Args()
		if len(paths) == 0 {
			fmt.Fprintln(io.Stderr, "touch: missing file operand")
			return 1
		}

		var anyFailed bool
		for _, path := range paths {
			abs := ctx.Abs(path)
			if _, err := ctx.FS.Stat(abs); errors.Is(err, fs.ErrNotExist) && *noCreate {
				// Not an error.
				continue
			}

			if err := ctx.FS.Touch(ctx.Cred(), abs); err != nil {
				fmt.Fprintf(io.Stderr, "touch: cannot touch '%s': %s\n", path, vfs.Reason(err))
				anyFailed = true
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ shell.CommandFunc = Touch

func init() {
	addBinCmd(shell.Definition{
		Name:        "touch",
		Description: "Change file timestamps.",
		Usage:       "touch [OPTION...] FILE...",
		Command:     shell.CommandFunc(Touch),
	})
}
