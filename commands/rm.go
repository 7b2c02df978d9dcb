package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// Rm implements a POSIX rm command.
func Rm(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "rm [OPTION...] FILE...",
		Short: "Remove files or directories.",
	}

	recursive := cmd.Flags().BoolLong("recursive", 'r', "remove directories and their contents recursively")
	recursiveAlias := cmd.Flags().Bool('R', "same as -r")
	force := cmd.Flags().BoolLong("force", 'f', "ignore missing files and arguments, never prompt")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "explain what is being done")

	return cmd.Run(args, ctx, io, func() int {
		*recursive = *recursive || *recursiveAlias
		files := cmd.Args()
		if len(files) == 0 && !*force {
			fmt.Fprintln(io.Stderr, "rm: missing operand")
			return 1
		}

		anyFailed := false
		for _, file := range files {
			abs := ctx.Abs(file)
			stat, statErr := ctx.FS.Stat(abs)
			switch {
			case errors.Is(statErr, fs.ErrNotExist):
				if !*force {
					fmt.Fprintf(io.Stderr, "rm: cannot remove '%s': %s\n", file, vfs.Reason(statErr))
					anyFailed = true
				}
				continue
			case statErr != nil:
				fmt.Fprintf(io.Stderr, "rm: cannot remove '%s': %s\n", file, vfs.Reason(statErr))
				anyFailed = true
				continue
			case stat.IsDir() && !*recursive:
				fmt.Fprintf(io.Stderr, "rm: cannot remove '%s': %s\n", file, vfs.ErrIsDir)
				anyFailed = true
				continue
			}

			remove := ctx.FS.Remove
			if *recursive {
				remove = ctx.FS.RemoveAll
			}
			if err := remove(ctx.Cred(), abs); err != nil {
				fmt.Fprintf(io.Stderr, "rm: cannot remove '%s': %s\n", file, vfs.Reason(err))
				anyFailed = true
				continue
			}
			if *verbose {
				fmt.Fprintf(io.Stdout, "removed '%s'\n", file)
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ shell.CommandFunc = Rm

func init() {
	addBinCmd(shell.Definition{
		Name:        "rm",
		Description: "Remove files or directories.",
		Usage:       "rm [OPTION...] FILE...",
		Command:     shell.CommandFunc(Rm),
	})
}
