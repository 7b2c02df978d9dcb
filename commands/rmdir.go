package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// Rmdir implements a POSIX rmdir command.
func Rmdir(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "rmdir [OPTION...] DIRECTORY...",
		Short: "Remove empty directories.",
	}

	parents := cmd.Flags().BoolLong("parents", 'p', "remove DIRECTORY and its ancestors")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print line for every deleted directory")

	return cmd.Run(args, ctx, io, func() int {
		directories := cmd.Args()
		if len(directories) == 0 {
			fmt.Fprintln(io.Stderr, "rmdir: missing operand")

			cmd.PrintHelp(io.Stdout)
			return 1
		}

		anyFailed := false
		for _, dir := range directories {
			// Deepest first, e.g. a/b/c, a/b, a.
			steps := []string{dir}
			if *parents {
				trimmed := strings.TrimRight(dir, "/")
				for idx := strings.LastIndex(trimmed, "/"); idx > 0; idx = strings.LastIndex(trimmed, "/") {
					trimmed = trimmed[:idx]
					steps = append(steps, trimmed)
				}
			}

			for _, step := range steps {
				info, err := ctx.FS.Stat(ctx.Abs(step))
				if err == nil && !info.IsDir() {
					err = vfs.ErrNotDir
				}
				if err == nil {
					err = ctx.FS.Remove(ctx.Cred(), ctx.Abs(step))
				}

				if err != nil {
					fmt.Fprintf(io.Stderr, "rmdir: failed to remove '%s': %s\n", step, vfs.Reason(err))
					anyFailed = true
					break
				}
				if *verbose {
					fmt.Fprintf(io.Stdout, "rmdir: removing directory, '%s'\n", step)
				}
			}
		}

		if anyFailed {
			return 1
		}
		return 0
	})
}

var _ shell.CommandFunc = Rmdir

func init() {
	addBinCmd(shell.Definition{
		Name:        "rmdir",
		Description: "Remove empty directories.",
		Usage:       "rmdir [OPTION...] DIRECTORY...",
		Command:     shell.CommandFunc(Rmdir),
	})
}
