package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// lastLines returns the final n lines of text.
func lastLines(text string, n int) []string {
	lines := splitLines(text)
	if n < len(lines) {
		lines = lines[len(lines)-max(n, 0):]
	}
	return lines
}

// Tail implements the POSIX tail command.
//
// With -f, named files are polled for appended content until the command is
// cancelled or the poll limit is reached.
func Tail(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "tail [-f] [-n NUM] [FILE]...",
		Short: "Print the last NUM lines of each FILE.",
	}
	lines := cmd.Flags().IntLong("lines", 'n', defaultLineCount, "print the last NUM lines")
	follow := cmd.Flags().BoolLong("follow", 'f', "output appended data as the file grows")

	return cmd.Run(args, ctx, io, func() int {
		inputs, status := cmd.ReadInputs(args[0], cmd.Flags().Args(), ctx, io)

		for i, in := range inputs {
			if len(inputs) > 1 {
				printInputHeader(io, i == 0, in.Name)
			}
			if out := lastLines(in.Content, *lines); len(out) > 0 {
				fmt.Fprintln(io.Stdout, strings.Join(out, "\n"))
			}
		}

		if !*follow {
			return status
		}

		seen := make(map[string]string)
		for _, in := range inputs {
			if in.Name != "" {
				seen[in.Name] = in.Content
			}
		}

		tick := newTicker(ctx.Registry().FollowConfig())
		for {
			if io.Cancel.Cancelled() {
				return shell.ExitCancelled
			}
			if !tick.Next() {
				return status
			}

			for _, in := range inputs {
				if in.Name == "" {
					continue
				}
				content, err := ctx.FS.ReadFile(ctx.Cred(), ctx.Abs(in.Name))
				if err != nil {
					continue
				}
				previous := seen[in.Name]
				switch {
				case strings.HasPrefix(content, previous):
					io.Stdout.WriteString(content[len(previous):])
				default:
					fmt.Fprintf(io.Stderr, "tail: %s: file truncated\n", in.Name)
					io.Stdout.WriteString(content)
				}
				seen[in.Name] = content
			}
		}
	})
}

var _ shell.CommandFunc = Tail

func init() {
	addBinCmd(shell.Definition{
		Name:        "tail",
		Description: "Output the last part of files.",
		Usage:       "tail [-f] [-n NUM] [FILE]...",
		Command:     shell.CommandFunc(Tail),
	})
}
