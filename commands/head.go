package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

const defaultLineCount = 10

// printInputHeader writes the "==> name <==" banner used when head or tail
// show several files.
func printInputHeader(io *vos.IOStreams, first bool, name string) {
	if !first {
		fmt.Fprintln(io.Stdout)
	}
	if name == "" {
		name = "standard input"
	}
	fmt.Fprintf(io.Stdout, "==> %s <==\n", name)
}

// Head implements the POSIX head command.
func Head(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "head [-n NUM] [FILE]...",
		Short: "Print the first NUM lines of each FILE.",
	}
	lines := cmd.Flags().IntLong("lines", 'n', defaultLineCount, "print the first NUM lines")

	return cmd.Run(args, ctx, io, func() int {
		inputs, status := cmd.ReadInputs(args[0], cmd.Flags().Args(), ctx, io)

		for i, in := range inputs {
			if len(inputs) > 1 {
				printInputHeader(io, i == 0, in.Name)
			}

			out := splitLines(in.Content)
			if *lines < len(out) {
				out = out[:max(*lines, 0)]
			}
			if len(out) > 0 {
				fmt.Fprintln(io.Stdout, strings.Join(out, "\n"))
			}
		}
		return status
	})
}

var _ shell.CommandFunc = Head

func init() {
	addBinCmd(shell.Definition{
		Name:        "head",
		Description: "Output the first part of files.",
		Usage:       "head [-n NUM] [FILE]...",
		Command:     shell.CommandFunc(Head),
	})
}
