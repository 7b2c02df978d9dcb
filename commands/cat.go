package commands

import (
	"fmt"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// Cat implements the UNIX cat command.
func Cat(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "cat [OPTION]... [FILE]...",
		Short: "Concatenate FILE(s) to standard output.",
	}

	number := cmd.Flags().BoolLong("number", 'n', "number all output lines")

	return cmd.Run(args, ctx, io, func() int {
		inputs, status := cmd.ReadInputs(args[0], cmd.Flags().Args(), ctx, io)

		line := 0
		for _, in := range inputs {
			if !*number {
				io.Stdout.WriteString(in.Content)
				continue
			}
			for _, text := range splitLines(in.Content) {
				line++
				fmt.Fprintf(io.Stdout, "%6d\t%s\n", line, text)
			}
		}

		return status
	})
}

var _ shell.CommandFunc = Cat

func init() {
	addBinCmd(shell.Definition{
		Name:        "cat",
		Description: "Concatenate files to standard output.",
		Usage:       "cat [OPTION]... [FILE]...",
		Command:     shell.CommandFunc(Cat),
	})
}
