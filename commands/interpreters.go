package commands

import (
	"fmt"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// interpreterCommand builds a command that runs source given with flag,
// a script file, or piped input through the interpreter registered as id.
func interpreterCommand(id, use, short string, flag rune, flagHelp string) shell.CommandFunc {
	return func(args []string, ctx *shell.Context, io *vos.IOStreams) int {
		cmd := &SimpleCommand{
			Use:   use,
			Short: short,
		}
		inline := cmd.Flags().String(flag, "", flagHelp)

		return cmd.Run(args, ctx, io, func() int {
			interp, ok := ctx.Interpreters().Lookup(id)
			if !ok {
				fmt.Fprintf(io.Stderr, "%s: %s\n", args[0], shell.ErrInterpreterNotFound)
				return shell.ExitNotFound
			}

			operands := cmd.Flags().Args()
			switch {
			case cmd.Flags().IsSet(flag):
				return interp.Run(&shell.Script{ID: id, Path: args[0], Source: *inline, Args: operands}, ctx, io)

			case len(operands) > 0:
				return ctx.Interpreters().Execute(id, operands[0], operands[1:], ctx, io)

			default:
				source := io.Stdin.ReadAll()
				if piped, ok := cmd.Piped(); ok {
					source = piped
				}
				return interp.Run(&shell.Script{ID: id, Path: args[0], Source: source}, ctx, io)
			}
		})
	}
}

func init() {
	addBinCmd(shell.Definition{
		Name:        "sh",
		Description: "Command interpreter.",
		Usage:       "sh [-c COMMAND] [FILE [ARG]...]",
		Command: interpreterCommand(
			"sh",
			"sh [-c COMMAND] [FILE [ARG]...]",
			"Run commands from a string, a file, or standard input.",
			'c',
			"read commands from the argument"),
	})
	addBinCmd(shell.Definition{
		Name:        "node",
		Description: "JavaScript interpreter.",
		Usage:       "node [-e SCRIPT] [FILE [ARG]...]",
		Command: interpreterCommand(
			"node",
			"node [-e SCRIPT] [FILE [ARG]...]",
			"Evaluate JavaScript from a string, a file, or standard input.",
			'e',
			"evaluate the argument as JavaScript"),
	})
}
