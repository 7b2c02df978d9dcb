package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// Env implements the POSIX env command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/env.html
func Env(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "env [NAME=VALUE]... [COMMAND [ARG]...]",
		Short: "Set or print the environment for command invocation.",
	}

	return cmd.Run(args, ctx, io, func() int {
		operands := cmd.Args()

		var assignments []string
		for len(operands) > 0 && strings.Contains(operands[0], "=") {
			assignments = append(assignments, operands[0])
			operands = operands[1:]
		}

		if len(operands) == 0 {
			env := vos.NewMapEnvFromEnvList(ctx.Env.Environ())
			vos.CopyEnv(env, assignments)
			for _, envDef := range env.Environ() {
				if key, _ := vos.SplitEnv(envDef); identifierRegex.MatchString(key) {
					fmt.Fprintln(io.Stdout, envDef)
				}
			}
			return 0
		}

		// Run the command with the assignments in place.
		previous := ctx.Env.Environ()
		vos.CopyEnv(ctx.Env, assignments)
		defer func() {
			ctx.Env.Clearenv()
			vos.CopyEnv(ctx.Env, previous)
		}()

		nested := *io
		nested.Piped = false
		return ctx.Dispatch(shell.Resolve(operands[0], ctx), operands, &nested)
	})
}

var _ shell.CommandFunc = Env

func init() {
	addBinCmd(shell.Definition{
		Name:        "env",
		Description: "Run a program in a modified environment.",
		Usage:       "env [NAME=VALUE]... [COMMAND [ARG]...]",
		Command:     shell.CommandFunc(Env),
	})
}
