package commands

import (
	"fmt"
	"regexp"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// Grep implements the POSIX grep command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/
func Grep(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "grep [-cFinv] PATTERN [FILE]...",
		Short: "Search files for text matching a pattern.",
	}

	invert := cmd.Flags().Bool('v', "Select lines not matching any of the specified patterns.")
	ignoreCase := cmd.Flags().Bool('i', "Perform pattern matching in searches without regard to case.")
	showLineNumbers := cmd.Flags().Bool('n', "Show line numbers.")
	countOnly := cmd.Flags().Bool('c', "Write only a count of selected lines.")
	fixed := cmd.Flags().Bool('F', "Match using fixed strings.")

	return cmd.Run(args, ctx, io, func() int {
		operands := cmd.Flags().Args()
		if len(operands) == 0 {
			fmt.Fprintln(io.Stderr, "grep: missing argument PATTERN")
			return 2
		}

		// NOTE: Officially, the PATTERN argument supports multiple patterns delimited by newlines.
		// It's a very rare case so we'll ignore it here.
		pattern := operands[0]
		if *fixed {
			pattern = regexp.QuoteMeta(pattern)
		}
		if *ignoreCase {
			pattern = "(?i)" + pattern
		}
		regex, err := regexp.Compile(pattern)
		if err != nil {
			ctx.LogInvalidInvocation(args[0], err)
			fmt.Fprintf(io.Stderr, "grep: %s\n", err)
			return 2
		}

		files := operands[1:]
		showFileName := len(files) > 1
		inputs, readStatus := cmd.ReadInputs(args[0], files, ctx, io)

		matched := false
		for _, in := range inputs {
			count := 0
			for i, line := range splitLines(in.Content) {
				if regex.MatchString(line) == *invert {
					continue
				}
				matched = true
				count++

				if *countOnly {
					continue
				}
				if showFileName && in.Name != "" {
					fmt.Fprintf(io.Stdout, "%s:", in.Name)
				}
				if *showLineNumbers {
					fmt.Fprintf(io.Stdout, "%d:", i+1)
				}
				fmt.Fprintln(io.Stdout, line)
			}

			if *countOnly {
				if showFileName && in.Name != "" {
					fmt.Fprintf(io.Stdout, "%s:", in.Name)
				}
				fmt.Fprintln(io.Stdout, count)
			}
		}

		switch {
		case readStatus != shell.ExitSuccess:
			return 2
		case !matched:
			return 1
		default:
			return 0
		}
	})
}

var _ shell.CommandFunc = Grep

func init() {
	addBinCmd(shell.Definition{
		Name:        "grep",
		Description: "Print lines that match patterns.",
		Usage:       "grep [-cFinv] PATTERN [FILE]...",
		Command:     shell.CommandFunc(Grep),
	})
}
