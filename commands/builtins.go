package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
	"mvdan.cc/sh/v3/syntax"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Cd is the cd shell builtin
func Cd(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	var target string
	switch len(args) {
	case 1:
		target = ctx.Env.Getenv(shell.EnvHome)
	case 2:
		target = args[1]
	default:
		fmt.Fprintf(io.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}

	printDir := false
	if target == "-" {
		target = ctx.Env.Getenv(shell.EnvOldPWD)
		if target == "" {
			fmt.Fprintf(io.Stderr, "%s: OLDPWD not set\n", args[0])
			return 1
		}
		printDir = true
	}

	if err := ctx.Chdir(target); err != nil {
		return reportPath(io.Stderr, args[0], target, err)
	}
	if printDir {
		fmt.Fprintln(io.Stdout, ctx.Getwd())
	}
	return 0
}

// Exit ends the running script, or the session if there is none.
func Exit(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	code := ctx.Status()
	switch len(args) {
	case 1:
	case 2:
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(io.Stderr, "%s: %s: numeric argument required\n", args[0], args[1])
			parsed = shell.ExitUsage
		}
		code = parsed & 0xff
	default:
		fmt.Fprintf(io.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}

	ctx.RequestExit(code)
	return code
}

// quoteValue quotes a variable's value so it could be pasted back into a
// shell.
func quoteValue(value string) string {
	quoted, err := syntax.Quote(value, syntax.LangBash)
	if err != nil {
		return strconv.Quote(value)
	}
	return quoted
}

// printVariables writes every variable with a valid name, sorted.
func printVariables(ctx *shell.Context, io *vos.IOStreams, prefix string) {
	for _, entry := range ctx.Env.Environ() {
		name, value := vos.SplitEnv(entry)
		if !identifierRegex.MatchString(name) {
			continue
		}
		fmt.Fprintf(io.Stdout, "%s%s=%s\n", prefix, name, quoteValue(value))
	}
}

// Export implements the export shell builtin. Every variable is already
// passed to commands, so export only assigns.
func Export(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "export [-p] [NAME[=VALUE] ...]",
		Short: "Set export attribute for shell variables.",
	}
	printAll := cmd.Flags().Bool('p', "display a list of all exported variables")

	return cmd.Run(args, ctx, io, func() int {
		operands := cmd.Args()
		if *printAll || len(operands) == 0 {
			printVariables(ctx, io, "export ")
			return 0
		}

		status := 0
		for _, arg := range operands {
			name, value, hasValue := strings.Cut(arg, "=")
			if !identifierRegex.MatchString(name) {
				fmt.Fprintf(io.Stderr, "%s: `%s': not a valid identifier\n", args[0], arg)
				status = 1
				continue
			}
			if hasValue {
				ctx.Env.Setenv(name, value)
			}
		}
		return status
	})
}

func Unset(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "unset [-fvn] [NAME...]",
		Short: "Unset shell values and functions.",
	}
	cmd.Flags().Bool('f', "treat NAME as a function")
	cmd.Flags().Bool('v', "treat NAME as a variable")
	cmd.Flags().Bool('n', "treat NAME as a reference")

	return cmd.Run(args, ctx, io, func() int {
		status := 0
		for _, name := range cmd.Args() {
			if !identifierRegex.MatchString(name) {
				fmt.Fprintf(io.Stderr, "%s: `%s': not a valid identifier\n", args[0], name)
				status = 1
				continue
			}
			ctx.Env.Unsetenv(name)
		}
		return status
	})
}

// Set lists shell variables. Shell options are accepted and ignored.
func Set(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	if len(args) == 1 {
		printVariables(ctx, io, "")
	}
	return 0
}

func History(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "history [-c]",
		Short: "Display the history list with line numbers.",
	}
	clear := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.RunE(args, ctx, io, func() error {
		if *clear {
			return ctx.History.Clear()
		}

		lines, err := ctx.History.Lines()
		if err != nil {
			return err
		}
		for i, line := range lines {
			fmt.Fprintf(io.Stdout, "% 5d  %s\n", i+1, line)
		}
		return nil
	})
}

func Help(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	w := io.Stdout
	registry := ctx.Registry()

	if len(args) > 1 {
		status := 0
		for _, name := range args[1:] {
			def, ok := registry.Lookup(name)
			if !ok {
				fmt.Fprintf(io.Stderr, "%s: no help topics match `%s'.\n", args[0], name)
				status = 1
				continue
			}
			fmt.Fprintf(w, "%s: %s\n    %s\n", def.Name, def.Usage, def.Description)
		}
		return status
	}

	fmt.Fprintln(w, "sh version 4.31.20")
	fmt.Fprintln(w, "These shell commands are defined internally.  Type `help' to see this list.")
	fmt.Fprintln(w, "Type `help name' to find out more about the function `name'.")
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, def := range registry.Definitions() {
		fmt.Fprintf(tw, " %s\t%s\n", def.Name, def.Description)
	}
	tw.Flush()

	return 0
}

// Type describes how each name would be interpreted as a command.
func Type(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	status := 0
	for _, name := range args[1:] {
		res := shell.Resolve(name, ctx)
		switch res.Kind {
		case shell.KindBuiltin:
			where := res.Path
			if where == "" && res.Builtin.Standard {
				where, _ = lookPath(ctx, name)
			}
			if where != "" {
				fmt.Fprintf(io.Stdout, "%s is %s\n", name, where)
			} else {
				fmt.Fprintf(io.Stdout, "%s is a shell builtin\n", name)
			}
		case shell.KindScript, shell.KindExecutable:
			fmt.Fprintf(io.Stdout, "%s is %s\n", name, res.Path)
		case shell.KindNotExecutable:
			fmt.Fprintf(io.Stderr, "%s: %s: %s\n", args[0], name, vfs.ErrPermission)
			status = 1
		default:
			fmt.Fprintf(io.Stderr, "%s: %s: not found\n", args[0], name)
			status = 1
		}
	}
	return status
}

func init() {
	for _, def := range []shell.Definition{
		{Name: "cd", Usage: "cd [DIR]", Description: "Change the shell working directory.", Command: shell.CommandFunc(Cd)},
		{Name: "exit", Usage: "exit [N]", Description: "Exit the shell.", Command: shell.CommandFunc(Exit)},
		{Name: "export", Usage: "export [-p] [NAME[=VALUE] ...]", Description: "Set export attribute for shell variables.", Command: shell.CommandFunc(Export)},
		{Name: "unset", Usage: "unset [-fvn] [NAME...]", Description: "Unset shell values and functions.", Command: shell.CommandFunc(Unset)},
		{Name: "set", Usage: "set", Description: "Display shell variables.", Command: shell.CommandFunc(Set)},
		{Name: "history", Usage: "history [-c]", Description: "Display or manipulate the history list.", Command: shell.CommandFunc(History)},
		{Name: "help", Usage: "help [NAME...]", Description: "Display information about builtin commands.", Command: shell.CommandFunc(Help)},
		{Name: "type", Usage: "type NAME...", Description: "Display information about command type.", Command: shell.CommandFunc(Type)},
	} {
		addShellBuiltin(def)
	}
}
