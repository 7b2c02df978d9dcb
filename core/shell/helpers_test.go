package shell_test

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/shell/shelltest"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
	"github.com/stretchr/testify/require"
)

// testRegistry holds small stand-ins for the real utilities.
func testRegistry() *shell.Registry {
	reg := shell.NewRegistry()

	reg.MustRegister(shell.Definition{
		Name:     "echo",
		Standard: true,
		RawArgs:  true,
		Command: shell.CommandFunc(func(args []string, ctx *shell.Context, io *vos.IOStreams) int {
			var out []string
			for _, arg := range args[1:] {
				out = append(out, ctx.ExpandRawArgs(arg, io)...)
			}
			fmt.Fprintln(io.Stdout, strings.Join(out, " "))
			return 0
		}),
	})

	reg.MustRegister(shell.Definition{
		Name: "args",
		Command: shell.CommandFunc(func(args []string, ctx *shell.Context, io *vos.IOStreams) int {
			for _, arg := range args[1:] {
				fmt.Fprintln(io.Stdout, arg)
			}
			return 0
		}),
	})

	reg.MustRegister(shell.Definition{
		Name:     "cat",
		Standard: true,
		Command: shell.CommandFunc(func(args []string, ctx *shell.Context, io *vos.IOStreams) int {
			if len(args) == 1 {
				io.Stdout.WriteString(io.Stdin.ReadAll())
				return 0
			}
			status := 0
			for _, name := range args[1:] {
				content, err := ctx.FS.ReadFile(ctx.Cred(), ctx.Abs(name))
				if err != nil {
					fmt.Fprintf(io.Stderr, "cat: %s: %s\n", name, vfs.Reason(err))
					status = 1
					continue
				}
				io.Stdout.WriteString(content)
			}
			return status
		}),
	})

	reg.MustRegister(shell.Definition{
		Name: "fail",
		Command: shell.CommandFunc(func(args []string, ctx *shell.Context, io *vos.IOStreams) int {
			fmt.Fprintln(io.Stderr, "failed")
			return 3
		}),
	})

	reg.MustRegister(shell.Definition{
		Name: "boom",
		Command: shell.CommandFunc(func(args []string, ctx *shell.Context, io *vos.IOStreams) int {
			panic("kaboom")
		}),
	})

	// interrupt simulates a ^C arriving while it runs.
	reg.MustRegister(shell.Definition{
		Name: "interrupt",
		Command: shell.CommandFunc(func(args []string, ctx *shell.Context, io *vos.IOStreams) int {
			ctx.Session.Interrupt()
			return 0
		}),
	})

	// count appends to /tmp/count every time it runs.
	reg.MustRegister(shell.Definition{
		Name: "count",
		Command: shell.CommandFunc(func(args []string, ctx *shell.Context, io *vos.IOStreams) int {
			if err := ctx.FS.AppendFile(ctx.Cred(), "/tmp/count", "x", ""); err != nil {
				return shell.Report(io.Stderr, args[0], err)
			}
			return 0
		}),
	})

	reg.MustRegister(shell.Definition{
		Name: "exit",
		Command: shell.CommandFunc(func(args []string, ctx *shell.Context, io *vos.IOStreams) int {
			code := ctx.Status()
			if len(args) > 1 {
				code, _ = strconv.Atoi(args[1])
			}
			ctx.RequestExit(code)
			return code
		}),
	})

	return reg
}

func newSession(t *testing.T) (*shell.Session, *shelltest.Presenter) {
	t.Helper()
	return shelltest.NewSession(testRegistry())
}

func readFile(t *testing.T, ctx *shell.Context, name string) string {
	t.Helper()

	content, err := ctx.FS.ReadFile(ctx.Cred(), ctx.Abs(name))
	require.NoError(t, err)
	return content
}

func writeFile(t *testing.T, s *shell.Session, name, content, perm string) {
	t.Helper()

	ctx := s.Context()
	loader := vfs.NewLoader(ctx.FS)
	require.NoError(t, loader.WriteFile(ctx.Abs(name), content, shelltest.User, shelltest.User, perm))
}
