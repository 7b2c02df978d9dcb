package commands

import (
	"fmt"
	"path"
	"strings"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// lookPath searches PATH for an executable file named file. Names containing
// a slash are checked directly.
func lookPath(ctx *shell.Context, file string) (string, error) {
	candidates := []string{file}
	if !strings.Contains(file, "/") {
		candidates = nil
		for _, dir := range ctx.Path() {
			if dir == "" {
				// Unix shell semantics: path element "" means "."
				dir = "."
			}
			candidates = append(candidates, path.Join(dir, file))
		}
	}

	for _, candidate := range candidates {
		info, err := ctx.FS.Stat(ctx.Abs(candidate))
		if err != nil || info.IsDir() {
			continue
		}
		if info.Allowed(ctx.Cred(), vfs.AccessExecute) {
			return candidate, nil
		}
	}
	return "", vfs.ErrNotExist
}

// Which implements the UNIX which command.
func Which(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "which [COMMAND...]",
		Short: "Locate a command.",
		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.RunEachArg(args, ctx, io, func(arg string) error {
		res, err := lookPath(ctx, arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(io.Stdout, res)
		return nil
	})
}

var _ shell.CommandFunc = Which

func init() {
	addBinCmd(shell.Definition{
		Name:        "which",
		Description: "Locate a command.",
		Usage:       "which [COMMAND...]",
		Command:     shell.CommandFunc(Which),
	})
}
