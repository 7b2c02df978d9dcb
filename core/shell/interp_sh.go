package shell

import (
	"strings"

	"github.com/google/uuid"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// SubstitutionDir holds the transient files command substitutions capture
// output into.
const SubstitutionDir = "/tmp"

// ShellInterpreter runs shell scripts on the session's context, so
// assignments made by the script stay visible after it returns.
var ShellInterpreter Interpreter = InterpreterFunc(runShell)

func runShell(script *Script, ctx *Context, io *vos.IOStreams) int {
	status := ctx.RunSource(stripShebang(script.Source), script, io)
	if code, ok := ctx.takeExit(); ok {
		return code
	}
	return status
}

// RunSource runs each command in source in order. Comments are skipped,
// commands are separated by newlines or unquoted semicolons. If script is
// non-nil its path and arguments are bound to the positional parameters for
// the duration of the run.
//
// RunSource stops early if the invocation is cancelled or a command requests
// an exit, the request is left pending for the caller to handle.
func (c *Context) RunSource(source string, script *Script, io *vos.IOStreams) int {
	if script != nil {
		prev := c.positional
		c.positional = append([]string{script.Path}, script.Args...)
		defer func() { c.positional = prev }()
	}
	return c.RunLine(source, io)
}

// captureOutput runs a command substitution with its stdout sent to a
// transient file and returns the file's trimmed content. The file is always
// removed. An exit inside the substitution only ends the substitution.
func (c *Context) captureOutput(prog *program, io *vos.IOStreams) string {
	if io == nil {
		io = vos.NewIOStreams("", nil)
	}

	cred := c.Cred()
	tmp := vfs.Join(SubstitutionDir, uuid.NewString())
	captured := true
	if err := c.FS.WriteFile(cred, tmp, "", vfs.DefaultFilePerm); err != nil {
		c.Logger().Sugar().Debugf("creating substitution output: %v", err)
		captured = false
	} else {
		defer func() {
			if err := c.FS.Remove(cred, tmp); err != nil {
				c.Logger().Sugar().Debugf("removing substitution output: %v", err)
			}
		}()
	}

	sub := vos.NewIOStreams("", io.Cancel)
	if captured {
		sub.Stdout.Subscribe(func(text string) {
			if err := c.FS.AppendFile(cred, tmp, text, vfs.DefaultFilePerm); err != nil {
				c.Logger().Sugar().Debugf("writing substitution output: %v", err)
			}
		})
	}
	sub.Stderr.Subscribe(func(text string) { io.Stderr.WriteString(text) })

	c.runProgram(prog, sub)
	c.takeExit()

	if !captured {
		return strings.TrimSpace(sub.Stdout.String())
	}
	out, err := c.FS.ReadFile(cred, tmp)
	if err != nil {
		c.Logger().Sugar().Debugf("reading substitution output: %v", err)
	}
	return strings.TrimSpace(out)
}
