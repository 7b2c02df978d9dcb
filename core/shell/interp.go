package shell

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// Script is a program handed to an interpreter.
type Script struct {
	// ID is the interpreter id the script was invoked with, e.g. "bash".
	ID   string
	Path string
	// Source has the shebang line, if any, still attached.
	Source string
	// Args are the invocation arguments, not including the script itself.
	Args []string
}

// Interpreter runs scripts in a particular language.
type Interpreter interface {
	Run(script *Script, ctx *Context, io *vos.IOStreams) int
}

// InterpreterFunc adapts a function to the Interpreter interface.
type InterpreterFunc func(script *Script, ctx *Context, io *vos.IOStreams) int

// Run implements Interpreter.
func (f InterpreterFunc) Run(script *Script, ctx *Context, io *vos.IOStreams) int {
	return f(script, ctx, io)
}

// Interpreters maps interpreter ids to implementations.
type Interpreters struct {
	byID map[string]Interpreter
}

// NewInterpreters creates a registry holding the shell interpreter under sh
// and bash.
func NewInterpreters() *Interpreters {
	reg := &Interpreters{byID: make(map[string]Interpreter)}
	reg.Register(InterpreterFunc(runShell), "sh", "bash")
	return reg
}

// Register makes interp available under each of the ids.
func (r *Interpreters) Register(interp Interpreter, ids ...string) {
	for _, id := range ids {
		r.byID[id] = interp
	}
}

// Lookup finds an interpreter by id.
func (r *Interpreters) Lookup(id string) (Interpreter, bool) {
	interp, ok := r.byID[id]
	return interp, ok
}

// IDs returns the sorted registered ids.
func (r *Interpreters) IDs() []string {
	var out []string
	for id := range r.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Execute runs the script at path with the interpreter registered as id.
func (r *Interpreters) Execute(id, path string, args []string, ctx *Context, io *vos.IOStreams) int {
	interp, ok := r.Lookup(id)
	if !ok {
		fmt.Fprintf(io.Stderr, "%s: %s\n", id, ErrInterpreterNotFound)
		return ExitNotFound
	}

	abs := ctx.Abs(path)
	source, err := ctx.FS.ReadFile(ctx.Cred(), abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(io.Stderr, "%s: %s\n", path, vfs.Reason(err))
		return ExitFailure
	case err != nil:
		fmt.Fprintf(io.Stderr, "%s: %s\n", path, vfs.Reason(err))
		return ExitNotExecutable
	}

	return interp.Run(&Script{ID: id, Path: abs, Source: source, Args: args}, ctx, io)
}

// stripShebang removes a leading #! line.
func stripShebang(source string) string {
	if !strings.HasPrefix(source, "#!") {
		return source
	}
	if idx := strings.IndexByte(source, '\n'); idx >= 0 {
		return source[idx+1:]
	}
	return ""
}
