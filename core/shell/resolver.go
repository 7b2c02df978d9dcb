package shell

import (
	"path"
	"strings"

	"github.com/josephlewis42/vshell/core/vfs"
)

// Kind is the outcome of resolving a command name.
type Kind int

const (
	KindNotFound Kind = iota
	KindBuiltin
	KindExecutable
	KindScript
	KindNotExecutable
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindExecutable:
		return "executable"
	case KindScript:
		return "script"
	case KindNotExecutable:
		return "not_executable"
	default:
		return "not_found"
	}
}

// Resolution describes how a command name will be run.
type Resolution struct {
	Kind Kind
	// Builtin is set for KindBuiltin.
	Builtin *Definition
	// Interpreter is set for KindScript.
	Interpreter string
	// Path is the absolute path of the file backing the command, if any.
	Path string
}

// isPathLike reports whether a command name refers to a file rather than
// something to search for.
func isPathLike(name string) bool {
	return strings.HasPrefix(name, "/") ||
		strings.HasPrefix(name, "./") ||
		strings.HasPrefix(name, "../") ||
		strings.Contains(name, "/")
}

// Resolve works out what running name would do. Registered commands win,
// names containing a slash are looked up directly, and everything else is
// searched for on PATH where the first directory yielding any result wins,
// even if that result is not executable.
func Resolve(name string, ctx *Context) Resolution {
	if name == "" {
		return Resolution{Kind: KindNotFound}
	}

	if def, ok := ctx.Registry().Lookup(name); ok {
		return Resolution{Kind: KindBuiltin, Builtin: def}
	}

	if isPathLike(name) {
		return resolveFile(ctx.Abs(name), ctx)
	}

	for _, dir := range ctx.Path() {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = ctx.Getwd()
		}
		if res := resolveFile(vfs.Resolve(ctx.Getwd(), path.Join(dir, name)), ctx); res.Kind != KindNotFound {
			return res
		}
	}

	return Resolution{Kind: KindNotFound}
}

func resolveFile(abs string, ctx *Context) Resolution {
	info, err := ctx.FS.Stat(abs)
	if err != nil {
		return Resolution{Kind: KindNotFound}
	}

	if info.IsDir() || !info.Allowed(ctx.Cred(), vfs.AccessExecute) {
		return Resolution{Kind: KindNotExecutable, Path: abs}
	}

	if info.Builtin != "" {
		if def, ok := ctx.Registry().Lookup(info.Builtin); ok {
			return Resolution{Kind: KindBuiltin, Builtin: def, Path: abs}
		}
		ctx.Logger().Sugar().Debugf("%s is bound to unknown builtin %q", abs, info.Builtin)
		return Resolution{Kind: KindNotFound, Path: abs}
	}

	content, err := ctx.FS.ReadFile(ctx.Cred(), abs)
	if err != nil {
		// Executable but unreadable, let the interpreter report it.
		return Resolution{Kind: KindExecutable, Path: abs}
	}

	if interp, ok := parseShebang(content); ok {
		return Resolution{Kind: KindScript, Interpreter: interp, Path: abs}
	}
	return Resolution{Kind: KindExecutable, Path: abs}
}

// parseShebang extracts the interpreter id from a #! line. The id is the base
// name of the interpreter, or its first argument if the interpreter is env.
func parseShebang(content string) (string, bool) {
	if !strings.HasPrefix(content, "#!") {
		return "", false
	}

	line := content[2:]
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}

	interp := path.Base(fields[0])
	if interp == "env" {
		if len(fields) < 2 {
			return "", false
		}
		interp = path.Base(fields[1])
	}
	return interp, true
}
