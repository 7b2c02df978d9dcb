package shell

import (
	"errors"
	"fmt"
	"io"

	"github.com/josephlewis42/vshell/core/vfs"
)

// Conventional exit codes.
const (
	ExitSuccess       = 0
	ExitFailure       = 1
	ExitUsage         = 2
	ExitNotExecutable = 126
	ExitNotFound      = 127
	ExitCancelled     = 130
)

var (
	ErrPermissionDenied    = vfs.ErrPermission
	ErrNotFound            = vfs.ErrNotExist
	ErrIsADirectory        = vfs.ErrIsDir
	ErrNotADirectory       = vfs.ErrNotDir
	ErrNotExecutable       = errors.New("Permission denied")
	ErrInterpreterNotFound = errors.New("Interpreter not found")
	ErrCommandNotFound     = errors.New("command not found")
	ErrCancelled           = errors.New("cancelled")
)

// ScriptError is an error a script raised and never caught.
type ScriptError struct {
	// Interpreter is the id of the interpreter that ran the script.
	Interpreter string
	// Kind is the error's type, e.g. TypeError.
	Kind    string
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Interpreter, e.Kind, e.Message)
}

// CommandNotFoundError is reported when nothing can run a command name.
type CommandNotFoundError struct {
	Name string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("Command '%s' not found.", e.Name)
}

func (e *CommandNotFoundError) Unwrap() error {
	return ErrCommandNotFound
}

// ExitCode maps an error to its conventional exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrCancelled):
		return ExitCancelled
	case errors.Is(err, ErrCommandNotFound), errors.Is(err, ErrInterpreterNotFound):
		return ExitNotFound
	case errors.Is(err, ErrNotExecutable):
		return ExitNotExecutable
	default:
		return ExitFailure
	}
}

// Report writes err to w prefixed by name and returns its exit code.
func Report(w io.Writer, name string, err error) int {
	var notFound *CommandNotFoundError
	var scriptErr *ScriptError
	switch {
	case errors.As(err, &notFound), errors.As(err, &scriptErr):
		fmt.Fprintln(w, err)
	case name == "":
		fmt.Fprintln(w, vfs.Reason(err))
	default:
		fmt.Fprintf(w, "%s: %s\n", name, vfs.Reason(err))
	}
	return ExitCode(err)
}
