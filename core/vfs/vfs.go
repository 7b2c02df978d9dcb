// Package vfs implements the in-memory, permission checked node tree that backs
// the simulated shell.
//
// Ordinary callers hold an *FS and pass a Cred on every operation. Seeding code
// uses a Loader, which is the only way to write to the tree without permission
// checks.
package vfs

import (
	"errors"
	"io/fs"
)

// Errno is a filesystem error carrying conventional shell phrasing. Each Errno
// also matches its io/fs counterpart with errors.Is.
type Errno struct {
	msg  string
	kind error
}

func (e *Errno) Error() string {
	return e.msg
}

// Is reports whether the target is the io/fs sentinel this Errno stands for.
func (e *Errno) Is(target error) bool {
	return e.kind != nil && target == e.kind
}

var (
	ErrNotExist   = &Errno{"No such file or directory", fs.ErrNotExist}
	ErrPermission = &Errno{"Permission denied", fs.ErrPermission}
	ErrExist      = &Errno{"File exists", fs.ErrExist}
	ErrIsDir      = &Errno{"Is a directory", nil}
	ErrNotDir     = &Errno{"Not a directory", nil}
	ErrNotEmpty   = &Errno{"Directory not empty", nil}
	ErrNotPermit  = &Errno{"Operation not permitted", fs.ErrPermission}
	ErrInvalid    = &Errno{"Invalid argument", fs.ErrInvalid}
)

// Reason strips the operation and path from a filesystem error, leaving the
// shell style message, e.g. "No such file or directory".
func Reason(err error) string {
	var errno *Errno
	if errors.As(err, &errno) {
		return errno.Error()
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}

	return err.Error()
}

func pathError(op, name string, err error) error {
	return &fs.PathError{Op: op, Path: name, Err: err}
}
