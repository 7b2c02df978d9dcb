package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

// ErrAmbiguousRedirect is returned when a target doesn't expand to exactly one
// word.
var ErrAmbiguousRedirect = errors.New("ambiguous redirect")

// redirectTarget expands the target of a redirection. Unquoted expansions
// that would split into several words, or an empty result, are ambiguous.
func (c *Context) redirectTarget(word Word, io *vos.IOStreams) (string, error) {
	values := c.expandParts(word, io)
	for i, part := range word.Parts {
		if part.Quoting == Bare && !part.isText() && strings.ContainsAny(values[i], " \t\n") {
			return "", fmt.Errorf("%s: %w", word.Raw, ErrAmbiguousRedirect)
		}
	}

	target := strings.Join(values, "")
	if target == "" {
		return "", fmt.Errorf("%s: %w", word.Raw, ErrAmbiguousRedirect)
	}
	return target, nil
}

// writeRedirect writes content to the target of a redirection. Writes to the
// null device are discarded without touching the tree.
func (c *Context) writeRedirect(word Word, content string, appendTo bool, io *vos.IOStreams) error {
	target, err := c.redirectTarget(word, io)
	if err != nil {
		return err
	}

	abs := c.Abs(target)
	if abs == vfs.DevNull {
		return nil
	}

	if appendTo {
		err = c.FS.AppendFile(c.Cred(), abs, content, vfs.DefaultFilePerm)
	} else {
		err = c.FS.WriteFile(c.Cred(), abs, content, vfs.DefaultFilePerm)
	}
	if err != nil {
		return fmt.Errorf("%s: %s", target, vfs.Reason(err))
	}
	return nil
}

// readRedirect reads the file named by an input redirection.
func (c *Context) readRedirect(word Word, io *vos.IOStreams) (string, error) {
	target, err := c.redirectTarget(word, io)
	if err != nil {
		return "", err
	}

	content, err := c.FS.ReadFile(c.Cred(), c.Abs(target))
	if err != nil {
		return "", fmt.Errorf("%s: %s", target, vfs.Reason(err))
	}
	return content, nil
}
