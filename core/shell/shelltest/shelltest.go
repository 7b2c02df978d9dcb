// Package shelltest builds deterministic sessions for tests.
package shelltest

import (
	"fmt"
	"strings"
	"time"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
)

const (
	// User is the unprivileged user sessions run as.
	User = "tester"
	// Home is User's home directory.
	Home = "/home/tester"
)

// Now is Go's reference timestamp with a different value in each position.
func Now() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

// NewFS creates a small tree with a home directory for User, a world
// writable /tmp and empty /bin and /usr/bin directories.
func NewFS() *vfs.FS {
	fs := vfs.New(Now)
	loader := vfs.NewLoader(fs)

	for _, dir := range []struct {
		name, owner, perm string
	}{
		{"/bin", vfs.RootUser, vfs.DefaultDirPerm},
		{"/usr/bin", vfs.RootUser, vfs.DefaultDirPerm},
		{"/etc", vfs.RootUser, vfs.DefaultDirPerm},
		{"/root", vfs.RootUser, "rwx------"},
		{"/tmp", vfs.RootUser, "rwxrwxrwx"},
		{"/home", vfs.RootUser, vfs.DefaultDirPerm},
		{Home, User, vfs.DefaultDirPerm},
	} {
		if err := loader.Mkdir(dir.name, dir.owner, dir.owner, dir.perm); err != nil {
			panic(err)
		}
	}

	return fs
}

// Presenter records everything a session shows.
type Presenter struct {
	Stdout  strings.Builder
	Stderr  strings.Builder
	Blocks  []string
	Echoed  []string
	Prompts []string
	Hints   [][]string
}

var _ shell.Presenter = (*Presenter)(nil)

// Write implements shell.Presenter.
func (p *Presenter) Write(text string, kind shell.OutputKind) {
	if kind == shell.OutputStderr {
		p.Stderr.WriteString(text)
		return
	}
	p.Stdout.WriteString(text)
}

// WriteBlock implements shell.Presenter.
func (p *Presenter) WriteBlock(block string) {
	p.Blocks = append(p.Blocks, block)
}

// EchoCommand implements shell.Presenter.
func (p *Presenter) EchoCommand(prompt, line string) {
	p.Echoed = append(p.Echoed, prompt+line)
}

// SetPrompt implements shell.Presenter.
func (p *Presenter) SetPrompt(prompt string) {
	p.Prompts = append(p.Prompts, prompt)
}

// ShowHints implements shell.Presenter.
func (p *Presenter) ShowHints(hints []string) {
	p.Hints = append(p.Hints, hints)
}

// Reset clears recorded output.
func (p *Presenter) Reset() {
	p.Stdout.Reset()
	p.Stderr.Reset()
}

// NewSession creates a session for User over NewFS with the given commands.
func NewSession(registry *shell.Registry) (*shell.Session, *Presenter) {
	presenter := &Presenter{}
	session := shell.NewSession(shell.Options{
		FS:        NewFS(),
		Registry:  registry,
		Presenter: presenter,
		User:      User,
		Home:      Home,
		Hostname:  "testhost",
		Now:       Now,
	})
	return session, presenter
}

// Cmd runs a single command outside of any pipeline, similar to exec.Cmd.
type Cmd struct {
	Command shell.Command
	// Argv holds the arguments, the first should be the command name.
	Argv []string
	// If Dir is non-empty, the command runs in it.
	Dir string
	// Env holds extra KEY=VALUE pairs.
	Env   []string
	Stdin string
	// Piped, if set, is passed as the first argument the way a pipe would.
	Piped string

	// Registry, if set, is used for resolving nested commands.
	Registry *shell.Registry

	// Setup is called with the seeding loader before the command runs.
	Setup func(*vfs.Loader) error

	ExitStatus int
	Stdout     string
	Stderr     string

	// Context is available after Run for inspecting side effects.
	Context *shell.Context
}

// Command creates a Cmd.
func Command(cmd shell.Command, name string, arg ...string) *Cmd {
	return &Cmd{
		Command: cmd,
		Argv:    append([]string{name}, arg...),
	}
}

// Run runs the command to completion.
func (c *Cmd) Run() error {
	registry := c.Registry
	if registry == nil {
		registry = shell.NewRegistry()
	}

	fs := NewFS()
	if c.Setup != nil {
		if err := c.Setup(vfs.NewLoader(fs)); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}

	session := shell.NewSession(shell.Options{
		FS:       fs,
		Registry: registry,
		User:     User,
		Home:     Home,
		Hostname: "testhost",
		Env:      c.Env,
		Now:      Now,
	})
	ctx := session.Context()
	if c.Dir != "" {
		if err := ctx.Chdir(c.Dir); err != nil {
			return fmt.Errorf("chdir: %w", err)
		}
	}

	argv := c.Argv
	io := vos.NewIOStreams(c.Stdin, nil)
	if c.Piped != "" {
		argv = append([]string{argv[0], c.Piped}, argv[1:]...)
		io.Piped = true
	}
	c.ExitStatus = c.Command.Run(argv, ctx, io)
	c.Stdout = io.Stdout.String()
	c.Stderr = io.Stderr.String()
	c.Context = ctx
	return nil
}

// CombinedOutput runs the command and returns its stdout followed by its
// stderr.
func (c *Cmd) CombinedOutput() ([]byte, error) {
	if err := c.Run(); err != nil {
		return nil, err
	}
	return []byte(c.Stdout + c.Stderr), nil
}
