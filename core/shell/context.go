package shell

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/vshell/core/history"
	"github.com/josephlewis42/vshell/core/logger"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
	"go.uber.org/zap"
)

// Well known environment variables.
const (
	EnvHome       = "HOME"
	EnvPWD        = "PWD"
	EnvOldPWD     = "OLDPWD"
	EnvPath       = "PATH"
	EnvPrompt     = "PS1"
	EnvHostname   = "HOSTNAME"
	EnvUser       = "USER"
	EnvShell      = "SHELL"
	EnvLastStatus = "LAST_EXIT_CODE"
	EnvStatus     = "?"

	DefaultPrompt = `\u@\h:\w\$ `
	DefaultPath   = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"
)

// Context is the state shared by everything running in a session. There is
// exactly one per session and it is passed to every command.
type Context struct {
	Env     *vos.MapEnv
	History history.Store
	FS      *vfs.FS
	Session *Session

	// Group is the primary group of the session user.
	Group string

	// positional holds $0 followed by the arguments of the running script.
	positional []string

	exitRequested bool
	exitCode      int
}

// Cred returns the credentials filesystem calls are checked against.
func (c *Context) Cred() vfs.Cred {
	return vfs.Cred{User: c.Env.Getenv(EnvUser), Group: c.Group}
}

// Getwd returns the working directory.
func (c *Context) Getwd() string {
	if pwd := c.Env.Getenv(EnvPWD); pwd != "" {
		return vfs.NormalizePath(pwd)
	}
	return "/"
}

// Abs resolves p relative to the working directory.
func (c *Context) Abs(p string) string {
	return vfs.Resolve(c.Getwd(), p)
}

// Chdir changes the working directory. The target must be a directory the
// user can search.
func (c *Context) Chdir(p string) error {
	dir := c.Abs(p)
	info, err := c.FS.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", p, vfs.ErrNotDir)
	}
	if !info.Allowed(c.Cred(), vfs.AccessExecute) {
		return fmt.Errorf("%s: %w", p, vfs.ErrPermission)
	}

	c.Env.Setenv(EnvOldPWD, c.Getwd())
	c.Env.Setenv(EnvPWD, dir)
	return nil
}

// Path returns the directories searched for commands.
func (c *Context) Path() []string {
	return strings.Split(c.Env.Getenv(EnvPath), ":")
}

// SetStatus records the exit status of the most recent stage.
func (c *Context) SetStatus(status int) {
	code := fmt.Sprintf("%d", status)
	c.Env.Setenv(EnvStatus, code)
	c.Env.Setenv(EnvLastStatus, code)
}

// Status returns the exit status of the most recent stage.
func (c *Context) Status() int {
	var status int
	fmt.Sscanf(c.Env.Getenv(EnvLastStatus), "%d", &status)
	return status
}

// RequestExit asks the running script, or the session if no script is
// running, to stop with the given code.
func (c *Context) RequestExit(code int) {
	c.exitRequested = true
	c.exitCode = code
}

// exitPending reports whether an exit was requested but not yet handled.
func (c *Context) exitPending() bool {
	return c.exitRequested
}

// takeExit consumes a pending exit request.
func (c *Context) takeExit() (int, bool) {
	if !c.exitRequested {
		return 0, false
	}
	c.exitRequested = false
	return c.exitCode, true
}

// Registry returns the commands available to the session.
func (c *Context) Registry() *Registry {
	if c.Session == nil {
		return NewRegistry()
	}
	return c.Session.registry
}

// Interpreters returns the script interpreters available to the session.
func (c *Context) Interpreters() *Interpreters {
	if c.Session == nil {
		return NewInterpreters()
	}
	return c.Session.interpreters
}

// LogInvalidInvocation records a command called with arguments it couldn't
// parse.
func (c *Context) LogInvalidInvocation(name string, err error) {
	c.Logger().Debug("invalid invocation", zap.String("command", name), zap.Error(err))
	c.record(logger.EventInvalidUsage, map[string]interface{}{
		"command": name,
		"error":   err.Error(),
	})
}

// Logger returns the session's diagnostic logger.
func (c *Context) Logger() *zap.Logger {
	if c.Session == nil || c.Session.log == nil {
		return zap.NewNop()
	}
	return c.Session.log
}
