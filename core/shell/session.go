package shell

import (
	"path"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/anmitsu/go-shlex"
	"github.com/google/uuid"
	"github.com/josephlewis42/vshell/core/history"
	"github.com/josephlewis42/vshell/core/logger"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
	"go.uber.org/zap"
)

// Options configure a new Session. Only FS and Registry are required.
type Options struct {
	FS           *vfs.FS
	Registry     *Registry
	Interpreters *Interpreters
	Presenter    Presenter
	Logger       *zap.Logger
	Recorder     logger.Recorder
	History      history.Store

	User     string
	Group    string
	Home     string
	Shell    string
	Hostname string
	Path     string
	// Env holds extra KEY=VALUE pairs.
	Env []string

	// Motd is markup shown when the session starts.
	Motd string
	Now  func() time.Time
}

// Session is a single interactive shell.
type Session struct {
	ID string

	ctx          *Context
	registry     *Registry
	interpreters *Interpreters
	presenter    Presenter
	log          *zap.Logger
	recorder     *logger.SessionRecorder
	motd         string

	current atomic.Pointer[vos.CancelToken]

	exited   bool
	exitCode int
}

// NewSession sets up the environment similar to login + source ~/.bashrc.
func NewSession(opts Options) *Session {
	if opts.Presenter == nil {
		opts.Presenter = NopPresenter{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = logger.NopRecorder
	}
	if opts.History == nil {
		opts.History = history.NewMemStore(0)
	}
	if opts.Interpreters == nil {
		opts.Interpreters = NewInterpreters()
		opts.Interpreters.Register(NodeInterpreter, "node", "nodejs")
	}
	if opts.User == "" {
		opts.User = vfs.RootUser
	}
	if opts.Group == "" {
		opts.Group = opts.User
	}
	if opts.Home == "" {
		if opts.User == vfs.RootUser {
			opts.Home = "/root"
		} else {
			opts.Home = path.Join("/home", opts.User)
		}
	}
	if opts.Shell == "" {
		opts.Shell = "/bin/sh"
	}
	if opts.Hostname == "" {
		opts.Hostname = "localhost"
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}

	id := uuid.NewString()
	s := &Session{
		ID:           id,
		registry:     opts.Registry,
		interpreters: opts.Interpreters,
		presenter:    opts.Presenter,
		log:          opts.Logger.With(zap.String("session", id)),
		recorder: &logger.SessionRecorder{
			Recorder:  opts.Recorder,
			SessionID: id,
			Now:       opts.Now,
		},
		motd: opts.Motd,
	}

	env := vos.NewMapEnv()
	env.Setenv(EnvUser, opts.User)
	env.Setenv(EnvHome, opts.Home)
	env.Setenv(EnvShell, opts.Shell)
	env.Setenv(EnvPath, opts.Path)
	env.Setenv(EnvHostname, opts.Hostname)
	env.Setenv(EnvPrompt, DefaultPrompt)
	env.Setenv(EnvPWD, "/")
	vos.CopyEnv(env, opts.Env)

	s.ctx = &Context{
		Env:     env,
		History: opts.History,
		FS:      opts.FS,
		Session: s,
		Group:   opts.Group,
	}
	s.ctx.SetStatus(ExitSuccess)

	// Use chdir in case the dir doesn't exist.
	if err := s.ctx.Chdir(opts.Home); err != nil {
		s.log.Debug("home directory unavailable", zap.String("home", opts.Home), zap.Error(err))
	}

	return s
}

// Context returns the session's shared context.
func (s *Session) Context() *Context {
	return s.ctx
}

// Start shows the message of the day and the first prompt.
func (s *Session) Start() {
	s.record(logger.EventSessionStart, map[string]interface{}{
		"user": s.ctx.Env.Getenv(EnvUser),
	})
	if s.motd != "" {
		s.presenter.WriteBlock(s.motd)
	}
	s.presenter.SetPrompt(s.Prompt())
}

// Execute runs one line of input and returns its status.
func (s *Session) Execute(line string) int {
	if s.exited {
		return s.exitCode
	}

	s.presenter.EchoCommand(s.Prompt(), line)
	if strings.TrimSpace(line) == "" {
		s.presenter.SetPrompt(s.Prompt())
		return s.ctx.Status()
	}

	if err := s.ctx.History.Append(line); err != nil {
		s.log.Warn("saving history", zap.Error(err))
	}

	token := &vos.CancelToken{}
	s.current.Store(token)
	defer s.current.Store(nil)

	io := vos.NewIOStreams("", token)
	io.Stdout.Subscribe(func(text string) { s.presenter.Write(text, OutputStdout) })
	io.Stderr.Subscribe(func(text string) { s.presenter.Write(text, OutputStderr) })

	status := s.ctx.RunSource(line, nil, io)
	if code, ok := s.ctx.takeExit(); ok {
		status = code
		s.Exit(code)
	}
	if token.Cancelled() {
		s.log.Debug("interrupted", zap.String("line", line))
	}

	s.record(logger.EventRunCommand, map[string]interface{}{
		"line":   line,
		"status": status,
	})

	if !s.exited {
		s.presenter.SetPrompt(s.Prompt())
	}
	return status
}

// Interrupt cancels whatever is currently running. It's safe to call from
// another goroutine, e.g. a signal handler.
func (s *Session) Interrupt() {
	if token := s.current.Load(); token != nil {
		token.Cancel()
	}
}

// Exit ends the session, further input is ignored.
func (s *Session) Exit(code int) {
	if s.exited {
		return
	}
	s.exited = true
	s.exitCode = code
	s.record(logger.EventSessionEnd, map[string]interface{}{"status": code})
}

// Exited reports whether the session has ended and with which code.
func (s *Session) Exited() (bool, int) {
	return s.exited, s.exitCode
}

// Close releases the session's resources.
func (s *Session) Close() error {
	s.Exit(s.ctx.Status())
	return s.ctx.History.Close()
}

// Prompt renders PS1.
func (s *Session) Prompt() string {
	env := s.ctx.Env
	prompt := env.Getenv(EnvPrompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	prompt = strings.ReplaceAll(prompt, `\u`, env.Getenv(EnvUser))
	prompt = strings.ReplaceAll(prompt, `\h`, env.Getenv(EnvHostname))

	pwd := s.ctx.Getwd()
	home := env.Getenv(EnvHome)
	if home != "" && (pwd == home || strings.HasPrefix(pwd, home+"/")) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if env.Getenv(EnvUser) == vfs.RootUser {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return prompt
}

// Complete returns candidates for the last word of line and shows them as
// hints. The first word completes to command names, later words to paths.
func (s *Session) Complete(line string) []string {
	fields, err := shlex.Split(line, true)
	if err != nil {
		// Unterminated quotes while typing are normal.
		fields = strings.Fields(line)
	}
	prefix := ""
	if len(fields) > 0 && !strings.HasSuffix(line, " ") {
		prefix = fields[len(fields)-1]
		fields = fields[:len(fields)-1]
	}

	var hints []string
	if len(fields) == 0 && !strings.Contains(prefix, "/") {
		hints = s.completeCommand(prefix)
	} else {
		hints = s.completePath(prefix)
	}

	s.presenter.ShowHints(hints)
	return hints
}

func (s *Session) completeCommand(prefix string) []string {
	seen := make(map[string]bool)
	for _, def := range s.registry.Definitions() {
		if strings.HasPrefix(def.Name, prefix) {
			seen[def.Name] = true
		}
	}
	for _, dir := range s.ctx.Path() {
		entries, err := s.ctx.FS.ReadDir(s.ctx.Cred(), s.ctx.Abs(dir))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasPrefix(entry.Name, prefix) {
				seen[entry.Name] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Session) completePath(prefix string) []string {
	dir, base := "", prefix
	if idx := strings.LastIndex(prefix, "/"); idx >= 0 {
		dir, base = prefix[:idx+1], prefix[idx+1:]
	}

	lookup := dir
	if lookup == "" {
		lookup = "."
	}
	entries, err := s.ctx.FS.ReadDir(s.ctx.Cred(), s.ctx.Abs(lookup))
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name, base) {
			continue
		}
		if strings.HasPrefix(entry.Name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		name := dir + entry.Name
		if entry.IsDir() {
			name += "/"
		}
		out = append(out, name)
	}
	return out
}

func (s *Session) record(eventType logger.EventType, fields map[string]interface{}) {
	if err := s.recorder.Record(eventType, fields); err != nil {
		s.log.Warn("recording event", zap.Error(err))
	}
}
