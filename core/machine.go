// Package core assembles simulated machines and their sessions from a
// configuration.
package core

import (
	"io"
	"time"

	"github.com/josephlewis42/vshell/commands"
	"github.com/josephlewis42/vshell/core/config"
	"github.com/josephlewis42/vshell/core/history"
	"github.com/josephlewis42/vshell/core/logger"
	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"go.uber.org/zap"
)

// MachineOptions holds the parts of a machine that don't come from the
// configuration.
type MachineOptions struct {
	Logger *zap.Logger
	// Recorder receives session events. If nil, events go to the configured
	// event log, if any.
	Recorder logger.Recorder
	Now      func() time.Time
}

// Machine is a simulated host. Sessions started on it share its filesystem.
type Machine struct {
	configuration *config.Configuration
	fs            *vfs.FS
	registry      *shell.Registry
	logger        *zap.Logger
	recorder      logger.Recorder
	now           func() time.Time
	toClose       listCloser
}

// NewMachine builds the filesystem, command set and event log described by
// the configuration.
func NewMachine(configuration *config.Configuration, opts MachineOptions) (*Machine, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	registry := commands.NewRegistry()
	fs, err := BuildFS(configuration, registry, opts.Now)
	if err != nil {
		return nil, err
	}

	registry.SetFollowConfig(shell.FollowConfig{
		PollRate:      configuration.Follow.PollInterval(),
		MaxIterations: configuration.Follow.MaxIterations,
	})

	machine := &Machine{
		configuration: configuration,
		fs:            fs,
		registry:      registry,
		logger:        opts.Logger,
		recorder:      opts.Recorder,
		now:           opts.Now,
	}

	if machine.recorder == nil && configuration.EventLog != "" {
		fd, err := configuration.OpenEventLog()
		if err != nil {
			return nil, err
		}
		machine.toClose = append(machine.toClose, fd)
		machine.recorder = logger.NewJSONLinesRecorder(fd)
	}

	return machine, nil
}

// FS returns the machine's filesystem.
func (m *Machine) FS() *vfs.FS {
	return m.fs
}

// Registry returns the commands available on the machine.
func (m *Machine) Registry() *shell.Registry {
	return m.registry
}

// NewSession logs the configured user in. The caller must Close the session.
func (m *Machine) NewSession(presenter shell.Presenter) (*shell.Session, error) {
	store, err := m.openHistory()
	if err != nil {
		return nil, err
	}

	var env []string
	if prompt := m.configuration.Prompt; prompt != "" {
		env = append(env, shell.EnvPrompt+"="+prompt)
	}

	user := m.configuration.User
	return shell.NewSession(shell.Options{
		FS:        m.fs,
		Registry:  m.registry,
		Presenter: presenter,
		Logger:    m.logger,
		Recorder:  m.recorder,
		History:   store,
		User:      user.Username,
		Group:     user.Group,
		Home:      user.Home,
		Shell:     user.Shell,
		Hostname:  m.configuration.Hostname,
		Path:      m.configuration.OS.DefaultPath,
		Env:       env,
		Motd:      m.configuration.Motd,
		Now:       m.now,
	}), nil
}

func (m *Machine) openHistory() (history.Store, error) {
	path := m.configuration.HistoryPath()
	if path == "" {
		return history.NewMemStore(m.configuration.History.MaxEntries), nil
	}

	m.logger.Debug("opening history", zap.String("path", path))
	return history.OpenBoltStore(path, m.configuration.History.MaxEntries)
}

// Close releases the event log.
func (m *Machine) Close() error {
	return m.toClose.Close()
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
