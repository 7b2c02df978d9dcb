package shell

import (
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/josephlewis42/vshell/core/vos"
)

// Command is a single utility. args[0] holds the name the command was invoked
// by. Commands must do all I/O through io and all file access through
// ctx.FS, and any loop that may run for a long time must poll io.Cancel.
type Command interface {
	Run(args []string, ctx *Context, io *vos.IOStreams) int
}

// CommandFunc adapts a function to the Command interface.
type CommandFunc func(args []string, ctx *Context, io *vos.IOStreams) int

// Run implements Command.
func (f CommandFunc) Run(args []string, ctx *Context, io *vos.IOStreams) int {
	return f(args, ctx, io)
}

var _ Command = (CommandFunc)(nil)

// Definition describes a registered command.
type Definition struct {
	Name        string
	Description string
	Usage       string
	Command     Command

	// Standard commands also answer to /bin/NAME and /usr/bin/NAME.
	Standard bool

	// RawArgs commands receive their arguments exactly as typed, quotes and
	// backslashes included, and expand them with Context.ExpandRawArgs, which
	// globs like the shell does. Pipeline input given to them is single quoted
	// so it stays literal.
	RawArgs bool
}

// StandardDirs are the directories standard commands are aliased under.
var StandardDirs = []string{"/bin", "/usr/bin"}

// FollowConfig paces commands that wait on something, like sleep and tail -f.
type FollowConfig struct {
	// PollRate is the time between checks.
	PollRate time.Duration
	// MaxIterations bounds how many checks a single command may make.
	MaxIterations int
}

// DefaultFollowConfig is the pacing of a new registry.
var DefaultFollowConfig = FollowConfig{
	PollRate:      100 * time.Millisecond,
	MaxIterations: 600,
}

// Registry maps command names to their definitions.
type Registry struct {
	defs    map[string]*Definition
	aliases map[string]string
	follow  FollowConfig
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:    make(map[string]*Definition),
		aliases: make(map[string]string),
		follow:  DefaultFollowConfig,
	}
}

// SetFollowConfig replaces the pacing of waiting commands run through this
// registry. Zero fields keep their defaults.
func (r *Registry) SetFollowConfig(cfg FollowConfig) {
	if cfg.PollRate <= 0 {
		cfg.PollRate = DefaultFollowConfig.PollRate
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultFollowConfig.MaxIterations
	}
	r.follow = cfg
}

// FollowConfig returns the pacing of waiting commands.
func (r *Registry) FollowConfig() FollowConfig {
	return r.follow
}

// Register adds a command. Names must be unique.
func (r *Registry) Register(def Definition) error {
	switch {
	case def.Name == "":
		return fmt.Errorf("command has no name")
	case def.Command == nil:
		return fmt.Errorf("command %q has no implementation", def.Name)
	}
	if _, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("command %q already registered", def.Name)
	}

	r.defs[def.Name] = &def
	if def.Standard {
		for _, dir := range StandardDirs {
			r.aliases[path.Join(dir, def.Name)] = def.Name
		}
	}
	return nil
}

// MustRegister is like Register but panics on failure.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup finds a command by name or by one of its standard aliases.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	if def, ok := r.defs[name]; ok {
		return def, true
	}
	if target, ok := r.aliases[name]; ok {
		return r.defs[target], true
	}
	return nil, false
}

// Definitions returns every registered command sorted by name.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
