package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

// allCommands holds every registered utility.
var allCommands []shell.Definition

// addBinCmd adds a utility that also lives under /bin and /usr/bin.
func addBinCmd(def shell.Definition) {
	def.Standard = true
	allCommands = append(allCommands, def)
}

// addShellBuiltin adds a utility that only exists inside the shell, like cd.
func addShellBuiltin(def shell.Definition) {
	allCommands = append(allCommands, def)
}

// ListBuiltinCommands returns every utility sorted by name.
func ListBuiltinCommands() []shell.Definition {
	out := append([]shell.Definition(nil), allCommands...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Register adds every utility to reg.
func Register(reg *shell.Registry) error {
	for _, def := range ListBuiltinCommands() {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry creates a registry holding every utility.
func NewRegistry() *shell.Registry {
	reg := shell.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

func BytesToHuman(bytes int64) string {
	for _, e := range []struct {
		unit  string
		power int64
	}{
		{"P", 1e15},
		{"T", 1e12},
		{"G", 1e9},
		{"M", 1e6},
		{"K", 1e3},
	} {
		quotient := bytes / e.power
		switch {
		case quotient == 0:
			continue
		case quotient > 10:
			return fmt.Sprintf("%d%s", quotient, e.unit)
		default:
			return fmt.Sprintf("%0.1f%s", float64(bytes)/float64(e.power), e.unit)
		}
	}

	return fmt.Sprintf("%d", bytes)
}

// passwdEntry is a line of /etc/passwd.
type passwdEntry struct {
	Name  string
	UID   int
	GID   int
	Home  string
	Shell string
}

// readPasswd parses /etc/passwd, keyed by user name. A missing or unreadable
// file yields an entry for root only.
func readPasswd(ctx *shell.Context) map[string]passwdEntry {
	entries := map[string]passwdEntry{
		vfs.RootUser: {Name: vfs.RootUser, Home: "/root", Shell: "/bin/sh"}, // seed in case we don't see any others.
	}

	content, err := ctx.FS.ReadFile(ctx.Cred(), "/etc/passwd")
	if err != nil {
		ctx.Logger().Sugar().Debugf("reading passwd: %v", err)
		return entries
	}

	for _, line := range strings.Split(content, "\n") {
		// name:x:uid:gid:gecos:home:shell
		entry := strings.Split(line, ":")
		if len(entry) < 4 {
			continue
		}
		uid, err := strconv.Atoi(entry[2])
		if err != nil {
			continue
		}
		gid, _ := strconv.Atoi(entry[3])
		pe := passwdEntry{Name: entry[0], UID: uid, GID: gid}
		if len(entry) >= 7 {
			pe.Home, pe.Shell = entry[5], entry[6]
		}
		entries[pe.Name] = pe
	}

	return entries
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a sone line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags    *getopt.Set
	piped    string
	hasPiped bool
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was succcessful call the callback.
//
// Output piped in from a previous stage is held aside while flags are parsed
// so it's never mistaken for one.
func (s *SimpleCommand) Run(args []string, ctx *shell.Context, io *vos.IOStreams, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	if io.Piped && len(args) > 1 {
		s.piped, s.hasPiped = args[1], true
		args = append([]string{args[0]}, args[2:]...)
	}

	err := opts.Getopt(args, nil)
	if err != nil {
		ctx.LogInvalidInvocation(args[0], err)
	}

	if err != nil && !s.NeverBail {
		fmt.Fprintf(io.Stderr, "error: %s\n\n", err)

		s.PrintHelp(io.Stdout)
		return shell.ExitUsage
	}

	if *s.ShowHelp {
		s.PrintHelp(io.Stdout)
		return shell.ExitSuccess
	}

	return callback()
}

// RunE is like Run, but reports the callback's error on stderr.
func (s *SimpleCommand) RunE(args []string, ctx *shell.Context, io *vos.IOStreams, callback func() error) int {
	return s.Run(args, ctx, io, func() int {
		if err := callback(); err != nil {
			return shell.Report(io.Stderr, args[0], err)
		}
		return shell.ExitSuccess
	})
}

// RunEachArg calls callback for every operand, reporting errors as they
// happen. It fails if any call failed.
func (s *SimpleCommand) RunEachArg(args []string, ctx *shell.Context, io *vos.IOStreams, callback func(arg string) error) int {
	return s.Run(args, ctx, io, func() int {
		status := shell.ExitSuccess
		for _, arg := range s.Args() {
			if err := callback(arg); err != nil {
				fmt.Fprintf(io.Stderr, "%s: %s: %s\n", args[0], arg, vfs.Reason(err))
				status = shell.ExitFailure
			}
		}
		return status
	})
}

// Args returns the operands left after flag parsing, piped output first.
func (s *SimpleCommand) Args() []string {
	if s.hasPiped {
		return append([]string{s.piped}, s.Flags().Args()...)
	}
	return s.Flags().Args()
}

// Piped returns the output of the previous stage, if there is one.
func (s *SimpleCommand) Piped() (string, bool) {
	return s.piped, s.hasPiped
}

// input is a chunk of text read by a filter.
type input struct {
	// Name is empty for piped output and stdin.
	Name    string
	Content string
}

// ReadInputs collects the text a filter command works on: piped output if
// there is any, followed by each named file. Without either, stdin is read.
// "-" also names stdin. Files that can't be read are reported and skipped.
func (s *SimpleCommand) ReadInputs(name string, files []string, ctx *shell.Context, io *vos.IOStreams) ([]input, int) {
	var inputs []input
	if piped, ok := s.Piped(); ok {
		inputs = append(inputs, input{Content: piped + "\n"})
	}
	if len(files) == 0 && len(inputs) == 0 {
		files = []string{"-"}
	}

	status := shell.ExitSuccess
	for _, file := range files {
		if file == "-" {
			inputs = append(inputs, input{Content: io.Stdin.ReadAll()})
			continue
		}

		content, err := ctx.FS.ReadFile(ctx.Cred(), ctx.Abs(file))
		if err != nil {
			status = reportPath(io.Stderr, name, file, err)
			continue
		}
		inputs = append(inputs, input{Name: file, Content: content})
	}

	return inputs, status
}

// reportPath writes an error about an operand in the usual
// "cmd: file: reason" form.
func reportPath(w io.Writer, name, operand string, err error) int {
	fmt.Fprintf(w, "%s: %s: %s\n", name, operand, vfs.Reason(err))
	return shell.ExitFailure
}

// splitLines splits text into lines without their terminators.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"

	// EnvTerm is set by front ends attached to a terminal.
	EnvTerm = "TERM"
)

var (
	ColorBoldBlue  = color.New(color.FgBlue, color.Bold)
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldCyan  = color.New(color.FgCyan, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

type ColorPrinter struct {
	value *string
	ctx   *shell.Context
}

// Init sets up the flag and context used to determine the color output.
func (c *ColorPrinter) Init(flags *getopt.Set, ctx *shell.Context) {
	c.ctx = ctx
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		colorAuto,
		"colorize the output (always|auto|never)")
}

func (c *ColorPrinter) ShouldColor() bool {
	switch {
	case *c.value == colorNever:
		return false
	case *c.value == colorAlways:
		return true
	default:
		term := c.ctx.Env.Getenv(EnvTerm)
		return term != "" && term != "dumb"
	}
}

func (c *ColorPrinter) Sprintf(clr *color.Color, format string, a ...interface{}) string {
	if !c.ShouldColor() {
		return fmt.Sprintf(format, a...)
	}

	// The session decides, not the host's stdout.
	forced := *clr
	forced.EnableColor()
	return forced.Sprintf(format, a...)
}
