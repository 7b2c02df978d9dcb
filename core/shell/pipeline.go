package shell

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/josephlewis42/vshell/core/logger"
	"github.com/josephlewis42/vshell/core/vos"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/syntax"
)

// RunLine runs a line of input, e.g. `cat foo | grep bar > out.txt; echo ok`,
// and returns the status of the last pipeline run.
//
// Statements are parsed one at a time, so statements before a syntax error
// still run. RunLine stops early if the invocation is cancelled or a command
// requests an exit, the request is left pending for the caller to handle.
func (c *Context) RunLine(line string, parent *vos.IOStreams) int {
	status := ExitSuccess
	err := newParser().Stmts(strings.NewReader(line), func(stmt *syntax.Stmt) bool {
		if parent.Cancel.Cancelled() {
			status = ExitCancelled
			c.SetStatus(status)
			return false
		}
		status = c.runStmt(stmt, line, parent)
		return !c.exitPending()
	})
	if err != nil {
		fmt.Fprintf(parent.Stderr, "sh: %s\n", describeParseError(err))
		status = ExitUsage
		c.SetStatus(status)
	}
	return status
}

// runProgram runs already parsed statements.
func (c *Context) runProgram(prog *program, parent *vos.IOStreams) int {
	status := ExitSuccess
	for _, stmt := range prog.stmts {
		if parent.Cancel.Cancelled() {
			c.SetStatus(ExitCancelled)
			return ExitCancelled
		}
		status = c.runStmt(stmt, prog.text, parent)
		if c.exitPending() {
			break
		}
	}
	return status
}

// runStmt runs a pipeline or an && / || list of them.
func (c *Context) runStmt(stmt *syntax.Stmt, text string, parent *vos.IOStreams) int {
	if bin, ok := stmt.Cmd.(*syntax.BinaryCmd); ok && (bin.Op == syntax.AndStmt || bin.Op == syntax.OrStmt) {
		status := c.runStmt(bin.X, text, parent)
		if c.exitPending() || parent.Cancel.Cancelled() {
			return status
		}
		if (status == ExitSuccess) == (bin.Op == syntax.AndStmt) {
			status = c.runStmt(bin.Y, text, parent)
		}
		return status
	}

	stages, err := pipelineStages(stmt, text)
	if err != nil {
		var unsupported *unsupportedError
		if errors.As(err, &unsupported) {
			var sb strings.Builder
			syntax.DebugPrint(&sb, unsupported.node)
			c.LogInvalidInvocation("sh", fmt.Errorf("unsupported syntax: %s", sb.String()))
		}
		fmt.Fprintf(parent.Stderr, "sh: %s\n", err)
		c.SetStatus(ExitUsage)
		return ExitUsage
	}
	return c.runPipeline(stages, parent)
}

// runPipeline runs the stages of a pipeline in order and returns the status
// of the last one.
//
// Each stage gets fresh streams. Output is mirrored into parent as it's
// written except for stdout of stages feeding a pipe and streams of the final
// stage that are redirected. A stage's stdout, minus trailing newlines, is
// passed to the next stage as its first argument rather than its stdin.
func (c *Context) runPipeline(stages []*stage, parent *vos.IOStreams) int {
	status := ExitSuccess
	piped := ""
	for i, st := range stages {
		if parent.Cancel.Cancelled() {
			c.Logger().Debug("pipeline cancelled", zap.Int("stage", i))
			c.SetStatus(ExitCancelled)
			return ExitCancelled
		}

		final := i == len(stages)-1
		io, err := c.stageStreams(st, parent, final)
		if err != nil {
			fmt.Fprintf(parent.Stderr, "sh: %s\n", err)
			status = ExitFailure
			c.SetStatus(status)
			piped = ""
			continue
		}
		status = c.runStage(st, piped, io)
		c.SetStatus(status)

		if final {
			if err := c.applyRedirects(st, io); err != nil {
				fmt.Fprintf(parent.Stderr, "sh: %s\n", err)
				status = ExitFailure
				c.SetStatus(status)
			}
		}

		piped = strings.TrimRight(io.Stdout.String(), "\n")
		if c.exitPending() {
			break
		}
	}

	if parent.Cancel.Cancelled() {
		c.SetStatus(ExitCancelled)
		return ExitCancelled
	}
	return status
}

// stageStreams creates the streams for a stage and wires up mirroring.
func (c *Context) stageStreams(st *stage, parent *vos.IOStreams, final bool) (*vos.IOStreams, error) {
	stdin := ""
	switch {
	case st.stdin != nil:
		stdin = c.ExpandToken(*st.stdin, parent) + "\n"
	case st.input.set:
		content, err := c.readRedirect(st.input.target, parent)
		if err != nil {
			return nil, err
		}
		stdin = content
	}

	io := vos.NewIOStreams(stdin, parent.Cancel)

	switch {
	case final && st.stdout.set:
		// Written out once the stage finishes.
	case final && st.toStderr:
		io.Stdout.Subscribe(func(text string) { parent.Stderr.WriteString(text) })
	case final:
		io.Stdout.Subscribe(func(text string) { parent.Stdout.WriteString(text) })
	}

	switch {
	case final && st.mergeErr:
		io.Stderr.Subscribe(func(text string) { io.Stdout.WriteString(text) })
	case final && st.stderr.set:
		// Written out once the stage finishes.
	default:
		io.Stderr.Subscribe(func(text string) { parent.Stderr.WriteString(text) })
	}

	return io, nil
}

// applyRedirects writes the final stage's captured output to its targets.
func (c *Context) applyRedirects(st *stage, io *vos.IOStreams) error {
	if st.stderr.set && !st.mergeErr {
		if err := c.writeRedirect(st.stderr.target, io.Stderr.String(), false, io); err != nil {
			return err
		}
	}

	if st.stdout.set {
		return c.writeRedirect(st.stdout.target, io.Stdout.String(), st.append, io)
	}
	return nil
}

// runStage applies assignments and runs the stage's command.
func (c *Context) runStage(st *stage, piped string, io *vos.IOStreams) int {
	if len(st.words) == 0 {
		// Bare assignments are permanent.
		for _, as := range st.assignments {
			c.assign(as, io)
		}
		return ExitSuccess
	}

	// Assignments before a command only last as long as the command.
	if len(st.assignments) > 0 {
		type saved struct {
			value string
			ok    bool
		}
		restore := make(map[string]saved)
		for _, as := range st.assignments {
			if _, ok := restore[as.name]; !ok {
				prev, ok := c.Env.LookupEnv(as.name)
				restore[as.name] = saved{prev, ok}
			}
			c.assign(as, io)
		}
		defer func() {
			for name, prev := range restore {
				if prev.ok {
					c.Env.Setenv(name, prev.value)
				} else {
					c.Env.Unsetenv(name)
				}
			}
		}()
	}

	name := c.ExpandToken(st.words[0], io)
	res := Resolve(name, c)

	var args []string
	if res.Kind == KindBuiltin && res.Builtin.RawArgs {
		args = append(args, name)
		if piped != "" {
			args = append(args, SingleQuote(piped))
			io.Piped = true
		}
		for _, word := range st.words[1:] {
			args = append(args, word.Raw)
		}
	} else {
		args = append(args, name)
		if piped != "" {
			args = append(args, piped)
			io.Piped = true
		}
		for _, word := range st.words[1:] {
			args = append(args, c.expandWord(word, io)...)
		}
	}

	return c.Dispatch(res, args, io)
}

// assign expands an assignment's value and sets it.
func (c *Context) assign(as assignment, io *vos.IOStreams) {
	value := c.ExpandToken(as.value, io)
	if as.append {
		value = c.Env.Getenv(as.name) + value
	}
	c.Env.Setenv(as.name, value)
}

// Dispatch runs a resolved command. It always returns a definite status, even
// if the command panics.
func (c *Context) Dispatch(res Resolution, args []string, io *vos.IOStreams) (status int) {
	name := args[0]

	defer func() {
		if r := recover(); r != nil {
			c.Logger().Error("command panicked",
				zap.String("command", name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			c.record(logger.EventPanic, map[string]interface{}{
				"command": name,
				"message": fmt.Sprint(r),
			})
			fmt.Fprintf(io.Stderr, "%s: internal error\n", name)
			status = ExitFailure
		}
	}()

	switch res.Kind {
	case KindBuiltin:
		return res.Builtin.Command.Run(args, c, io)

	case KindScript:
		return c.Interpreters().Execute(res.Interpreter, res.Path, args[1:], c, io)

	case KindExecutable:
		return c.Interpreters().Execute("sh", res.Path, args[1:], c, io)

	case KindNotExecutable:
		c.record(logger.EventUnknownCommand, map[string]interface{}{"command": name, "kind": res.Kind.String()})
		fmt.Fprintf(io.Stderr, "%s: %s\n", name, ErrNotExecutable)
		return ExitNotExecutable

	default:
		c.record(logger.EventUnknownCommand, map[string]interface{}{"command": name, "kind": res.Kind.String()})
		c.Logger().Debug("command not found", zap.String("command", name))
		return Report(io.Stderr, name, &CommandNotFoundError{Name: name})
	}
}

func (c *Context) record(eventType logger.EventType, fields map[string]interface{}) {
	if c.Session != nil {
		c.Session.record(eventType, fields)
	}
}
