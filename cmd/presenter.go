package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/josephlewis42/vshell/core/shell"
)

var (
	stderrColor = color.New(color.FgRed)
	motdColor   = color.New(color.FgCyan)
)

// terminalPresenter draws a session on a local terminal. Prompts are handed
// to the line editor rather than printed.
type terminalPresenter struct {
	stdout    io.Writer
	stderr    io.Writer
	setPrompt func(string)
}

var _ shell.Presenter = (*terminalPresenter)(nil)

func (p *terminalPresenter) Write(text string, kind shell.OutputKind) {
	if kind == shell.OutputStderr {
		stderrColor.Fprint(p.stderr, text)
		return
	}
	io.WriteString(p.stdout, text)
}

func (p *terminalPresenter) WriteBlock(block string) {
	text := shell.StripMarkup(block)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	motdColor.Fprint(p.stdout, text)
}

// EchoCommand is a no-op, the line editor already shows what was typed.
func (p *terminalPresenter) EchoCommand(string, string) {}

func (p *terminalPresenter) SetPrompt(prompt string) {
	if p.setPrompt != nil {
		p.setPrompt(prompt)
	}
}

// ShowHints is a no-op, the line editor lists completion candidates itself.
func (p *terminalPresenter) ShowHints([]string) {}

// sessionCompleter adapts Session.Complete to readline.
type sessionCompleter struct {
	session *shell.Session
}

func (c *sessionCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if c.session == nil {
		return nil, 0
	}
	typed := string(line[:pos])

	prefix := ""
	if fields := strings.Fields(typed); len(fields) > 0 && !strings.HasSuffix(typed, " ") {
		prefix = fields[len(fields)-1]
	}

	for _, hint := range c.session.Complete(typed) {
		if !strings.HasPrefix(hint, prefix) {
			continue
		}
		suffix := strings.TrimPrefix(hint, prefix)
		if !strings.HasSuffix(suffix, "/") {
			suffix += " "
		}
		newLine = append(newLine, []rune(suffix))
	}

	return newLine, len([]rune(prefix))
}

func printBanner(w io.Writer, lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
}
