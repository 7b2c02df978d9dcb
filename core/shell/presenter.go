package shell

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// OutputKind tells a presenter where a piece of output came from.
type OutputKind int

const (
	OutputStdout OutputKind = iota
	OutputStderr
	OutputInfo
)

func (k OutputKind) String() string {
	switch k {
	case OutputStdout:
		return "stdout"
	case OutputStderr:
		return "stderr"
	case OutputInfo:
		return "info"
	default:
		return fmt.Sprintf("OutputKind(%d)", int(k))
	}
}

// Presenter renders a session. The shell calls it but never inspects its
// state.
type Presenter interface {
	// Write shows a chunk of command output.
	Write(text string, kind OutputKind)
	// WriteBlock shows a block of markup such as the message of the day.
	WriteBlock(html string)
	// EchoCommand shows a line as it's about to be executed.
	EchoCommand(prompt, line string)
	// SetPrompt updates the prompt shown for the next line.
	SetPrompt(prompt string)
	// ShowHints shows completion candidates.
	ShowHints(hints []string)
}

// NopPresenter discards everything.
type NopPresenter struct{}

var _ Presenter = NopPresenter{}

func (NopPresenter) Write(string, OutputKind) {}
func (NopPresenter) WriteBlock(string) {}
func (NopPresenter) EchoCommand(string, string) {}
func (NopPresenter) SetPrompt(string) {}
func (NopPresenter) ShowHints([]string) {}

var markupTag = regexp.MustCompile(`<[^>]*>`)

// StripMarkup converts a markup block to plain text.
func StripMarkup(block string) string {
	block = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n").Replace(block)
	return html.UnescapeString(markupTag.ReplaceAllString(block, ""))
}

// TextPresenter renders a session as plain text.
type TextPresenter struct {
	Stdout io.Writer
	Stderr io.Writer
	// Echo controls whether executed lines are written back with their prompt.
	Echo bool
}

var _ Presenter = (*TextPresenter)(nil)

// Write implements Presenter.
func (p *TextPresenter) Write(text string, kind OutputKind) {
	if kind == OutputStderr {
		io.WriteString(p.Stderr, text)
		return
	}
	io.WriteString(p.Stdout, text)
}

// WriteBlock implements Presenter.
func (p *TextPresenter) WriteBlock(block string) {
	text := StripMarkup(block)
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	io.WriteString(p.Stdout, text)
}

// EchoCommand implements Presenter.
func (p *TextPresenter) EchoCommand(prompt, line string) {
	if p.Echo {
		fmt.Fprintf(p.Stdout, "%s%s\n", prompt, line)
	}
}

// SetPrompt implements Presenter.
func (p *TextPresenter) SetPrompt(string) {}

// ShowHints implements Presenter.
func (p *TextPresenter) ShowHints(hints []string) {
	if len(hints) > 0 {
		fmt.Fprintln(p.Stdout, strings.Join(hints, "  "))
	}
}
