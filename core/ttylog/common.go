// Package ttylog records what a session showed so it can be played back.
package ttylog

import (
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/josephlewis42/vshell/core/shell"
)

var (
	crlf = regexp.MustCompile(`\r?\n`)
)

// FD identifies the stream an entry was written to.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// Entry is a chunk of terminal traffic.
type Entry struct {
	Time time.Time
	FD   FD
	Data string
}

// LogSink receives log events.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It reutrns io.EOF if the source
	// has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prev time.Time

	return func(entry *Entry) error {
		once.Do(func() {
			prev = entry.Time
		})

		delta := entry.Time.Sub(prev)
		prev = entry.Time

		if maxSleep > 0 {
			if delta > maxSleep {
				delta = maxSleep
			}
			time.Sleep(delta)
		}

		return next(entry)
	}
}

// NewClientOutput writes stdout and stderr to the given writer
func NewClientOutput(w io.Writer) LogSink {
	return func(entry *Entry) error {
		if entry.FD == FDStdin {
			return nil
		}
		_, err := io.WriteString(w, entry.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) (err error) {
	for {
		entry, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(entry); err != nil {
			return err
		}
	}
}

// Presenter forwards everything to the wrapped presenter and records it the
// way a terminal would have shown it.
type Presenter struct {
	shell.Presenter

	mutex  sync.Mutex
	output LogSink
	now    func() time.Time
	err    error
}

var _ shell.Presenter = (*Presenter)(nil)

// NewPresenter creates a presenter that forwards all output to output as well
// as toWrap.
func NewPresenter(toWrap shell.Presenter, output LogSink, now func() time.Time) *Presenter {
	if toWrap == nil {
		toWrap = shell.NopPresenter{}
	}
	if now == nil {
		now = time.Now
	}
	return &Presenter{
		Presenter: toWrap,
		output:    output,
		now:       now,
	}
}

func (p *Presenter) record(fd FD, data string) {
	if data == "" {
		return
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.err != nil {
		return
	}
	p.err = p.output(&Entry{
		Time: p.now(),
		FD:   fd,
		Data: crlf.ReplaceAllString(data, "\r\n"),
	})
}

// Err returns the first error the sink reported. Nothing is recorded after
// an error.
func (p *Presenter) Err() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.err
}

// Write implements shell.Presenter.
func (p *Presenter) Write(text string, kind shell.OutputKind) {
	fd := FDStdout
	if kind == shell.OutputStderr {
		fd = FDStderr
	}
	p.record(fd, text)
	p.Presenter.Write(text, kind)
}

// WriteBlock implements shell.Presenter.
func (p *Presenter) WriteBlock(block string) {
	text := shell.StripMarkup(block)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	p.record(FDStdout, text)
	p.Presenter.WriteBlock(block)
}

// EchoCommand implements shell.Presenter.
func (p *Presenter) EchoCommand(prompt, line string) {
	p.record(FDStdin, line+"\n")
	p.record(FDStdout, prompt+line+"\n")
	p.Presenter.EchoCommand(prompt, line)
}

// ShowHints implements shell.Presenter.
func (p *Presenter) ShowHints(hints []string) {
	if len(hints) > 0 {
		p.record(FDStdout, strings.Join(hints, "  ")+"\n")
	}
	p.Presenter.ShowHints(hints)
}
