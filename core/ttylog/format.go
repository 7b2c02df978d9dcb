package ttylog

import (
	"io"
	"path/filepath"
	"strings"
	"time"
)

// IsAsciicast reports whether a recording at path uses the asciicast format.
// Everything else is treated as a UML tty log.
func IsAsciicast(path string) bool {
	return strings.TrimPrefix(filepath.Ext(path), ".") == AsciicastFileExt
}

// NewFileSink writes entries in the format matching path's extension.
func NewFileSink(path string, w io.Writer, title string) LogSink {
	if IsAsciicast(path) {
		return NewAsciicastLogSink(w, title)
	}
	return NewUMLLogSink(w)
}

// NewFileSource reads entries in the format matching path's extension.
func NewFileSource(path string, r io.Reader) LogSource {
	if IsAsciicast(path) {
		return NewAsciicastLogSource(r)
	}
	return NewUMLLogSource(r)
}

// Input is a line the user typed and how long into the session it came.
type Input struct {
	Offset time.Duration
	Line   string
}

// NewInputCollector gathers the lines typed during a session. Input may
// arrive in several entries, a line ends at a carriage return or newline.
func NewInputCollector(out *[]Input) LogSink {
	var (
		start   time.Time
		started bool
		pending strings.Builder
		at      time.Time
	)

	return func(entry *Entry) error {
		if !started {
			start, started = entry.Time, true
		}
		if entry.FD != FDStdin {
			return nil
		}

		for _, r := range entry.Data {
			switch r {
			case '\r', '\n':
				if pending.Len() > 0 {
					*out = append(*out, Input{Offset: at.Sub(start), Line: pending.String()})
					pending.Reset()
				}
			default:
				if pending.Len() == 0 {
					at = entry.Time
				}
				pending.WriteRune(r)
			}
		}
		return nil
	}
}
