package vos

import (
	"io"
	"strings"
)

// Stream captures everything written to it and forwards each write to its
// subscribers as it happens.
type Stream struct {
	buf         strings.Builder
	subscribers []func(string)
}

var _ io.Writer = (*Stream)(nil)
var _ io.StringWriter = (*Stream)(nil)

// Write implements io.Writer, it never fails.
func (s *Stream) Write(p []byte) (int, error) {
	return s.WriteString(string(p))
}

// WriteString implements io.StringWriter, it never fails.
func (s *Stream) WriteString(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	s.buf.WriteString(text)
	for _, subscriber := range s.subscribers {
		subscriber(text)
	}
	return len(text), nil
}

// Subscribe registers fn to receive every subsequent write.
func (s *Stream) Subscribe(fn func(text string)) {
	s.subscribers = append(s.subscribers, fn)
}

// String returns everything written so far.
func (s *Stream) String() string {
	return s.buf.String()
}

// Input is stage input that can only be consumed once.
type Input struct {
	r *strings.Reader
}

var _ io.Reader = (*Input)(nil)

// NewInput creates input holding content.
func NewInput(content string) *Input {
	return &Input{r: strings.NewReader(content)}
}

// Read implements io.Reader.
func (in *Input) Read(p []byte) (int, error) {
	if in == nil || in.r == nil {
		return 0, io.EOF
	}
	return in.r.Read(p)
}

// ReadAll returns whatever hasn't been read yet, leaving the input empty.
func (in *Input) ReadAll() string {
	if in == nil || in.r == nil {
		return ""
	}

	var sb strings.Builder
	_, _ = in.r.WriteTo(&sb)
	return sb.String()
}

// IOStreams holds the streams of a single stage.
type IOStreams struct {
	Stdout *Stream
	Stderr *Stream
	Stdin  *Input

	// Cancel is shared by every stage of an invocation.
	Cancel *CancelToken

	// Piped is set when the first argument holds the previous stage's output.
	Piped bool
}

// NewIOStreams creates fresh output streams reading stdin.
func NewIOStreams(stdin string, cancel *CancelToken) *IOStreams {
	if cancel == nil {
		cancel = &CancelToken{}
	}
	return &IOStreams{
		Stdout: &Stream{},
		Stderr: &Stream{},
		Stdin:  NewInput(stdin),
		Cancel: cancel,
	}
}
