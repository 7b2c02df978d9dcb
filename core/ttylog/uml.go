package ttylog

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"
)

type mockFdOp int32

const (
	opOpen  mockFdOp = 1
	opClose mockFdOp = 2
	opWrite mockFdOp = 3
	opExec  mockFdOp = 4
)

type mockFdDir int32

const (
	dirRead  mockFdDir = 1
	dirWrite mockFdDir = 2
)

// UMLFileExt holds the suggested file extension for user-mode-linux logs.
const UMLFileExt = "log"

type umlEvent struct {
	Operation    int32  // Operation, maps into mockFdOp.
	Tty          uint32 // Should always be 0.
	Size         int32  // Number of bytes following this event that represent the data.
	Direction    int32  // Data direction, maps into mockFdDir.
	Seconds      uint32 // UNIX timestamp of the event.
	Microseconds uint32 // Microseconds after the timestamp of the event.
}

// According to Kippo, the format matches User Mode Linux recording.
func writeUMLEvent(out io.Writer, timestamp time.Time, fd FD, op mockFdOp, data []byte) error {
	direction := dirWrite
	if fd == FDStdin {
		direction = dirRead
	}

	header := umlEvent{
		Operation:    int32(op),
		Size:         int32(len(data)),
		Direction:    int32(direction),
		Seconds:      uint32(timestamp.Unix()),
		Microseconds: uint32(timestamp.Nanosecond() / int(time.Microsecond)),
	}
	if err := binary.Write(out, binary.LittleEndian, &header); err != nil {
		return err
	}

	if len(data) > 0 {
		if _, err := out.Write(data); err != nil {
			return err
		}
	}

	return nil
}

// NewUMLLogSink creates a LogSink compatible with the user-mode-linux TTY.
func NewUMLLogSink(w io.Writer) LogSink {
	return func(entry *Entry) error {
		return writeUMLEvent(w, entry.Time, entry.FD, opWrite, []byte(entry.Data))
	}
}

// UMLLogSource parses log events from a user-mode-linux/Kippo formatted file.
type UMLLogSource struct {
	r io.Reader
}

var _ LogSource = (*UMLLogSource)(nil)

// NewUMLLogSource reads log events from a user-mode-linux/Kippo formatted file.
func NewUMLLogSource(r io.Reader) *UMLLogSource {
	return &UMLLogSource{r: r}
}

// Next gets the next log entry, it returns io.EOF if there are no more.
func (log *UMLLogSource) Next() (*Entry, error) {
	var header umlEvent
	buf := &bytes.Buffer{}

	for {
		// Read the event's data
		if err := binary.Read(log.r, binary.LittleEndian, &header); err != nil {
			return nil, io.EOF
		}
		buf.Reset()
		if _, err := io.CopyN(buf, log.r, int64(header.Size)); err != nil {
			return nil, err
		}

		// UML doesn't distinguish between stdout and stderr so we'll report it all
		// as stdout.
		fd := FDStdout
		if mockFdDir(header.Direction) == dirRead {
			fd = FDStdin
		}

		switch mockFdOp(header.Operation) {
		case opWrite:
			return &Entry{
				Time: time.Unix(int64(header.Seconds), int64(header.Microseconds)*int64(time.Microsecond)),
				FD:   fd,
				Data: buf.String(),
			}, nil
		case opOpen, opClose, opExec:
			fallthrough
		default:
			// Skip unknown or non-I/O operations
			continue
		}
	}
}
