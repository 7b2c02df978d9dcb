package ttylog

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAsciicast(t *testing.T) {
	assert.True(t, IsAsciicast("/tmp/session.cast"))
	assert.False(t, IsAsciicast("/tmp/session.log"))
	assert.False(t, IsAsciicast("cast"))
}

func TestFileSinkAndSource(t *testing.T) {
	for _, name := range []string{"s.cast", "s.log"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			sink := NewFileSink(name, &buf, "demo")
			require.NoError(t, sink(&Entry{Time: testTime(0), FD: FDStdout, Data: "$ "}))
			require.NoError(t, sink(&Entry{Time: testTime(time.Second), FD: FDStdin, Data: "ls\r\n"}))

			source := NewFileSource(name, &buf)
			first, err := source.Next()
			require.NoError(t, err)
			assert.Equal(t, "$ ", first.Data)
			second, err := source.Next()
			require.NoError(t, err)
			assert.Equal(t, FDStdin, second.FD)

			_, err = source.Next()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestInputCollector(t *testing.T) {
	var lines []Input
	sink := NewInputCollector(&lines)

	for _, entry := range []Entry{
		{Time: testTime(0), FD: FDStdout, Data: "$ "},
		{Time: testTime(time.Second), FD: FDStdin, Data: "l"},
		{Time: testTime(2 * time.Second), FD: FDStdin, Data: "s\r\n"},
		{Time: testTime(3 * time.Second), FD: FDStdout, Data: "a.txt\r\n"},
		{Time: testTime(4 * time.Second), FD: FDStdin, Data: "\r\n"},
		{Time: testTime(5 * time.Second), FD: FDStdin, Data: "pwd\nexit\r"},
		{Time: testTime(6 * time.Second), FD: FDStdin, Data: "unfinished"},
	} {
		entry := entry
		require.NoError(t, sink(&entry))
	}

	assert.Equal(t, []Input{
		{Offset: time.Second, Line: "ls"},
		{Offset: 5 * time.Second, Line: "pwd"},
		{Offset: 5 * time.Second, Line: "exit"},
	}, lines)
}
