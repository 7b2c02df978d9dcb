package ttylog

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/shell/shelltest"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeConversions(t *testing.T) {
	cases := map[string]struct {
		microseconds int64
		seconds      float64
	}{
		"precision": {
			microseconds: 1,
			seconds:      1e-6,
		},
		"negative": {
			microseconds: -631119539e6,
			seconds:      -631119539,
		},
		"positive": {
			microseconds: 631119539e6,
			seconds:      631119539,
		},
		"bigprecise": {
			microseconds: 123456789987654,
			seconds:      123456789.987654,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s2m := secondsToMicroseconds(tc.seconds)
			m2s := microsecondsToSeconds(tc.microseconds)

			// Only allow delta to be to the NS
			assert.InDelta(t, m2s, tc.seconds, float64(time.Nanosecond)/float64(time.Second))
			assert.Equal(t, s2m, tc.microseconds)
		})
	}
}

func testTime(offset time.Duration) time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC).Add(offset)
}

func TestPresenter_asciicast(t *testing.T) {
	var out bytes.Buffer
	next := &shelltest.Presenter{}

	offset := time.Duration(0)
	presenter := NewPresenter(next, NewAsciicastLogSink(&out, "demo"), func() time.Time {
		defer func() { offset += 500 * time.Millisecond }()
		return testTime(offset)
	})

	presenter.WriteBlock("<p>hello</p>")
	presenter.EchoCommand("$ ", "ls")
	presenter.Write("a.txt\n", shell.OutputStdout)
	presenter.Write("oops\n", shell.OutputStderr)
	require.NoError(t, presenter.Err())

	// Output still reaches the wrapped presenter.
	assert.Equal(t, "a.txt\n", next.Stdout.String())
	assert.Equal(t, "oops\n", next.Stderr.String())
	assert.Equal(t, []string{"$ ls"}, next.Echoed)

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithTestNameForDir(true),
	)
	g.Assert(t, "presenter", out.Bytes())
}

func TestAsciicast_roundTrip(t *testing.T) {
	var out bytes.Buffer
	sink := NewAsciicastLogSink(&out, "demo")
	for i, entry := range []Entry{
		{Time: testTime(0), FD: FDStdout, Data: "$ "},
		{Time: testTime(time.Second), FD: FDStdin, Data: "ls\r\n"},
		{Time: testTime(2 * time.Second), FD: FDStderr, Data: "ls: oops\r\n"},
	} {
		entry := entry
		require.NoError(t, sink(&entry), i)
	}

	var client bytes.Buffer
	var times []time.Time
	err := Replay(NewAsciicastLogSource(&out), func(e *Entry) error {
		times = append(times, e.Time)
		return NewClientOutput(&client)(e)
	})
	require.NoError(t, err)

	// Input is skipped and stderr is folded into stdout.
	assert.Equal(t, "$ ls: oops\r\n", client.String())
	require.Len(t, times, 3)
	assert.Equal(t, 2*time.Second, times[2].Sub(times[0]))
}

func TestUML_roundTrip(t *testing.T) {
	var out bytes.Buffer
	sink := NewUMLLogSink(&out)
	require.NoError(t, sink(&Entry{Time: testTime(0), FD: FDStdout, Data: "hello\r\n"}))
	require.NoError(t, sink(&Entry{Time: testTime(1500 * time.Millisecond), FD: FDStdin, Data: "exit\r"}))

	source := NewUMLLogSource(&out)

	first, err := source.Next()
	require.NoError(t, err)
	assert.True(t, testTime(0).Equal(first.Time))
	assert.Equal(t, FDStdout, first.FD)
	assert.Equal(t, "hello\r\n", first.Data)

	second, err := source.Next()
	require.NoError(t, err)
	assert.Equal(t, FDStdin, second.FD)
	assert.Equal(t, 1500*time.Millisecond, second.Time.Sub(first.Time))

	_, err = source.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRealTimePlayback_maxSleep(t *testing.T) {
	var seen int
	sink := NewRealTimePlayback(time.Millisecond, func(*Entry) error {
		seen++
		return nil
	})

	start := time.Now()
	require.NoError(t, sink(&Entry{Time: testTime(0)}))
	require.NoError(t, sink(&Entry{Time: testTime(time.Hour)}))
	assert.Equal(t, 2, seen)
	assert.Less(t, time.Since(start), time.Minute)
}
