package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLinesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &SessionRecorder{
		Recorder:  NewJSONLinesRecorder(&buf),
		SessionID: "abc",
		Now:       func() time.Time { return now },
	}

	require.NoError(t, rec.Record(EventSessionStart, nil))
	require.NoError(t, rec.Record(EventRunCommand, map[string]interface{}{"line": "ls /", "status": 0}))
	require.NoError(t, rec.Record(EventRunCommand, map[string]interface{}{"line": "cat nope", "status": 1}))
	require.NoError(t, rec.Record(EventUnknownCommand, map[string]interface{}{"command": "vim", "kind": "not_found"}))
	require.NoError(t, rec.Record(EventPanic, map[string]interface{}{"command": "bad", "message": "boom"}))

	var events []Event
	require.NoError(t, ReadJSONLinesLog(&buf, func(e Event) {
		events = append(events, e)
	}))

	require.Len(t, events, 5)
	assert.Equal(t, now, events[0].Time)
	assert.Equal(t, "abc", events[0].SessionID)
	assert.Equal(t, EventRunCommand, events[1].Type)
	assert.Equal(t, "ls /", events[1].String("line"))
	assert.Equal(t, 1, events[2].Int("status"))

	report := NewReport()
	for _, e := range events {
		report.Update(e)
	}

	assert.Equal(t, 5, report.LogEntries)
	assert.Equal(t, 1, report.Sessions)
	assert.Equal(t, 1, report.Commands.Count("ls /"))
	assert.Equal(t, 1, report.FailedCommands.Count("cat nope", "1"))
	assert.Equal(t, 1, report.UnknownCommands.Count("vim", "not_found"))
	assert.Equal(t, []string{"bad: boom"}, report.Panics)

	_, err := json.Marshal(report)
	assert.NoError(t, err)
}

func TestSessionRecorder_Nil(t *testing.T) {
	var rec *SessionRecorder
	assert.NoError(t, rec.Record(EventSessionStart, nil))
}

func TestPathCounter_MarshalJSON(t *testing.T) {
	ctr := NewPathCounter("command", "kind")
	ctr.Increment("b", "x")
	ctr.Increment("a", "y")
	ctr.Increment("a", "y")

	out, err := json.Marshal(ctr)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"count": 2, "event": {"command": "a", "kind": "y"}},
		{"count": 1, "event": {"command": "b", "kind": "x"}}
	]`, string(out))
}

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug", Format: "console", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1))

	log, err = New(Config{Level: "bogus"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1), "falls back to info")
}
