package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/josephlewis42/vshell/core"
	"github.com/josephlewis42/vshell/core/config"
	"github.com/josephlewis42/vshell/core/logger"
	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/shell/shelltest"
	"github.com/josephlewis42/vshell/core/ttylog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, presenter shell.Presenter) *shell.Session {
	t.Helper()

	cfg := config.Default()
	cfg.History.Path = ""
	cfg.EventLog = ""

	machine, err := core.NewMachine(cfg, core.MachineOptions{Now: shelltest.Now})
	require.NoError(t, err)
	t.Cleanup(func() { machine.Close() })

	session, err := machine.NewSession(presenter)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func TestRunLines(t *testing.T) {
	cases := map[string]struct {
		input      string
		wantStatus int
		wantStdout string
		wantStderr string
	}{
		"last-status": {
			input:      "echo hi\nfalse\n",
			wantStatus: 1,
			wantStdout: "hi\n",
		},
		"exit-stops": {
			input:      "exit 3\necho unreachable\n",
			wantStatus: 3,
		},
		"not-found": {
			input:      "frobnicate\n",
			wantStatus: 127,
			wantStderr: "Command 'frobnicate' not found.\n",
		},
		"empty": {
			input: "",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			session := newTestSession(t, &shell.TextPresenter{Stdout: &stdout, Stderr: &stderr})

			status, err := runLines(session, strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantStdout, stdout.String())
			assert.Equal(t, tc.wantStderr, stderr.String())
		})
	}
}

func TestSessionCompleter(t *testing.T) {
	completer := &sessionCompleter{}

	lines, length := completer.Do([]rune("whoa"), 4)
	assert.Nil(t, lines)
	assert.Equal(t, 0, length)

	completer.session = newTestSession(t, nil)

	lines, length = completer.Do([]rune("whoa"), 4)
	assert.Equal(t, [][]rune{[]rune("mi ")}, lines)
	assert.Equal(t, 4, length)

	lines, length = completer.Do([]rune("cat no"), 6)
	assert.Equal(t, [][]rune{[]rune("tes.txt ")}, lines)
	assert.Equal(t, 2, length)

	lines, length = completer.Do([]rune("ls /us"), 6)
	assert.Equal(t, [][]rune{[]rune("r/")}, lines)
	assert.Equal(t, 3, length)
}

func TestTerminalPresenter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	var prompt string
	presenter := &terminalPresenter{
		stdout:    &stdout,
		stderr:    &stderr,
		setPrompt: func(p string) { prompt = p },
	}

	presenter.WriteBlock("<p>hello</p>")
	presenter.Write("out\n", shell.OutputStdout)
	presenter.Write("err\n", shell.OutputStderr)
	presenter.EchoCommand("$ ", "ls")
	presenter.SetPrompt("$ ")

	// Colors are disabled when stdout isn't a terminal.
	assert.Equal(t, "hello\nout\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
	assert.Equal(t, "$ ", prompt)
}

// recordSession runs lines in a new session recorded to path.
func recordSession(t *testing.T, path string, lines ...string) {
	t.Helper()

	fd, err := os.Create(path)
	require.NoError(t, err)
	presenter := ttylog.NewPresenter(nil, ttylog.NewFileSink(path, fd, "test"), shelltest.Now)

	session := newTestSession(t, presenter)
	for _, line := range lines {
		session.Execute(line)
	}
	require.NoError(t, presenter.Err())
	require.NoError(t, fd.Close())
}

// runSubcommand runs a leaf command and returns what it printed.
func runSubcommand(t *testing.T, cmd *cobra.Command, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	t.Cleanup(func() { cmd.SetOut(nil) })
	require.NoError(t, cmd.RunE(cmd, args))
	return out.String()
}

func TestRecordings(t *testing.T) {
	for _, ext := range []string{".cast", ".log"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session"+ext)
			recordSession(t, path, "echo hi", "cat missing.txt")

			out := runSubcommand(t, catRecordingCmd, path)
			assert.Contains(t, out, "echo hi\r\nhi\r\n")
			assert.Contains(t, out, "cat: missing.txt: No such file or directory\r\n")
			assert.Equal(t, out, runSubcommand(t, replayRecordingCmd, path))

			input := runSubcommand(t, inputRecordingCmd, path)
			assert.Equal(t, "      0s  echo hi\n      0s  cat missing.txt\n", input)
		})
	}
}

func TestRecordings_convert(t *testing.T) {
	dir := t.TempDir()
	uml := filepath.Join(dir, "session.log")
	cast := filepath.Join(dir, "session.cast")
	recordSession(t, uml, "echo converted")

	runSubcommand(t, convertRecordingCmd, uml, cast)

	content, err := os.ReadFile(cast)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"title":"session.log"`)
	assert.Equal(t, runSubcommand(t, catRecordingCmd, uml), runSubcommand(t, catRecordingCmd, cast))
}

func TestRecordings_missing(t *testing.T) {
	err := catRecordingCmd.RunE(catRecordingCmd, []string{filepath.Join(t.TempDir(), "nope.cast")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func eventLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var log bytes.Buffer
	recorder := logger.NewJSONLinesRecorder(&log)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, e := range []logger.Event{
		{Time: at, SessionID: "a", Type: logger.EventSessionStart},
		{Time: at, SessionID: "a", Type: logger.EventRunCommand, Fields: map[string]interface{}{"line": "false", "status": 1}},
		{Time: at, SessionID: "b", Type: logger.EventRunCommand, Fields: map[string]interface{}{"line": "ls", "status": 0}},
	} {
		require.NoError(t, recorder.Record(e))
	}
	return &log
}

func TestWriteEvents(t *testing.T) {
	cases := map[string]struct {
		filter eventFilter
		want   string
	}{
		"all": {
			want: "2026-01-02T03:04:05Z  a  session_start\n" +
				"2026-01-02T03:04:05Z  a  run_command  line=\"false\"  status=\"1\"\n" +
				"2026-01-02T03:04:05Z  b  run_command  line=\"ls\"  status=\"0\"\n",
		},
		"by type": {
			filter: eventFilter{types: []logger.EventType{logger.EventSessionStart}},
			want:   "2026-01-02T03:04:05Z  a  session_start\n",
		},
		"by session": {
			filter: eventFilter{session: "b"},
			want:   "2026-01-02T03:04:05Z  b  run_command  line=\"ls\"  status=\"0\"\n",
		},
		"no match": {
			filter: eventFilter{session: "c"},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, writeEvents(&out, eventLog(t), tc.filter))
			assert.Equal(t, tc.want, out.String())
		})
	}
}

func TestWriteReport(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeReport(&out, eventLog(t)))

	report := out.String()
	assert.Contains(t, report, "log_entries: 3\n")
	assert.Contains(t, report, "sessions: 1\n")
	assert.Contains(t, report, "line: \"false\"")
}

func TestWriteReport_invalidLog(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, writeReport(&out, strings.NewReader("{not json")))
}
