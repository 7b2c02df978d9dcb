package shell_test

import (
	"strings"
	"testing"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpreters_Execute(t *testing.T) {
	s, _ := newSession(t)
	ctx := s.Context()
	writeFile(t, s, "ok.sh", "echo ok", "rwxr-xr-x")
	writeFile(t, s, "secret.sh", "echo secret", "--x--x--x")

	cases := []struct {
		id     string
		path   string
		status int
		stdout string
		stderr string
	}{
		{"sh", "ok.sh", 0, "ok\n", ""},
		{"bash", "ok.sh", 0, "ok\n", ""},
		{"ruby", "ok.sh", 127, "", "ruby: Interpreter not found\n"},
		{"sh", "missing.sh", 1, "", "missing.sh: No such file or directory\n"},
		{"sh", "secret.sh", 126, "", "secret.sh: Permission denied\n"},
		{"sh", "/tmp", 126, "", "/tmp: Is a directory\n"},
	}

	for _, tc := range cases {
		t.Run(tc.id+" "+tc.path, func(t *testing.T) {
			io := vos.NewIOStreams("", nil)
			status := ctx.Interpreters().Execute(tc.id, tc.path, nil, ctx, io)

			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.stdout, io.Stdout.String())
			assert.Equal(t, tc.stderr, io.Stderr.String())
		})
	}
}

func TestShellScript(t *testing.T) {
	s, p := newSession(t)
	writeFile(t, s, "greet.sh", `#!/bin/sh
# Say hello.

GREETING=hello
echo "$GREETING $1 ${2}" ; echo $# "$0"
echo "a;b" 'c;d'
exit 4
echo never
`, "rwxr-xr-x")

	status := s.Execute("./greet.sh world there")

	assert.Equal(t, 4, status)
	assert.Equal(t, "hello world there\n2 /home/tester/greet.sh\na;b c;d\n", p.Stdout.String())
	assert.Equal(t, "hello", s.Context().Env.Getenv("GREETING"), "assignments are visible to the caller")

	exited, _ := s.Exited()
	assert.False(t, exited, "exit inside a script only ends the script")
}

func TestShellScript_statusOfLastLine(t *testing.T) {
	s, _ := newSession(t)
	writeFile(t, s, "last.sh", "echo first\nfail\n", "rwxr-xr-x")
	writeFile(t, s, "empty.sh", "#!/bin/sh\n\n# nothing\n", "rwxr-xr-x")

	assert.Equal(t, 3, s.Execute("./last.sh"))
	assert.Equal(t, 0, s.Execute("./empty.sh"))
}

func TestShellScript_pathSearch(t *testing.T) {
	s, p := newSession(t)
	writeFile(t, s, "/home/tester/bin/hello", "#!/bin/bash\necho hello from $0", "rwxr-xr-x")
	s.Context().Env.Setenv("PATH", "/home/tester/bin:/bin")

	assert.Equal(t, 0, s.Execute("hello"))
	assert.Equal(t, "hello from /home/tester/bin/hello\n", p.Stdout.String())
}

func TestCommandSubstitution(t *testing.T) {
	s, p := newSession(t)
	ctx := s.Context()

	s.Execute(`echo "got $(echo inner)"`)
	s.Execute(`echo '$(echo literal)'`)
	s.Execute(`echo $(echo $(echo nested) twice)`)
	s.Execute(`NOW=$(echo later | args)`)

	assert.Equal(t, "got inner\n$(echo literal)\nnested twice\n", p.Stdout.String())
	assert.Equal(t, "later", ctx.Env.Getenv("NOW"))

	entries, err := ctx.FS.ReadDir(ctx.Cred(), "/tmp")
	require.NoError(t, err)
	assert.Empty(t, entries, "transient files are removed")
}

func TestNodeScript(t *testing.T) {
	s, p := newSession(t)
	writeFile(t, s, "run.js", `#!/usr/bin/env node
console.log("hi", process.argv[2], process.env.USER, {a: 1}, [1, "x"], null);
console.error("bad");
process.exit(3);
console.log("never");
`, "rwxr-xr-x")

	status := s.Execute("./run.js arg")

	assert.Equal(t, 3, status)
	assert.Equal(t, `hi arg tester {"a":1} [1,"x"] null`+"\n", p.Stdout.String())
	assert.Equal(t, "bad\n", p.Stderr.String())
}

func TestNodeScript_argv(t *testing.T) {
	s, p := newSession(t)
	writeFile(t, s, "argv.js", `#!/usr/bin/env node
console.log(process.argv.join(","));
`, "rwxr-xr-x")

	assert.Equal(t, 0, s.Execute("./argv.js a b"))
	assert.Equal(t, "node,/home/tester/argv.js,a,b\n", p.Stdout.String())
}

func TestNodeScript_uncaught(t *testing.T) {
	cases := []struct {
		name   string
		source string
		stderr string
	}{
		{"type error", `throw new TypeError("nope")`, "node: TypeError: nope\n"},
		{"plain error", `throw new Error("plain")`, "node: Error: plain\n"},
		{"reference error", `missing()`, "node: ReferenceError: missing is not defined\n"},
		{"thrown string", `throw "str"`, "node: Error: str\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, p := newSession(t)
			writeFile(t, s, "err.js", "#!/usr/bin/env node\n"+tc.source, "rwxr-xr-x")

			assert.Equal(t, 1, s.Execute("./err.js"))
			assert.Equal(t, tc.stderr, p.Stderr.String())
		})
	}
}

func TestNodeScript_syntaxError(t *testing.T) {
	s, p := newSession(t)
	writeFile(t, s, "bad.js", "#!/usr/bin/env node\nconsole.log(", "rwxr-xr-x")

	assert.Equal(t, 1, s.Execute("./bad.js"))
	assert.True(t, strings.HasPrefix(p.Stderr.String(), "node: SyntaxError: "), p.Stderr.String())
	assert.NotContains(t, p.Stderr.String(), "SyntaxError: SyntaxError")
}

func TestShellScript_argumentsAreValues(t *testing.T) {
	s, p := newSession(t)
	ctx := s.Context()
	writeFile(t, s, "show.sh", "#!/bin/sh\necho \"$1\"\nargs $2\necho $3\n", "rwxr-xr-x")

	status := s.Execute(`./show.sh '$(count)' 'x" > /tmp/leak "' '$HOME'`)

	assert.Equal(t, 0, status)
	assert.Equal(t, "$(count)\n"+`x" > /tmp/leak "`+"\n$HOME\n", p.Stdout.String())

	_, err := ctx.FS.Stat("/tmp/count")
	assert.Error(t, err, "an argument must never run")
	_, err = ctx.FS.Stat("/tmp/leak")
	assert.Error(t, err, "an argument must never redirect")
}

func TestShellScript_positionalScope(t *testing.T) {
	s, p := newSession(t)
	writeFile(t, s, "inner.sh", "echo inner $1 $#", "rwxr-xr-x")
	writeFile(t, s, "outer.sh", "./inner.sh x y\necho outer $1 $#", "rwxr-xr-x")

	s.Execute("./outer.sh a")
	s.Execute("echo top $1 $#")

	assert.Equal(t, "inner x 2\nouter a 1\ntop 0\n", p.Stdout.String())
}

func TestShellInterpreter(t *testing.T) {
	s, _ := newSession(t)
	ctx := s.Context()

	io := vos.NewIOStreams("", nil)
	status := shell.ShellInterpreter.Run(&shell.Script{
		ID:     "sh",
		Path:   "/tmp/direct.sh",
		Source: "#!/bin/sh\necho $0 $# $@\nexit 5\n",
		Args:   []string{"a", "b"},
	}, ctx, io)

	assert.Equal(t, 5, status)
	assert.Equal(t, "/tmp/direct.sh 2 a b\n", io.Stdout.String())
}

func TestCommandSubstitution_exitStaysInside(t *testing.T) {
	s, p := newSession(t)

	status := s.Execute("echo before $(exit 3) ; echo after")

	assert.Equal(t, 0, status)
	assert.Equal(t, "before\nafter\n", p.Stdout.String())
	exited, _ := s.Exited()
	assert.False(t, exited)

	p.Reset()
	writeFile(t, s, "sub.sh", "X=$(exit 4)\necho still running\n", "rwxr-xr-x")
	assert.Equal(t, 0, s.Execute("./sub.sh"))
	assert.Equal(t, "still running\n", p.Stdout.String())
}

func TestCommandSubstitution_failingCommand(t *testing.T) {
	s, p := newSession(t)
	ctx := s.Context()

	s.Execute(`echo "[$(cat missing.txt)]"`)
	s.Execute(`echo "[$(nope)]"`)
	s.Execute(`echo "[$(fail | boom)]"`)

	assert.Equal(t, "[]\n[]\n[]\n", p.Stdout.String())
	assert.Equal(t, "cat: missing.txt: No such file or directory\n"+
		"Command 'nope' not found.\n"+
		"failed\n"+
		"boom: internal error\n", p.Stderr.String())

	entries, err := ctx.FS.ReadDir(ctx.Cred(), "/tmp")
	require.NoError(t, err)
	assert.Empty(t, entries, "transient files are removed")
}

func TestCommandSubstitution_argumentsStayWhole(t *testing.T) {
	s, p := newSession(t)

	s.Execute(`args $(echo "a  b") "$(echo c)"`)

	assert.Equal(t, "a  b\nc\n", p.Stdout.String())
}
