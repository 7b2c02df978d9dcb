package shell_test

import (
	"strings"
	"testing"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe_previousOutputIsFirstArgument(t *testing.T) {
	s, p := newSession(t)

	assert.Equal(t, 0, s.Execute(`echo "a b" | echo > out.txt`))

	assert.Equal(t, "a b\n", readFile(t, s.Context(), "out.txt"))
	assert.Empty(t, p.Stdout.String(), "redirected output isn't shown")
}

func TestPipe_failedStageStillFeedsNext(t *testing.T) {
	s, p := newSession(t)

	status := s.Execute("cat missing.txt | echo ok > out.txt")

	assert.Equal(t, 0, status)
	assert.Equal(t, 0, s.Context().Status())
	assert.Equal(t, "ok\n", readFile(t, s.Context(), "out.txt"))
	assert.Equal(t, "cat: missing.txt: No such file or directory\n", p.Stderr.String())
}

func TestPipe_intermediateStdoutIsHidden(t *testing.T) {
	s, p := newSession(t)

	s.Execute("args a b | args")

	assert.Equal(t, "a\nb\n", p.Stdout.String())
}

func TestPipe_rawArgumentsStayLiteral(t *testing.T) {
	s, p := newSession(t)

	s.Execute(`args '$HOME *' | echo`)

	assert.Equal(t, "$HOME *\n", p.Stdout.String())
}

func TestPipe_operatorsInEarlierStagesAreArguments(t *testing.T) {
	s, p := newSession(t)

	s.Execute("args a > b | args")

	assert.Equal(t, "a\n>\nb\n", p.Stdout.String())
	_, err := s.Context().FS.Stat(s.Context().Abs("b"))
	assert.Error(t, err, "no file should be created")
}

func TestRedirect(t *testing.T) {
	t.Run("append", func(t *testing.T) {
		s, _ := newSession(t)

		s.Execute("echo one > f.txt")
		s.Execute("echo two >> f.txt")

		assert.Equal(t, "one\ntwo\n", readFile(t, s.Context(), "f.txt"))
		info, err := s.Context().FS.Stat(s.Context().Abs("f.txt"))
		require.NoError(t, err)
		assert.Equal(t, "rw-r--r--", info.Perm)
		assert.Equal(t, "tester", info.Owner)
	})

	t.Run("truncate", func(t *testing.T) {
		s, _ := newSession(t)

		s.Execute("echo one > f.txt")
		s.Execute("echo two > f.txt")

		assert.Equal(t, "two\n", readFile(t, s.Context(), "f.txt"))
	})

	t.Run("quoted and expanded target", func(t *testing.T) {
		s, _ := newSession(t)

		s.Execute(`NAME="my file"`)
		s.Execute(`echo hi > "$NAME.txt"`)

		assert.Equal(t, "hi\n", readFile(t, s.Context(), "my file.txt"))
	})

	t.Run("ambiguous target", func(t *testing.T) {
		s, p := newSession(t)

		s.Execute(`NAME="my file"`)
		assert.Equal(t, 1, s.Execute(`echo hi > $NAME`))
		assert.Contains(t, p.Stderr.String(), "ambiguous redirect")
	})

	t.Run("null device", func(t *testing.T) {
		s, p := newSession(t)

		assert.Equal(t, 0, s.Execute("echo hidden > /dev/null"))
		assert.Equal(t, 0, s.Execute("echo hidden >> /dev/null"))

		assert.Empty(t, p.Stdout.String())
		assert.Equal(t, "", readFile(t, s.Context(), "/dev/null"))
	})

	t.Run("stderr", func(t *testing.T) {
		s, p := newSession(t)

		assert.Equal(t, 3, s.Execute("fail 2> err.txt"))

		assert.Empty(t, p.Stderr.String())
		assert.Equal(t, "failed\n", readFile(t, s.Context(), "err.txt"))
	})

	t.Run("merge into file", func(t *testing.T) {
		s, p := newSession(t)

		s.Execute("fail 2>&1 > out.txt")

		assert.Empty(t, p.Stderr.String())
		assert.Empty(t, p.Stdout.String())
		assert.Equal(t, "failed\n", readFile(t, s.Context(), "out.txt"))
	})

	t.Run("merge to screen", func(t *testing.T) {
		s, p := newSession(t)

		s.Execute("fail 2>&1")

		assert.Empty(t, p.Stderr.String())
		assert.Equal(t, "failed\n", p.Stdout.String())
	})

	t.Run("permission denied", func(t *testing.T) {
		s, p := newSession(t)

		assert.Equal(t, 1, s.Execute("echo hi > /root/secret"))
		assert.Equal(t, "sh: /root/secret: Permission denied\n", p.Stderr.String())
		assert.Equal(t, "1", s.Context().Env.Getenv(shell.EnvLastStatus))
	})

	t.Run("missing target", func(t *testing.T) {
		s, p := newSession(t)

		assert.Equal(t, 2, s.Execute("echo hi >"))
		assert.True(t, strings.HasPrefix(p.Stderr.String(), "sh: syntax error"), p.Stderr.String())
	})

	t.Run("stdout to stderr", func(t *testing.T) {
		s, p := newSession(t)

		s.Execute("echo oops >&2")

		assert.Empty(t, p.Stdout.String())
		assert.Equal(t, "oops\n", p.Stderr.String())
	})

	t.Run("only a target", func(t *testing.T) {
		s, _ := newSession(t)

		assert.Equal(t, 0, s.Execute("> empty.txt"))
		assert.Equal(t, "", readFile(t, s.Context(), "empty.txt"))
	})

	t.Run("input file", func(t *testing.T) {
		s, p := newSession(t)
		writeFile(t, s, "in.txt", "from file\n", "rw-r--r--")

		assert.Equal(t, 0, s.Execute("cat < in.txt"))
		assert.Equal(t, "from file\n", p.Stdout.String())
	})

	t.Run("missing input file", func(t *testing.T) {
		s, p := newSession(t)

		assert.Equal(t, 1, s.Execute("cat < missing.txt"))
		assert.Equal(t, "sh: missing.txt: No such file or directory\n", p.Stderr.String())
	})
}

func TestLists(t *testing.T) {
	s, p := newSession(t)

	s.Execute("fail && echo no || echo recovered")
	s.Execute("args a && args b")
	s.Execute("args one; args two")

	assert.Equal(t, "recovered\na\nb\none\ntwo\n", p.Stdout.String())
	assert.Equal(t, "failed\n", p.Stderr.String())
}

func TestUnsupportedSyntax(t *testing.T) {
	s, p := newSession(t)

	assert.Equal(t, 2, s.Execute("(args a)"))
	assert.Equal(t, "sh: syntax error near column 1\n", p.Stderr.String())
	assert.Empty(t, p.Stdout.String())
}

func TestSyntaxError(t *testing.T) {
	s, p := newSession(t)

	assert.Equal(t, 2, s.Execute(`echo "abc`))
	assert.Equal(t, "sh: syntax error: unexpected end of file\n", p.Stderr.String())
}

func TestStatusVariables(t *testing.T) {
	s, p := newSession(t)

	s.Execute("fail; echo $? $LAST_EXIT_CODE")
	s.Execute(`echo "$?"`)

	assert.Equal(t, "3 3\n0\n", p.Stdout.String())
}

func TestCancel_midPipeline(t *testing.T) {
	s, _ := newSession(t)
	ctx := s.Context()

	status := s.Execute("interrupt | count | count")

	assert.Equal(t, 130, status)
	assert.Equal(t, "130", ctx.Env.Getenv(shell.EnvLastStatus))
	assert.Equal(t, "130", ctx.Env.Getenv(shell.EnvStatus))
	_, err := ctx.FS.Stat("/tmp/count")
	assert.Error(t, err, "later stages must not run")

	// The next line gets a fresh token.
	assert.Equal(t, 0, s.Execute("count"))
	assert.Equal(t, "x", readFile(t, ctx, "/tmp/count"))
}

func TestCancel_stopsRemainingCommands(t *testing.T) {
	s, _ := newSession(t)

	assert.Equal(t, 130, s.Execute("interrupt; count"))

	_, err := s.Context().FS.Stat("/tmp/count")
	assert.Error(t, err)
}

func TestInterrupt_idle(t *testing.T) {
	s, _ := newSession(t)

	s.Interrupt()

	assert.Equal(t, 0, s.Execute("count"))
}

func TestPanicIsContained(t *testing.T) {
	s, p := newSession(t)

	assert.Equal(t, 1, s.Execute("boom"))
	assert.Equal(t, "boom: internal error\n", p.Stderr.String())

	p.Reset()
	assert.Equal(t, 0, s.Execute("boom | echo after"))
	assert.Equal(t, "boom: internal error\n", p.Stderr.String())
	assert.Equal(t, "after\n", p.Stdout.String())
}

func TestAssignments(t *testing.T) {
	s, p := newSession(t)
	env := s.Context().Env

	s.Execute("FOO=bar args $FOO")
	_, set := env.LookupEnv("FOO")
	assert.False(t, set, "command assignments are temporary")

	s.Execute(`FOO="baz qux"`)
	s.Execute("args $FOO")

	assert.Equal(t, "bar\nbaz qux\n", p.Stdout.String())
	assert.Equal(t, "baz qux", env.Getenv("FOO"))
}

func TestHereString(t *testing.T) {
	s, p := newSession(t)

	s.Execute(`cat <<< "hello $USER"`)

	assert.Equal(t, "hello tester\n", p.Stdout.String())
}

func TestGlob(t *testing.T) {
	s, p := newSession(t)
	writeFile(t, s, "gb.txt", "", "rw-r--r--")
	writeFile(t, s, "ga.txt", "", "rw-r--r--")
	writeFile(t, s, "h.txt", "", "rw-r--r--")
	writeFile(t, s, "sub/g1.txt", "", "rw-r--r--")

	cases := []struct {
		line     string
		expected string
	}{
		{"args g*.txt", "ga.txt\ngb.txt\n"},
		{"args g?.txt", "ga.txt\ngb.txt\n"},
		{`args "g*.txt"`, "g*.txt\n"},
		{`args 'g*.txt'`, "g*.txt\n"},
		{`args g\*.txt`, "g*.txt\n"},
		{"args nomatch*", "nomatch*\n"},
		{"args sub/g*", "sub/g1.txt\n"},
		{"args */g1.txt", "*/g1.txt\n"},
		{"args /home/tester/h*", "/home/tester/h.txt\n"},
		{"args $?", "0\n"},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			p.Reset()
			s.Execute(tc.line)
			assert.Equal(t, tc.expected, p.Stdout.String())
		})
	}
}

func TestCommandNotFound(t *testing.T) {
	s, p := newSession(t)

	assert.Equal(t, 127, s.Execute("nope --help"))
	assert.Equal(t, "Command 'nope' not found.\n", p.Stderr.String())
	assert.Equal(t, "127", s.Context().Env.Getenv(shell.EnvStatus))
}
