package commands

import (
	"testing"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/shell/shelltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnescape(t *testing.T) {
	cases := []struct {
		escaped  string
		expected string
	}{
		{"not escaped", "not escaped"},
		{`newline\n`, "newline\n"},
		{`double-escape\\n`, `double-escape\n`},
		{`double-escape\\n`, `double-escape\n`},
		// Octal
		{`\07`, string(rune(7))},
		{`\011`, "\t"},
		{`\0101`, "A"},
		// Hex
		{`\x7`, string(rune(07))},
		{`\x9`, "\t"},
		{`\x4A`, "J"},
	}

	for _, tc := range cases {
		t.Run(tc.escaped, func(t *testing.T) {
			actual := unescape(tc.escaped)

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestEcho(t *testing.T) {
	cases := []struct {
		name  string
		args  []string
		piped string
		want  string
	}{
		{"no args", nil, "", "\n"},
		{"words", []string{"hello", "world"}, "", "hello world\n"},
		{"no newline", []string{"-n", "hi"}, "", "hi"},
		{"escapes", []string{"-e", `'a\tb'`}, "", "a\tb\n"},
		{"escapes off", []string{"-E", `'a\tb'`}, "", "a\\tb\n"},
		{"clustered flags", []string{"-ne", `'x\n'`}, "", "x\n"},
		{"flag after word", []string{"hi", "-n"}, "", "hi -n\n"},
		{"variable", []string{`"$USER"`}, "", "tester\n"},
		{"quotes kept together", []string{`"a   b"`}, "", "a   b\n"},
		{"glob", []string{"g*.txt"}, "", "g1.txt g2.txt\n"},
		{"quoted glob", []string{`"g*.txt"`}, "", "g*.txt\n"},
		{"unmatched glob", []string{"z*.txt"}, "", "z*.txt\n"},
		{"piped flag is text", nil, "'-n'", "-n\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := shelltest.Command(shell.CommandFunc(Echo), "echo", tc.args...)
			cmd.Piped = tc.piped
			cmd.Dir = "/tmp"
			cmd.Setup = writeFiles(map[string]string{
				"/tmp/g1.txt": "",
				"/tmp/g2.txt": "",
			})
			require.NoError(t, cmd.Run())

			assert.Equal(t, 0, cmd.ExitStatus)
			assert.Equal(t, tc.want, cmd.Stdout)
		})
	}
}
