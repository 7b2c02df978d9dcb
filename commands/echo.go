package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-8][0-8]?[0-8]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\b`, "\b", // backspace
		`\a`, "\a", // alert
		`\f`, "\f", // form feed
		`\v`, "\v", // vertical tab
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 8, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 16, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	return s
}

// echoFlags reports whether arg is a cluster of echo's flags, e.g. -ne.
func echoFlags(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	return strings.Trim(arg[1:], "neE") == ""
}

// Echo implements a limited echo command.
//
// Echo receives its arguments as typed and expands them itself. Flags are
// only recognized before the first word and never when output is piped in.
func Echo(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	var words []string
	for _, raw := range args[1:] {
		words = append(words, ctx.ExpandRawArgs(raw, io)...)
	}

	newline, escaped := true, false
	for !io.Piped && len(words) > 0 && echoFlags(words[0]) {
		for _, flag := range words[0][1:] {
			switch flag {
			case 'n':
				newline = false
			case 'e':
				escaped = true
			case 'E':
				escaped = false
			}
		}
		words = words[1:]
	}

	out := strings.Join(words, " ")
	if escaped {
		out = unescape(out)
	}
	if newline {
		out += "\n"
	}
	fmt.Fprint(io.Stdout, out)

	return 0
}

var _ shell.CommandFunc = Echo

func init() {
	addBinCmd(shell.Definition{
		Name:        "echo",
		Description: "Display a line of text.",
		Usage:       "echo [-neE] [ARG] ...",
		RawArgs:     true,
		Command:     shell.CommandFunc(Echo),
	})
}
