package shell

import (
	"strconv"
	"strings"

	"github.com/josephlewis42/vshell/core/vos"
)

// param looks up a parameter. Positional parameters come from the running
// script, everything else from the environment. Values are never parsed
// again, so arguments containing shell syntax stay inert.
func (c *Context) param(name string) string {
	switch name {
	case "#":
		if len(c.positional) == 0 {
			return "0"
		}
		return strconv.Itoa(len(c.positional) - 1)
	case "@", "*":
		if len(c.positional) < 2 {
			return ""
		}
		return strings.Join(c.positional[1:], " ")
	}

	if n, err := strconv.Atoi(name); err == nil {
		switch {
		case n == 0 && len(c.positional) == 0:
			return "sh"
		case n < len(c.positional):
			return c.positional[n]
		default:
			return ""
		}
	}
	return c.Env.Getenv(name)
}

// expandParts expands each part of word exactly once. Substitutions run with
// io's cancellation and report errors on its stderr.
func (c *Context) expandParts(word Word, io *vos.IOStreams) []string {
	out := make([]string, len(word.Parts))
	for i, part := range word.Parts {
		switch {
		case part.Subst != nil:
			out[i] = c.captureOutput(part.Subst, io)
		case part.Param != "":
			out[i] = c.param(part.Param)
		default:
			out[i] = part.Text
		}
	}
	return out
}

// ExpandToken performs variable expansion and command substitution on a word
// and removes its quoting. $NAME, ${NAME} and $? expand inside double quotes
// and bare text; unset variables expand to the empty string.
func (c *Context) ExpandToken(word Word, io *vos.IOStreams) string {
	return strings.Join(c.expandParts(word, io), "")
}

// expandWord expands a word into arguments, globbing if the word has an
// unquoted wildcard. An unquoted expansion that comes out empty, like $UNSET,
// produces no argument at all.
func (c *Context) expandWord(word Word, io *vos.IOStreams) []string {
	values := c.expandParts(word, io)
	if hasUnquotedGlob(word) {
		if matches := Glob(c, globPattern(word, values)); len(matches) > 0 {
			return matches
		}
	}

	expanded := strings.Join(values, "")
	if expanded == "" && !hasQuotes(word) {
		return nil
	}
	return []string{expanded}
}

// hasQuotes reports whether any part of the word was quoted or escaped.
func hasQuotes(word Word) bool {
	for _, part := range word.Parts {
		if part.Quoting != Bare {
			return true
		}
	}
	return false
}

// ExpandRawArgs expands the raw text a RawArgs command received the same way
// the shell expands arguments of other commands, globbing included. Text that
// isn't a list of words, e.g. an operator, is returned as is.
func (c *Context) ExpandRawArgs(raw string, io *vos.IOStreams) []string {
	words, err := Tokenize(raw)
	if err != nil {
		return []string{raw}
	}

	var out []string
	for _, word := range words {
		out = append(out, c.expandWord(word, io)...)
	}
	return out
}

// hasUnquotedGlob reports whether the word, as typed, has a * or ? outside of
// quotes.
func hasUnquotedGlob(word Word) bool {
	for _, part := range word.Parts {
		if part.Quoting == Bare && part.isText() && strings.ContainsAny(part.Text, "*?") {
			return true
		}
	}
	return false
}

// globPattern builds a glob pattern from a word and its expanded parts.
// Wildcards that came from quoted text or expansions are escaped.
func globPattern(word Word, values []string) string {
	escape := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

	var sb strings.Builder
	for i, part := range word.Parts {
		if part.Quoting == Bare && part.isText() {
			sb.WriteString(values[i])
		} else {
			sb.WriteString(escape.Replace(values[i]))
		}
	}
	return sb.String()
}
