package shell

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"mvdan.cc/sh/v3/syntax"
)

// ErrUnexpectedEOF is returned for unterminated quotes.
var ErrUnexpectedEOF = errors.New("syntax error: unexpected end of file")

// Quoting is how a part of a word was written.
type Quoting int

const (
	// Bare text expands variables and may glob.
	Bare Quoting = iota
	// Double quoted text expands variables but never globs.
	Double
	// Literal text came from single quotes or a backslash escape.
	Literal
)

// Part is a run of a word with uniform quoting. A part is either literal
// text, a parameter, or a command substitution.
type Part struct {
	Text    string
	Quoting Quoting

	// Param names the parameter a $NAME, ${NAME}, $? or $1 part expands to.
	Param string
	// Subst holds the commands of a $(...) part.
	Subst *program
}

func (p Part) isText() bool {
	return p.Param == "" && p.Subst == nil
}

// Word is a single shell word made of differently quoted parts, e.g.
// foo"$BAR"'baz'.
type Word struct {
	Parts []Part
	// Raw holds the word exactly as typed.
	Raw string
}

// program is parsed shell text. Node offsets point into text.
type program struct {
	text  string
	stmts []*syntax.Stmt
}

// unsupportedError is returned for valid shell syntax the simulation doesn't
// implement, e.g. arithmetic or subshells.
type unsupportedError struct {
	node syntax.Node
}

func (e *unsupportedError) Error() string {
	return fmt.Sprintf("syntax error near column %d", e.node.Pos().Col())
}

func newParser() *syntax.Parser {
	return syntax.NewParser(syntax.Variant(syntax.LangBash))
}

// describeParseError turns a parser error into the message shown to users.
func describeParseError(err error) error {
	var parseErr syntax.ParseError
	switch {
	case syntax.IsIncomplete(err):
		return ErrUnexpectedEOF
	case errors.As(err, &parseErr):
		return fmt.Errorf("syntax error: %s", parseErr.Text)
	default:
		return err
	}
}

// Tokenize parses text as a list of words, e.g. the arguments of a command.
// Operators aren't words and fail to parse.
func Tokenize(text string) ([]Word, error) {
	var (
		out     []Word
		convErr error
	)
	err := newParser().Words(strings.NewReader(text), func(w *syntax.Word) bool {
		word, err := convertWord(w, text)
		if err != nil {
			convErr = err
			return false
		}
		out = append(out, word)
		return true
	})
	if err != nil {
		return nil, describeParseError(err)
	}
	if convErr != nil {
		return nil, convErr
	}
	return out, nil
}

// convertWord converts a parsed word. Quoting is kept per part so globbing can
// tell typed wildcards from quoted or expanded ones.
func convertWord(w *syntax.Word, text string) (Word, error) {
	word := Word{Raw: text[w.Pos().Offset():w.End().Offset()]}
	for _, part := range w.Parts {
		parts, err := convertPart(part, text, Bare)
		if err != nil {
			return Word{}, err
		}
		word.Parts = appendParts(word.Parts, parts...)
	}
	if len(word.Parts) == 0 {
		// Empty quotes still make a word.
		word.Parts = []Part{{Quoting: Literal}}
	}
	return word, nil
}

func convertPart(part syntax.WordPart, text string, quoting Quoting) ([]Part, error) {
	switch part := part.(type) {
	case *syntax.Lit:
		return unescapeLit(part.Value, quoting), nil

	case *syntax.SglQuoted:
		return []Part{{Text: part.Value, Quoting: Literal}}, nil

	case *syntax.DblQuoted:
		var out []Part
		for _, sub := range part.Parts {
			parts, err := convertPart(sub, text, Double)
			if err != nil {
				return nil, err
			}
			out = appendParts(out, parts...)
		}
		return out, nil

	case *syntax.ParamExp:
		if !isPlainParam(part) {
			return nil, &unsupportedError{node: part}
		}
		return []Part{{Param: part.Param.Value, Quoting: quoting}}, nil

	case *syntax.CmdSubst:
		return []Part{{Subst: &program{text: text, stmts: part.Stmts}, Quoting: quoting}}, nil

	default:
		return nil, &unsupportedError{node: part}
	}
}

// isPlainParam reports whether p is $NAME or ${NAME} without any operators.
func isPlainParam(p *syntax.ParamExp) bool {
	return p.Param != nil &&
		!p.Excl && !p.Length && !p.Width &&
		p.Index == nil && p.Slice == nil && p.Repl == nil &&
		p.Names == 0 && p.Exp == nil
}

// unescapeLit splits literal source text on backslash escapes. Outside of
// quotes a backslash makes the next character literal. Inside double quotes
// only \", \\, \$ and \` are escapes, other backslashes are kept.
func unescapeLit(value string, quoting Quoting) []Part {
	var (
		out []Part
		sb  strings.Builder
	)
	flush := func() {
		if sb.Len() > 0 {
			out = appendParts(out, Part{Text: sb.String(), Quoting: quoting})
			sb.Reset()
		}
	}

	for i := 0; i < len(value); i++ {
		if value[i] != '\\' || i+1 >= len(value) {
			sb.WriteByte(value[i])
			continue
		}

		next, size := utf8.DecodeRuneInString(value[i+1:])
		switch {
		case next == '\n':
			// Line continuation.
			i += size
		case quoting == Double && !strings.ContainsRune("\"\\$`", next):
			sb.WriteByte('\\')
		default:
			flush()
			out = appendParts(out, Part{Text: string(next), Quoting: Literal})
			i += size
		}
	}
	flush()
	return out
}

// appendParts appends parts to dst, merging neighboring text with the same
// quoting.
func appendParts(dst []Part, parts ...Part) []Part {
	for _, part := range parts {
		if n := len(dst); n > 0 && part.isText() && dst[n-1].isText() && dst[n-1].Quoting == part.Quoting {
			dst[n-1].Text += part.Text
			continue
		}
		dst = append(dst, part)
	}
	return dst
}

// SingleQuote quotes s so the shell reads it back literally.
func SingleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
