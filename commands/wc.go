package commands

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

type wcCount struct {
	bytes int
	lines int
	chars int
	words int
	name  string

	inSpace bool
}

func (w *wcCount) Write(data []byte) (int, error) {
	for _, c := range data {
		isFirstByte := w.bytes == 0
		w.bytes++

		// Assume UTF-8 characters. Bytes following the leading byte always
		// have MSB of 0b10 indicating they're part of a previous character.
		if c < 0b10000000 || c > 0b10111111 {
			w.chars++
		}

		if c == '\n' {
			w.lines++
		}

		if unicode.IsSpace(rune(c)) {
			w.inSpace = true
		} else {
			if w.inSpace || isFirstByte {
				w.words++
			}
			w.inSpace = false
		}
	}

	return len(data), nil
}

func NewWcCount(name string, fd io.Reader) (*wcCount, error) {
	var out wcCount
	out.name = name

	if _, err := io.Copy(&out, fd); err != nil {
		return nil, err
	}

	return &out, nil
}

func (w *wcCount) Increment(other *wcCount) {
	w.bytes += other.bytes
	w.chars += other.chars
	w.lines += other.lines
	w.words += other.words
}

// Wc implements the POSIX command by the same name.
// https://pubs.opengroup.org/onlinepubs/009695399/utilities/wc.html
func Wc(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "wc [-c|-m] [-lw] [FILE...]",
		Short: "Write the number of newlines, words, and bytes contained in each input file to the standard output.",
	}

	opts := cmd.Flags()
	writeLines := opts.BoolLong("lines", 'l', "write the number of newlines in each file")
	writeWords := opts.BoolLong("words", 'w', "write the number of words in each file")
	writeBytes := opts.BoolLong("bytes", 'c', "write the number of bytes in each file")
	writeChars := opts.BoolLong("chars", 'm', "write the number of characters in each file")

	return cmd.Run(args, ctx, io, func() int {
		inputs, status := cmd.ReadInputs(args[0], opts.Args(), ctx, io)

		anyPicked := *writeLines || *writeWords || *writeBytes || *writeChars
		nonePicked := !anyPicked

		var cols []func(*wcCount) string

		if *writeLines || nonePicked {
			cols = append(cols, func(w *wcCount) string {
				return fmt.Sprint(w.lines)
			})
		}
		if *writeWords || nonePicked {
			cols = append(cols, func(w *wcCount) string {
				return fmt.Sprint(w.words)
			})
		}
		if *writeBytes || nonePicked {
			cols = append(cols, func(w *wcCount) string {
				return fmt.Sprint(w.bytes)
			})
		}
		if *writeChars {
			cols = append(cols, func(w *wcCount) string {
				return fmt.Sprint(w.chars)
			})
		}

		displayCount := func(count *wcCount) {
			for i, col := range cols {
				if i != 0 {
					fmt.Fprint(io.Stdout, " ")
				}
				fmt.Fprint(io.Stdout, col(count))
			}
			if count.name != "" {
				fmt.Fprint(io.Stdout, " ", count.name)
			}
			fmt.Fprintln(io.Stdout)
		}

		total := &wcCount{name: "total"}
		for _, in := range inputs {
			count, err := NewWcCount(in.Name, strings.NewReader(in.Content))
			if err != nil {
				return shell.Report(io.Stderr, args[0], err)
			}
			total.Increment(count)
			displayCount(count)
		}

		if len(inputs) > 1 {
			displayCount(total)
		}

		return status
	})
}

var _ shell.CommandFunc = Wc

func init() {
	addBinCmd(shell.Definition{
		Name:        "wc",
		Description: "Print newline, word, and byte counts for each file.",
		Usage:       "wc [-c|-m] [-lw] [FILE...]",
		Command:     shell.CommandFunc(Wc),
	})
}
