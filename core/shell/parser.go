package shell

import (
	"sort"

	"mvdan.cc/sh/v3/syntax"
)

// Loosely follows
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
//
// Lines are parsed by mvdan.cc/sh. A pipeline is flattened into stages, leading
// assignments are pulled off, and redirections are taken off the final stage.
// Expansion happens later, once the command is about to run, so earlier
// stages can affect it.

// redirect is a redirection target pulled from a stage.
type redirect struct {
	target Word
	set    bool
}

// assignment is a NAME=value prefix.
type assignment struct {
	name   string
	value  Word
	append bool
}

// stage is a single parsed pipeline stage.
type stage struct {
	assignments []assignment
	words       []Word

	// stdin is set by a here-string, input by < FILE.
	stdin    *Word
	input    redirect
	stdout   redirect
	append   bool
	toStderr bool
	stderr   redirect
	mergeErr bool
}

func literalWord(text string) Word {
	return Word{Parts: []Part{{Text: text, Quoting: Literal}}, Raw: text}
}

// pipelineStages flattens a pipeline statement into its stages, first to last.
func pipelineStages(stmt *syntax.Stmt, text string) ([]*stage, error) {
	var leaves []*syntax.Stmt
	var walk func(s *syntax.Stmt) error
	walk = func(s *syntax.Stmt) error {
		bin, ok := s.Cmd.(*syntax.BinaryCmd)
		if !ok {
			leaves = append(leaves, s)
			return nil
		}
		if bin.Op != syntax.Pipe {
			return &unsupportedError{node: bin}
		}
		if err := walk(bin.X); err != nil {
			return err
		}
		return walk(bin.Y)
	}
	if err := walk(stmt); err != nil {
		return nil, err
	}

	stages := make([]*stage, 0, len(leaves))
	for i, leaf := range leaves {
		st, err := parseStage(leaf, text, i == len(leaves)-1)
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	return stages, nil
}

// positioned is a run of words and where it started in the source, used to
// put operators of non-final stages back between the arguments.
type positioned struct {
	offset uint
	words  []Word
}

// parseStage converts a simple command. Only the final stage of a pipeline
// honors output redirection, operators in other stages are passed as
// arguments. Input redirection works in every stage.
func parseStage(leaf *syntax.Stmt, text string, final bool) (*stage, error) {
	if leaf.Negated || leaf.Background || leaf.Coprocess {
		return nil, &unsupportedError{node: leaf}
	}

	st := &stage{}
	var items []positioned

	switch cmd := leaf.Cmd.(type) {
	case nil:
		// Only redirections, e.g. `> file`.
	case *syntax.CallExpr:
		for _, as := range cmd.Assigns {
			if as.Naked || as.Index != nil || as.Array != nil {
				return nil, &unsupportedError{node: as}
			}
			value := Word{Parts: []Part{{Quoting: Literal}}}
			if as.Value != nil {
				var err error
				if value, err = convertWord(as.Value, text); err != nil {
					return nil, err
				}
			}
			st.assignments = append(st.assignments, assignment{name: as.Name.Value, value: value, append: as.Append})
		}
		for _, arg := range cmd.Args {
			word, err := convertWord(arg, text)
			if err != nil {
				return nil, err
			}
			items = append(items, positioned{offset: arg.Pos().Offset(), words: []Word{word}})
		}
	case *syntax.DeclClause:
		// export, readonly, declare and local run as ordinary commands.
		items = append(items, positioned{
			offset: cmd.Variant.Pos().Offset(),
			words:  []Word{{Parts: []Part{{Text: cmd.Variant.Value, Quoting: Bare}}, Raw: cmd.Variant.Value}},
		})
		for _, as := range cmd.Args {
			word, err := assignWord(as, text)
			if err != nil {
				return nil, err
			}
			items = append(items, positioned{offset: as.Pos().Offset(), words: []Word{word}})
		}
	default:
		return nil, &unsupportedError{node: leaf}
	}

	for _, rdr := range leaf.Redirs {
		if rdr.Word == nil {
			return nil, &unsupportedError{node: rdr}
		}
		target, err := convertWord(rdr.Word, text)
		if err != nil {
			return nil, err
		}
		fd := ""
		if rdr.N != nil {
			fd = rdr.N.Value
		}

		switch {
		case rdr.Op == syntax.WordHdoc:
			st.stdin = &target
			continue
		case rdr.Op == syntax.RdrIn && fd == "":
			st.input = redirect{target: target, set: true}
			continue
		case !final:
			items = append(items, positioned{offset: rdr.Pos().Offset(), words: operatorWords(rdr, fd, target)})
			continue
		}

		toStdout := fd == "" || fd == "1"
		switch {
		case rdr.Op == syntax.DplOut && fd == "2" && target.Raw == "1":
			st.mergeErr = true
		case rdr.Op == syntax.DplOut && toStdout && target.Raw == "2":
			st.toStderr = true
		case (rdr.Op == syntax.RdrOut || rdr.Op == syntax.AppOut) && fd == "2":
			// Stderr targets are always truncated.
			st.stderr = redirect{target: target, set: true}
		case rdr.Op == syntax.AppOut && toStdout:
			// Appends win over truncating writes.
			st.stdout = redirect{target: target, set: true}
			st.append = true
		case rdr.Op == syntax.RdrOut && toStdout:
			if !st.append {
				st.stdout = redirect{target: target, set: true}
			}
		default:
			return nil, &unsupportedError{node: rdr}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].offset < items[j].offset
	})
	for _, item := range items {
		st.words = append(st.words, item.words...)
	}
	return st, nil
}

// assignWord spells out an argument of a declaration, e.g. the A='x y' of
// `export A='x y'`, as a single word.
func assignWord(as *syntax.Assign, text string) (Word, error) {
	switch {
	case as.Index != nil || as.Array != nil:
		return Word{}, &unsupportedError{node: as}
	case as.Naked && as.Value != nil:
		return convertWord(as.Value, text)
	case as.Naked:
		return Word{Parts: []Part{{Text: as.Name.Value, Quoting: Bare}}, Raw: as.Name.Value}, nil
	}

	op := "="
	if as.Append {
		op = "+="
	}
	word := Word{
		Parts: []Part{{Text: as.Name.Value + op, Quoting: Literal}},
		Raw:   text[as.Pos().Offset():as.End().Offset()],
	}
	if as.Value != nil {
		value, err := convertWord(as.Value, text)
		if err != nil {
			return Word{}, err
		}
		word.Parts = appendParts(word.Parts, value.Parts...)
	}
	return word, nil
}

// operatorWords spells out a redirection as plain arguments.
func operatorWords(rdr *syntax.Redirect, fd string, target Word) []Word {
	op := fd + rdr.Op.String()
	if rdr.Op == syntax.DplOut || rdr.Op == syntax.DplIn {
		return []Word{literalWord(op + target.Raw)}
	}
	return []Word{literalWord(op), target}
}
