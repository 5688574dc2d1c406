package slots

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrIndentation = errors.New("inconsistent indentation")
	ErrOrphanJoint = errors.New("joint frame without a matching frame")
)

// programLine is one non-empty source line after scanning.
type programLine struct {
	text    string // content after the indentation, right-trimmed
	indent  int    // number of leading spaces
	lineNum int    // one-based
}

func scanProgram(src string) ([]programLine, error) {
	var lines []programLine
	for i, raw := range strings.Split(src, "\n") {
		raw = strings.TrimRightFunc(raw, unicode.IsSpace)
		indent := countIndent(raw)
		if indent < len(raw) && raw[indent] == '\t' {
			return nil, fmt.Errorf("line %d: %w: tab in indentation", i+1, ErrIndentation)
		}
		lines = append(lines, programLine{text: raw[indent:], indent: indent, lineNum: i + 1})
	}
	// A trailing newline does not make a blank frame.
	if n := len(lines); n > 0 && lines[n-1].text == "" {
		lines = lines[:n-1]
	}
	return lines, nil
}

func countIndent(line string) int {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	return indent
}

// sourceStatement is a source line classified as a frame.
type sourceStatement struct {
	typ    FrameType
	labels []string
	opens  bool // ends with ':' and takes an indented body
}

// LoadProgram reads Python source, one statement per line with indented
// blocks, into a frame tree. Every label slot is parsed with its frame's
// type. Blank lines become blank frames, except before a joint frame.
func LoadProgram(src string) (*Tree, error) {
	lines, err := scanProgram(src)
	if err != nil {
		return nil, err
	}
	type block struct {
		frame  *Frame
		indent int
	}
	tree := NewTree()
	stack := []block{{frame: tree.frames[RootID]}}
	var opened *Frame
	blanks := 0
	for _, line := range lines {
		if line.text == "" {
			blanks++
			continue
		}
		top := stack[len(stack)-1]
		switch {
		case opened != nil && line.indent > top.indent:
			stack = append(stack, block{frame: opened, indent: line.indent})
		case line.indent > top.indent:
			return nil, fmt.Errorf("line %d: %w: unexpected indent", line.lineNum, ErrIndentation)
		default:
			for line.indent < stack[len(stack)-1].indent {
				stack = stack[:len(stack)-1]
			}
			if line.indent != stack[len(stack)-1].indent {
				return nil, fmt.Errorf("line %d: %w: unindent does not match any outer level", line.lineNum, ErrIndentation)
			}
		}
		opened = nil
		container := stack[len(stack)-1].frame

		st := classify(line.text)
		var f *Frame
		if rank, _ := jointRank(st.typ); rank > 0 {
			blanks = 0
			if len(container.Children) == 0 {
				return nil, fmt.Errorf("line %d: %w: %s", line.lineNum, ErrOrphanJoint, st.typ)
			}
			owner := container.Children[len(container.Children)-1]
			if f, err = tree.AddJoint(owner, st.typ); err != nil {
				return nil, fmt.Errorf("line %d: %w: %w", line.lineNum, ErrOrphanJoint, err)
			}
		} else {
			for ; blanks > 0; blanks-- {
				if _, err := tree.AddChild(container.ID, FrameBlank); err != nil {
					return nil, fmt.Errorf("line %d: %w", line.lineNum, err)
				}
			}
			if f, err = tree.AddChild(container.ID, st.typ); err != nil {
				return nil, fmt.Errorf("line %d: %w", line.lineNum, err)
			}
		}
		for i := range f.Labels {
			if i < len(st.labels) {
				f.Labels[i] = parseLabel(st.typ, st.labels[i])
			}
		}
		if st.opens {
			opened = f
		}
	}
	return tree, nil
}

// parseLabel parses the text of a label slot. Comments are kept as typed.
func parseLabel(typ FrameType, text string) SlotsStructure {
	if typ == FrameComment {
		return SlotsStructure{Fields: []Field{&BaseSlot{Code: text}}}
	}
	return Parse(text, ParseOptions{FrameType: typ}).Slots
}

func classify(text string) sourceStatement {
	if strings.HasPrefix(text, "#") {
		return sourceStatement{typ: FrameComment, labels: []string{strings.TrimSpace(text[1:])}}
	}
	word := leadingWord(text)
	rest := strings.TrimSpace(text[len(word):])
	body, opens := strings.CutSuffix(rest, ":")
	body = strings.TrimSpace(body)
	switch word {
	case "if", "elif", "while":
		return sourceStatement{typ: FrameType(word), labels: []string{body}, opens: opens}
	case "else", "try", "finally":
		if body == "" {
			return sourceStatement{typ: FrameType(word), opens: opens}
		}
	case "except":
		return sourceStatement{typ: FrameExcept, labels: []string{body}, opens: opens}
	case "for":
		target, iter, _ := splitAtOperator(body, FrameFor, "in")
		return sourceStatement{typ: FrameFor, labels: []string{target, iter}, opens: opens}
	case "def":
		name, params, _ := strings.Cut(body, "(")
		params = strings.TrimSuffix(strings.TrimSpace(params), ")")
		return sourceStatement{typ: FrameFuncDef, labels: []string{strings.TrimSpace(name), params}, opens: opens}
	case "with":
		expr, name, _ := splitAtOperator(body, FrameImport, "as")
		return sourceStatement{typ: FrameWith, labels: []string{expr, name}, opens: opens}
	case "return":
		return sourceStatement{typ: FrameReturn, labels: []string{rest}}
	case "import":
		return sourceStatement{typ: FrameImport, labels: []string{rest}}
	case "from":
		module, names, _ := strings.Cut(rest, " import ")
		return sourceStatement{typ: FrameFromImport, labels: []string{strings.TrimSpace(module), strings.TrimSpace(names)}}
	}
	if lhs, rhs, ok := splitAtOperator(text, "", "="); ok {
		return sourceStatement{typ: FrameVarAssign, labels: []string{lhs, rhs}}
	}
	return sourceStatement{typ: FrameFuncCall, labels: []string{text}}
}

func leadingWord(text string) string {
	for i, r := range text {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return text[:i]
		}
	}
	return text
}

// splitAtOperator splits text at its first top-level operator op. Strings
// and brackets are never split, and neither is an operator glued to the
// previous one ("+=").
func splitAtOperator(text string, frameType FrameType, op string) (lhs, rhs string, ok bool) {
	s := Parse(text, ParseOptions{FrameType: frameType}).Slots
	for i, o := range s.Operators {
		if o.Code != op {
			continue
		}
		if prev, isBase := s.Fields[i].(*BaseSlot); i > 0 && isBase && prev.Code == "" && s.Operators[i-1].Code != "" {
			return text, "", false
		}
		left := SlotsStructure{Fields: s.Fields[:i+1], Operators: s.Operators[:i]}
		right := SlotsStructure{Fields: s.Fields[i+1:], Operators: s.Operators[i+1:]}
		return Code(left), Code(right), true
	}
	return text, "", false
}

// Program renders a frame tree as Python source, four spaces per level.
func Program(tree *Tree) string {
	var sb strings.Builder
	// The callback never fails, so neither does the walk.
	_ = tree.Walk(func(f *Frame, depth int) error {
		line := frameLine(f)
		if line != "" {
			sb.WriteString(strings.Repeat("    ", depth))
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
		return nil
	})
	return sb.String()
}

func frameLine(f *Frame) string {
	label := func(i int) string {
		return Code(f.Labels[i])
	}
	withLabel := func(kw string, i int) string {
		if c := label(i); c != "" {
			return kw + " " + c
		}
		return kw
	}
	switch f.Type {
	case FrameIf, FrameElif, FrameWhile:
		return string(f.Type) + " " + label(0) + ":"
	case FrameElse, FrameTry, FrameFinally:
		return string(f.Type) + ":"
	case FrameExcept:
		return withLabel("except", 0) + ":"
	case FrameFor:
		return "for " + label(0) + " in " + label(1) + ":"
	case FrameFuncDef:
		return "def " + label(0) + "(" + label(1) + "):"
	case FrameWith:
		return "with " + label(0) + " as " + label(1) + ":"
	case FrameReturn:
		return withLabel("return", 0)
	case FrameVarAssign:
		return label(0) + " = " + label(1)
	case FrameImport:
		return "import " + label(0)
	case FrameFromImport:
		return "from " + label(0) + " import " + label(1)
	case FrameComment:
		return withLabel("#", 0)
	case FrameFuncCall:
		return label(0)
	case FrameBlank:
		return ""
	}
	panic(fmt.Sprintf("slots: cannot render frame type %q", f.Type))
}
