package lodalang

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/reusee/loda/bigs"
)

func ParseReader(name string, r io.Reader) (*Program, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(name, string(content))
}

// Parse parses assembly text. The program is either fully built or an error is returned.
func Parse(name string, text string) (*Program, error) {
	p := &parser{
		source:  NewSource(name, text),
		program: new(Program),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.program, nil
}

type parser struct {
	source  *Source
	program *Program
	current []Node
	stack   []openLoop
	seenOps bool
}

type openLoop struct {
	loop   *Loop
	parent []Node
}

func (p *parser) errorf(line int, col int, reason error, format string, args ...any) error {
	if format != "" {
		reason = fmt.Errorf("%w: %s", reason, fmt.Sprintf(format, args...))
	}
	return &ParseError{
		Source: p.source,
		Line:   line,
		Column: col,
		Reason: reason,
	}
}

func (p *parser) parse() error {
	for i, raw := range p.source.Lines {
		lineNum := i + 1

		code := raw
		if idx := strings.IndexByte(raw, ';'); idx >= 0 {
			code = raw[:idx]
			if !p.seenOps && strings.TrimSpace(code) == "" {
				p.parseHeader(raw[idx+1:])
			}
		}

		// column of the first non-space rune, 1-based
		start := strings.IndexFunc(code, func(r rune) bool {
			return !unicode.IsSpace(r)
		})
		if start < 0 {
			continue
		}
		code = strings.TrimRightFunc(code, unicode.IsSpace)

		if code[start] == '#' {
			if err := p.parseDirective(raw, lineNum, start, code[start:]); err != nil {
				return err
			}
			continue
		}

		p.seenOps = true
		if err := p.parseInstruction(raw, lineNum, start, code[start:]); err != nil {
			return err
		}
	}

	if len(p.stack) > 0 {
		open := p.stack[len(p.stack)-1]
		return p.errorf(open.loop.Line, 1, ErrUnmatchedLoopBegin, "")
	}

	p.program.Body = p.current
	return nil
}

// parseHeader reads "A000045: Fibonacci numbers" style names
func (p *parser) parseHeader(comment string) {
	if p.program.ID != 0 || p.program.Name != "" {
		return
	}
	comment = strings.TrimSpace(comment)
	if len(comment) < 2 || comment[0] != 'A' {
		return
	}
	idStr, name, ok := strings.Cut(comment[1:], ":")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return
	}
	p.program.ID = id
	p.program.Name = strings.TrimSpace(name)
}

func column(raw string, byteOffset int) int {
	if byteOffset > len(raw) {
		byteOffset = len(raw)
	}
	return utf8.RuneCountInString(raw[:byteOffset]) + 1
}

func (p *parser) parseDirective(raw string, line int, start int, text string) error {
	name, arg, _ := strings.Cut(text[1:], " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "offset":
		offset, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return p.errorf(line, column(raw, start), ErrDirective, "bad offset %q", arg)
		}
		p.program.Offset = offset
		return nil
	}
	return p.errorf(line, column(raw, start), ErrDirective, "#%s", name)
}

func (p *parser) parseInstruction(raw string, line int, start int, text string) error {
	mnemonic, rest := text, ""
	restStart := start + len(text)
	if idx := strings.IndexFunc(text, unicode.IsSpace); idx >= 0 {
		mnemonic, rest = text[:idx], text[idx:]
		restStart = start + idx
	}

	op, ok := LookupOpcode(mnemonic)
	if !ok {
		return p.errorf(line, column(raw, start), ErrUnknownMnemonic, "%q", mnemonic)
	}

	// operands
	var operands []Operand
	if strings.TrimSpace(rest) != "" {
		offset := restStart
		for _, part := range strings.Split(rest, ",") {
			lead := len(part) - len(strings.TrimLeftFunc(part, unicode.IsSpace))
			col := column(raw, offset+lead)
			operand, err := parseOperand(strings.TrimSpace(part))
			if err != nil {
				return p.errorf(line, col, ErrMalformedOperand, "%q", strings.TrimSpace(part))
			}
			operands = append(operands, operand)
			offset += len(part) + 1
		}
	}

	minArgs, maxArgs := op.Arity()
	if len(operands) < minArgs || len(operands) > maxArgs {
		return p.errorf(line, column(raw, start), ErrOperandCount,
			"%s takes %d, got %d", mnemonic, maxArgs, len(operands))
	}
	if len(operands) > 0 && !operands[0].IsRegister() {
		return p.errorf(line, column(raw, restStart), ErrConstantTarget, "%s", operands[0])
	}

	switch op {

	case OpLpb:
		loop := &Loop{
			Counter: operands[0],
			Length:  Const(1),
			Line:    line,
		}
		if len(operands) > 1 {
			loop.Length = operands[1]
		}
		p.stack = append(p.stack, openLoop{
			loop:   loop,
			parent: p.current,
		})
		p.current = nil
		return nil

	case OpLpe:
		if len(p.stack) == 0 {
			return p.errorf(line, column(raw, start), ErrUnmatchedLoopEnd, "")
		}
		open := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		open.loop.Body = p.current
		open.loop.EndLine = line
		p.current = append(open.parent, open.loop)
		return nil

	case OpSeq, OpCal:
		src := operands[1]
		if src.Kind != Constant || src.Value.Sign() < 0 {
			return p.errorf(line, column(raw, restStart), ErrCallTarget, "%s", src)
		}
		if _, ok := src.Value.Int64(); !ok {
			return p.errorf(line, column(raw, restStart), ErrCallTarget, "%s", src)
		}
	}

	inst := &Instruction{
		Op:   op,
		Line: line,
	}
	if len(operands) > 0 {
		inst.Target = operands[0]
	}
	if len(operands) > 1 {
		inst.Source = operands[1]
	}
	p.current = append(p.current, inst)
	return nil
}

func parseOperand(s string) (Operand, error) {
	switch {
	case strings.HasPrefix(s, "$$"):
		index, err := parseIndex(s[2:])
		if err != nil {
			return Operand{}, err
		}
		return Ind(index), nil
	case strings.HasPrefix(s, "$"):
		index, err := parseIndex(s[1:])
		if err != nil {
			return Operand{}, err
		}
		return Dir(index), nil
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if !isDigits(digits) {
		return Operand{}, fmt.Errorf("bad constant %q", s)
	}
	value, err := bigs.Parse(s)
	if err != nil {
		return Operand{}, err
	}
	return Operand{
		Kind:  Constant,
		Value: value,
	}, nil
}

func parseIndex(s string) (int64, error) {
	if !isDigits(s) {
		return 0, fmt.Errorf("bad register %q", s)
	}
	return strconv.ParseInt(s, 10, 64)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
