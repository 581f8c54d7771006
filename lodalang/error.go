package lodalang

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownMnemonic    = errors.New("unknown mnemonic")
	ErrOperandCount       = errors.New("wrong operand count")
	ErrMalformedOperand   = errors.New("malformed operand")
	ErrConstantTarget     = errors.New("target must be a register")
	ErrCallTarget         = errors.New("call target must be a non-negative program id")
	ErrUnmatchedLoopBegin = errors.New("unmatched lpb")
	ErrUnmatchedLoopEnd   = errors.New("unmatched lpe")
	ErrDirective          = errors.New("invalid directive")
)

type Source struct {
	Name  string
	Lines []string
}

func NewSource(name string, content string) *Source {
	return &Source{
		Name:  name,
		Lines: strings.Split(content, "\n"),
	}
}

// ParseError names the offending line and column. Reason wraps one of the Err* sentinels.
type ParseError struct {
	Source *Source
	Line   int
	Column int
	Reason error
}

func (p *ParseError) Error() string {
	if p.Source == nil {
		return fmt.Sprintf("%s at line %d", p.Reason.Error(), p.Line)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s at %s:%d:%d\n", p.Reason.Error(), p.Source.Name, p.Line, p.Column))

	idx := p.Line - 1
	if idx >= 0 && idx < len(p.Source.Lines) {
		line := p.Source.Lines[idx]
		sb.WriteString(line)
		sb.WriteString("\n")

		// caret
		col := p.Column - 1
		for i, r := range []rune(line) {
			if i >= col {
				break
			}
			if r == '\t' {
				sb.WriteString("\t")
			} else {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("^\n")
	}

	return sb.String()
}

func (p *ParseError) Unwrap() error {
	return p.Reason
}
