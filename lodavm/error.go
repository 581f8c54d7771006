package lodavm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reusee/loda/bigs"
)

type ErrorKind uint8

const (
	ParseFailure ErrorKind = iota + 1
	DivisionByZero
	NonTerminating
	UnresolvedDependency
	CyclicDependency
	MagnitudeLimitExceeded
	RegisterOutOfRange
	Undefined
)

var kindNames = map[ErrorKind]string{
	ParseFailure:           "parse failure",
	DivisionByZero:         "division by zero",
	NonTerminating:         "non-terminating",
	UnresolvedDependency:   "unresolved dependency",
	CyclicDependency:       "cyclic dependency",
	MagnitudeLimitExceeded: "magnitude limit exceeded",
	RegisterOutOfRange:     "register out of range",
	Undefined:              "undefined result",
}

// ErrorKind is an error so that errors.Is(err, DivisionByZero) works on any *EvalError.
func (k ErrorKind) Error() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error kind %d", uint8(k))
}

// Permanent reports whether the kind disqualifies a program for every input.
func (k ErrorKind) Permanent() bool {
	switch k {
	case ParseFailure, UnresolvedDependency, CyclicDependency:
		return true
	}
	return false
}

type EvalError struct {
	Kind        ErrorKind
	ProgramID   int64
	Line        int
	Instruction string
	Input       bigs.Value
	Cycle       []int64
	Err         error
}

func (e *EvalError) Error() string {
	var sb strings.Builder
	if e.ProgramID != 0 {
		fmt.Fprintf(&sb, "A%06d", e.ProgramID)
	} else {
		sb.WriteString("program")
	}
	fmt.Fprintf(&sb, "(%s)", e.Input)
	if e.Line > 0 {
		fmt.Fprintf(&sb, " line %d", e.Line)
	}
	if e.Instruction != "" {
		fmt.Fprintf(&sb, " [%s]", e.Instruction)
	}
	sb.WriteString(": ")
	if e.Err != nil {
		sb.WriteString(e.Err.Error())
	} else {
		sb.WriteString(e.Kind.Error())
	}
	return sb.String()
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

func (e *EvalError) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

// KindOf returns the kind of the outermost *EvalError, 0 if none.
func KindOf(err error) ErrorKind {
	var e *EvalError
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
