package lodalang

import (
	"strconv"

	"github.com/reusee/loda/bigs"
)

type OperandKind uint8

const (
	NoOperand OperandKind = iota
	Constant
	Direct
	Indirect
)

func (k OperandKind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Direct:
		return "direct"
	case Indirect:
		return "indirect"
	}
	return "none"
}

// Operand is a constant, a direct register reference $N, or an indirect
// register reference $$N.
type Operand struct {
	Kind OperandKind
	// Value of a constant
	Value bigs.Value
	// Index of a direct or indirect register reference
	Index int64
}

func Const(v int64) Operand {
	return Operand{
		Kind:  Constant,
		Value: bigs.FromInt64(v),
	}
}

func Dir(index int64) Operand {
	return Operand{
		Kind:  Direct,
		Index: index,
	}
}

func Ind(index int64) Operand {
	return Operand{
		Kind:  Indirect,
		Index: index,
	}
}

func (o Operand) IsRegister() bool {
	return o.Kind == Direct || o.Kind == Indirect
}

func (o Operand) Equal(p Operand) bool {
	if o.Kind != p.Kind {
		return false
	}
	switch o.Kind {
	case Constant:
		return o.Value.Equal(p.Value)
	case Direct, Indirect:
		return o.Index == p.Index
	}
	return true
}

func (o Operand) String() string {
	switch o.Kind {
	case Constant:
		return o.Value.String()
	case Direct:
		return "$" + strconv.FormatInt(o.Index, 10)
	case Indirect:
		return "$$" + strconv.FormatInt(o.Index, 10)
	}
	return ""
}
