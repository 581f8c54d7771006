package bigs

import (
	"fmt"
	"math/big"
)

// Value is an immutable arbitrary-precision signed integer.
// The zero Value is 0.
type Value struct {
	n *big.Int
}

var (
	Zero   = Value{}
	One    = FromInt64(1)
	MinOne = FromInt64(-1)
)

var zeroBig = new(big.Int)

func FromInt64(i int64) Value {
	if i == 0 {
		return Value{}
	}
	return Value{n: big.NewInt(i)}
}

func FromBig(b *big.Int) Value {
	if b == nil || b.Sign() == 0 {
		return Value{}
	}
	return Value{n: new(big.Int).Set(b)}
}

// wrap takes ownership of b
func wrap(b *big.Int) Value {
	if b.Sign() == 0 {
		return Value{}
	}
	return Value{n: b}
}

func Parse(s string) (Value, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Value{}, fmt.Errorf("invalid integer: %q", s)
	}
	return wrap(b), nil
}

func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) ref() *big.Int {
	if v.n == nil {
		return zeroBig
	}
	return v.n
}

// Big returns a copy
func (v Value) Big() *big.Int {
	return new(big.Int).Set(v.ref())
}

func (v Value) Sign() int {
	return v.ref().Sign()
}

func (v Value) IsZero() bool {
	return v.ref().Sign() == 0
}

func (v Value) Cmp(w Value) int {
	return v.ref().Cmp(w.ref())
}

func (v Value) Equal(w Value) bool {
	return v.Cmp(w) == 0
}

func (v Value) Int64() (int64, bool) {
	b := v.ref()
	if !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

func (v Value) String() string {
	return v.ref().String()
}

// ByteSize is the number of bytes of the magnitude.
func (v Value) ByteSize() int {
	return (v.ref().BitLen() + 7) / 8
}

func (v Value) BitLen() int {
	return v.ref().BitLen()
}

func (v Value) Abs() Value {
	if v.Sign() >= 0 {
		return v
	}
	return wrap(new(big.Int).Neg(v.ref()))
}

func (v Value) Neg() Value {
	return wrap(new(big.Int).Neg(v.ref()))
}

func bool2Value(b bool) Value {
	if b {
		return One
	}
	return Zero
}
