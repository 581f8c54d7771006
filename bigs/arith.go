package bigs

import (
	"errors"
	"math/big"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrUndefined      = errors.New("undefined result")
	ErrOverflow       = errors.New("result too large")
)

const (
	// MaxResultBits bounds results whose size is known before computing them.
	MaxResultBits = 1 << 26
	maxFactors    = 1 << 20
)

func Add(a, b Value) Value {
	return wrap(new(big.Int).Add(a.ref(), b.ref()))
}

func Sub(a, b Value) Value {
	return wrap(new(big.Int).Sub(a.ref(), b.ref()))
}

// Trn is truncated subtraction, max(a-b, 0).
func Trn(a, b Value) Value {
	d := new(big.Int).Sub(a.ref(), b.ref())
	if d.Sign() < 0 {
		return Zero
	}
	return wrap(d)
}

func Mul(a, b Value) Value {
	return wrap(new(big.Int).Mul(a.ref(), b.ref()))
}

// Div truncates toward zero.
func Div(a, b Value) (Value, error) {
	if b.IsZero() {
		return Zero, ErrDivisionByZero
	}
	return wrap(new(big.Int).Quo(a.ref(), b.ref())), nil
}

// Mod is the remainder of truncated division, it has the sign of a.
func Mod(a, b Value) (Value, error) {
	if b.IsZero() {
		return Zero, ErrDivisionByZero
	}
	return wrap(new(big.Int).Rem(a.ref(), b.ref())), nil
}

// Dif divides a by b if b divides a, otherwise returns a.
func Dif(a, b Value) Value {
	if b.IsZero() {
		return a
	}
	q, r := new(big.Int).QuoRem(a.ref(), b.ref(), new(big.Int))
	if r.Sign() != 0 {
		return a
	}
	return wrap(q)
}

func Pow(a, b Value) (Value, error) {
	base := a.ref()
	exp := b.ref()

	if exp.Sign() < 0 {
		switch {
		case base.Sign() == 0:
			return Zero, ErrDivisionByZero
		case base.Cmp(One.ref()) == 0:
			return One, nil
		case base.Cmp(MinOne.ref()) == 0:
			if exp.Bit(0) == 0 {
				return One, nil
			}
			return MinOne, nil
		}
		return Zero, nil
	}

	switch {
	case exp.Sign() == 0:
		return One, nil
	case base.Sign() == 0:
		return Zero, nil
	case base.Cmp(One.ref()) == 0:
		return One, nil
	case base.Cmp(MinOne.ref()) == 0:
		if exp.Bit(0) == 0 {
			return One, nil
		}
		return MinOne, nil
	}

	if !exp.IsInt64() {
		return Zero, ErrOverflow
	}
	if PowBits(a, b) > MaxResultBits {
		return Zero, ErrOverflow
	}
	return wrap(new(big.Int).Exp(base, exp, nil)), nil
}

// PowBits estimates the bit length of a^b for b >= 0.
func PowBits(a, b Value) int64 {
	exp, ok := b.Int64()
	if !ok {
		return 1<<63 - 1
	}
	bits := int64(a.BitLen())
	if bits <= 1 || exp <= 0 {
		return bits
	}
	if exp > (1<<62)/bits {
		return 1<<63 - 1
	}
	return bits * exp
}

func Gcd(a, b Value) Value {
	x := new(big.Int).Abs(a.ref())
	y := new(big.Int).Abs(b.ref())
	return wrap(new(big.Int).GCD(nil, nil, x, y))
}

// Lex returns the largest k such that b^k divides a.
func Lex(a, b Value) Value {
	x := new(big.Int).Abs(a.ref())
	d := new(big.Int).Abs(b.ref())
	if x.Sign() == 0 || d.Cmp(One.ref()) <= 0 {
		return Zero
	}
	var k int64
	q, r := new(big.Int), new(big.Int)
	for {
		q.QuoRem(x, d, r)
		if r.Sign() != 0 {
			break
		}
		x.Set(q)
		k++
	}
	return FromInt64(k)
}

// Bin is the binomial coefficient, extended to negative arguments.
func Bin(n, k Value) (Value, error) {
	return BinWithin(n, k, MaxResultBits)
}

// BinWithin is Bin failing with ErrOverflow once the result needs more than maxBits bits.
func BinWithin(n, k Value, maxBits int) (Value, error) {
	if n.Sign() >= 0 {
		if k.Sign() < 0 || k.Cmp(n) > 0 {
			return Zero, nil
		}
		return binomial(n, k, maxBits)
	}
	if k.Sign() >= 0 {
		// (-1)^k * C(k-n-1, k)
		m := Sub(Sub(k, n), One)
		r, err := binomial(m, k, maxBits)
		if err != nil {
			return Zero, err
		}
		if k.ref().Bit(0) == 1 {
			r = r.Neg()
		}
		return r, nil
	}
	if k.Cmp(n) <= 0 {
		// (-1)^(n-k) * C(-k-1, n-k)
		m := Sub(k.Neg(), One)
		j := Sub(n, k)
		r, err := binomial(m, j, maxBits)
		if err != nil {
			return Zero, err
		}
		if j.ref().Bit(0) == 1 {
			r = r.Neg()
		}
		return r, nil
	}
	return Zero, nil
}

// binomial requires 0 <= k <= n.
// With k <= n/2 the partial products C(n, i) only grow, so checking them bounds the work.
func binomial(n, k Value, maxBits int) (Value, error) {
	// C(n, k) == C(n, n-k)
	if alt := Sub(n, k); alt.Cmp(k) < 0 {
		k = alt
	}
	kk, ok := k.Int64()
	if !ok || kk > maxFactors {
		return Zero, ErrOverflow
	}
	nn := n.ref()
	ret := big.NewInt(1)
	f := new(big.Int)
	for i := int64(0); i < kk; i++ {
		f.Sub(nn, big.NewInt(i))
		ret.Mul(ret, f)
		ret.Quo(ret, big.NewInt(i+1))
		if ret.BitLen() > maxBits {
			return Zero, ErrOverflow
		}
	}
	return wrap(ret), nil
}

// Log is the floor of the base-b logarithm of a.
func Log(a, b Value) (Value, error) {
	if a.Sign() < 1 || b.Cmp(FromInt64(2)) < 0 {
		return Zero, ErrUndefined
	}
	x := a.Big()
	d := b.ref()
	var k int64
	for x.Cmp(d) >= 0 {
		x.Quo(x, d)
		k++
	}
	return FromInt64(k), nil
}

// Nrt is the floor of the b-th root of a.
func Nrt(a, b Value) (Value, error) {
	if a.Sign() < 0 || b.Sign() < 1 {
		return Zero, ErrUndefined
	}
	if a.IsZero() || b.Equal(One) {
		return a, nil
	}
	n, ok := b.Int64()
	if !ok || n >= int64(a.BitLen()) {
		return One, nil
	}
	if n == 2 {
		return wrap(new(big.Int).Sqrt(a.ref())), nil
	}
	// binary search in [lo, hi)
	lo := big.NewInt(1)
	hi := new(big.Int).Lsh(big.NewInt(1), uint(int64(a.BitLen())/n+1))
	exp := big.NewInt(n)
	mid := new(big.Int)
	p := new(big.Int)
	for new(big.Int).Sub(hi, lo).Cmp(One.ref()) > 0 {
		mid.Add(lo, hi)
		mid.Rsh(mid, 1)
		p.Exp(mid, exp, nil)
		if p.Cmp(a.ref()) <= 0 {
			lo.Set(mid)
		} else {
			hi.Set(mid)
		}
	}
	return wrap(lo), nil
}

// Dgs is the digit sum of a in base b, with the sign of a.
func Dgs(a, b Value) (Value, error) {
	if b.Cmp(FromInt64(2)) < 0 {
		return Zero, ErrUndefined
	}
	x := new(big.Int).Abs(a.ref())
	d := b.ref()
	sum := new(big.Int)
	r := new(big.Int)
	for x.Sign() > 0 {
		x.QuoRem(x, d, r)
		sum.Add(sum, r)
	}
	if a.Sign() < 0 {
		sum.Neg(sum)
	}
	return wrap(sum), nil
}

// Dgr is the digital root of a in base b, with the sign of a.
func Dgr(a, b Value) (Value, error) {
	if b.Cmp(FromInt64(2)) < 0 {
		return Zero, ErrUndefined
	}
	if a.IsZero() {
		return Zero, nil
	}
	x := new(big.Int).Abs(a.ref())
	x.Sub(x, One.ref())
	x.Rem(x, new(big.Int).Sub(b.ref(), One.ref()))
	x.Add(x, One.ref())
	if a.Sign() < 0 {
		x.Neg(x)
	}
	return wrap(x), nil
}

// Fac is the rising factorial a(a+1)...(a+b-1) for b >= 0,
// and the falling factorial a(a-1)...(a+b+1) for b < 0.
func Fac(a, b Value) (Value, error) {
	return FacWithin(a, b, MaxResultBits)
}

// FacWithin is Fac failing with ErrOverflow once the result needs more than maxBits bits.
func FacWithin(a, b Value, maxBits int) (Value, error) {
	n, ok := b.Abs().Int64()
	if !ok || n > maxFactors {
		return Zero, ErrOverflow
	}
	if n == 0 {
		return One, nil
	}

	// the last factor
	last := Add(a, FromInt64(n-1))
	if b.Sign() < 0 {
		last = Sub(a, FromInt64(n-1))
	}
	if a.Sign()*last.Sign() <= 0 {
		// a zero factor is in range
		return Zero, nil
	}

	step := big.NewInt(1)
	if b.Sign() < 0 {
		step.Neg(step)
	}
	ret := big.NewInt(1)
	f := a.Big()
	for i := int64(0); i < n; i++ {
		ret.Mul(ret, f)
		if ret.BitLen() > maxBits {
			return Zero, ErrOverflow
		}
		f.Add(f, step)
	}
	return wrap(ret), nil
}

func Min(a, b Value) Value {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func Max(a, b Value) Value {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func Equ(a, b Value) Value {
	return bool2Value(a.Cmp(b) == 0)
}

func Neq(a, b Value) Value {
	return bool2Value(a.Cmp(b) != 0)
}

func Leq(a, b Value) Value {
	return bool2Value(a.Cmp(b) <= 0)
}

func Geq(a, b Value) Value {
	return bool2Value(a.Cmp(b) >= 0)
}

func Ban(a, b Value) Value {
	return wrap(new(big.Int).And(a.ref(), b.ref()))
}

func Bor(a, b Value) Value {
	return wrap(new(big.Int).Or(a.ref(), b.ref()))
}

func Bxo(a, b Value) Value {
	return wrap(new(big.Int).Xor(a.ref(), b.ref()))
}
