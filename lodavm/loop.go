package lodavm

import (
	"errors"
	"fmt"

	"github.com/reusee/loda/bigs"
	"github.com/reusee/loda/lodalang"
)

var errNoProgress = errors.New("loop counter did not decrease")

func (m *machine) fragment(loop *lodalang.Loop) ([]bigs.Value, error) {
	start, err := m.address(loop.Counter, loop.Line, loop)
	if err != nil {
		return nil, err
	}
	n, err := m.read(loop.Length, loop.Line, loop)
	if err != nil {
		return nil, err
	}
	length, ok := n.Int64()
	if !ok || length < 0 || length > m.config.MaxRegister-start+1 {
		return nil, m.fail(RegisterOutOfRange, loop.Line, loop, fmt.Errorf("invalid loop length %s", n))
	}
	return m.regs.Fragment(start, length), nil
}

func (m *machine) loopStrict(loop *lodalang.Loop) error {
	var prev []bigs.Value
	for {
		if err := m.tick(loop.Line, mnemonic("lpb")); err != nil {
			return err
		}
		frag, err := m.fragment(loop)
		if err != nil {
			return err
		}
		if !positive(frag) {
			return nil
		}
		if prev != nil && !less(frag, prev, false) {
			return m.fail(NonTerminating, loop.Line, loop, errNoProgress)
		}
		prev = frag

		if err := m.run(loop.Body); err != nil {
			return err
		}
		if err := m.tick(loop.EndLine, mnemonic("lpe")); err != nil {
			return err
		}
	}
}

func (m *machine) loopRollback(loop *lodalang.Loop) error {
	for {
		if err := m.tick(loop.Line, mnemonic("lpb")); err != nil {
			return err
		}
		frag, err := m.fragment(loop)
		if err != nil {
			return err
		}
		snapshot := m.regs.Snapshot()

		if err := m.run(loop.Body); err != nil {
			return err
		}
		if err := m.tick(loop.EndLine, mnemonic("lpe")); err != nil {
			return err
		}

		next, err := m.fragment(loop)
		if err != nil {
			return err
		}
		if !less(next, frag, true) {
			m.regs.Restore(snapshot)
			return nil
		}
	}
}

// positive reports whether no cell is negative and some cell is above zero.
func positive(frag []bigs.Value) bool {
	ret := false
	for _, v := range frag {
		switch v.Sign() {
		case -1:
			return false
		case 1:
			ret = true
		}
	}
	return ret
}

// less compares lexicographically. With checkNonNegative, a negative cell
// before the first difference makes the result false.
func less(a, b []bigs.Value, checkNonNegative bool) bool {
	for i := range min(len(a), len(b)) {
		if checkNonNegative && a[i].Sign() < 0 {
			return false
		}
		switch a[i].Cmp(b[i]) {
		case -1:
			return true
		case 1:
			return false
		}
	}
	return false
}
