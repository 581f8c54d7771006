package lodavm

import (
	"github.com/reusee/loda/bigs"
)

// Registers is a sparse register file with zero default.
// It grows to the highest index written and never shrinks during a run.
type Registers struct {
	cells []bigs.Value
}

func NewRegisters(input bigs.Value) *Registers {
	return &Registers{
		cells: []bigs.Value{input},
	}
}

func (r *Registers) Get(index int64) bigs.Value {
	if index < 0 || index >= int64(len(r.cells)) {
		return bigs.Zero
	}
	return r.cells[index]
}

func (r *Registers) Set(index int64, value bigs.Value) {
	if index >= int64(len(r.cells)) {
		if value.IsZero() {
			return
		}
		r.grow(index + 1)
	}
	r.cells[index] = value
}

func (r *Registers) grow(n int64) {
	if n <= int64(cap(r.cells)) {
		r.cells = r.cells[:n]
		return
	}
	newCap := int64(cap(r.cells)) * 2
	if newCap < n {
		newCap = n
	}
	cells := make([]bigs.Value, n, newCap)
	copy(cells, r.cells)
	r.cells = cells
}

// Clear zeroes count registers from start, downward if count is negative.
// start must not be negative.
func (r *Registers) Clear(start int64, count int64) {
	n := int64(len(r.cells))
	var from, to int64
	if count >= 0 {
		from, to = start, n
		// start+count may overflow
		if count < n-start {
			to = start + count
		}
	} else {
		from, to = 0, start+1
		if count >= -start {
			from = start + count + 1
		}
	}
	to = min(to, n)
	for i := from; i < to; i++ {
		r.cells[i] = bigs.Zero
	}
}

// Fragment copies length registers from start.
func (r *Registers) Fragment(start int64, length int64) []bigs.Value {
	ret := make([]bigs.Value, length)
	for i := range ret {
		ret[i] = r.Get(start + int64(i))
	}
	return ret
}

// Len is one past the highest index touched.
func (r *Registers) Len() int {
	return len(r.cells)
}

// Snapshot shares values, they are immutable
func (r *Registers) Snapshot() []bigs.Value {
	ret := make([]bigs.Value, len(r.cells))
	copy(ret, r.cells)
	return ret
}

// Restore keeps the grown size so the buffer never shrinks.
func (r *Registers) Restore(snapshot []bigs.Value) {
	n := copy(r.cells, snapshot)
	for i := n; i < len(r.cells); i++ {
		r.cells[i] = bigs.Zero
	}
}
