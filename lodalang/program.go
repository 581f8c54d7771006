package lodalang

import (
	"iter"
	"slices"
)

type Node interface {
	SourceLine() int
	node()
}

// Instruction is any operation except loop markers.
// Absent operands have Kind NoOperand.
type Instruction struct {
	Op     Opcode
	Target Operand
	Source Operand
	Line   int
}

// Loop is a matched lpb/lpe region.
type Loop struct {
	Counter Operand
	Length  Operand
	Body    []Node
	Line    int
	EndLine int
}

var (
	_ Node = new(Instruction)
	_ Node = new(Loop)
)

func (*Instruction) node() {}

func (*Loop) node() {}

func (i *Instruction) SourceLine() int {
	return i.Line
}

func (l *Loop) SourceLine() int {
	return l.Line
}

func (i *Instruction) Equal(j *Instruction) bool {
	return i.Op == j.Op &&
		i.Target.Equal(j.Target) &&
		i.Source.Equal(j.Source)
}

func (l *Loop) Equal(m *Loop) bool {
	return l.Counter.Equal(m.Counter) &&
		l.Length.Equal(m.Length) &&
		nodesEqual(l.Body, m.Body)
}

// Program is an immutable parsed program.
type Program struct {
	// ID is the declared or assigned program id, 0 if unknown
	ID     int64
	Name   string
	Offset int64
	Body   []Node
}

// WithID returns a shallow copy with the id replaced.
func (p *Program) WithID(id int64) *Program {
	ret := *p
	ret.ID = id
	return &ret
}

// Equal compares programs instruction by instruction, ignoring source lines.
func (p *Program) Equal(q *Program) bool {
	return p.ID == q.ID &&
		p.Name == q.Name &&
		p.Offset == q.Offset &&
		nodesEqual(p.Body, q.Body)
}

func nodesEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		switch x := a[i].(type) {
		case *Instruction:
			y, ok := b[i].(*Instruction)
			if !ok || !x.Equal(y) {
				return false
			}
		case *Loop:
			y, ok := b[i].(*Loop)
			if !ok || !x.Equal(y) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Instructions iterates all non-loop instructions in program order, depth first.
func (p *Program) Instructions() iter.Seq[*Instruction] {
	return func(yield func(*Instruction) bool) {
		walkInstructions(p.Body, yield)
	}
}

func walkInstructions(nodes []Node, yield func(*Instruction) bool) bool {
	for _, node := range nodes {
		switch node := node.(type) {
		case *Instruction:
			if !yield(node) {
				return false
			}
		case *Loop:
			if !walkInstructions(node.Body, yield) {
				return false
			}
		}
	}
	return true
}

// DirectDependencies returns the sorted unique ids of called programs.
func (p *Program) DirectDependencies() []int64 {
	var ids []int64
	for inst := range p.Instructions() {
		if !inst.Op.IsCall() || inst.Source.Kind != Constant {
			continue
		}
		id, ok := inst.Source.Value.Int64()
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}
