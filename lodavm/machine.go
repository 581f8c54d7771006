package lodavm

import (
	"errors"
	"fmt"

	"github.com/reusee/loda/bigs"
	"github.com/reusee/loda/lodalang"
)

// Caller evaluates a called program. Steps are the callee's total step count.
type Caller interface {
	Call(callerID int64, calleeID int64, input bigs.Value) (value bigs.Value, steps int64, err error)
}

type Result struct {
	Value bigs.Value
	Steps int64
}

var errNoCaller = errors.New("no program store for call")

// Run executes a program for one input. A nil caller makes every call unresolved.
func Run(program *lodalang.Program, input bigs.Value, config Config, caller Caller) (Result, error) {
	m := &machine{
		program: program,
		config:  config.normalized(),
		caller:  caller,
		input:   input,
		regs:    NewRegisters(input),
	}
	if err := m.run(program.Body); err != nil {
		return Result{Steps: m.steps}, err
	}
	return Result{
		Value: m.regs.Get(0),
		Steps: m.steps,
	}, nil
}

type machine struct {
	program *lodalang.Program
	config  Config
	caller  Caller
	input   bigs.Value
	regs    *Registers
	steps   int64
}

func (m *machine) fail(kind ErrorKind, line int, inst fmt.Stringer, err error) error {
	e := &EvalError{
		Kind:      kind,
		ProgramID: m.program.ID,
		Line:      line,
		Input:     m.input,
		Err:       err,
	}
	if inst != nil {
		e.Instruction = inst.String()
	}
	return e
}

type mnemonic string

func (m mnemonic) String() string {
	return string(m)
}

func (m *machine) tick(line int, inst fmt.Stringer) error {
	m.steps++
	if m.steps > m.config.StepBudget {
		return m.fail(NonTerminating, line, inst,
			fmt.Errorf("step budget %d exceeded", m.config.StepBudget))
	}
	return nil
}

func (m *machine) run(nodes []lodalang.Node) error {
	for _, node := range nodes {
		switch node := node.(type) {
		case *lodalang.Instruction:
			if err := m.tick(node.Line, node); err != nil {
				return err
			}
			if err := m.exec(node); err != nil {
				return err
			}
		case *lodalang.Loop:
			var err error
			if m.config.LoopMode == LoopRollback {
				err = m.loopRollback(node)
			} else {
				err = m.loopStrict(node)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *machine) address(operand lodalang.Operand, line int, inst fmt.Stringer) (int64, error) {
	index := operand.Index
	if operand.Kind == lodalang.Indirect {
		v := m.regs.Get(index)
		i, ok := v.Int64()
		if !ok || i < 0 {
			return 0, m.fail(RegisterOutOfRange, line, inst, fmt.Errorf("invalid register index %s", v))
		}
		index = i
	}
	if index > m.config.MaxRegister {
		return 0, m.fail(RegisterOutOfRange, line, inst,
			fmt.Errorf("register %d above limit %d", index, m.config.MaxRegister))
	}
	return index, nil
}

func (m *machine) read(operand lodalang.Operand, line int, inst fmt.Stringer) (bigs.Value, error) {
	switch operand.Kind {
	case lodalang.Constant:
		return operand.Value, nil
	case lodalang.Direct, lodalang.Indirect:
		index, err := m.address(operand, line, inst)
		if err != nil {
			return bigs.Zero, err
		}
		return m.regs.Get(index), nil
	}
	return bigs.Zero, nil
}

func (m *machine) checkMagnitude(v bigs.Value, line int, inst fmt.Stringer) error {
	if limit := m.config.MagnitudeLimit; limit > 0 && v.ByteSize() > limit {
		return m.fail(MagnitudeLimitExceeded, line, inst,
			fmt.Errorf("value of %d bytes above limit %d", v.ByteSize(), limit))
	}
	return nil
}

func (m *machine) exec(inst *lodalang.Instruction) error {
	switch inst.Op {

	case lodalang.OpNop:
		return nil

	case lodalang.OpClr:
		start, err := m.address(inst.Target, inst.Line, inst)
		if err != nil {
			return err
		}
		n, err := m.read(inst.Source, inst.Line, inst)
		if err != nil {
			return err
		}
		count, ok := n.Int64()
		if !ok {
			return m.fail(RegisterOutOfRange, inst.Line, inst, fmt.Errorf("invalid clear length %s", n))
		}
		m.regs.Clear(start, count)
		return nil

	case lodalang.OpSeq, lodalang.OpCal:
		return m.call(inst)
	}

	fn, ok := arithmetic[inst.Op]
	if !ok {
		return m.fail(ParseFailure, inst.Line, inst, fmt.Errorf("unexpected opcode %s", inst.Op))
	}

	index, err := m.address(inst.Target, inst.Line, inst)
	if err != nil {
		return err
	}
	a := m.regs.Get(index)
	b, err := m.read(inst.Source, inst.Line, inst)
	if err != nil {
		return err
	}

	if inst.Op == lodalang.OpPow && m.config.MagnitudeLimit > 0 && b.Sign() > 0 &&
		bigs.PowBits(a, b) > int64(m.config.MagnitudeLimit)*8+8 {
		return m.fail(MagnitudeLimitExceeded, inst.Line, inst,
			fmt.Errorf("power %s^%s above limit %d", a, b, m.config.MagnitudeLimit))
	}

	if limit := m.config.MagnitudeLimit; limit > 0 {
		// bound the work of products before finishing them
		maxBits := limit*8 + 8
		switch inst.Op {
		case lodalang.OpFac:
			fn = func(a, b bigs.Value) (bigs.Value, error) {
				return bigs.FacWithin(a, b, maxBits)
			}
		case lodalang.OpBin:
			fn = func(a, b bigs.Value) (bigs.Value, error) {
				return bigs.BinWithin(a, b, maxBits)
			}
		}
	}

	r, err := fn(a, b)
	if err != nil {
		switch {
		case errors.Is(err, bigs.ErrDivisionByZero):
			return m.fail(DivisionByZero, inst.Line, inst, err)
		case errors.Is(err, bigs.ErrOverflow):
			return m.fail(MagnitudeLimitExceeded, inst.Line, inst, err)
		}
		return m.fail(Undefined, inst.Line, inst, err)
	}
	if err := m.checkMagnitude(r, inst.Line, inst); err != nil {
		return err
	}

	m.regs.Set(index, r)
	return nil
}

func (m *machine) call(inst *lodalang.Instruction) error {
	index, err := m.address(inst.Target, inst.Line, inst)
	if err != nil {
		return err
	}
	input := m.regs.Get(index)
	calleeID, _ := inst.Source.Value.Int64()

	if m.caller == nil {
		return m.fail(UnresolvedDependency, inst.Line, inst, errNoCaller)
	}
	value, steps, err := m.caller.Call(m.program.ID, calleeID, input)
	if err != nil {
		kind := KindOf(err)
		if kind == 0 {
			kind = UnresolvedDependency
		}
		e := m.fail(kind, inst.Line, inst, err).(*EvalError)
		var inner *EvalError
		if errors.As(err, &inner) {
			e.Cycle = inner.Cycle
		}
		return e
	}

	m.steps += steps
	if m.steps > m.config.StepBudget {
		return m.fail(NonTerminating, inst.Line, inst,
			fmt.Errorf("step budget %d exceeded", m.config.StepBudget))
	}

	m.regs.Set(index, value)
	return nil
}

type binaryFunc func(a, b bigs.Value) (bigs.Value, error)

func total(fn func(a, b bigs.Value) bigs.Value) binaryFunc {
	return func(a, b bigs.Value) (bigs.Value, error) {
		return fn(a, b), nil
	}
}

var arithmetic = map[lodalang.Opcode]binaryFunc{
	lodalang.OpMov: func(_, b bigs.Value) (bigs.Value, error) {
		return b, nil
	},
	lodalang.OpAdd: total(bigs.Add),
	lodalang.OpSub: total(bigs.Sub),
	lodalang.OpTrn: total(bigs.Trn),
	lodalang.OpMul: total(bigs.Mul),
	lodalang.OpDiv: bigs.Div,
	lodalang.OpDif: total(bigs.Dif),
	lodalang.OpMod: bigs.Mod,
	lodalang.OpPow: bigs.Pow,
	lodalang.OpGcd: total(bigs.Gcd),
	lodalang.OpLex: total(bigs.Lex),
	lodalang.OpBin: bigs.Bin,
	lodalang.OpLog: bigs.Log,
	lodalang.OpNrt: bigs.Nrt,
	lodalang.OpDgs: bigs.Dgs,
	lodalang.OpDgr: bigs.Dgr,
	lodalang.OpFac: bigs.Fac,
	lodalang.OpMin: total(bigs.Min),
	lodalang.OpMax: total(bigs.Max),
	lodalang.OpCmp: total(bigs.Equ),
	lodalang.OpEqu: total(bigs.Equ),
	lodalang.OpNeq: total(bigs.Neq),
	lodalang.OpLeq: total(bigs.Leq),
	lodalang.OpGeq: total(bigs.Geq),
	lodalang.OpBan: total(bigs.Ban),
	lodalang.OpBor: total(bigs.Bor),
	lodalang.OpBxo: total(bigs.Bxo),
}
