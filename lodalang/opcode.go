package lodalang

import "fmt"

type Opcode uint8

const (
	OpNop Opcode = iota
	OpMov
	OpAdd
	OpSub
	OpTrn
	OpMul
	OpDiv
	OpDif
	OpMod
	OpPow
	OpGcd
	OpLex
	OpBin
	OpLog
	OpNrt
	OpDgs
	OpDgr
	OpFac
	OpMin
	OpMax
	OpCmp
	OpEqu
	OpNeq
	OpLeq
	OpGeq
	OpBan
	OpBor
	OpBxo
	OpClr
	OpSeq
	OpCal
	OpLpb
	OpLpe

	numOpcodes
)

var mnemonics = [numOpcodes]string{
	OpNop: "nop",
	OpMov: "mov",
	OpAdd: "add",
	OpSub: "sub",
	OpTrn: "trn",
	OpMul: "mul",
	OpDiv: "div",
	OpDif: "dif",
	OpMod: "mod",
	OpPow: "pow",
	OpGcd: "gcd",
	OpLex: "lex",
	OpBin: "bin",
	OpLog: "log",
	OpNrt: "nrt",
	OpDgs: "dgs",
	OpDgr: "dgr",
	OpFac: "fac",
	OpMin: "min",
	OpMax: "max",
	OpCmp: "cmp",
	OpEqu: "equ",
	OpNeq: "neq",
	OpLeq: "leq",
	OpGeq: "geq",
	OpBan: "ban",
	OpBor: "bor",
	OpBxo: "bxo",
	OpClr: "clr",
	OpSeq: "seq",
	OpCal: "cal",
	OpLpb: "lpb",
	OpLpe: "lpe",
}

var opcodesByMnemonic = func() map[string]Opcode {
	ret := make(map[string]Opcode, numOpcodes)
	for op, name := range mnemonics {
		ret[name] = Opcode(op)
	}
	return ret
}()

func LookupOpcode(mnemonic string) (Opcode, bool) {
	op, ok := opcodesByMnemonic[mnemonic]
	return op, ok
}

func (o Opcode) String() string {
	if o < numOpcodes {
		return mnemonics[o]
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Arity returns the minimum and maximum operand count.
func (o Opcode) Arity() (int, int) {
	switch o {
	case OpNop, OpLpe:
		return 0, 0
	case OpLpb:
		return 1, 2
	}
	return 2, 2
}

func (o Opcode) IsCall() bool {
	return o == OpSeq || o == OpCal
}
