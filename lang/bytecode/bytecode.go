// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package bytecode defines the instruction set and chunk container produced
// by lang/generator and executed by lang/vm (spec §4.H/§4.I): a
// variable-length, opcode-plus-packed-operand encoding designed for a
// switch-dispatch interpreter, matching the teacher's lang/vm fixed-width
// register encoding in spirit (opcode byte + operand fields) but sized for
// a stack-based value machine instead of a 256-register file, since
// ECMAScript values are heap-allocated tagged values rather than 64-bit
// machine words.
package bytecode

import "fmt"

// Opcode identifies one VM instruction (spec §4.I opcode classes).
type Opcode uint8

const (
	OpNop Opcode = iota

	// Move/load (spec §4.I "Move/load").
	OpLoadConst  // push constants[operand]
	OpLoadUndef  // push undefined
	OpLoadNull   // push null
	OpLoadTrue   // push true
	OpLoadFalse  // push false
	OpLoadThis   // push current frame's `this`
	OpLoadVar    // push value at packed slot index `operand`
	OpStoreVar   // pop, store at packed slot index `operand` (TDZ-checked for let/const)
	OpDeclareVar // reserve slot `operand` as uninitialised (TDZ marker)
	OpDup        // duplicate top of stack
	OpPop        // discard top of stack
	OpSwap       // swap top two stack values
	OpMakeClosure // build a closure from constants[operand] (a *FunctionProto), capturing current scope chain

	// Arithmetic/logical (spec §4.I "Arithmetic/logical", coercions per §4.D).
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpExp
	OpNeg
	OpPlus // unary +
	OpNot
	OpBitNot
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpUShr
	OpEq
	OpNeq
	OpStrictEq
	OpStrictNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpTypeof
	OpInstanceof
	OpInOp

	// Property (spec §4.I "Property": get/set/delete/in/instanceof via §4.E).
	OpGetProp    // pop obj, push obj[constants[operand]]
	OpSetProp    // pop val, obj; obj[constants[operand]] = val; push val
	OpGetElem    // pop key, obj; push obj[key]
	OpSetElem    // pop val, key, obj; obj[key] = val; push val
	OpDeleteProp // pop obj; push delete obj[constants[operand]]
	OpDeleteElem // pop key, obj; push delete obj[key]

	// Control (spec §4.I "Control").
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpJumpIfNullish // for `??`
	OpCall          // pop nargs+1 (fn + args), push result
	OpCallMethod    // pop nargs+2 (obj, fn, args), push result, this=obj
	OpNew           // pop nargs+1 (ctor + args), push new instance
	OpReturn        // pop retval, unwind frame
	OpThrow         // pop exception, begin unwinding
	OpTryStart      // push a try record; operand >= 0 is a catch pc, operand < 0 encodes -(finally pc)-1 for a catch-less try
	OpTryEnd        // pop the try record
	OpFinallyEnter  // mark entry into a finally block
	OpFinallyExit   // re-throw the pending exception if the finally was entered via an uncaught throw with no catch

	// Iteration (spec §4.I "Iteration").
	OpIterOpen // pop iterable, push iterator
	OpIterNext // pop iterator, push value, then done flag
	OpIterClose
	OpForInOpen // pop obj, push enumerator over §4.E enumeration order

	// Async (spec §4.I "Async").
	OpAwait // pop awaited value, suspend current frame

	// Literals / aggregates.
	OpNewArray  // push a new empty array
	OpArrayPush // pop val, arr; arr.push(val); push arr
	OpNewObject // push a new empty plain object
	OpSpread    // pop iterable, arr; append spread elements to arr
	OpMakeTemplate // pop n string/expr parts per operand, push concatenated string

	// Misc.
	OpHalt // stop the current top-level run
)

var names = map[Opcode]string{
	OpNop: "nop", OpLoadConst: "load.const", OpLoadUndef: "load.undef",
	OpLoadNull: "load.null", OpLoadTrue: "load.true", OpLoadFalse: "load.false",
	OpLoadThis: "load.this", OpLoadVar: "load.var", OpStoreVar: "store.var",
	OpDeclareVar: "declare.var", OpDup: "dup", OpPop: "pop", OpSwap: "swap",
	OpMakeClosure: "make.closure", OpAdd: "add", OpSub: "sub", OpMul: "mul",
	OpDiv: "div", OpMod: "mod", OpExp: "exp", OpNeg: "neg", OpPlus: "plus",
	OpNot: "not", OpBitNot: "bitnot", OpBitAnd: "bitand", OpBitOr: "bitor",
	OpBitXor: "bitxor", OpShl: "shl", OpShr: "shr", OpUShr: "ushr",
	OpEq: "eq", OpNeq: "neq", OpStrictEq: "seq", OpStrictNeq: "sneq",
	OpLt: "lt", OpLte: "lte", OpGt: "gt", OpGte: "gte", OpTypeof: "typeof",
	OpInstanceof: "instanceof", OpInOp: "in", OpGetProp: "get.prop",
	OpSetProp: "set.prop", OpGetElem: "get.elem", OpSetElem: "set.elem",
	OpDeleteProp: "del.prop", OpDeleteElem: "del.elem", OpJump: "jump",
	OpJumpIfFalse: "jump.iffalse", OpJumpIfTrue: "jump.iftrue",
	OpJumpIfNullish: "jump.ifnullish", OpCall: "call", OpCallMethod: "call.method",
	OpNew: "new", OpReturn: "return", OpThrow: "throw", OpTryStart: "try.start",
	OpTryEnd: "try.end", OpFinallyEnter: "finally.enter", OpFinallyExit: "finally.exit",
	OpIterOpen: "iter.open", OpIterNext: "iter.next", OpIterClose: "iter.close",
	OpForInOpen: "forin.open", OpAwait: "await", OpNewArray: "new.array",
	OpArrayPush: "array.push", OpNewObject: "new.object", OpSpread: "spread",
	OpMakeTemplate: "make.template", OpHalt: "halt",
}

func (op Opcode) String() string {
	if s, ok := names[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// LevelType selects which register file a packed slot Index addresses
// (spec §4.H: "level-type selects a register file").
type LevelType uint8

const (
	LevelGlobal LevelType = iota
	LevelClosure
	LevelLocal
	LevelArguments
)

// VarKind distinguishes declaration kind for TDZ diagnostics (spec §4.H).
type VarKind uint8

const (
	KindVar VarKind = iota
	KindLet
	KindConst
	KindCatch
	KindFunctionDecl
)

// Index is the packed slot descriptor of spec §4.H:
//
//	[ value-offset : 19 bits | level-type : 8 bits | var-kind : 4 bits ]
type Index int32

// PackIndex builds a packed Index from its three fields.
func PackIndex(offset int, level LevelType, kind VarKind) Index {
	return Index(int32(offset)<<12 | int32(level)<<4 | int32(kind))
}

func (i Index) Offset() int      { return int(int32(i) >> 12) }
func (i Index) Level() LevelType { return LevelType((int32(i) >> 4) & 0xFF) }
func (i Index) Kind() VarKind    { return VarKind(int32(i) & 0xF) }

// Instruction is one decoded bytecode entry: an opcode plus a single
// 32-bit operand whose meaning depends on the opcode (constant-pool index,
// packed slot Index, jump target, or argument count).
type Instruction struct {
	Op      Opcode
	Operand int32
	Line    int32
}

// FunctionProto is the compile-time blueprint for a function: its own
// code chunk, parameter/local layout, and flags, stored as a bytecode
// constant-pool entry and materialised into a callable closure by
// OpMakeClosure at run time (spec §4.J).
type FunctionProto struct {
	Name        string
	ParamCount  int
	LocalSlots  int
	ClosureSlots int
	Code        []Instruction
	Constants   []interface{}
	IsArrow     bool
	IsAsync     bool
	HasRestParam bool
	Source      string // for Function.prototype.toString
	Upvalues    []UpvalueSpec
}

// UpvalueSpec tells OpMakeClosure where to find one captured-variable cell
// in the currently-executing (parent) frame: either one of its own locals
// or one of its own upvalues, chaining capture across nesting depth (spec
// §4.I "construct closure ... captures current local and closure scope").
type UpvalueSpec struct {
	FromLocal    bool
	ParentOffset int
}

// Chunk is a compiled top-level or function body (spec §4.H output).
type Chunk struct {
	Code      []Instruction
	Constants []interface{}
	Source    string
	LocalSlots int
}

// Disassemble renders a chunk as a human-readable instruction listing,
// consumed by the `disasm` CLI subcommand's tablewriter-rendered view.
func (c *Chunk) Disassemble() []DisasmRow {
	rows := make([]DisasmRow, 0, len(c.Code))
	for pc, instr := range c.Code {
		row := DisasmRow{PC: pc, Op: instr.Op.String(), Operand: instr.Operand, Line: int(instr.Line)}
		rows = append(rows, row)
	}
	return rows
}

// DisasmRow is one line of a bytecode listing (pc, opcode, operand, source line).
type DisasmRow struct {
	PC      int
	Op      string
	Operand int32
	Line    int
}
