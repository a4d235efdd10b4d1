// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package generator

import "github.com/ecmalite/ecmalite/lang/bytecode"

// builder accumulates one function body's instructions and constant pool.
// Grounded on the teacher's lang/codegen/codegen.go patchEntry idiom:
// forward jumps are emitted with a placeholder operand and the instruction
// index is recorded; Patch overwrites the operand once the target is
// known (spec §4.H "Labels/jumps").
type builder struct {
	code      []bytecode.Instruction
	constants []interface{}
	constIdx  map[interface{}]int32
	line      int32
}

func newBuilder() *builder {
	return &builder{constIdx: map[interface{}]int32{}}
}

// emit appends an instruction and returns its index (used as a patch site).
func (b *builder) emit(op bytecode.Opcode, operand int32) int {
	b.code = append(b.code, bytecode.Instruction{Op: op, Operand: operand, Line: b.line})
	return len(b.code) - 1
}

// setLine updates the source line attributed to subsequently emitted
// instructions (for the disasm CLI's source-line column).
func (b *builder) setLine(n int) { b.line = int32(n) }

// patchHere overwrites a previously emitted instruction's operand with the
// current instruction count (used to resolve forward jumps to "here").
func (b *builder) patchHere(idx int) {
	b.code[idx].Operand = int32(len(b.code))
}

func (b *builder) patchTo(idx int, target int) {
	b.code[idx].Operand = int32(target)
}

func (b *builder) here() int { return len(b.code) }

// constant content-addresses primitive literals and short strings so
// identical literals share a pool slot (spec §4.H "Constant pooling").
// Non-comparable constants (e.g. *bytecode.FunctionProto) are never
// deduplicated and always get a fresh slot.
func (b *builder) constant(v interface{}) int32 {
	if isHashable(v) {
		if idx, ok := b.constIdx[v]; ok {
			return idx
		}
	}
	idx := int32(len(b.constants))
	b.constants = append(b.constants, v)
	if isHashable(v) {
		b.constIdx[v] = idx
	}
	return idx
}

func isHashable(v interface{}) bool {
	switch v.(type) {
	case float64, string, bool, nil:
		return true
	default:
		return false
	}
}
