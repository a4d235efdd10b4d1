// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmalite/ecmalite/lang/bytecode"
	"github.com/ecmalite/ecmalite/lang/parser"
)

func compile(t *testing.T, src string) *bytecode.Chunk {
	t.Helper()
	prog, errs := parser.Parse("test.js", src)
	require.Empty(t, errs)
	chunk, err := Generate("test.js", src, prog)
	require.NoError(t, err)
	return chunk
}

func TestGenerateArithmeticExpression(t *testing.T) {
	chunk := compile(t, "1 + 2 * 3;")
	var ops []bytecode.Opcode
	for _, instr := range chunk.Code {
		ops = append(ops, instr.Op)
	}
	assert.Contains(t, ops, bytecode.OpAdd)
	assert.Contains(t, ops, bytecode.OpMul)
	assert.Contains(t, ops, bytecode.OpHalt)
}

func TestGenerateVariableDeclarationAndGlobalAccess(t *testing.T) {
	chunk := compile(t, "var x = 10; x + 1;")
	var sawStoreGlobal, sawLoadGlobal bool
	for _, instr := range chunk.Code {
		if instr.Op == bytecode.OpStoreGlobalByName {
			sawStoreGlobal = true
		}
		if instr.Op == bytecode.OpLoadGlobalByName {
			sawLoadGlobal = true
		}
	}
	assert.True(t, sawStoreGlobal)
	assert.True(t, sawLoadGlobal)
}

func TestGenerateFunctionClosureCapturesOuterLocal(t *testing.T) {
	chunk := compile(t, `
		function counter() {
			let n = 0;
			function inc() { n = n + 1; return n; }
			return inc;
		}
	`)
	var found bool
	for _, c := range chunk.Constants {
		if proto, ok := c.(*bytecode.FunctionProto); ok && proto.Name == "counter" {
			for _, inner := range proto.Constants {
				if ip, ok := inner.(*bytecode.FunctionProto); ok && ip.Name == "inc" {
					found = true
					assert.Len(t, ip.Upvalues, 1)
					assert.True(t, ip.Upvalues[0].FromLocal)
				}
			}
		}
	}
	assert.True(t, found, "expected nested inc() FunctionProto with a captured upvalue for n")
}

func TestGenerateIfElseBranchesPatchJumps(t *testing.T) {
	chunk := compile(t, `if (true) { 1; } else { 2; }`)
	var sawJumpIfFalse, sawJump bool
	for _, instr := range chunk.Code {
		if instr.Op == bytecode.OpJumpIfFalse {
			sawJumpIfFalse = true
			assert.Greater(t, instr.Operand, int32(0))
		}
		if instr.Op == bytecode.OpJump {
			sawJump = true
		}
	}
	assert.True(t, sawJumpIfFalse)
	assert.True(t, sawJump)
}

func TestGenerateWhileLoopBreakContinue(t *testing.T) {
	chunk := compile(t, `
		while (true) {
			if (false) { break; }
			continue;
		}
	`)
	var ops []bytecode.Opcode
	for _, instr := range chunk.Code {
		ops = append(ops, instr.Op)
	}
	assert.Contains(t, ops, bytecode.OpJumpIfFalse)
}

func TestGenerateTryCatchFinally(t *testing.T) {
	chunk := compile(t, `
		try { throw 1; } catch (e) { e; } finally { 2; }
	`)
	var ops []bytecode.Opcode
	for _, instr := range chunk.Code {
		ops = append(ops, instr.Op)
	}
	assert.Contains(t, ops, bytecode.OpTryStart)
	assert.Contains(t, ops, bytecode.OpTryEnd)
	assert.Contains(t, ops, bytecode.OpFinallyEnter)
	assert.Contains(t, ops, bytecode.OpFinallyExit)
	assert.Contains(t, ops, bytecode.OpThrow)
}
