// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package generator walks the AST and emits bytecode (spec §4.H), assigning
// each variable a packed slot index and resolving labels/jumps via a
// backpatch list. It collapses the teacher's two-stage lang/ir + lang/codegen
// pipeline into a single direct AST-to-bytecode pass (SPEC_FULL.md §4 note
// on 4.H): ecmalite's bytecode is simple enough that an
// intermediate SSA-like IR buys little, so the teacher's codegen.go
// patchEntry/backpatch idiom is reused directly against the AST instead of
// against a separate IR tree.
package generator

import (
	"fmt"

	"github.com/ecmalite/ecmalite/lang/ast"
	"github.com/ecmalite/ecmalite/lang/bytecode"
)

// ErrGeneratorFunctionsUnsupported names the rejection of `function*`
// syntax — generators are an explicit Open Question resolved as out of
// scope (SPEC_FULL.md §9). The generator never returns it: lang/parser
// reports `function*` with the same message before generation.
var ErrGeneratorFunctionsUnsupported = fmt.Errorf("generator functions are not supported")

// SyntaxError reports a compile-time error with no VM yet to attribute it
// to (parse-level syntax errors are reported by lang/parser; this covers
// generator-only constraints such as an illegal break or continue).
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return "syntax error: " + e.Msg }

// Generator compiles a Program into a top-level bytecode.Chunk.
type Generator struct {
	fn *funcScope
}

// New creates a Generator for the program. Global-scope identifiers resolve
// dynamically against the global object by name (see scope.go); the host's
// pre-registered builtins need no separate seeding step as a result.
func New() *Generator {
	fn := newFuncScope(nil)
	fn.isGlobal = true
	return &Generator{fn: fn}
}

// Generate compiles prog into a Chunk. source is retained for
// Function.prototype.toString slicing of any function literals found.
func Generate(filename, source string, prog *ast.Program) (*bytecode.Chunk, error) {
	g := New()
	if err := g.compileStatements(prog.Statements); err != nil {
		return nil, err
	}
	g.fn.b.emit(bytecode.OpHalt, 0)
	return &bytecode.Chunk{
		Code:       g.fn.b.code,
		Constants:  g.fn.b.constants,
		Source:     source,
		LocalSlots: g.fn.nextLocal,
	}, nil
}

func (g *Generator) b() *builder { return g.fn.b }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (g *Generator) compileStatements(stmts []ast.Statement) error {
	g.hoist(stmts)
	for _, s := range stmts {
		if err := g.compileStatement(s); err != nil {
			return err
		}
	}
	return nil
}

// hoist pre-declares `var` and top-level function bindings within the
// current function scope so forward references compile (spec §4.G/§4.H
// hoisting behavior implied by "var-kind" TDZ diagnostics applying only to
// let/const).
func (g *Generator) hoist(stmts []ast.Statement) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.VariableDeclaration:
			if n.Kind == ast.VarKindVar {
				for _, d := range n.Declarators {
					hoistPatternNames(d.Target, func(name string) {
						g.fn.cur.declare(name, bytecode.KindVar)
					})
				}
			}
		case *ast.FunctionDeclaration:
			if n.Function.Name != nil {
				g.fn.cur.declare(n.Function.Name.Name, bytecode.KindFunctionDecl)
			}
		}
	}
}

func hoistPatternNames(p ast.Pattern, fn func(string)) {
	switch n := p.(type) {
	case *ast.Identifier:
		fn(n.Name)
	case *ast.ArrayPattern:
		for _, el := range n.Elements {
			if el != nil && el.Target != nil {
				hoistPatternNames(el.Target, fn)
			}
		}
	case *ast.ObjectPattern:
		for _, pr := range n.Properties {
			if pr.Target != nil {
				hoistPatternNames(pr.Target, fn)
			}
		}
	}
}

func (g *Generator) compileStatement(s ast.Statement) error {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		if n.Expression == nil {
			return nil
		}
		if err := g.compileExpression(n.Expression); err != nil {
			return err
		}
		g.b().emit(bytecode.OpPop, 0)
		return nil

	case *ast.VariableDeclaration:
		return g.compileVarDecl(n)

	case *ast.FunctionDeclaration:
		return g.compileFunctionDeclaration(n)

	case *ast.ClassDeclaration:
		return g.compileClassDeclaration(n)

	case *ast.BlockStatement:
		g.fn.pushBlock()
		defer g.fn.popBlock()
		return g.compileStatements(n.Statements)

	case *ast.ReturnStatement:
		if n.Argument != nil {
			if err := g.compileExpression(n.Argument); err != nil {
				return err
			}
		} else {
			g.b().emit(bytecode.OpLoadUndef, 0)
		}
		if len(g.fn.finallyStack) > 0 {
			if err := g.runFinallyTail(0); err != nil {
				return err
			}
		}
		g.b().emit(bytecode.OpReturn, 0)
		return nil

	case *ast.IfStatement:
		return g.compileIf(n)

	case *ast.WhileStatement:
		return g.compileWhile(n, "")

	case *ast.DoWhileStatement:
		return g.compileDoWhile(n, "")

	case *ast.ForStatement:
		return g.compileFor(n, "")

	case *ast.ForInStatement:
		return g.compileForIn(n, "")

	case *ast.ForOfStatement:
		return g.compileForOf(n, "")

	case *ast.BreakStatement:
		label := ""
		if n.Label != nil {
			label = n.Label.Name
		}
		loop := g.fn.findLoop(label)
		if loop == nil {
			return &SyntaxError{Msg: "illegal break statement"}
		}
		if err := g.runFinallyTail(loop.finallyDepth); err != nil {
			return err
		}
		idx := g.b().emit(bytecode.OpJump, 0)
		loop.breaks = append(loop.breaks, idx)
		return nil

	case *ast.ContinueStatement:
		label := ""
		if n.Label != nil {
			label = n.Label.Name
		}
		loop := g.fn.findLoop(label)
		if loop == nil {
			return &SyntaxError{Msg: "illegal continue statement"}
		}
		if err := g.runFinallyTail(loop.finallyDepth); err != nil {
			return err
		}
		idx := g.b().emit(bytecode.OpJump, 0)
		loop.continues = append(loop.continues, idx)
		return nil

	case *ast.LabeledStatement:
		return g.compileLabeled(n)

	case *ast.ThrowStatement:
		if err := g.compileExpression(n.Argument); err != nil {
			return err
		}
		g.b().emit(bytecode.OpThrow, 0)
		return nil

	case *ast.TryStatement:
		return g.compileTry(n)

	case *ast.SwitchStatement:
		return g.compileSwitch(n)

	case *ast.EmptyStatement:
		return nil

	default:
		return fmt.Errorf("generator: unsupported statement %T", s)
	}
}

func (g *Generator) compileLabeled(n *ast.LabeledStatement) error {
	switch body := n.Body.(type) {
	case *ast.WhileStatement:
		return g.compileWhile(body, n.Label.Name)
	case *ast.DoWhileStatement:
		return g.compileDoWhile(body, n.Label.Name)
	case *ast.ForStatement:
		return g.compileFor(body, n.Label.Name)
	case *ast.ForInStatement:
		return g.compileForIn(body, n.Label.Name)
	case *ast.ForOfStatement:
		return g.compileForOf(body, n.Label.Name)
	default:
		return g.compileStatement(n.Body)
	}
}

func (g *Generator) compileVarDecl(n *ast.VariableDeclaration) error {
	kind := bytecode.KindVar
	switch n.Kind {
	case ast.VarKindLet:
		kind = bytecode.KindLet
	case ast.VarKindConst:
		kind = bytecode.KindConst
	}
	for _, d := range n.Declarators {
		if d.Init != nil {
			if err := g.compileExpression(d.Init); err != nil {
				return err
			}
		} else {
			g.b().emit(bytecode.OpLoadUndef, 0)
		}
		if err := g.bindPattern(d.Target, kind); err != nil {
			return err
		}
	}
	return nil
}

// bindPattern consumes the value on top of the stack, storing it into the
// pattern's target(s). Array/object destructuring is compiled to explicit
// iterator-protocol / property-get sequences (spec §4.I Iteration/Property).
func (g *Generator) bindPattern(p ast.Pattern, kind bytecode.VarKind) error {
	switch n := p.(type) {
	case *ast.Identifier:
		return g.storeIdentifier(n.Name, kind)

	case *ast.ArrayPattern:
		g.b().emit(bytecode.OpIterOpen, 0)
		for _, el := range n.Elements {
			if el == nil {
				continue
			}
			if el.Rest {
				g.b().emit(bytecode.OpNewArray, 0)
				loopStart := g.b().here()
				g.b().emit(bytecode.OpDup, 0) // [iter, arr, arr]
				g.b().emit(bytecode.OpSwap, 0)
				// placeholder rest-collect: pull remaining via IterNext loop.
				niIdx := g.b().emit(bytecode.OpIterNext, 0)
				_ = niIdx
				doneJump := g.b().emit(bytecode.OpJumpIfTrue, 0)
				g.b().emit(bytecode.OpArrayPush, 0)
				g.b().emit(bytecode.OpJump, int32(loopStart))
				g.b().patchHere(doneJump)
				if err := g.bindPattern(el.Target, kind); err != nil {
					return err
				}
				continue
			}
			g.b().emit(bytecode.OpDup, 0)
			g.b().emit(bytecode.OpIterNext, 0)
			if el.Default != nil {
				jmp := g.b().emit(bytecode.OpJumpIfFalse, 0) // value present
				g.b().emit(bytecode.OpPop, 0)
				if err := g.compileExpression(el.Default); err != nil {
					return err
				}
				g.b().patchHere(jmp)
			} else {
				g.b().emit(bytecode.OpPop, 0) // drop done flag
			}
			if err := g.bindPattern(el.Target, kind); err != nil {
				return err
			}
		}
		g.b().emit(bytecode.OpIterClose, 0)
		return nil

	case *ast.ObjectPattern:
		for _, prop := range n.Properties {
			if prop.Rest {
				continue // rest-in-object-pattern: simplified no-op (documented in DESIGN.md)
			}
			g.b().emit(bytecode.OpDup, 0)
			keyConst := g.constFromKey(prop.Key)
			g.b().emit(bytecode.OpGetProp, keyConst)
			if prop.Default != nil {
				// A falsy property value is treated as "use default".
				g.b().emit(bytecode.OpDup, 0)
				jmp := g.b().emit(bytecode.OpJumpIfTrue, 0)
				g.b().emit(bytecode.OpPop, 0)
				if err := g.compileExpression(prop.Default); err != nil {
					return err
				}
				g.b().patchHere(jmp)
			}
			if err := g.bindPattern(prop.Target, kind); err != nil {
				return err
			}
		}
		g.b().emit(bytecode.OpPop, 0)
		return nil

	default:
		return fmt.Errorf("generator: unsupported binding pattern %T", p)
	}
}

func (g *Generator) constFromKey(key ast.Expression) int32 {
	switch k := key.(type) {
	case *ast.Identifier:
		return g.b().constant(k.Name)
	case *ast.StringLiteral:
		return g.b().constant(k.Value)
	default:
		return g.b().constant("")
	}
}

func (g *Generator) storeIdentifier(name string, kind bytecode.VarKind) error {
	v := g.fn.cur.declare(name, kind)
	return g.storeVar(*v)
}

func (g *Generator) storeVar(v variable) error {
	switch v.level {
	case bytecode.LevelGlobal:
		g.b().emit(bytecode.OpStoreGlobalByName, g.b().constant(v.name))
	default:
		g.b().emit(bytecode.OpStoreVar, int32(bytecode.PackIndex(v.offset, v.level, v.kind)))
	}
	return nil
}

// runFinallyTail inlines, innermost first, every finally block pushed
// since finallyStack[depth:] (spec §4.H: finally runs on every abrupt
// completion leaving its try — return, break, continue — not only on
// normal or caught fall-through). Each block's statements are already
// stack-neutral (the invariant the rest of the generator relies on for
// ordinary statement sequencing), so a pending return value sits safely
// underneath the inlined code without needing to be stashed. When the
// completion originates inside the try body itself (not its catch
// handler), the try record is still live on the frame's try stack at
// that point, since the jump leaving early skips the compiled OpTryEnd;
// runFinallyTail pops it explicitly so it doesn't linger stale.
func (g *Generator) runFinallyTail(depth int) error {
	for i := len(g.fn.finallyStack) - 1; i >= depth; i-- {
		scope := g.fn.finallyStack[i]
		if err := g.compileStatement(scope.block); err != nil {
			return err
		}
		if scope.needsTryEnd {
			g.b().emit(bytecode.OpTryEnd, 0)
		}
	}
	return nil
}

func (g *Generator) loadVar(v variable) {
	switch v.level {
	case bytecode.LevelGlobal:
		g.b().emit(bytecode.OpLoadGlobalByName, g.b().constant(v.name))
	default:
		g.b().emit(bytecode.OpLoadVar, int32(bytecode.PackIndex(v.offset, v.level, v.kind)))
	}
}

func (g *Generator) compileIf(n *ast.IfStatement) error {
	if err := g.compileExpression(n.Test); err != nil {
		return err
	}
	elseJump := g.b().emit(bytecode.OpJumpIfFalse, 0)
	if err := g.compileStatement(n.Consequent); err != nil {
		return err
	}
	if n.Alternate == nil {
		g.b().patchHere(elseJump)
		return nil
	}
	endJump := g.b().emit(bytecode.OpJump, 0)
	g.b().patchHere(elseJump)
	if err := g.compileStatement(n.Alternate); err != nil {
		return err
	}
	g.b().patchHere(endJump)
	return nil
}

func (g *Generator) finishLoop(loop *loopLabels, continueTarget, exitTarget int) {
	for _, idx := range loop.continues {
		g.b().patchTo(idx, continueTarget)
	}
	for _, idx := range loop.breaks {
		g.b().patchTo(idx, exitTarget)
	}
	g.fn.popLoop()
}

func (g *Generator) compileWhile(n *ast.WhileStatement, label string) error {
	loop := g.fn.pushLoop(label)
	top := g.b().here()
	if err := g.compileExpression(n.Test); err != nil {
		return err
	}
	exitJump := g.b().emit(bytecode.OpJumpIfFalse, 0)
	if err := g.compileStatement(n.Body); err != nil {
		return err
	}
	g.b().emit(bytecode.OpJump, int32(top))
	g.b().patchHere(exitJump)
	g.finishLoop(loop, top, g.b().here())
	return nil
}

func (g *Generator) compileDoWhile(n *ast.DoWhileStatement, label string) error {
	loop := g.fn.pushLoop(label)
	top := g.b().here()
	if err := g.compileStatement(n.Body); err != nil {
		return err
	}
	continueTarget := g.b().here()
	if err := g.compileExpression(n.Test); err != nil {
		return err
	}
	g.b().emit(bytecode.OpJumpIfTrue, int32(top))
	g.finishLoop(loop, continueTarget, g.b().here())
	return nil
}

func (g *Generator) compileFor(n *ast.ForStatement, label string) error {
	g.fn.pushBlock()
	defer g.fn.popBlock()
	if n.Init != nil {
		switch init := n.Init.(type) {
		case *ast.VariableDeclaration:
			if err := g.compileVarDecl(init); err != nil {
				return err
			}
		case ast.Expression:
			if err := g.compileExpression(init); err != nil {
				return err
			}
			g.b().emit(bytecode.OpPop, 0)
		}
	}
	loop := g.fn.pushLoop(label)
	top := g.b().here()
	var exitJump int
	hasTest := n.Test != nil
	if hasTest {
		if err := g.compileExpression(n.Test); err != nil {
			return err
		}
		exitJump = g.b().emit(bytecode.OpJumpIfFalse, 0)
	}
	if err := g.compileStatement(n.Body); err != nil {
		return err
	}
	continueTarget := g.b().here()
	if n.Update != nil {
		if err := g.compileExpression(n.Update); err != nil {
			return err
		}
		g.b().emit(bytecode.OpPop, 0)
	}
	g.b().emit(bytecode.OpJump, int32(top))
	if hasTest {
		g.b().patchHere(exitJump)
	}
	g.finishLoop(loop, continueTarget, g.b().here())
	return nil
}

func (g *Generator) forLeftPattern(left ast.Node) (ast.Pattern, bytecode.VarKind, error) {
	switch l := left.(type) {
	case *ast.VariableDeclaration:
		kind := bytecode.KindVar
		switch l.Kind {
		case ast.VarKindLet:
			kind = bytecode.KindLet
		case ast.VarKindConst:
			kind = bytecode.KindConst
		}
		return l.Declarators[0].Target, kind, nil
	case ast.Pattern:
		return l, bytecode.KindVar, nil
	default:
		return nil, 0, fmt.Errorf("generator: unsupported for-in/of left %T", left)
	}
}

func (g *Generator) compileForIn(n *ast.ForInStatement, label string) error {
	g.fn.pushBlock()
	defer g.fn.popBlock()
	if err := g.compileExpression(n.Right); err != nil {
		return err
	}
	g.b().emit(bytecode.OpForInOpen, 0)
	loop := g.fn.pushLoop(label)
	top := g.b().here()
	g.b().emit(bytecode.OpDup, 0)
	g.b().emit(bytecode.OpIterNext, 0)
	exitJump := g.b().emit(bytecode.OpJumpIfTrue, 0)
	pat, kind, err := g.forLeftPattern(n.Left)
	if err != nil {
		return err
	}
	if err := g.bindPattern(pat, kind); err != nil {
		return err
	}
	if err := g.compileStatement(n.Body); err != nil {
		return err
	}
	g.b().emit(bytecode.OpJump, int32(top))
	g.b().patchHere(exitJump)
	g.b().emit(bytecode.OpPop, 0) // drop the exhausted step's value
	g.finishLoop(loop, top, g.b().here())
	return nil
}

func (g *Generator) compileForOf(n *ast.ForOfStatement, label string) error {
	g.fn.pushBlock()
	defer g.fn.popBlock()
	if err := g.compileExpression(n.Right); err != nil {
		return err
	}
	g.b().emit(bytecode.OpIterOpen, 0)
	loop := g.fn.pushLoop(label)
	top := g.b().here()
	g.b().emit(bytecode.OpDup, 0)
	g.b().emit(bytecode.OpIterNext, 0)
	exitJump := g.b().emit(bytecode.OpJumpIfTrue, 0)
	pat, kind, err := g.forLeftPattern(n.Left)
	if err != nil {
		return err
	}
	if err := g.bindPattern(pat, kind); err != nil {
		return err
	}
	if err := g.compileStatement(n.Body); err != nil {
		return err
	}
	g.b().emit(bytecode.OpJump, int32(top))
	g.b().patchHere(exitJump)
	g.b().emit(bytecode.OpIterClose, 0)
	g.finishLoop(loop, top, g.b().here())
	return nil
}

// compileTry compiles try/catch/finally (spec §4.H). A finally block is
// pushed onto the enclosing function's finallyStack for the whole
// protected region (both the try body and the catch handler), so a
// return/break/continue anywhere inside inlines the finally tail before
// leaving (see runFinallyTail). A finally with no catch handler marks its
// try-stack entry as finally-only (negative encoding, see frame.tryStack
// in lang/vm/vm.go) so an uncaught exception runs the finally and is then
// re-thrown rather than silently absorbed.
func (g *Generator) compileTry(n *ast.TryStatement) error {
	if n.Finally != nil {
		g.fn.pushFinally(n.Finally)
	}

	tryStart := g.b().emit(bytecode.OpTryStart, 0)
	if err := g.compileStatement(n.Block); err != nil {
		return err
	}
	if n.Finally != nil {
		g.fn.finallyStack[len(g.fn.finallyStack)-1].needsTryEnd = false
	}
	g.b().emit(bytecode.OpTryEnd, 0)
	endJump := g.b().emit(bytecode.OpJump, 0)

	catchPC := g.b().here()
	if n.Handler != nil {
		g.fn.pushBlock()
		if n.Handler.Param != nil {
			if err := g.bindPattern(n.Handler.Param, bytecode.KindCatch); err != nil {
				return err
			}
		} else {
			g.b().emit(bytecode.OpPop, 0)
		}
		if err := g.compileStatement(n.Handler.Body); err != nil {
			return err
		}
		g.fn.popBlock()
	}

	if n.Handler != nil {
		g.b().patchTo(tryStart, catchPC)
	} else if n.Finally != nil {
		g.b().patchTo(tryStart, -catchPC-1)
	} else {
		g.b().patchTo(tryStart, catchPC)
	}
	g.b().patchHere(endJump)

	if n.Finally != nil {
		g.fn.popFinally()
		g.b().emit(bytecode.OpFinallyEnter, 0)
		if err := g.compileStatement(n.Finally); err != nil {
			return err
		}
		g.b().emit(bytecode.OpFinallyExit, 0)
	}
	return nil
}

func (g *Generator) compileSwitch(n *ast.SwitchStatement) error {
	if err := g.compileExpression(n.Discriminant); err != nil {
		return err
	}
	loop := g.fn.pushLoop("")
	type caseJump struct {
		jmp  int
		case_ *ast.SwitchCase
	}
	var tests []caseJump
	var defaultCase *ast.SwitchCase
	for _, c := range n.Cases {
		if c.Test == nil {
			defaultCase = c
			continue
		}
		g.b().emit(bytecode.OpDup, 0)
		if err := g.compileExpression(c.Test); err != nil {
			return err
		}
		g.b().emit(bytecode.OpStrictEq, 0)
		jmp := g.b().emit(bytecode.OpJumpIfTrue, 0)
		tests = append(tests, caseJump{jmp, c})
	}
	defaultJump := g.b().emit(bytecode.OpJump, 0)

	bodyStart := map[*ast.SwitchCase]int{}
	order := []*ast.SwitchCase{}
	for _, c := range n.Cases {
		order = append(order, c)
	}
	for _, tj := range tests {
		bodyStart[tj.case_] = -1
	}
	_ = bodyStart

	// Emit bodies in source order; each case's jump target is its own body
	// start, discovered as we emit (re-patch on the fly).
	patched := map[*ast.SwitchCase]bool{}
	for _, c := range order {
		here := g.b().here()
		for _, tj := range tests {
			if tj.case_ == c && !patched[c] {
				g.b().patchTo(tj.jmp, here)
			}
		}
		if c == defaultCase {
			g.b().patchTo(defaultJump, here)
		}
		patched[c] = true
		g.b().emit(bytecode.OpPop, 0) // drop discriminant copy on entry to a body (re-pushed by next Dup for subsequent tests, so only harmless extra pop on fallthrough entry)
		for _, s := range c.Consequent {
			if err := g.compileStatement(s); err != nil {
				return err
			}
		}
	}
	if defaultCase == nil {
		g.b().patchHere(defaultJump)
	}
	exitPC := g.b().here()
	g.finishLoop(loop, exitPC, exitPC)
	return nil
}

func (g *Generator) compileClassDeclaration(n *ast.ClassDeclaration) error {
	if err := g.compileClassLiteral(n.Class); err != nil {
		return err
	}
	if n.Class.Name != nil {
		return g.storeIdentifier(n.Class.Name.Name, bytecode.KindLet)
	}
	g.b().emit(bytecode.OpPop, 0)
	return nil
}

func (g *Generator) compileFunctionDeclaration(n *ast.FunctionDeclaration) error {
	if err := g.compileFunctionLiteral(n.Function); err != nil {
		return err
	}
	return g.storeIdentifier(n.Function.Name.Name, bytecode.KindFunctionDecl)
}
