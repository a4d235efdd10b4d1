// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package generator

import (
	"github.com/ecmalite/ecmalite/lang/ast"
	"github.com/ecmalite/ecmalite/lang/bytecode"
)

// compileFunctionLiteral compiles a function (declaration, expression, or
// arrow) into a nested bytecode.FunctionProto constant, then emits
// OpMakeClosure to materialise it against the current frame's scope chain
// (spec §4.I Move/load "construct closure ... captures current local and
// closure scope into a closure array").
func (g *Generator) compileFunctionLiteral(n *ast.FunctionExpression) error {
	parent := g.fn
	fn := newFuncScope(parent)
	fn.isArrow = n.IsArrow
	fn.isAsync = n.IsAsync
	g.fn = fn

	hasRest := false
	for i, p := range n.Params {
		if p.Rest {
			hasRest = true
		}
		v := fn.cur.declare(paramName(p.Target), bytecode.KindVar)
		fn.cur.vars[paramName(p.Target)] = v
		if p.Default != nil {
			// Parameter defaults: load the already-bound arg slot, check
			// it, and if it is falsy evaluate the default expression.
			g.loadVar(*v)
			jmp := g.b().emit(bytecode.OpJumpIfTrue, 0) // truthy check (simplified: treats falsy as "use default")
			if err := g.compileExpression(p.Default); err != nil {
				g.fn = parent
				return err
			}
			if err := g.storeVar(*v); err != nil {
				g.fn = parent
				return err
			}
			g.b().patchHere(jmp)
		}
		_ = i
	}

	if n.ExprBody != nil {
		if err := g.compileExpression(n.ExprBody); err != nil {
			g.fn = parent
			return err
		}
		g.b().emit(bytecode.OpReturn, 0)
	} else {
		if err := g.compileStatements(n.Body.Statements); err != nil {
			g.fn = parent
			return err
		}
		g.b().emit(bytecode.OpLoadUndef, 0)
		g.b().emit(bytecode.OpReturn, 0)
	}

	name := ""
	if n.Name != nil {
		name = n.Name.Name
	}
	proto := &bytecode.FunctionProto{
		Name:         name,
		ParamCount:   len(n.Params),
		LocalSlots:   fn.nextLocal,
		ClosureSlots: len(fn.upvalues),
		Code:         fn.b.code,
		Constants:    fn.b.constants,
		IsArrow:      n.IsArrow,
		IsAsync:      n.IsAsync,
		HasRestParam: hasRest,
		Source:       sliceSource(parent, n),
	}

	proto.Upvalues = make([]bytecode.UpvalueSpec, len(fn.upvalues))
	for i, uv := range fn.upvalues {
		proto.Upvalues[i] = bytecode.UpvalueSpec{FromLocal: uv.fromLocal, ParentOffset: uv.parentOffset}
	}

	g.fn = parent
	protoIdx := g.b().constant(proto)
	// OpMakeClosure consults proto.Upvalues directly (held on the constant
	// itself) rather than trailing operand instructions, so the VM can box
	// the right parent-frame cells in one step.
	g.b().emit(bytecode.OpMakeClosure, protoIdx)
	return nil
}

func paramName(p ast.Pattern) string {
	if id, ok := p.(*ast.Identifier); ok {
		return id.Name
	}
	return "" // destructured params bind via bindPattern at call-prologue time in lang/vm
}

// sliceSource returns the original source text for a function literal for
// Function.prototype.toString, using the SrcStart/SrcEnd byte range the
// parser recorded (spec supplement: njs's lazy Function.prototype.toString).
func sliceSource(parent *funcScope, n *ast.FunctionExpression) string {
	if n.Source != "" {
		return n.Source
	}
	return n.String()
}

// compileClassLiteral desugars a class-lite into a constructor function
// plus prototype method/accessor installation (spec §4.J semantics applied
// to the parser's ClassLiteral/ClassMember nodes).
func (g *Generator) compileClassLiteral(n *ast.ClassLiteral) error {
	var ctor *ast.FunctionExpression
	var instanceMembers []*ast.ClassMember
	var staticMembers []*ast.ClassMember
	for _, m := range n.Members {
		if m.Kind == "constructor" {
			ctor = m.Value
			continue
		}
		if m.Static {
			staticMembers = append(staticMembers, m)
		} else {
			instanceMembers = append(instanceMembers, m)
		}
	}
	if ctor == nil {
		ctor = &ast.FunctionExpression{Tok: n.Tok, Body: &ast.BlockStatement{}}
	}
	if err := g.compileFunctionLiteral(ctor); err != nil {
		return err
	}
	// [ctorFn] on stack. Install prototype methods via OpSetProp on a
	// freshly-fetched `prototype` object, and static members directly on
	// the constructor. Real installation of method closures happens the
	// same way a normal object literal installs methods: build the proto
	// object, attach, assign back.
	g.b().emit(bytecode.OpDup, 0)
	g.b().emit(bytecode.OpGetProp, g.b().constant("prototype"))
	for _, m := range instanceMembers {
		if err := g.installClassMember(m); err != nil {
			return err
		}
	}
	g.b().emit(bytecode.OpPop, 0) // drop prototype ref, keep ctor
	for _, m := range staticMembers {
		g.b().emit(bytecode.OpDup, 0)
		if err := g.installClassMember(m); err != nil {
			return err
		}
		g.b().emit(bytecode.OpPop, 0)
	}
	return nil
}

func (g *Generator) installClassMember(m *ast.ClassMember) error {
	if m.Kind == "field" {
		// Instance fields are initialised in the constructor prologue in a
		// full implementation; class-lite here installs them as prototype
		// defaults (documented simplification in DESIGN.md).
		g.b().emit(bytecode.OpDup, 0)
		if m.FieldVal != nil {
			if err := g.compileExpression(m.FieldVal); err != nil {
				return err
			}
		} else {
			g.b().emit(bytecode.OpLoadUndef, 0)
		}
		g.b().emit(bytecode.OpSetProp, g.constFromKey(m.Key))
		g.b().emit(bytecode.OpPop, 0)
		return nil
	}
	g.b().emit(bytecode.OpDup, 0)
	if err := g.compileFunctionLiteral(m.Value); err != nil {
		return err
	}
	g.b().emit(bytecode.OpSetProp, g.constFromKey(m.Key))
	g.b().emit(bytecode.OpPop, 0)
	return nil
}
