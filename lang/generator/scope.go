// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package generator

import (
	"github.com/ecmalite/ecmalite/lang/ast"
	"github.com/ecmalite/ecmalite/lang/bytecode"
)

// variable is one resolved binding (spec §4.G "Each variable has: kind,
// flags, originating scope, and an index (§4.H)").
type variable struct {
	name  string
	kind  bytecode.VarKind
	level bytecode.LevelType
	offset int
}

// blockScope is one lexical block within a function (spec §4.G "A scope
// node carries: kind, parent, a map of atom-id -> variable").
type blockScope struct {
	parent *blockScope
	fn     *funcScope
	vars   map[string]*variable
	labels map[string]*loopLabels
}

func newBlockScope(parent *blockScope, fn *funcScope) *blockScope {
	return &blockScope{parent: parent, fn: fn, vars: map[string]*variable{}}
}

func (b *blockScope) declare(name string, kind bytecode.VarKind) *variable {
	var v *variable
	switch {
	case b.fn.isGlobal:
		// Top-level var/let/const/function bindings live as properties of
		// the global object, resolved dynamically by name (spec §4.I
		// Move/load falls back to global by-name access; simplification
		// recorded in DESIGN.md: no separate lexical "global environment
		// record" is modelled for top-level let/const).
		v = &variable{name: name, kind: kind, level: bytecode.LevelGlobal}
	case kind == bytecode.KindVar || kind == bytecode.KindFunctionDecl:
		// var/function declarations are function-scoped: hoisted to the
		// function's local array rather than this block.
		v = b.fn.declareLocal(name, kind)
	default:
		v = &variable{name: name, kind: kind, level: bytecode.LevelLocal, offset: b.fn.allocLocal()}
	}
	b.vars[name] = v
	return v
}

// lookupLocal searches this block chain (not crossing the function
// boundary) for name.
func (b *blockScope) lookupLocal(name string) *variable {
	for s := b; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v
		}
	}
	return nil
}

// upvalue records how a closure slot is populated from the immediately
// enclosing function's frame at OpMakeClosure time (spec §4.I Move/load:
// "construct closure captures current local and closure scope into a
// closure array").
type upvalue struct {
	name          string
	fromLocal     bool // true: parent's local offset; false: parent's own closure offset
	parentOffset  int
}

// funcScope is the per-function compilation context: its own local slot
// counter, upvalue list, and code builder.
type funcScope struct {
	parent     *funcScope // nil for the top-level script
	top        *blockScope
	cur        *blockScope
	locals     []*variable
	localNames map[string]*variable
	nextLocal  int
	upvalues   []upvalue
	upvalueIdx map[string]int
	b          *builder
	loopStack  []*loopLabels
	isArrow    bool
	isAsync    bool
	isGlobal   bool

	// finallyStack is the set of `finally` blocks an abrupt completion
	// (return/break/continue) would have to run before leaving its
	// enclosing try, innermost last (spec §4.H "finally ... reachable
	// from both normal and exceptional exits"). compileTry pushes/pops
	// it around the protected region; return/break/continue consult it
	// to inline a duplicated finally tail before jumping out.
	finallyStack []*finallyScope
}

// finallyScope is one entry on funcScope.finallyStack.
type finallyScope struct {
	block *ast.BlockStatement
	// needsTryEnd is true while compiling the try's protected body,
	// where the frame's try-stack record for this try is still live (an
	// abrupt jump out skips the compiled OpTryEnd that would pop it).
	// compileTry flips it false before compiling the catch handler,
	// whose entry is already popped by the time catch code runs.
	needsTryEnd bool
}

func newFuncScope(parent *funcScope) *funcScope {
	fn := &funcScope{
		parent:     parent,
		localNames: map[string]*variable{},
		upvalueIdx: map[string]int{},
		b:          newBuilder(),
	}
	fn.top = newBlockScope(nil, fn)
	fn.cur = fn.top
	return fn
}

func (fn *funcScope) allocLocal() int {
	o := fn.nextLocal
	fn.nextLocal++
	return o
}

// declareLocal hoists a var/function binding to the function's own local
// array regardless of which nested block declares it.
func (fn *funcScope) declareLocal(name string, kind bytecode.VarKind) *variable {
	if v, ok := fn.localNames[name]; ok {
		return v
	}
	v := &variable{name: name, kind: kind, level: bytecode.LevelLocal, offset: fn.allocLocal()}
	fn.localNames[name] = v
	fn.locals = append(fn.locals, v)
	return v
}

func (fn *funcScope) pushBlock() { fn.cur = newBlockScope(fn.cur, fn) }
func (fn *funcScope) popBlock()  { fn.cur = fn.cur.parent }

// resolve looks up name starting in the current block, then the function's
// hoisted locals, then (transitively, building upvalue chains) the
// enclosing function scopes. A miss returns level=Global so the caller
// falls back to dynamic by-name global access.
func (fn *funcScope) resolve(name string) variable {
	if v := fn.cur.lookupLocal(name); v != nil {
		return *v
	}
	if v, ok := fn.localNames[name]; ok {
		return *v
	}
	if fn.parent == nil {
		return variable{name: name, level: bytecode.LevelGlobal}
	}
	if idx, ok := fn.upvalueIdx[name]; ok {
		return variable{name: name, level: bytecode.LevelClosure, offset: idx}
	}
	parentVar := fn.parent.resolve(name)
	if parentVar.level == bytecode.LevelGlobal {
		return parentVar
	}
	idx := len(fn.upvalues)
	fn.upvalues = append(fn.upvalues, upvalue{
		name:         name,
		fromLocal:    parentVar.level == bytecode.LevelLocal,
		parentOffset: parentVar.offset,
	})
	fn.upvalueIdx[name] = idx
	return variable{name: name, kind: parentVar.kind, level: bytecode.LevelClosure, offset: idx}
}

// loopLabels tracks backpatch targets for break/continue within one loop or
// switch (spec §4.H "Loop blocks carry continue and break sites").
type loopLabels struct {
	label     string // empty for unlabeled
	breaks    []int  // instruction indices needing patch to loop-exit pc
	continues []int  // instruction indices needing patch to loop-continue pc
	// finallyDepth is len(funcScope.finallyStack) when this loop was
	// entered; a break/continue only needs to run the finally blocks
	// pushed since (i.e. finallyStack[finallyDepth:]), not ones the loop
	// itself is nested inside.
	finallyDepth int
}

func (fn *funcScope) pushFinally(n *ast.BlockStatement) {
	fn.finallyStack = append(fn.finallyStack, &finallyScope{block: n, needsTryEnd: true})
}

func (fn *funcScope) popFinally() {
	fn.finallyStack = fn.finallyStack[:len(fn.finallyStack)-1]
}

func (fn *funcScope) pushLoop(label string) *loopLabels {
	l := &loopLabels{label: label, finallyDepth: len(fn.finallyStack)}
	fn.loopStack = append(fn.loopStack, l)
	return l
}

func (fn *funcScope) popLoop() {
	fn.loopStack = fn.loopStack[:len(fn.loopStack)-1]
}

func (fn *funcScope) findLoop(label string) *loopLabels {
	for i := len(fn.loopStack) - 1; i >= 0; i-- {
		if label == "" || fn.loopStack[i].label == label {
			return fn.loopStack[i]
		}
	}
	return nil
}
