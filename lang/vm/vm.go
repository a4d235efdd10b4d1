// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package vm implements the bytecode interpreter of spec §4.I: a
// switch-dispatch loop over the instructions lang/generator emits, with
// move/load, arithmetic/logical, property, control, iteration, and async
// opcode classes, frame call dispatch (§4.J), and exception unwinding via
// the frame chain.
//
// Grounded on the teacher's lang/vm/vm.go dispatch-loop shape (a large
// switch over a decoded opcode, per-opcode gas/cost accounting removed
// since ecmalite has no gas model) generalized from a 256-register machine
// operating on uint64 words to a stack-based machine operating on
// value.Value, since ECMAScript needs heap-allocated tagged values rather
// than fixed machine words.
package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/ecmalite/ecmalite/lang/bytecode"
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/promise"
	"github.com/ecmalite/ecmalite/lang/strtab"
	"github.com/ecmalite/ecmalite/lang/value"
)

// ErrInvalidOpcode mirrors the teacher's vm.ErrInvalidOpcode sentinel.
var ErrInvalidOpcode = errors.New("vm: invalid opcode")

// ThrowError wraps an uncaught ECMAScript exception value as it unwinds the
// Go call stack that backs the frame chain (spec §4.I "Exception
// unwinding"). Each nested Call() invocation mirrors a VM frame, so Go's
// own call stack doubles as the frame chain the spec describes.
type ThrowError struct {
	Value value.Value
}

func (e *ThrowError) Error() string {
	if s, ok := e.Value.ToString(); ok {
		return "uncaught exception: " + s
	}
	return "uncaught exception"
}

// box is a mutable storage cell referenced by both a defining frame and
// any closures that capture it, implementing closure-by-reference without
// escape analysis (documented simplification vs. the teacher's raw
// register file: every local is boxed, not just captured ones).
type box struct{ v value.Value }

// Prototypes holds the shared-immutable built-in prototype objects each
// value.Class needs (spec §4.M "these live in the shared-immutable heap
// and are referenced, not copied, by every VM instance"), populated once
// by lang/builtins.Install.
type Prototypes struct {
	Object, Array, Function, String, Number, Boolean, RegExp, Date, Error, Promise, Symbol *object.Object
}

// Loop is the minimal interface the VM needs from lang/eventloop to drain
// microtasks after a synchronous entry returns (spec §4.K/§5), and to hand
// a scheduler to lang/promise so promise reactions queue as microtasks.
type Loop interface {
	DrainMicrotasks()
	QueueMicrotask(func())
}

// ModuleLoader resolves a require/import specifier the module registry
// doesn't already hold (spec §6 host_ops.module_loader), returning the
// module's exports object or false if the host has nothing by that name.
type ModuleLoader func(name string) (*object.Object, bool)

// VM is one ecmalite execution context (spec §3 "VM instance").
type VM struct {
	Global   *object.Object
	Protos   Prototypes
	Atoms    *strtab.Table
	Loop     Loop
	External map[string]*object.Object // registered external objects (vm_external_add)

	// Modules is the module registry (spec §6 "a hash keyed by module
	// name"); Clone aliases it, since loaded modules are shared-immutable
	// exports objects, not per-clone mutable state.
	Modules      map[string]*object.Object
	ModuleLoader ModuleLoader
}

// New creates a VM with a fresh global object and a per-VM atom table.
func New() *VM {
	return &VM{
		Global:   object.New(value.ClassPlain, nil),
		Atoms:    strtab.NewVMTable(),
		External: map[string]*object.Object{},
		Modules:  map[string]*object.Object{},
	}
}

// Clone creates a fresh mutable VM sharing this VM's shared-immutable atom
// table but with its own global object and prototype set aliased (spec §5
// "Clone creates a private pool, copies mutable scope values, and aliases
// shared objects"). Prototypes are aliased (shared, read-only in practice);
// Global is fresh.
func (vm *VM) Clone() *VM {
	return &VM{
		Global:       object.New(value.ClassPlain, nil),
		Protos:       vm.Protos,
		Atoms:        strtab.NewVMTable(),
		Loop:         vm.Loop,
		External:     map[string]*object.Object{},
		Modules:      vm.Modules,
		ModuleLoader: vm.ModuleLoader,
	}
}

// RegisterModule installs a module record under name (e.g. ahead-of-time,
// before any require(name) call observes it).
func (vm *VM) RegisterModule(name string, exports *object.Object) {
	vm.Modules[name] = exports
}

// Require implements require(name) (spec §6 "Module registry"): a hit in
// the registry returns its exports object; a miss consults ModuleLoader
// (host_ops.module_loader) and caches the result; otherwise it reports the
// miss to the caller, which raises a ReferenceError.
func (vm *VM) Require(name string) (*object.Object, bool) {
	if m, ok := vm.Modules[name]; ok {
		return m, true
	}
	if vm.ModuleLoader == nil {
		return nil, false
	}
	m, ok := vm.ModuleLoader(name)
	if !ok {
		return nil, false
	}
	vm.Modules[name] = m
	return m, true
}

// frame is one activation record (spec §4.I frame lifecycle state machine:
// created -> running -> {returned|threw|suspended}).
type frame struct {
	vm       *VM
	proto    *bytecode.FunctionProto
	code     []bytecode.Instruction
	constants []interface{}
	pc       int
	locals   []*box
	closure  []*box
	this     value.Value
	newTarget value.Value
	stack    []value.Value
	// tryStack holds one entry per active try block, innermost last. A
	// non-negative entry is the catch PC. A negative entry n encodes a
	// finally-only try (no catch handler): its finally entry PC is -n-1,
	// and handleThrow must re-throw the original exception once that
	// finally tail completes, rather than silently absorb it.
	tryStack       []int
	pendingRethrow *value.Value
}

func (f *frame) push(v value.Value) { f.stack = append(f.stack, v) }
func (f *frame) pop() value.Value {
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}
func (f *frame) peek() value.Value { return f.stack[len(f.stack)-1] }

// Run executes a top-level chunk (vm_run, spec §6) with `this` = globalThis,
// draining microtasks after the synchronous portion completes.
func (vm *VM) Run(chunk *bytecode.Chunk) (value.Value, error) {
	f := &frame{
		vm:        vm,
		code:      chunk.Code,
		constants: chunk.Constants,
		locals:    make([]*box, chunk.LocalSlots),
		this:      value.FromObj(vm.Global),
	}
	for i := range f.locals {
		f.locals[i] = &box{}
	}
	v, err := vm.exec(f)
	if err != nil {
		return value.UndefinedValue, err
	}
	if vm.Loop != nil {
		vm.Loop.DrainMicrotasks()
	}
	return v, nil
}

// Call re-enters the VM for a function value (vm_call, spec §6). Native
// (host) functions are represented as *NativeFunction objects handled
// directly; script functions execute a fresh frame built from their
// FunctionProto.
func (vm *VM) Call(fn value.Value, this value.Value, args []value.Value, isNew bool) (value.Value, error) {
	if !fn.IsObject() || fn.AsObject() == nil {
		return value.UndefinedValue, &ThrowError{Value: value.Str("TypeError: not callable")}
	}
	switch callee := fn.AsObject().(type) {
	case *NativeFunction:
		return callee.Fn(this, args)
	case *Closure:
		return vm.callClosure(callee, this, args, isNew)
	case *object.Object:
		// A vm_external_add host object is callable through its accessor
		// table's Invoke entry (spec §6 "get/set/keys/invoke").
		if callee.Ext != nil {
			return callee.Ext.Invoke(this, args)
		}
		return value.UndefinedValue, &ThrowError{Value: value.Str("TypeError: not callable")}
	default:
		return value.UndefinedValue, &ThrowError{Value: value.Str("TypeError: not callable")}
	}
}

func (vm *VM) callClosure(c *Closure, this value.Value, args []value.Value, isNew bool) (value.Value, error) {
	proto := c.Proto
	f := &frame{
		vm:        vm,
		proto:     proto,
		code:      proto.Code,
		constants: proto.Constants,
		locals:    make([]*box, proto.LocalSlots),
		closure:   c.Captured,
		this:      this,
	}
	for i := range f.locals {
		f.locals[i] = &box{}
	}
	if isNew {
		f.newTarget = fn(c)
	}
	for i := 0; i < proto.ParamCount && i < len(f.locals); i++ {
		if i < len(args) {
			f.locals[i].v = args[i]
		} else {
			f.locals[i].v = value.UndefinedValue
		}
	}
	if proto.HasRestParam && proto.ParamCount > 0 {
		restIdx := proto.ParamCount - 1
		var rest []value.Value
		if len(args) > restIdx {
			rest = append(rest, args[restIdx:]...)
		}
		f.locals[restIdx].v = value.FromObj(NewArray(vm, rest))
	}
	if proto.IsAsync {
		return vm.runAsync(f)
	}
	return vm.exec(f)
}

// runAsync implements spec §4.K's async function prologue/epilogue: the
// call returns a promise capability immediately; a normal return resolves
// it with the return value, an uncaught throw rejects it with the thrown
// value. Suspension at each `await` is already handled by awaitSync's
// microtask-draining pump (documented simplification vs. true coroutine
// suspend/resume), so wrapping the call boundary in a capability is the
// only piece of §4.K left to implement at the frame-execution level.
func (vm *VM) runAsync(f *frame) (value.Value, error) {
	p, resolve, reject := promise.New(vm.Loop)
	p.SetProto(vm.Protos.Promise)
	result, err := vm.exec(f)
	if err != nil {
		if te, ok := err.(*ThrowError); ok {
			reject(te.Value)
			return value.FromObj(p), nil
		}
		return value.UndefinedValue, err
	}
	resolve(result)
	return value.FromObj(p), nil
}

func fn(c *Closure) value.Value { return value.FromObj(c) }

// Closure is a callable script function value (spec §3's Function
// sub-kind, §4.J).
type Closure struct {
	*object.Object
	Proto    *bytecode.FunctionProto
	Captured []*box
}

func (c *Closure) ClassOf() value.Class { return value.ClassFunction }

// NativeFunction wraps a Go function as a callable ecmalite value, used by
// lang/builtins and host vm_external_add registrations.
type NativeFunction struct {
	*object.Object
	Name string
	Fn   func(this value.Value, args []value.Value) (value.Value, error)
}

func (n *NativeFunction) ClassOf() value.Class { return value.ClassFunction }

// NewNativeFunction wraps fn as a callable, installing a `name`/`length`
// pair on its object header (spec §4.M built-in property tables).
func NewNativeFunction(vm *VM, name string, length int, fn func(this value.Value, args []value.Value) (value.Value, error)) *NativeFunction {
	obj := object.New(value.ClassFunction, vm.Protos.Function)
	nf := &NativeFunction{Object: obj, Name: name, Fn: fn}
	nf.DefineOwn(vm.Atoms.Atomize("name"), object.Descriptor{Kind: object.KindData, Value: value.Str(name), Configurable: true})
	nf.DefineOwn(vm.Atoms.Atomize("length"), object.Descriptor{Kind: object.KindData, Value: value.Num(float64(length)), Configurable: true})
	return nf
}

// exec runs f to completion, returning its result value (normal return) or
// an error — a *ThrowError for an uncaught script exception, or a plain Go
// error for a VM-internal fault.
func (vm *VM) exec(f *frame) (value.Value, error) {
	for {
		if f.pc >= len(f.code) {
			return value.UndefinedValue, nil
		}
		instr := f.code[f.pc]
		f.pc++
		v, done, err := vm.step(f, instr)
		if err != nil {
			if te, ok := err.(*ThrowError); ok {
				if handled := vm.handleThrow(f, te.Value); handled {
					continue
				}
			}
			return value.UndefinedValue, err
		}
		if done {
			return v, nil
		}
	}
}

// handleThrow searches f's try stack for a handler; if found, truncates
// the stack to that handler and resumes at its catch pc with the exception
// pushed (spec §4.I "Exception unwinding"). A finally-only try (no catch
// handler) instead resumes at the finally tail with the exception stashed
// in pendingRethrow, which OpFinallyExit re-raises once that tail runs, so
// an uncaught exception still propagates after finally observes it.
func (vm *VM) handleThrow(f *frame, exc value.Value) bool {
	if len(f.tryStack) == 0 {
		return false
	}
	entry := f.tryStack[len(f.tryStack)-1]
	f.tryStack = f.tryStack[:len(f.tryStack)-1]
	f.stack = f.stack[:0]
	if entry < 0 {
		finallyPC := -entry - 1
		excCopy := exc
		f.pendingRethrow = &excCopy
		f.pc = finallyPC
		return true
	}
	f.push(exc)
	f.pc = entry
	return true
}

func (vm *VM) constStr(f *frame, idx int32) string {
	return f.constants[idx].(string)
}

func (vm *VM) constNum(f *frame, idx int32) float64 {
	return f.constants[idx].(float64)
}

// step executes exactly one instruction. The (value, true, nil) return
// shape signals a completed Run/Call (OpHalt/OpReturn at top level).
func (vm *VM) step(f *frame, instr bytecode.Instruction) (value.Value, bool, error) {
	switch instr.Op {

	case bytecode.OpNop:
		// no-op

	case bytecode.OpLoadConst:
		c := f.constants[instr.Operand]
		switch cv := c.(type) {
		case float64:
			f.push(value.Num(cv))
		case string:
			f.push(value.Str(cv))
		default:
			f.push(value.UndefinedValue)
		}

	case bytecode.OpLoadUndef:
		f.push(value.UndefinedValue)
	case bytecode.OpLoadNull:
		f.push(value.NullValue)
	case bytecode.OpLoadTrue:
		f.push(value.TrueValue)
	case bytecode.OpLoadFalse:
		f.push(value.FalseValue)
	case bytecode.OpLoadThis:
		f.push(f.this)

	case bytecode.OpLoadVar:
		idx := bytecode.Index(instr.Operand)
		f.push(vm.slot(f, idx).v)

	case bytecode.OpStoreVar:
		idx := bytecode.Index(instr.Operand)
		vm.slot(f, idx).v = f.pop()

	case bytecode.OpDeclareVar:
		// TDZ marker only; current implementation initializes to undefined
		// eagerly at frame creation, so this is a documented no-op.

	case bytecode.OpDup:
		f.push(f.peek())
	case bytecode.OpPop:
		f.pop()
	case bytecode.OpSwap:
		n := len(f.stack)
		f.stack[n-1], f.stack[n-2] = f.stack[n-2], f.stack[n-1]

	case bytecode.OpMakeClosure:
		proto := f.constants[instr.Operand].(*bytecode.FunctionProto)
		captured := make([]*box, len(proto.Upvalues))
		for i, uv := range proto.Upvalues {
			if uv.FromLocal {
				captured[i] = f.locals[uv.ParentOffset]
			} else {
				captured[i] = f.closure[uv.ParentOffset]
			}
		}
		clo := &Closure{Object: object.New(value.ClassFunction, vm.Protos.Function), Proto: proto, Captured: captured}
		clo.DefineOwn(vm.Atoms.Atomize("name"), object.Descriptor{Kind: object.KindData, Value: value.Str(proto.Name), Configurable: true})
		clo.DefineOwn(vm.Atoms.Atomize("length"), object.Descriptor{Kind: object.KindData, Value: value.Num(float64(proto.ParamCount)), Configurable: true})
		protoObj := object.New(value.ClassPlain, vm.Protos.Object)
		clo.DefineOwn(vm.Atoms.Atomize("prototype"), object.Descriptor{Kind: object.KindData, Value: value.FromObj(protoObj), Writable: true})
		protoObj.DefineOwn(vm.Atoms.Atomize("constructor"), object.Descriptor{Kind: object.KindData, Value: value.FromObj(clo), Writable: true, Configurable: true})
		f.push(value.FromObj(clo))

	default:
		return vm.stepRest(f, instr)
	}
	return value.UndefinedValue, false, nil
}

// slot resolves a packed Index against the current frame's local or
// closure register file (spec §4.I "Operand fetch resolves indices against
// vm->levels[level-type]").
func (vm *VM) slot(f *frame, idx bytecode.Index) *box {
	switch idx.Level() {
	case bytecode.LevelLocal, bytecode.LevelArguments:
		return f.locals[idx.Offset()]
	case bytecode.LevelClosure:
		return f.closure[idx.Offset()]
	default:
		return &box{}
	}
}

func boolVal(b bool) value.Value { return value.Bool(b) }

// toPrimitive implements spec §4.D ToPrimitive with real valueOf/toString
// invocation — value.Value.ToPrimitive is a stub for non-object values
// only, since the value package can't import vm to call script methods
// without a cycle. Date reverses the method order per ECMAScript's Date
// exception: under the "default" hint toString is tried before valueOf.
func (vm *VM) toPrimitive(v value.Value, hint string) (value.Value, error) {
	if !v.IsObject() {
		p, ok := v.ToPrimitive(hint)
		if !ok {
			return value.Value{}, fmt.Errorf("TypeError: cannot convert a Symbol value to a primitive")
		}
		return p, nil
	}
	h := objectHeaderOf(v.AsObject())
	if h == nil {
		return value.Str(fmt.Sprintf("[object %T]", v.AsObject())), nil
	}
	methods := []string{"valueOf", "toString"}
	if hint == "string" || (hint == "default" && h.ClassOf() == value.ClassDate) {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		fnv, err := h.Get(vm.Atoms.Atomize(name), v)
		if err != nil || !fnv.IsObject() {
			continue
		}
		result, err := vm.Call(fnv, v, nil, false)
		if err != nil || result.IsObject() {
			continue
		}
		return result, nil
	}
	return value.Value{}, fmt.Errorf("TypeError: cannot convert object to primitive value")
}

// numericBinOp applies an arithmetic/bitwise opcode using §4.D coercions.
func (vm *VM) numericBinOp(op bytecode.Opcode, a, b value.Value) (value.Value, error) {
	// `+` overloads string concatenation per spec §4.I "string `+` uses a
	// chunked builder" — here Go's string concatenation already amortizes
	// via the runtime's builder-like append, so no explicit builder type
	// is needed.
	if op == bytecode.OpAdd {
		ap, aerr := vm.toPrimitive(a, "default")
		bp, berr := vm.toPrimitive(b, "default")
		if aerr != nil || berr != nil {
			return value.Value{}, fmt.Errorf("TypeError: cannot convert symbol")
		}
		if ap.IsString() || bp.IsString() {
			as, _ := ap.ToString()
			bs, _ := bp.ToString()
			return value.Str(as + bs), nil
		}
		an, _ := ap.ToNumber()
		bn, _ := bp.ToNumber()
		return value.Num(an + bn), nil
	}
	an, aok := a.ToNumber()
	bn, bok := b.ToNumber()
	if !aok || !bok {
		return value.Value{}, fmt.Errorf("TypeError: cannot convert symbol to number")
	}
	switch op {
	case bytecode.OpSub:
		return value.Num(an - bn), nil
	case bytecode.OpMul:
		return value.Num(an * bn), nil
	case bytecode.OpDiv:
		return value.Num(an / bn), nil
	case bytecode.OpMod:
		return value.Num(math.Mod(an, bn)), nil
	case bytecode.OpExp:
		return value.Num(math.Pow(an, bn)), nil
	case bytecode.OpBitAnd:
		return value.Num(float64(a.ToInt32() & b.ToInt32())), nil
	case bytecode.OpBitOr:
		return value.Num(float64(a.ToInt32() | b.ToInt32())), nil
	case bytecode.OpBitXor:
		return value.Num(float64(a.ToInt32() ^ b.ToInt32())), nil
	case bytecode.OpShl:
		return value.Num(float64(a.ToInt32() << (b.ToUint32() & 31))), nil
	case bytecode.OpShr:
		return value.Num(float64(a.ToInt32() >> (b.ToUint32() & 31))), nil
	case bytecode.OpUShr:
		return value.Num(float64(a.ToUint32() >> (b.ToUint32() & 31))), nil
	}
	return value.Value{}, fmt.Errorf("%w: numeric op %v", ErrInvalidOpcode, op)
}

func compareOp(op bytecode.Opcode, a, b value.Value) (value.Value, error) {
	switch op {
	case bytecode.OpEq:
		return boolVal(value.AbstractEquals(a, b)), nil
	case bytecode.OpNeq:
		return boolVal(!value.AbstractEquals(a, b)), nil
	case bytecode.OpStrictEq:
		return boolVal(value.StrictEquals(a, b)), nil
	case bytecode.OpStrictNeq:
		return boolVal(!value.StrictEquals(a, b)), nil
	}
	if a.IsString() && b.IsString() {
		as, bs := a.AsString(), b.AsString()
		switch op {
		case bytecode.OpLt:
			return boolVal(as < bs), nil
		case bytecode.OpLte:
			return boolVal(as <= bs), nil
		case bytecode.OpGt:
			return boolVal(as > bs), nil
		case bytecode.OpGte:
			return boolVal(as >= bs), nil
		}
	}
	an, aok := a.ToNumber()
	bn, bok := b.ToNumber()
	if !aok || !bok || math.IsNaN(an) || math.IsNaN(bn) {
		return value.FalseValue, nil
	}
	switch op {
	case bytecode.OpLt:
		return boolVal(an < bn), nil
	case bytecode.OpLte:
		return boolVal(an <= bn), nil
	case bytecode.OpGt:
		return boolVal(an > bn), nil
	case bytecode.OpGte:
		return boolVal(an >= bn), nil
	}
	return value.Value{}, fmt.Errorf("%w: compare op %v", ErrInvalidOpcode, op)
}
