// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package builtins installs the host-independent global object surface of
// spec §4.M/§2 row M: Object, Array, String, Number, Boolean, Math, JSON,
// Error (and its subclasses), and a thin Date/RegExp, plus the
// console.log convenience the AMBIENT STACK calls for.
//
// Grounded on _examples/original_source/njs (the fuller njs built-in
// surface — see SPEC_FULL.md "Supplemented features") for which methods
// to include beyond the spec's six end-to-end scenarios, and on
// stdlib_ref/stdlib/math/math.go (teacher: a J/APL-style array-math
// library) for this package's *role* — "the file that owns Math" — even
// though its map/reduce/zip array-combinator API doesn't itself carry
// over, since ECMAScript's Math operates on scalars, not typed arrays.
package builtins

import (
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/strtab"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// Install populates v.Protos and v.Global with the standard built-in
// surface. Call once per fresh VM (vm_create, spec §6); Clone aliases the
// resulting prototypes rather than re-installing them.
func Install(v *vm.VM) {
	v.Protos.Object = object.New(value.ClassPlain, nil)
	v.Protos.Function = object.New(value.ClassPlain, v.Protos.Object)
	v.Protos.Array = object.New(value.ClassPlain, v.Protos.Object)
	v.Protos.String = object.New(value.ClassPlain, v.Protos.Object)
	v.Protos.Number = object.New(value.ClassPlain, v.Protos.Object)
	v.Protos.Boolean = object.New(value.ClassPlain, v.Protos.Object)
	v.Protos.RegExp = object.New(value.ClassPlain, v.Protos.Object)
	v.Protos.Date = object.New(value.ClassPlain, v.Protos.Object)
	v.Protos.Error = object.New(value.ClassPlain, v.Protos.Object)
	v.Protos.Promise = object.New(value.ClassPlain, v.Protos.Object)
	v.Protos.Symbol = object.New(value.ClassPlain, v.Protos.Object)
	v.Global.SetProto(v.Protos.Object)

	installObject(v)
	installFunction(v)
	installArray(v)
	installString(v)
	installNumber(v)
	installBoolean(v)
	installMath(v)
	installJSON(v)
	installError(v)
	installDate(v)
	installRegExp(v)
	installSymbol(v)
	installTypedArray(v)
	installConsole(v)
	installGlobalFunctions(v)
}

func atom(v *vm.VM, s string) strtab.Atom { return v.Atoms.Atomize(s) }

// method installs a NativeFunction data property named name on recv.
func method(v *vm.VM, recv *object.Object, name string, length int, fn func(this value.Value, args []value.Value) (value.Value, error)) {
	nf := vm.NewNativeFunction(v, name, length, fn)
	recv.DefineOwn(atom(v, name), object.Descriptor{Kind: object.KindData, Value: value.FromObj(nf), Writable: true, Configurable: true})
}

// staticFn installs a top-level constructor-namespaced function (e.g.
// Object.keys, Array.isArray, Number.isInteger).
func staticFn(v *vm.VM, recv *object.Object, name string, length int, fn func(this value.Value, args []value.Value) (value.Value, error)) {
	method(v, recv, name, length, fn)
}

func arg(args []value.Value, i int) value.Value {
	if i < len(args) {
		return args[i]
	}
	return value.UndefinedValue
}

func argStr(args []value.Value, i int) string {
	s, _ := arg(args, i).ToString()
	return s
}

func argNum(args []value.Value, i int) float64 {
	n, _ := arg(args, i).ToNumber()
	return n
}

// ctorFunction wraps a Go constructor body as both a plain NativeFunction
// and installs it as a global binding, mirroring how `function Foo(){}`
// declarations double as both callables and namespaces for static methods.
func ctorFunction(v *vm.VM, name string, length int, proto *object.Object, fn func(this value.Value, args []value.Value) (value.Value, error)) *vm.NativeFunction {
	nf := vm.NewNativeFunction(v, name, length, fn)
	nf.DefineOwn(atom(v, "prototype"), object.Descriptor{Kind: object.KindData, Value: value.FromObj(proto)})
	proto.DefineOwn(atom(v, "constructor"), object.Descriptor{Kind: object.KindData, Value: value.FromObj(nf), Writable: true, Configurable: true})
	v.Global.DefineOwn(atom(v, name), object.Descriptor{Kind: object.KindData, Value: value.FromObj(nf), Writable: true, Configurable: true})
	return nf
}

func arrayOf(vals []value.Value, vmi *vm.VM) value.Value {
	return value.FromObj(vm.NewArray(vmi, vals))
}

func asArray(v value.Value) (*vm.ArrayHandle, bool) {
	ah, ok := v.AsObject().(*vm.ArrayHandle)
	return ah, ok
}
