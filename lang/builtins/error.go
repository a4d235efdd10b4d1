// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installError wires Error and its TypeError/RangeError/SyntaxError/
// ReferenceError subclasses: a shared message/name/toString surface plus
// one constructor per name, each producing a ClassError instance so
// `instanceof Error` holds for all of them via the prototype chain.
func installError(v *vm.VM) {
	proto := v.Protos.Error
	proto.DefineOwn(atom(v, "name"), object.Descriptor{Kind: object.KindData, Value: value.Str("Error"), Writable: true, Configurable: true})
	proto.DefineOwn(atom(v, "message"), object.Descriptor{Kind: object.KindData, Value: value.Str(""), Writable: true, Configurable: true})

	method(v, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		h := objHeader(this)
		name := "Error"
		msg := ""
		if h != nil {
			if nv, err := h.Get(atom(v, "name"), this); err == nil && !nv.IsUndefined() {
				name, _ = nv.ToString()
			}
			if mv, err := h.Get(atom(v, "message"), this); err == nil && !mv.IsUndefined() {
				msg, _ = mv.ToString()
			}
		}
		if msg == "" {
			return value.Str(name), nil
		}
		return value.Str(name + ": " + msg), nil
	})

	makeErrorCtor(v, "Error", proto)

	for _, sub := range []string{"TypeError", "RangeError", "SyntaxError", "ReferenceError"} {
		subProto := object.New(value.ClassError, proto)
		subProto.DefineOwn(atom(v, "name"), object.Descriptor{Kind: object.KindData, Value: value.Str(sub), Writable: true, Configurable: true})
		makeErrorCtor(v, sub, subProto)
	}
}

// makeErrorCtor installs `new Error("msg")`/`Error("msg")` as equivalent
// constructions, both producing a fresh ClassError instance carrying the
// message own-property, mirroring how Error is callable without `new`.
func makeErrorCtor(v *vm.VM, name string, proto *object.Object) {
	ctorFunction(v, name, 1, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		inst := object.New(value.ClassError, proto)
		if len(args) > 0 && !args[0].IsUndefined() {
			msg, _ := args[0].ToString()
			inst.DefineOwn(atom(v, "message"), object.Descriptor{Kind: object.KindData, Value: value.Str(msg), Writable: true, Configurable: true})
		}
		return value.FromObj(inst), nil
	})
}
