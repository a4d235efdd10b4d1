// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installFunction wires Function.prototype.call/apply/bind (spec §4.J),
// the three host-level entry points a script uses to re-invoke a
// closure/native function with an explicit `this` and argument list.
func installFunction(v *vm.VM) {
	proto := v.Protos.Function

	method(v, proto, "call", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		var callArgs []value.Value
		if len(args) > 1 {
			callArgs = args[1:]
		}
		return v.Call(this, arg(args, 0), callArgs, false)
	})

	method(v, proto, "apply", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		var callArgs []value.Value
		if ah, ok := asArray(arg(args, 1)); ok {
			callArgs = ah.Elements
		}
		return v.Call(this, arg(args, 0), callArgs, false)
	})

	method(v, proto, "bind", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		boundThis := arg(args, 0)
		var bound []value.Value
		if len(args) > 1 {
			bound = append(bound, args[1:]...)
		}
		target := this
		name := "bound"
		if fn, ok := target.AsObject().(*vm.NativeFunction); ok {
			name = "bound " + fn.Name
		}
		return value.FromObj(vm.NewNativeFunction(v, name, 0, func(_ value.Value, callArgs []value.Value) (value.Value, error) {
			all := append(append([]value.Value{}, bound...), callArgs...)
			return v.Call(target, boundThis, all, false)
		})), nil
	})

	method(v, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		switch fn := this.AsObject().(type) {
		case *vm.NativeFunction:
			return value.Str("function " + fn.Name + "() { [native code] }"), nil
		case *vm.Closure:
			if fn.Proto.Source != "" {
				return value.Str(fn.Proto.Source), nil
			}
			return value.Str("function " + fn.Proto.Name + "() { [ecmalite code] }"), nil
		default:
			return value.Str("function () {}"), nil
		}
	})
}
