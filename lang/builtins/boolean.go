// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installBoolean wires a minimal Boolean(x)/toString/valueOf surface; there
// is no separate boxed-Boolean object representation in this VM, so the
// constructor is a plain coercion function.
func installBoolean(v *vm.VM) {
	proto := v.Protos.Boolean

	method(v, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		if this.ToBoolean() {
			return value.Str("true"), nil
		}
		return value.Str("false"), nil
	})

	method(v, proto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(this.ToBoolean()), nil
	})

	ctorFunction(v, "Boolean", 1, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(arg(args, 0).ToBoolean()), nil
	})
}
