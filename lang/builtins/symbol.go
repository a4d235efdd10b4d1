// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installSymbol wires `Symbol(desc)` (spec supplement: "private uniqueness
// tokens in lang/value") and Symbol.prototype.toString. Symbols are a
// primitive tag, not an object (lang/value.Value's Symbol case), so their
// method surface resolves through lang/vm's primitiveProto fallback the
// same way string/number/boolean literals do — there is no constructor
// `.prototype` linkage to set up beyond the bare prototype object itself.
//
// Each call mints a fresh identity via google/uuid (the same library the
// event loop uses for its timer-handle ids) rather than a plain counter,
// so uniqueness survives VM cloning without the clone needing to share
// counter state.
func installSymbol(v *vm.VM) {
	proto := v.Protos.Symbol

	method(v, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		if !this.IsSymbol() {
			return value.Str("Symbol()"), nil
		}
		return value.Str("Symbol(" + this.AsString() + ")"), nil
	})

	fn := vm.NewNativeFunction(v, "Symbol", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		desc := ""
		if len(args) > 0 && !args[0].IsUndefined() {
			desc, _ = args[0].ToString()
		}
		return value.Sym(newSymbolID(), desc), nil
	})
	v.Global.DefineOwn(atom(v, "Symbol"), object.Descriptor{Kind: object.KindData, Value: value.FromObj(fn), Writable: true, Configurable: true})
}

func newSymbolID() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}
