// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"fmt"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installRegExp wires the RegExp property surface spec §9 calls for —
// source/global/ignoreCase/multiline/lastIndex — without a matching
// engine: test/exec delegate to a host-registered external backend
// (vm_external_add) when one sits behind the instance's Ext field, and
// raise a clear error otherwise, since a PCRE-family backend is a
// Non-goal. This mirrors njs's split between its own PCRE glue
// (njs_regexp_pattern.h) and the scalar accessor surface wrapping it.
func installRegExp(v *vm.VM) {
	proto := v.Protos.RegExp

	asRegExp := func(this value.Value) (*vm.RegExpHandle, bool) {
		r, ok := this.AsObject().(*vm.RegExpHandle)
		return r, ok
	}

	method(v, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		r, ok := asRegExp(this)
		if !ok {
			return value.Str("/(?:)/"), nil
		}
		return value.Str("/" + r.Source + "/" + r.Flags()), nil
	})

	noBackend := func(r *vm.RegExpHandle) error {
		return fmt.Errorf("TypeError: RegExp matching requires a host-registered external backend (vm_external_add); none registered for /%s/%s", r.Source, r.Flags())
	}

	method(v, proto, "test", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		r, ok := asRegExp(this)
		if !ok {
			return value.FalseValue, nil
		}
		if r.Ext == nil {
			return value.UndefinedValue, noBackend(r)
		}
		res, err := r.Ext.Invoke(this, args)
		if err != nil {
			return value.UndefinedValue, err
		}
		return value.Bool(res.ToBoolean()), nil
	})

	method(v, proto, "exec", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		r, ok := asRegExp(this)
		if !ok {
			return value.NullValue, nil
		}
		if r.Ext == nil {
			return value.UndefinedValue, noBackend(r)
		}
		return r.Ext.Invoke(this, args)
	})

	ctorFunction(v, "RegExp", 2, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		source := argStr(args, 0)
		flags := argStr(args, 1)
		h := vm.NewRegExp(proto, source, flags)
		h.DefineOwn(atom(v, "source"), object.Descriptor{Kind: object.KindData, Value: value.Str(source)})
		h.DefineOwn(atom(v, "global"), object.Descriptor{Kind: object.KindData, Value: value.Bool(h.Global)})
		h.DefineOwn(atom(v, "ignoreCase"), object.Descriptor{Kind: object.KindData, Value: value.Bool(h.IgnoreCase)})
		h.DefineOwn(atom(v, "multiline"), object.Descriptor{Kind: object.KindData, Value: value.Bool(h.Multiline)})
		h.DefineOwn(atom(v, "lastIndex"), object.Descriptor{Kind: object.KindData, Value: value.Num(0), Writable: true})
		return value.FromObj(h), nil
	})
}
