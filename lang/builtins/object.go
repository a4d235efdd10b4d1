// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/promise"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

func objHeader(v value.Value) *object.Object {
	switch t := v.AsObject().(type) {
	case *object.Object:
		return t
	case *vm.ArrayHandle:
		return t.Object
	case *vm.Closure:
		return t.Object
	case *vm.NativeFunction:
		return t.Object
	case *promise.Promise:
		return t.Object
	case *vm.Uint8ArrayHandle:
		return t.Object
	case *vm.DateHandle:
		return t.Object
	case *vm.RegExpHandle:
		return t.Object
	default:
		return nil
	}
}

func installObject(v *vm.VM) {
	proto := v.Protos.Object

	method(v, proto, "hasOwnProperty", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		h := objHeader(this)
		if h == nil {
			return value.FalseValue, nil
		}
		name := argStr(args, 0)
		for _, k := range h.OwnKeys(v.Atoms) {
			if v.Atoms.String(k) == name {
				return value.TrueValue, nil
			}
		}
		return value.FalseValue, nil
	})

	method(v, proto, "isPrototypeOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		h := objHeader(this)
		if h == nil || !arg(args, 0).IsObject() {
			return value.FalseValue, nil
		}
		cur := objHeader(arg(args, 0))
		for cur != nil {
			cur = cur.Proto()
			if cur == h {
				return value.TrueValue, nil
			}
		}
		return value.FalseValue, nil
	})

	method(v, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Str("[object Object]"), nil
	})

	method(v, proto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})

	ctor := ctorFunction(v, "Object", 1, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) > 0 && args[0].IsObject() {
			return args[0], nil
		}
		return value.FromObj(object.New(value.ClassPlain, proto)), nil
	})

	staticFn(v, ctor.Object, "keys", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		h := objHeader(arg(args, 0))
		if h == nil {
			return arrayOf(nil, v), nil
		}
		var out []value.Value
		for _, k := range h.EnumerableOwnKeys(v.Atoms) {
			out = append(out, value.Str(v.Atoms.String(k)))
		}
		return arrayOf(out, v), nil
	})

	staticFn(v, ctor.Object, "values", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		h := objHeader(arg(args, 0))
		if h == nil {
			return arrayOf(nil, v), nil
		}
		var out []value.Value
		for _, k := range h.EnumerableOwnKeys(v.Atoms) {
			val, _ := h.Get(k, arg(args, 0))
			out = append(out, val)
		}
		return arrayOf(out, v), nil
	})

	staticFn(v, ctor.Object, "entries", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		h := objHeader(arg(args, 0))
		if h == nil {
			return arrayOf(nil, v), nil
		}
		var out []value.Value
		for _, k := range h.EnumerableOwnKeys(v.Atoms) {
			val, _ := h.Get(k, arg(args, 0))
			out = append(out, arrayOf([]value.Value{value.Str(v.Atoms.String(k)), val}, v))
		}
		return arrayOf(out, v), nil
	})

	staticFn(v, ctor.Object, "assign", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		target := objHeader(arg(args, 0))
		if target == nil {
			return arg(args, 0), nil
		}
		for _, src := range args[1:] {
			sh := objHeader(src)
			if sh == nil {
				continue
			}
			for _, k := range sh.EnumerableOwnKeys(v.Atoms) {
				val, _ := sh.Get(k, src)
				target.Set(k, val, arg(args, 0))
			}
		}
		return arg(args, 0), nil
	})

	staticFn(v, ctor.Object, "freeze", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if h := objHeader(arg(args, 0)); h != nil {
			h.Frozen = true
			h.Extensible = false
		}
		return arg(args, 0), nil
	})

	staticFn(v, ctor.Object, "isFrozen", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		h := objHeader(arg(args, 0))
		return value.Bool(h == nil || h.Frozen), nil
	})

	staticFn(v, ctor.Object, "create", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		var p *object.Object
		if pv := arg(args, 0); pv.IsObject() {
			p = objHeader(pv)
		}
		return value.FromObj(object.New(value.ClassPlain, p)), nil
	})

	staticFn(v, ctor.Object, "getPrototypeOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		h := objHeader(arg(args, 0))
		if h == nil || h.Proto() == nil {
			return value.NullValue, nil
		}
		return value.FromObj(h.Proto()), nil
	})
}
