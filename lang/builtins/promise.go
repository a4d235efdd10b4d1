// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/promise"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installPromise wires the Promise constructor and Promise.prototype.then/
// catch/finally onto lang/promise's capability records (spec §4.K), plus
// the static resolve/reject/all/race/allSettled combinators.
func installPromise(v *vm.VM) {
	proto := v.Protos.Promise

	asPromise := func(this value.Value) (*promise.Promise, bool) {
		p, ok := this.AsObject().(*promise.Promise)
		return p, ok
	}

	callback := func(fn value.Value) func(value.Value) (value.Value, error) {
		if fn.IsUndefined() || fn.IsNull() {
			return nil
		}
		return func(arg value.Value) (value.Value, error) {
			return v.Call(fn, value.UndefinedValue, []value.Value{arg}, false)
		}
	}

	method(v, proto, "then", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		p, ok := asPromise(this)
		if !ok {
			return value.UndefinedValue, nil
		}
		child := p.Then(callback(arg(args, 0)), callback(arg(args, 1)))
		child.SetProto(proto)
		return value.FromObj(child), nil
	})

	method(v, proto, "catch", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		p, ok := asPromise(this)
		if !ok {
			return value.UndefinedValue, nil
		}
		child := p.Catch(callback(arg(args, 0)))
		child.SetProto(proto)
		return value.FromObj(child), nil
	})

	method(v, proto, "finally", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		p, ok := asPromise(this)
		if !ok {
			return value.UndefinedValue, nil
		}
		fn := arg(args, 0)
		child := p.Finally(func() {
			if !fn.IsUndefined() {
				v.Call(fn, value.UndefinedValue, nil, false)
			}
		})
		child.SetProto(proto)
		return value.FromObj(child), nil
	})

	ctor := ctorFunction(v, "Promise", 1, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		p, resolve, reject := promise.New(v.Loop)
		p.SetProto(proto)
		executor := arg(args, 0)
		resolveFn := vm.NewNativeFunction(v, "resolve", 1, func(_ value.Value, cargs []value.Value) (value.Value, error) {
			resolve(arg(cargs, 0))
			return value.UndefinedValue, nil
		})
		rejectFn := vm.NewNativeFunction(v, "reject", 1, func(_ value.Value, cargs []value.Value) (value.Value, error) {
			reject(arg(cargs, 0))
			return value.UndefinedValue, nil
		})
		if _, err := v.Call(executor, value.UndefinedValue, []value.Value{value.FromObj(resolveFn), value.FromObj(rejectFn)}, false); err != nil {
			reject(value.Str(err.Error()))
		}
		return value.FromObj(p), nil
	})

	staticFn(v, ctor.Object, "resolve", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if p, ok := asPromise(arg(args, 0)); ok {
			return value.FromObj(p), nil
		}
		p := promise.Resolved(v.Loop, arg(args, 0))
		p.SetProto(proto)
		return value.FromObj(p), nil
	})

	staticFn(v, ctor.Object, "reject", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		p := promise.Rejected(v.Loop, arg(args, 0))
		p.SetProto(proto)
		return value.FromObj(p), nil
	})

	staticFn(v, ctor.Object, "all", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(arg(args, 0))
		if !ok {
			return value.UndefinedValue, nil
		}
		results := make([]value.Value, len(ah.Elements))
		combined, resolve, reject := promise.New(v.Loop)
		combined.SetProto(proto)
		remaining := len(ah.Elements)
		if remaining == 0 {
			resolve(arrayOf(nil, v))
			return value.FromObj(combined), nil
		}
		for i, el := range ah.Elements {
			i := i
			src := promiseOf(v, proto, el)
			src.Observe(func(fv value.Value) (value.Value, error) {
				results[i] = fv
				remaining--
				if remaining == 0 {
					resolve(arrayOf(results, v))
				}
				return value.UndefinedValue, nil
			}, func(rv value.Value) (value.Value, error) {
				reject(rv)
				return value.UndefinedValue, nil
			})
		}
		return value.FromObj(combined), nil
	})

	staticFn(v, ctor.Object, "race", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(arg(args, 0))
		if !ok {
			return value.UndefinedValue, nil
		}
		combined, resolve, reject := promise.New(v.Loop)
		combined.SetProto(proto)
		for _, el := range ah.Elements {
			src := promiseOf(v, proto, el)
			src.Observe(func(fv value.Value) (value.Value, error) {
				resolve(fv)
				return value.UndefinedValue, nil
			}, func(rv value.Value) (value.Value, error) {
				reject(rv)
				return value.UndefinedValue, nil
			})
		}
		return value.FromObj(combined), nil
	})

	staticFn(v, ctor.Object, "allSettled", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(arg(args, 0))
		if !ok {
			return value.UndefinedValue, nil
		}
		results := make([]value.Value, len(ah.Elements))
		combined, resolve, _ := promise.New(v.Loop)
		combined.SetProto(proto)
		remaining := len(ah.Elements)
		if remaining == 0 {
			resolve(arrayOf(nil, v))
			return value.FromObj(combined), nil
		}
		settle := func(i int, status string, key string, val value.Value) {
			entry := object.New(value.ClassPlain, v.Protos.Object)
			entry.DefineOwn(atom(v, "status"), object.Descriptor{Kind: object.KindData, Value: value.Str(status), Writable: true, Enumerable: true, Configurable: true})
			entry.DefineOwn(atom(v, key), object.Descriptor{Kind: object.KindData, Value: val, Writable: true, Enumerable: true, Configurable: true})
			results[i] = value.FromObj(entry)
			remaining--
			if remaining == 0 {
				resolve(arrayOf(results, v))
			}
		}
		for i, el := range ah.Elements {
			i := i
			src := promiseOf(v, proto, el)
			src.Observe(func(fv value.Value) (value.Value, error) {
				settle(i, "fulfilled", "value", fv)
				return value.UndefinedValue, nil
			}, func(rv value.Value) (value.Value, error) {
				settle(i, "rejected", "reason", rv)
				return value.UndefinedValue, nil
			})
		}
		return value.FromObj(combined), nil
	})
}

// promiseOf coerces v into a *promise.Promise (Promise.resolve semantics)
// for use by the Promise.all/race/allSettled combinators.
func promiseOf(vmi *vm.VM, proto *object.Object, val value.Value) *promise.Promise {
	if p, ok := val.AsObject().(*promise.Promise); ok {
		return p
	}
	p := promise.Resolved(vmi.Loop, val)
	p.SetProto(proto)
	return p
}
