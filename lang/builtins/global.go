// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"fmt"
	"strings"

	"github.com/ecmalite/ecmalite/lang/generator"
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/parser"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// timerHost is the richer subset of lang/eventloop.Loop's API that
// setTimeout/setInterval/setImmediate/clearTimeout/clearInterval need;
// v.Loop only promises DrainMicrotasks/QueueMicrotask, so these globals
// are only wired when the attached Loop also satisfies this interface
// (true for the concrete *eventloop.Loop an embedding host attaches).
type timerHost interface {
	SetTimeout(delayMS int64, fire func()) string
	SetInterval(delayMS int64, fire func()) string
	SetImmediate(fire func()) string
	ClearTimeout(id string)
	ClearInterval(id string)
}

// installGlobalFunctions wires the free-standing global functions: the
// parseInt/parseFloat/isNaN/isFinite coercions, globalThis, eval, Promise,
// and (when v.Loop is set) the setTimeout/setInterval/setImmediate family
// (spec §4.K/§4.L, §6 embedding surface).
func installGlobalFunctions(v *vm.VM) {
	v.Global.DefineOwn(atom(v, "globalThis"), object.Descriptor{Kind: object.KindData, Value: value.FromObj(v.Global), Writable: true, Configurable: true})
	v.Global.DefineOwn(atom(v, "undefined"), object.Descriptor{Kind: object.KindData, Value: value.UndefinedValue})
	v.Global.DefineOwn(atom(v, "NaN"), object.Descriptor{Kind: object.KindData, Value: value.Num(nan())})
	v.Global.DefineOwn(atom(v, "Infinity"), object.Descriptor{Kind: object.KindData, Value: value.Num(infinity())})

	global := func(name string, length int, fn func(this value.Value, args []value.Value) (value.Value, error)) {
		method(v, v.Global, name, length, fn)
	}

	global("parseInt", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		radix := 0
		if len(args) > 1 && !args[1].IsUndefined() {
			radix = int(argNum(args, 1))
		}
		return value.Num(parseLeadingInt(argStr(args, 0), radix)), nil
	})

	global("parseFloat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(parseLeadingFloat(argStr(args, 0))), nil
	})

	global("isNaN", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n := argNum(args, 0)
		return value.Bool(n != n), nil
	})

	global("isFinite", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n := argNum(args, 0)
		return value.Bool(n == n && n != infinity() && n != -infinity()), nil
	})

	global("eval", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		src := arg(args, 0)
		if !src.IsString() {
			return src, nil
		}
		return evalSource(v, src.AsString())
	})

	global("require", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		name := argStr(args, 0)
		mod, ok := v.Require(name)
		if !ok {
			return value.UndefinedValue, fmt.Errorf("ReferenceError: module not found: %s", name)
		}
		mod.SetProto(v.Protos.Object)
		return value.FromObj(mod), nil
	})

	installPromise(v)

	host, ok := v.Loop.(timerHost)
	if !ok {
		return
	}

	global("setTimeout", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		fn := arg(args, 0)
		delay := int64(argNum(args, 1))
		extra := append([]value.Value{}, args[min(2, len(args)):]...)
		id := host.SetTimeout(delay, func() { v.Call(fn, value.UndefinedValue, extra, false) })
		return value.Str(id), nil
	})

	global("setInterval", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		fn := arg(args, 0)
		delay := int64(argNum(args, 1))
		extra := append([]value.Value{}, args[min(2, len(args)):]...)
		id := host.SetInterval(delay, func() { v.Call(fn, value.UndefinedValue, extra, false) })
		return value.Str(id), nil
	})

	global("setImmediate", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		fn := arg(args, 0)
		extra := append([]value.Value{}, args[min(1, len(args)):]...)
		id := host.SetImmediate(func() { v.Call(fn, value.UndefinedValue, extra, false) })
		return value.Str(id), nil
	})

	global("clearTimeout", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		host.ClearTimeout(argStr(args, 0))
		return value.UndefinedValue, nil
	})

	global("clearInterval", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		host.ClearInterval(argStr(args, 0))
		return value.UndefinedValue, nil
	})
}

// evalSource compiles and runs src against the current global scope,
// the indirect-eval form (spec §4 "eval always runs as indirect eval
// against the global scope" — this VM never distinguishes direct eval).
func evalSource(v *vm.VM, src string) (value.Value, error) {
	prog, errs := parser.Parse("eval", src)
	if len(errs) > 0 {
		return value.UndefinedValue, fmt.Errorf("SyntaxError: %s", strings.Join(errs, "; "))
	}
	chunk, err := generator.Generate("eval", src, prog)
	if err != nil {
		return value.UndefinedValue, fmt.Errorf("SyntaxError: %s", err.Error())
	}
	return v.Run(chunk)
}

func infinity() float64 { return 1.0 / zero() }
func zero() float64     { return 0 }
