// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"math"
	"strconv"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installNumber wires Number.prototype.toFixed/toString and the Number
// constructor's coercion + static surface (isInteger/isFinite/isNaN/
// parseFloat/parseInt, and the MAX_SAFE_INTEGER family of constants).
func installNumber(v *vm.VM) {
	proto := v.Protos.Number

	method(v, proto, "toFixed", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, _ := this.ToNumber()
		digits := 0
		if len(args) > 0 {
			digits = int(argNum(args, 0))
		}
		return value.Str(strconv.FormatFloat(n, 'f', digits, 64)), nil
	})

	method(v, proto, "toPrecision", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, _ := this.ToNumber()
		if len(args) == 0 || args[0].IsUndefined() {
			s, _ := this.ToString()
			return value.Str(s), nil
		}
		prec := int(argNum(args, 0))
		return value.Str(strconv.FormatFloat(n, 'g', prec, 64)), nil
	})

	method(v, proto, "toString", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		n, _ := this.ToNumber()
		if len(args) > 0 && !args[0].IsUndefined() {
			radix := int(argNum(args, 0))
			if radix != 10 {
				return value.Str(strconv.FormatInt(int64(n), radix)), nil
			}
		}
		s, _ := this.ToString()
		return value.Str(s), nil
	})

	method(v, proto, "valueOf", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		n, _ := this.ToNumber()
		return value.Num(n), nil
	})

	ctor := ctorFunction(v, "Number", 1, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Num(0), nil
		}
		n, _ := args[0].ToNumber()
		return value.Num(n), nil
	})

	constNum := func(name string, n float64) {
		ctor.Object.DefineOwn(atom(v, name), object.Descriptor{Kind: object.KindData, Value: value.Num(n)})
	}
	constNum("MAX_SAFE_INTEGER", 9007199254740991)
	constNum("MIN_SAFE_INTEGER", -9007199254740991)
	constNum("MAX_VALUE", math.MaxFloat64)
	constNum("MIN_VALUE", 5e-324)
	constNum("EPSILON", 2.220446049250313e-16)
	constNum("POSITIVE_INFINITY", math.Inf(1))
	constNum("NEGATIVE_INFINITY", math.Inf(-1))
	constNum("NaN", math.NaN())

	staticFn(v, ctor.Object, "isInteger", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a := arg(args, 0)
		if !a.IsNumber() {
			return value.FalseValue, nil
		}
		n := a.AsNumber()
		return value.Bool(!math.IsNaN(n) && !math.IsInf(n, 0) && n == math.Trunc(n)), nil
	})

	staticFn(v, ctor.Object, "isFinite", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a := arg(args, 0)
		if !a.IsNumber() {
			return value.FalseValue, nil
		}
		n := a.AsNumber()
		return value.Bool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	})

	staticFn(v, ctor.Object, "isNaN", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		a := arg(args, 0)
		return value.Bool(a.IsNumber() && math.IsNaN(a.AsNumber())), nil
	})

	staticFn(v, ctor.Object, "parseFloat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(parseLeadingFloat(argStr(args, 0))), nil
	})

	staticFn(v, ctor.Object, "parseInt", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		radix := 10
		if len(args) > 1 && !args[1].IsUndefined() {
			radix = int(argNum(args, 1))
		}
		return value.Num(parseLeadingInt(argStr(args, 0), radix)), nil
	})
}
