// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"fmt"
	"strings"

	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installArray wires Array.prototype's common surface (spec supplement:
// njs's fuller Array.prototype beyond the distilled spec's map/filter/
// forEach/reduce baseline) plus the Array constructor and Array.isArray.
func installArray(v *vm.VM) {
	proto := v.Protos.Array

	method(v, proto, "push", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.UndefinedValue, nil
		}
		ah.Elements = append(ah.Elements, args...)
		return value.Num(float64(len(ah.Elements))), nil
	})

	method(v, proto, "pop", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok || len(ah.Elements) == 0 {
			return value.UndefinedValue, nil
		}
		last := ah.Elements[len(ah.Elements)-1]
		ah.Elements = ah.Elements[:len(ah.Elements)-1]
		return last, nil
	})

	method(v, proto, "shift", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok || len(ah.Elements) == 0 {
			return value.UndefinedValue, nil
		}
		first := ah.Elements[0]
		ah.Elements = ah.Elements[1:]
		return first, nil
	})

	method(v, proto, "unshift", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.UndefinedValue, nil
		}
		ah.Elements = append(append([]value.Value{}, args...), ah.Elements...)
		return value.Num(float64(len(ah.Elements))), nil
	})

	method(v, proto, "slice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return arrayOf(nil, v), nil
		}
		start, end := sliceRange(len(ah.Elements), args)
		return arrayOf(append([]value.Value{}, ah.Elements[start:end]...), v), nil
	})

	method(v, proto, "splice", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return arrayOf(nil, v), nil
		}
		n := len(ah.Elements)
		start := clampIndex(int(argNum(args, 0)), n)
		deleteCount := n - start
		if len(args) > 1 {
			if dc := int(argNum(args, 1)); dc >= 0 && dc < deleteCount {
				deleteCount = dc
			}
		}
		removed := append([]value.Value{}, ah.Elements[start:start+deleteCount]...)
		var inserted []value.Value
		if len(args) > 2 {
			inserted = args[2:]
		}
		tail := append([]value.Value{}, ah.Elements[start+deleteCount:]...)
		ah.Elements = append(append(ah.Elements[:start], inserted...), tail...)
		return arrayOf(removed, v), nil
	})

	method(v, proto, "concat", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		var out []value.Value
		if ok {
			out = append(out, ah.Elements...)
		}
		for _, a := range args {
			if oa, ok := asArray(a); ok {
				out = append(out, oa.Elements...)
			} else {
				out = append(out, a)
			}
		}
		return arrayOf(out, v), nil
	})

	method(v, proto, "join", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.Str(""), nil
		}
		sep := ","
		if len(args) > 0 {
			sep = argStr(args, 0)
		}
		parts := make([]string, len(ah.Elements))
		for i, el := range ah.Elements {
			if el.IsNullish() {
				parts[i] = ""
				continue
			}
			s, _ := el.ToString()
			parts[i] = s
		}
		return value.Str(strings.Join(parts, sep)), nil
	})

	method(v, proto, "indexOf", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.Num(-1), nil
		}
		target := arg(args, 0)
		for i, el := range ah.Elements {
			if value.StrictEquals(el, target) {
				return value.Num(float64(i)), nil
			}
		}
		return value.Num(-1), nil
	})

	method(v, proto, "includes", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.FalseValue, nil
		}
		target := arg(args, 0)
		for _, el := range ah.Elements {
			if value.StrictEquals(el, target) {
				return value.TrueValue, nil
			}
		}
		return value.FalseValue, nil
	})

	method(v, proto, "reverse", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return this, nil
		}
		for i, j := 0, len(ah.Elements)-1; i < j; i, j = i+1, j-1 {
			ah.Elements[i], ah.Elements[j] = ah.Elements[j], ah.Elements[i]
		}
		return this, nil
	})

	forEachLike := func(name string, build func(ah *vm.ArrayHandle, results []value.Value) value.Value) {
		method(v, proto, name, 1, func(this value.Value, args []value.Value) (value.Value, error) {
			ah, ok := asArray(this)
			if !ok {
				return value.UndefinedValue, nil
			}
			cb := arg(args, 0)
			results := make([]value.Value, len(ah.Elements))
			for i, el := range ah.Elements {
				r, err := v.Call(cb, value.UndefinedValue, []value.Value{el, value.Num(float64(i)), this}, false)
				if err != nil {
					return value.UndefinedValue, err
				}
				results[i] = r
			}
			return build(ah, results), nil
		})
	}

	forEachLike("forEach", func(ah *vm.ArrayHandle, results []value.Value) value.Value { return value.UndefinedValue })
	forEachLike("map", func(ah *vm.ArrayHandle, results []value.Value) value.Value { return arrayOf(results, v) })

	method(v, proto, "filter", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return arrayOf(nil, v), nil
		}
		cb := arg(args, 0)
		var out []value.Value
		for i, el := range ah.Elements {
			r, err := v.Call(cb, value.UndefinedValue, []value.Value{el, value.Num(float64(i)), this}, false)
			if err != nil {
				return value.UndefinedValue, err
			}
			if r.ToBoolean() {
				out = append(out, el)
			}
		}
		return arrayOf(out, v), nil
	})

	method(v, proto, "find", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.UndefinedValue, nil
		}
		cb := arg(args, 0)
		for i, el := range ah.Elements {
			r, err := v.Call(cb, value.UndefinedValue, []value.Value{el, value.Num(float64(i)), this}, false)
			if err != nil {
				return value.UndefinedValue, err
			}
			if r.ToBoolean() {
				return el, nil
			}
		}
		return value.UndefinedValue, nil
	})

	method(v, proto, "some", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.FalseValue, nil
		}
		cb := arg(args, 0)
		for i, el := range ah.Elements {
			r, err := v.Call(cb, value.UndefinedValue, []value.Value{el, value.Num(float64(i)), this}, false)
			if err != nil {
				return value.UndefinedValue, err
			}
			if r.ToBoolean() {
				return value.TrueValue, nil
			}
		}
		return value.FalseValue, nil
	})

	method(v, proto, "every", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.TrueValue, nil
		}
		cb := arg(args, 0)
		for i, el := range ah.Elements {
			r, err := v.Call(cb, value.UndefinedValue, []value.Value{el, value.Num(float64(i)), this}, false)
			if err != nil {
				return value.UndefinedValue, err
			}
			if !r.ToBoolean() {
				return value.FalseValue, nil
			}
		}
		return value.TrueValue, nil
	})

	method(v, proto, "reduce", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.UndefinedValue, nil
		}
		cb := arg(args, 0)
		elems := ah.Elements
		var acc value.Value
		start := 0
		if len(args) > 1 {
			acc = args[1]
		} else {
			if len(elems) == 0 {
				return value.UndefinedValue, fmt.Errorf("TypeError: Reduce of empty array with no initial value")
			}
			acc = elems[0]
			start = 1
		}
		for i := start; i < len(elems); i++ {
			r, err := v.Call(cb, value.UndefinedValue, []value.Value{acc, elems[i], value.Num(float64(i)), this}, false)
			if err != nil {
				return value.UndefinedValue, err
			}
			acc = r
		}
		return acc, nil
	})

	method(v, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		ah, ok := asArray(this)
		if !ok {
			return value.Str(""), nil
		}
		parts := make([]string, len(ah.Elements))
		for i, el := range ah.Elements {
			s, _ := el.ToString()
			parts[i] = s
		}
		return value.Str(strings.Join(parts, ",")), nil
	})

	ctor := ctorFunction(v, "Array", 1, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 1 && args[0].IsNumber() {
			n := int(args[0].AsNumber())
			return value.FromObj(vm.NewArray(v, make([]value.Value, n))), nil
		}
		return value.FromObj(vm.NewArray(v, args)), nil
	})

	staticFn(v, ctor.Object, "isArray", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		_, ok := asArray(arg(args, 0))
		return value.Bool(ok), nil
	})

	staticFn(v, ctor.Object, "from", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		if ah, ok := asArray(arg(args, 0)); ok {
			return arrayOf(append([]value.Value{}, ah.Elements...), v), nil
		}
		if s := arg(args, 0); s.IsString() {
			var out []value.Value
			for _, r := range s.AsString() {
				out = append(out, value.Str(string(r)))
			}
			return arrayOf(out, v), nil
		}
		return arrayOf(nil, v), nil
	})
}

func sliceRange(n int, args []value.Value) (int, int) {
	start := 0
	end := n
	if len(args) > 0 {
		start = clampIndex(int(argNum(args, 0)), n)
	}
	if len(args) > 1 && !args[1].IsUndefined() {
		end = clampIndex(int(argNum(args, 1)), n)
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
