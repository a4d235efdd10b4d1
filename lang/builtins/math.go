// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"math"
	"math/rand"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installMath installs the global Math namespace object. Grounded on
// stdlib_ref/stdlib/math/math.go for this file's role in the package
// (the one place Math-shaped functionality lives) rather than its API,
// since that file's combinators operate over typed arrays and ECMAScript's
// Math is a scalar-only namespace.
func installMath(v *vm.VM) {
	m := object.New(value.ClassPlain, v.Protos.Object)
	v.Global.DefineOwn(atom(v, "Math"), object.Descriptor{Kind: object.KindData, Value: value.FromObj(m)})

	constNum := func(name string, n float64) {
		m.DefineOwn(atom(v, name), object.Descriptor{Kind: object.KindData, Value: value.Num(n)})
	}
	constNum("PI", math.Pi)
	constNum("E", math.E)
	constNum("LN2", math.Ln2)
	constNum("LN10", math.Log(10))
	constNum("LOG2E", 1/math.Ln2)
	constNum("LOG10E", 1/math.Log(10))
	constNum("SQRT2", math.Sqrt2)
	constNum("SQRT1_2", math.Sqrt(0.5))

	unary := func(name string, fn func(float64) float64) {
		staticFn(v, m, name, 1, func(this value.Value, args []value.Value) (value.Value, error) {
			return value.Num(fn(argNum(args, 0))), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sign", func(n float64) float64 {
		switch {
		case math.IsNaN(n):
			return n
		case n > 0:
			return 1
		case n < 0:
			return -1
		default:
			return n
		}
	})
	unary("round", func(n float64) float64 { return math.Floor(n + 0.5) })
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)

	staticFn(v, m, "pow", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(math.Pow(argNum(args, 0), argNum(args, 1))), nil
	})

	staticFn(v, m, "atan2", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(math.Atan2(argNum(args, 0), argNum(args, 1))), nil
	})

	staticFn(v, m, "max", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Num(math.Inf(-1)), nil
		}
		best := argNum(args, 0)
		for i := 1; i < len(args); i++ {
			n := argNum(args, i)
			if math.IsNaN(n) {
				return value.Num(nan()), nil
			}
			if n > best {
				best = n
			}
		}
		return value.Num(best), nil
	})

	staticFn(v, m, "min", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Num(math.Inf(1)), nil
		}
		best := argNum(args, 0)
		for i := 1; i < len(args); i++ {
			n := argNum(args, i)
			if math.IsNaN(n) {
				return value.Num(nan()), nil
			}
			if n < best {
				best = n
			}
		}
		return value.Num(best), nil
	})

	staticFn(v, m, "random", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(rand.Float64()), nil
	})

	staticFn(v, m, "hypot", 2, func(this value.Value, args []value.Value) (value.Value, error) {
		sum := 0.0
		for i := range args {
			n := argNum(args, i)
			sum += n * n
		}
		return value.Num(math.Sqrt(sum)), nil
	})
}
