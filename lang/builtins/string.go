// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"strings"

	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installString wires String.prototype (njs's fuller surface beyond the
// distilled spec's template-literal scenario) and a minimal String ctor
// usable as a coercion function (`String(x)`); `new String(x)` yields a
// plain object, not a wrapper holding the string.
func installString(v *vm.VM) {
	proto := v.Protos.String

	strMethod := func(name string, length int, fn func(s string, args []value.Value) (value.Value, error)) {
		method(v, proto, name, length, func(this value.Value, args []value.Value) (value.Value, error) {
			s, _ := this.ToString()
			return fn(s, args)
		})
	}

	strMethod("charAt", 1, func(s string, args []value.Value) (value.Value, error) {
		r := []rune(s)
		i := int(argNum(args, 0))
		if i < 0 || i >= len(r) {
			return value.Str(""), nil
		}
		return value.Str(string(r[i])), nil
	})

	strMethod("charCodeAt", 1, func(s string, args []value.Value) (value.Value, error) {
		r := []rune(s)
		i := int(argNum(args, 0))
		if i < 0 || i >= len(r) {
			return value.Num(nan()), nil
		}
		return value.Num(float64(r[i])), nil
	})

	strMethod("indexOf", 1, func(s string, args []value.Value) (value.Value, error) {
		return value.Num(float64(strings.Index(s, argStr(args, 0)))), nil
	})

	strMethod("lastIndexOf", 1, func(s string, args []value.Value) (value.Value, error) {
		return value.Num(float64(strings.LastIndex(s, argStr(args, 0)))), nil
	})

	strMethod("includes", 1, func(s string, args []value.Value) (value.Value, error) {
		return value.Bool(strings.Contains(s, argStr(args, 0))), nil
	})

	strMethod("startsWith", 1, func(s string, args []value.Value) (value.Value, error) {
		return value.Bool(strings.HasPrefix(s, argStr(args, 0))), nil
	})

	strMethod("endsWith", 1, func(s string, args []value.Value) (value.Value, error) {
		return value.Bool(strings.HasSuffix(s, argStr(args, 0))), nil
	})

	strMethod("slice", 2, func(s string, args []value.Value) (value.Value, error) {
		r := []rune(s)
		start, end := sliceRange(len(r), args)
		return value.Str(string(r[start:end])), nil
	})

	strMethod("substring", 2, func(s string, args []value.Value) (value.Value, error) {
		r := []rune(s)
		n := len(r)
		start := clamp0(int(argNum(args, 0)), n)
		end := n
		if len(args) > 1 && !args[1].IsUndefined() {
			end = clamp0(int(argNum(args, 1)), n)
		}
		if start > end {
			start, end = end, start
		}
		return value.Str(string(r[start:end])), nil
	})

	strMethod("toUpperCase", 0, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(value.ToUpperCase(s)), nil
	})

	strMethod("toLowerCase", 0, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(value.ToLowerCase(s)), nil
	})

	strMethod("trim", 0, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(strings.TrimSpace(s)), nil
	})

	strMethod("trimStart", 0, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(strings.TrimLeft(s, " \t\n\r")), nil
	})

	strMethod("trimEnd", 0, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(strings.TrimRight(s, " \t\n\r")), nil
	})

	strMethod("split", 2, func(s string, args []value.Value) (value.Value, error) {
		if len(args) == 0 || args[0].IsUndefined() {
			return arrayOf([]value.Value{value.Str(s)}, v), nil
		}
		sep := argStr(args, 0)
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.Str(p)
		}
		return arrayOf(out, v), nil
	})

	strMethod("replace", 2, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(strings.Replace(s, argStr(args, 0), argStr(args, 1), 1)), nil
	})

	strMethod("replaceAll", 2, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(strings.ReplaceAll(s, argStr(args, 0), argStr(args, 1))), nil
	})

	strMethod("repeat", 1, func(s string, args []value.Value) (value.Value, error) {
		n := int(argNum(args, 0))
		if n < 0 {
			return value.UndefinedValue, rangeError("Invalid count value")
		}
		return value.Str(strings.Repeat(s, n)), nil
	})

	strMethod("padStart", 2, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(pad(s, int(argNum(args, 0)), padChar(args), true)), nil
	})

	strMethod("padEnd", 2, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(pad(s, int(argNum(args, 0)), padChar(args), false)), nil
	})

	strMethod("concat", 1, func(s string, args []value.Value) (value.Value, error) {
		var b strings.Builder
		b.WriteString(s)
		for _, a := range args {
			as, _ := a.ToString()
			b.WriteString(as)
		}
		return value.Str(b.String()), nil
	})

	strMethod("toString", 0, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(s), nil
	})

	strMethod("valueOf", 0, func(s string, args []value.Value) (value.Value, error) {
		return value.Str(s), nil
	})

	ctor := ctorFunction(v, "String", 1, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Str(""), nil
		}
		s, _ := args[0].ToString()
		return value.Str(s), nil
	})

	staticFn(v, ctor.Object, "fromCharCode", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		var b strings.Builder
		for _, a := range args {
			n, _ := a.ToNumber()
			b.WriteRune(rune(int(n)))
		}
		return value.Str(b.String()), nil
	})
}

func padChar(args []value.Value) string {
	if len(args) > 1 && !args[1].IsUndefined() {
		return argStr(args, 1)
	}
	return " "
}

func pad(s string, targetLen int, padStr string, start bool) string {
	r := []rune(s)
	if padStr == "" || len(r) >= targetLen {
		return s
	}
	need := targetLen - len(r)
	var b strings.Builder
	for b.Len() < need {
		b.WriteString(padStr)
	}
	padding := []rune(b.String())[:need]
	if start {
		return string(padding) + s
	}
	return s + string(padding)
}

func clamp0(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
