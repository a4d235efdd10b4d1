// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"fmt"
	"strings"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installConsole wires the console.log/warn/error/info convenience the
// AMBIENT STACK calls for, printing strings as-is and other arguments in
// their JSON.stringify form (falling back to ToString), space-separated,
// one line per call.
func installConsole(v *vm.VM) {
	c := object.New(value.ClassPlain, v.Protos.Object)
	v.Global.DefineOwn(atom(v, "console"), object.Descriptor{Kind: object.KindData, Value: value.FromObj(c)})

	logFn := func(name string) {
		staticFn(v, c, name, 0, func(this value.Value, args []value.Value) (value.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = consoleFormat(v, a)
			}
			fmt.Println(strings.Join(parts, " "))
			return value.UndefinedValue, nil
		})
	}
	logFn("log")
	logFn("info")
	logFn("warn")
	logFn("error")
	logFn("debug")
}

func consoleFormat(v *vm.VM, val value.Value) string {
	if val.IsString() {
		return val.AsString()
	}
	var b strings.Builder
	if jsonStringify(v, &b, val, "", "") {
		return b.String()
	}
	s, _ := val.ToString()
	return s
}
