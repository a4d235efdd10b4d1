// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"strconv"
	"strings"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installTypedArray wires a thin Uint8Array surface (spec supplement:
// njs's TypedArray surface) over lang/vm's Memory byte allocator —
// each instance owns its own backing Memory rather than modeling a
// separate, shareable ArrayBuffer indirection, since nothing in this
// repo's scenarios needs two views over one buffer.
func installTypedArray(v *vm.VM) {
	proto := object.New(value.ClassPlain, v.Protos.Object)

	method(v, proto, "fill", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		ta, ok := this.AsObject().(*vm.Uint8ArrayHandle)
		if !ok {
			return this, nil
		}
		b := byte(int64(argNum(args, 0)) & 0xff)
		for i := 0; i < ta.Length; i++ {
			ta.Mem.WriteByte(ta.Base+uint64(i), b)
		}
		return this, nil
	})

	method(v, proto, "toString", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		ta, ok := this.AsObject().(*vm.Uint8ArrayHandle)
		if !ok {
			return value.Str(""), nil
		}
		parts := make([]string, ta.Length)
		for i := 0; i < ta.Length; i++ {
			b, _ := ta.Mem.ReadByte(ta.Base + uint64(i))
			parts[i] = strconv.Itoa(int(b))
		}
		return value.Str(strings.Join(parts, ",")), nil
	})

	ctorFunction(v, "Uint8Array", 1, proto, func(this value.Value, args []value.Value) (value.Value, error) {
		src, isArray := asArray(arg(args, 0))
		length := int(argNum(args, 0))
		if isArray {
			length = len(src.Elements)
		}
		if length < 0 {
			return value.UndefinedValue, rangeError("Invalid typed array length")
		}
		mem := vm.NewMemory(0)
		ta, err := vm.NewUint8Array(proto, mem, length)
		if err != nil {
			return value.UndefinedValue, err
		}
		if isArray {
			for i, el := range src.Elements {
				n, _ := el.ToNumber()
				ta.Mem.WriteByte(ta.Base+uint64(i), byte(int64(n)&0xff))
			}
		}
		return value.FromObj(ta), nil
	})
}
