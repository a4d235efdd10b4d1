// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package vm

import (
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
)

// Uint8ArrayHandle is a fixed-length view over an ArrayBuffer's bytes (spec
// supplement: njs's TypedArray surface), backed directly by Memory instead
// of a []value.Value slice so indexed access never boxes through the
// property table.
type Uint8ArrayHandle struct {
	*object.Object
	Mem    *Memory
	Base   uint64
	Length int
}

// NewUint8Array allocates length bytes from mem and wraps them as a typed
// array whose prototype is the Uint8Array surface lang/builtins installs.
func NewUint8Array(proto *object.Object, mem *Memory, length int) (*Uint8ArrayHandle, error) {
	if length == 0 {
		return &Uint8ArrayHandle{Object: object.New(value.ClassPlain, proto), Mem: mem, Length: 0}, nil
	}
	base, err := mem.Alloc(uint64(length))
	if err != nil {
		return nil, err
	}
	return &Uint8ArrayHandle{Object: object.New(value.ClassPlain, proto), Mem: mem, Base: base, Length: length}, nil
}
