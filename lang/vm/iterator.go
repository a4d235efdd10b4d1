// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package vm

import (
	"fmt"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
)

// arrayIterator is the built-in iterator for arrays and for-in enumeration
// (spec §4.I "Iteration": open/next/close over §4.E's enumeration order).
// Strings iterate by rune; for-in iterates EnumerableOwnKeys.
type arrayIterator struct {
	*object.Object
	values []value.Value
	pos    int
}

func (it *arrayIterator) ClassOf() value.Class { return value.ClassPlain }

func (vm *VM) openIterator(iterable value.Value) (*arrayIterator, error) {
	switch {
	case iterable.IsObject():
		if ah, ok := iterable.AsObject().(*ArrayHandle); ok {
			return &arrayIterator{Object: object.New(value.ClassPlain, nil), values: append([]value.Value{}, ah.Elements...)}, nil
		}
		return nil, fmt.Errorf("TypeError: value is not iterable")
	case iterable.IsString():
		s := []rune(iterable.AsString())
		vals := make([]value.Value, len(s))
		for i, r := range s {
			vals[i] = value.Str(string(r))
		}
		return &arrayIterator{Object: object.New(value.ClassPlain, nil), values: vals}, nil
	default:
		return nil, fmt.Errorf("TypeError: value is not iterable")
	}
}

func (vm *VM) openForInIterator(obj value.Value) *arrayIterator {
	header := objectHeaderOf(obj.AsObject())
	if header == nil {
		return &arrayIterator{Object: object.New(value.ClassPlain, nil)}
	}
	keys := header.EnumerableOwnKeys(vm.Atoms)
	vals := make([]value.Value, len(keys))
	for i, k := range keys {
		vals[i] = value.Str(vm.Atoms.String(k))
	}
	return &arrayIterator{Object: object.New(value.ClassPlain, nil), values: vals}
}

// iterNext advances the iterator and returns a plain IteratorResult-style
// object with `done` and `value` data properties; OpIterNext unpacks the
// two fields onto the stack.
func (vm *VM) iterNext(itVal value.Value) (value.Value, error) {
	it, ok := itVal.AsObject().(*arrayIterator)
	if !ok {
		return value.UndefinedValue, fmt.Errorf("TypeError: not an iterator")
	}
	result := object.New(value.ClassPlain, vm.Protos.Object)
	if it.pos >= len(it.values) {
		result.DefineOwn(vm.Atoms.Atomize("done"), object.Descriptor{Kind: object.KindData, Value: value.TrueValue, Enumerable: true, Writable: true})
		result.DefineOwn(vm.Atoms.Atomize("value"), object.Descriptor{Kind: object.KindData, Value: value.UndefinedValue, Enumerable: true, Writable: true})
		return value.FromObj(result), nil
	}
	v := it.values[it.pos]
	it.pos++
	result.DefineOwn(vm.Atoms.Atomize("done"), object.Descriptor{Kind: object.KindData, Value: value.FalseValue, Enumerable: true, Writable: true})
	result.DefineOwn(vm.Atoms.Atomize("value"), object.Descriptor{Kind: object.KindData, Value: v, Enumerable: true, Writable: true})
	return value.FromObj(result), nil
}

func (vm *VM) spreadInto(dst *ArrayHandle, src value.Value) {
	if srcArr, ok := src.AsObject().(*ArrayHandle); ok {
		dst.Elements = append(dst.Elements, srcArr.Elements...)
		return
	}
	if src.IsString() {
		for _, r := range src.AsString() {
			dst.Elements = append(dst.Elements, value.Str(string(r)))
		}
	}
}

// awaitSync resolves an awaited value without real coroutine suspension:
// it drains the event loop's microtask queue until the awaited promise
// settles. This trades true suspend/resume (which would need either
// continuation capture or a goroutine-per-call model) for a simpler
// synchronous pump, which is sufficient as long as whatever settles the
// promise is reachable by draining microtasks already queued by the time
// await runs — a documented simplification versus a fully concurrent
// event loop (see DESIGN.md).
func (vm *VM) awaitSync(awaited value.Value) (value.Value, error) {
	settler, ok := awaited.AsObject().(settledValue)
	if !ok {
		// Awaiting a non-thenable resolves to the value itself (spec: Await
		// wraps non-promise values in a resolved promise first).
		return awaited, nil
	}
	if vm.Loop != nil {
		vm.Loop.DrainMicrotasks()
	}
	v, isErr := settler.Settled()
	if isErr {
		return value.UndefinedValue, &ThrowError{Value: v}
	}
	return v, nil
}

// settledValue is implemented by lang/promise's Promise type so lang/vm can
// read a settled result without importing lang/promise (which itself will
// need to call back into lang/vm to run `.then` reaction closures).
type settledValue interface {
	Settled() (value.Value, bool)
}
