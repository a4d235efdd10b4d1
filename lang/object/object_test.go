// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package object

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecmalite/ecmalite/lang/strtab"
	"github.com/ecmalite/ecmalite/lang/value"
)

func TestPrototypeChainGet(t *testing.T) {
	s := strtab.NewVMTable()
	proto := New(value.ClassPlain, nil)
	proto.DefineOwn(s.Atomize("greeting"), Descriptor{Kind: KindData, Value: value.Str("hi"), Enumerable: true, Writable: true, Configurable: true})

	child := New(value.ClassPlain, proto)
	v, err := child.Get(s.Atomize("greeting"), value.FromObj(child))
	assert.NoError(t, err)
	assert.Equal(t, "hi", v.AsString())
}

func TestSetClonesSharedDescriptorToOwn(t *testing.T) {
	s := strtab.NewVMTable()
	proto := New(value.ClassPlain, nil)
	key := s.Atomize("count")
	proto.DefineOwn(key, Descriptor{Kind: KindData, Value: value.Num(0), Writable: true, Enumerable: true, Configurable: true})

	child := New(value.ClassPlain, proto)
	ok, err := child.Set(key, value.Num(5), value.FromObj(child))
	assert.NoError(t, err)
	assert.True(t, ok)

	v, _ := child.Get(key, value.FromObj(child))
	assert.Equal(t, float64(5), v.AsNumber())

	pv, _ := proto.Get(key, value.FromObj(proto))
	assert.Equal(t, float64(0), pv.AsNumber(), "own write on child must not mutate prototype's shared descriptor")
}

func TestDeleteWhiteoutSkipsEnumeration(t *testing.T) {
	s := strtab.NewVMTable()
	o := New(value.ClassPlain, nil)
	a, b := s.Atomize("a"), s.Atomize("b")
	o.DefineOwn(a, Descriptor{Kind: KindData, Value: value.Num(1), Enumerable: true, Configurable: true})
	o.DefineOwn(b, Descriptor{Kind: KindData, Value: value.Num(2), Enumerable: true, Configurable: true})

	assert.True(t, o.Delete(a))
	assert.False(t, o.Has(a))

	keys := o.EnumerableOwnKeys(s)
	assert.Equal(t, []strtab.Atom{b}, keys)
}

func TestIntegerIndexKeysOrderedAscendingFirst(t *testing.T) {
	s := strtab.NewVMTable()
	o := New(value.ClassArray, nil)
	o.DefineOwn(s.Atomize("2"), Descriptor{Kind: KindData, Value: value.Num(2), Enumerable: true, Configurable: true})
	o.DefineOwn(s.Atomize("name"), Descriptor{Kind: KindData, Value: value.Str("x"), Enumerable: true, Configurable: true})
	o.DefineOwn(s.Atomize("0"), Descriptor{Kind: KindData, Value: value.Num(0), Enumerable: true, Configurable: true})

	keys := o.EnumerableOwnKeys(s)
	n0, ok0 := keys[0].IsIndex()
	n1, ok1 := keys[1].IsIndex()
	assert.True(t, ok0)
	assert.True(t, ok1)
	assert.Equal(t, uint32(0), n0)
	assert.Equal(t, uint32(2), n1)
	assert.Equal(t, s.Atomize("name"), keys[2])
}

func TestAccessorInvokesGetSet(t *testing.T) {
	s := strtab.NewVMTable()
	o := New(value.ClassPlain, nil)
	backing := value.Num(10)
	key := s.Atomize("x")
	o.DefineOwn(key, Descriptor{
		Kind: KindAccessor,
		Get:  func(this value.Value) (value.Value, error) { return backing, nil },
		SetFn: func(this value.Value, v value.Value) error {
			backing = v
			return nil
		},
		Enumerable:   true,
		Configurable: true,
	})
	v, err := o.Get(key, value.FromObj(o))
	assert.NoError(t, err)
	assert.Equal(t, float64(10), v.AsNumber())

	ok, err := o.Set(key, value.Num(99), value.FromObj(o))
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float64(99), backing.AsNumber())
}
