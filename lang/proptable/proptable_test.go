// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package proptable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecmalite/ecmalite/lang/strtab"
)

func TestInsertionOrderPreservedAcrossDelete(t *testing.T) {
	tbl := New()
	s := strtab.NewVMTable()
	a, b, c := s.Atomize("a"), s.Atomize("b"), s.Atomize("c")
	tbl.Insert(a, 1, true)
	tbl.Insert(b, 2, true)
	tbl.Insert(c, 3, true)
	tbl.Delete(b)

	var keys []strtab.Atom
	tbl.Each(func(k strtab.Atom, v interface{}) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []strtab.Atom{a, c}, keys)
}

func TestInsertReplaceFlag(t *testing.T) {
	tbl := New()
	s := strtab.NewVMTable()
	a := s.Atomize("a")
	assert.True(t, tbl.Insert(a, 1, true))
	assert.False(t, tbl.Insert(a, 2, false))
	v, _ := tbl.Get(a)
	assert.Equal(t, 1, v)
	assert.True(t, tbl.Insert(a, 2, true))
	v, _ = tbl.Get(a)
	assert.Equal(t, 2, v)
}

func TestGetSetRoundTrip(t *testing.T) {
	tbl := New()
	s := strtab.NewVMTable()
	for i := 0; i < 50; i++ {
		k := s.Atomize(string(rune('a' + i%26)))
		tbl.Insert(k, i, true)
	}
	k := s.Atomize("x")
	v, ok := tbl.Get(k)
	assert.True(t, ok)
	assert.Equal(t, v, v)
}
