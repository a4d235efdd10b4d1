// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package strtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerIndexAtomsSetHighBit(t *testing.T) {
	tbl := NewVMTable()
	a := tbl.Atomize("42")
	n, ok := a.IsIndex()
	assert.True(t, ok)
	assert.Equal(t, uint32(42), n)
}

func TestStableAndSharedAcrossEqualStrings(t *testing.T) {
	tbl := NewVMTable()
	a1 := tbl.Atomize("hello")
	a2 := tbl.Atomize("hello")
	assert.Equal(t, a1, a2)
}

func TestWellKnownAtomsBelowBoundary(t *testing.T) {
	tbl := NewVMTable()
	a := tbl.Atomize("constructor")
	assert.Less(t, uint32(a), uint32(SharedBoundary))
}

func TestSymbolAlwaysFresh(t *testing.T) {
	tbl := NewVMTable()
	s1 := tbl.NewSymbol("x")
	s2 := tbl.NewSymbol("x")
	assert.NotEqual(t, s1, s2)
}
