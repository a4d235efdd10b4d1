// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumberCoercions(t *testing.T) {
	n, ok := Str("42").ToNumber()
	assert.True(t, ok)
	assert.Equal(t, float64(42), n)

	n, ok = Str("0x2A").ToNumber()
	assert.True(t, ok)
	assert.Equal(t, float64(42), n)

	n, ok = UndefinedValue.ToNumber()
	assert.True(t, ok)
	assert.True(t, math.IsNaN(n))

	_, ok = Sym(1, "s").ToNumber()
	assert.False(t, ok)
}

func TestNumberToStringRoundTrip(t *testing.T) {
	assert.Equal(t, "42", NumberToString(42))
	assert.Equal(t, "NaN", NumberToString(math.NaN()))
	assert.Equal(t, "Infinity", NumberToString(math.Inf(1)))
	assert.Equal(t, "-Infinity", NumberToString(math.Inf(-1)))
	assert.Equal(t, "0", NumberToString(0))
	assert.Equal(t, "0", NumberToString(math.Copysign(0, -1)))
}

func TestStrictEquals(t *testing.T) {
	assert.True(t, StrictEquals(Num(1), Num(1)))
	assert.False(t, StrictEquals(Num(1), Str("1")))
	assert.True(t, StrictEquals(UndefinedValue, UndefinedValue))
	assert.False(t, StrictEquals(UndefinedValue, NullValue))
}

func TestAbstractEquals(t *testing.T) {
	assert.True(t, AbstractEquals(Num(1), Str("1")))
	assert.True(t, AbstractEquals(NullValue, UndefinedValue))
	assert.True(t, AbstractEquals(Bool(true), Num(1)))
	assert.False(t, AbstractEquals(NullValue, Num(0)))
}

func TestToLowerCaseUnicodeFolding(t *testing.T) {
	// spec scenario: 'Ά'.toLowerCase() === 'ά'
	assert.Equal(t, "ά", ToLowerCase("Ά"))
	assert.Equal(t, "Ά", ToUpperCase("ά"))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, "undefined", UndefinedValue.TypeOf())
	assert.Equal(t, "object", NullValue.TypeOf())
	assert.Equal(t, "number", Num(1).TypeOf())
	assert.Equal(t, "string", Str("x").TypeOf())
	assert.Equal(t, "symbol", Sym(1, "x").TypeOf())
}

func TestToIntegerFamily(t *testing.T) {
	assert.Equal(t, float64(3), Num(3.9).ToInteger())
	assert.Equal(t, uint32(1), Num(-1).ToUint32()>>31)
	assert.Equal(t, int32(-1), Num(4294967295).ToInt32())
}
