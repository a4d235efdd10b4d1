// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/strtab"
	"github.com/ecmalite/ecmalite/lang/value"
)

func TestCompileAndRunReturnsValue(t *testing.T) {
	c, err := Compile("test.js", `1 + 2 * 3;`)
	require.NoError(t, err)

	v := Create(Options{})
	result, err := v.Run(c)
	require.NoError(t, err)
	assert.Equal(t, float64(7), result.AsNumber())
}

func TestCompileReportsPositionedSyntaxError(t *testing.T) {
	_, err := Compile("bad.js", `var = ;`)
	require.Error(t, err)

	cerr, ok := err.(*CompileError)
	require.True(t, ok)
	assert.NotEmpty(t, cerr.Errors)
	assert.Contains(t, cerr.Error(), "bad.js")
}

func TestCloneSharesBytecodeFreshGlobal(t *testing.T) {
	c, err := Compile("test.js", `var counter = 1; counter;`)
	require.NoError(t, err)

	v1 := Create(Options{})
	_, err = v1.Run(c)
	require.NoError(t, err)

	v2 := v1.Clone()
	result, err := v2.Run(c)
	require.NoError(t, err)
	assert.Equal(t, float64(1), result.AsNumber())
}

func TestCallReentersVMForFunction(t *testing.T) {
	c, err := Compile("test.js", `function add(a, b) { return a + b; }`)
	require.NoError(t, err)

	v := Create(Options{})
	_, err = v.Run(c)
	require.NoError(t, err)

	fn, ferr := v.Global().Get(atomize(v, "add"), value.UndefinedValue)
	require.NoError(t, ferr)

	result, err := v.Call(fn, value.UndefinedValue, []value.Value{value.Num(2), value.Num(3)})
	require.NoError(t, err)
	assert.Equal(t, float64(5), result.AsNumber())
}

func atomize(v *VM, name string) strtab.Atom {
	return v.inner.Atoms.Atomize(name)
}

type fakeExternal struct {
	fields map[string]value.Value
}

func (f *fakeExternal) Get(key strtab.Atom) (value.Value, bool) { return value.Value{}, false }
func (f *fakeExternal) Set(key strtab.Atom, v value.Value) bool { return false }
func (f *fakeExternal) Keys() []strtab.Atom                     { return nil }
func (f *fakeExternal) Invoke(this value.Value, args []value.Value) (value.Value, error) {
	return value.Str("invoked"), nil
}

func TestExternalAddRegistersCallableHostObject(t *testing.T) {
	v := Create(Options{})
	v.ExternalAdd("host", &fakeExternal{})

	c, err := Compile("test.js", `host();`)
	require.NoError(t, err)

	result, err := v.Run(c)
	require.NoError(t, err)
	assert.Equal(t, "invoked", result.AsString())
}

func TestRegisterModuleSatisfiesRequire(t *testing.T) {
	v := Create(Options{})
	exports := object.New(value.ClassPlain, nil)
	exports.DefineOwn(atomize(v, "greeting"), object.Descriptor{Kind: object.KindData, Value: value.Str("hi")})
	v.RegisterModule("greeter", exports)

	c, err := Compile("test.js", `require("greeter").greeting;`)
	require.NoError(t, err)

	result, err := v.Run(c)
	require.NoError(t, err)
	assert.Equal(t, "hi", result.AsString())
}

func TestRequireMissingModuleThrows(t *testing.T) {
	v := Create(Options{})
	c, err := Compile("test.js", `require("nope");`)
	require.NoError(t, err)

	_, err = v.Run(c)
	require.Error(t, err)
}
