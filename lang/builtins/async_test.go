// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmalite/ecmalite/lang/promise"
)

func TestAsyncFunctionReturnsFulfilledPromise(t *testing.T) {
	v := run(t, `
		async function g() { return await Promise.resolve(41) + 1; }
		g();
	`)
	p, ok := v.AsObject().(*promise.Promise)
	require.True(t, ok, "async call result must be a promise")
	assert.Equal(t, promise.Fulfilled, p.State())
	result, isRejection := p.Settled()
	assert.False(t, isRejection)
	assert.Equal(t, float64(42), result.AsNumber())
}

func TestAsyncFunctionThrowRejectsPromise(t *testing.T) {
	v := run(t, `
		async function g() { throw "boom"; }
		g();
	`)
	p, ok := v.AsObject().(*promise.Promise)
	require.True(t, ok, "async call result must be a promise")
	assert.Equal(t, promise.Rejected, p.State())
	result, isRejection := p.Settled()
	assert.True(t, isRejection)
	assert.Equal(t, "boom", result.AsString())
}
