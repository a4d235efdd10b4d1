// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package promise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmalite/ecmalite/lang/value"
)

// syncScheduler runs queued microtasks immediately, collapsing async
// ordering for assertions that only care about the final state.
type syncScheduler struct{}

func (syncScheduler) QueueMicrotask(fn func()) { fn() }

func TestResolveSettlesFulfilled(t *testing.T) {
	p, resolve, _ := New(syncScheduler{})
	resolve(value.Num(42))
	assert.Equal(t, Fulfilled, p.State())
	v, isErr := p.Settled()
	assert.False(t, isErr)
	assert.Equal(t, float64(42), v.AsNumber())
}

func TestRejectSettlesRejected(t *testing.T) {
	p, _, reject := New(syncScheduler{})
	reject(value.Str("boom"))
	assert.Equal(t, Rejected, p.State())
	v, isErr := p.Settled()
	assert.True(t, isErr)
	assert.Equal(t, "boom", v.AsString())
}

func TestSecondSettlementIsIgnored(t *testing.T) {
	p, resolve, reject := New(syncScheduler{})
	resolve(value.Num(1))
	reject(value.Str("late"))
	resolve(value.Num(2))
	v, _ := p.Settled()
	assert.Equal(t, float64(1), v.AsNumber())
}

func TestThenChainsFulfillment(t *testing.T) {
	p, resolve, _ := New(syncScheduler{})
	child := p.Then(func(v value.Value) (value.Value, error) {
		return value.Num(v.AsNumber() * 2), nil
	}, nil)
	resolve(value.Num(21))
	v, _ := child.Settled()
	assert.Equal(t, float64(42), v.AsNumber())
}

func TestCatchHandlesRejection(t *testing.T) {
	p, _, reject := New(syncScheduler{})
	child := p.Catch(func(v value.Value) (value.Value, error) {
		return value.Str("recovered: " + v.AsString()), nil
	})
	reject(value.Str("boom"))
	v, isErr := child.Settled()
	require.False(t, isErr)
	assert.Equal(t, "recovered: boom", v.AsString())
}

func TestFinallyRunsOnBothPaths(t *testing.T) {
	var ran int
	p1, resolve, _ := New(syncScheduler{})
	p1.Finally(func() { ran++ })
	resolve(value.Num(1))

	p2, _, reject := New(syncScheduler{})
	p2.Finally(func() { ran++ })
	reject(value.Str("x"))

	assert.Equal(t, 2, ran)
}

func TestChainingCycleRejectsWithTypeError(t *testing.T) {
	p, resolve, _ := New(syncScheduler{})
	resolve(value.FromObj(p))
	assert.Equal(t, Rejected, p.State())
	v, isErr := p.Settled()
	assert.True(t, isErr)
	assert.Contains(t, v.AsString(), "Chaining cycle")
}

func TestResolvingWithAnotherPromiseAdoptsItsState(t *testing.T) {
	inner, innerResolve, _ := New(syncScheduler{})
	outer, outerResolve, _ := New(syncScheduler{})
	outerResolve(value.FromObj(inner))
	assert.Equal(t, Pending, outer.State())
	innerResolve(value.Str("done"))
	assert.Equal(t, Fulfilled, outer.State())
	v, _ := outer.Settled()
	assert.Equal(t, "done", v.AsString())
}
