// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost runs timers synchronously when Fire is called, recording each
// scheduled callback and each cleared handle so tests can assert on
// scheduling without real time.
type fakeHost struct {
	fns     map[any]func()
	nextID  int
	cleared []any
}

func newFakeHost() *fakeHost { return &fakeHost{fns: map[any]func(){}} }

func (h *fakeHost) SetTimer(delayMS int64, fire func()) any {
	h.nextID++
	h.fns[h.nextID] = fire
	return h.nextID
}

func (h *fakeHost) ClearTimer(handle any) {
	h.cleared = append(h.cleared, handle)
	delete(h.fns, handle)
}

func (h *fakeHost) Fire(handle any) {
	if fn, ok := h.fns[handle]; ok {
		fn()
	}
}

func TestMicrotasksDrainFIFO(t *testing.T) {
	l := New(nil)
	var order []int
	l.QueueMicrotask(func() { order = append(order, 1) })
	l.QueueMicrotask(func() { order = append(order, 2) })
	l.DrainMicrotasks()
	assert.Equal(t, []int{1, 2}, order)
}

func TestMicrotaskScheduledDuringDrainRunsBeforeReturn(t *testing.T) {
	l := New(nil)
	var order []int
	l.QueueMicrotask(func() {
		order = append(order, 1)
		l.QueueMicrotask(func() { order = append(order, 2) })
	})
	l.DrainMicrotasks()
	assert.Equal(t, []int{1, 2}, order)
}

func TestSetTimeoutFiresOnceThenRemovesEvent(t *testing.T) {
	host := newFakeHost()
	l := New(host)
	fired := 0
	id := l.SetTimeout(10, func() { fired++ })
	require.Equal(t, 1, l.PendingCount())
	host.Fire(1)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, l.PendingCount())
	l.ClearTimeout(id) // already gone; no-op, must not panic
}

func TestSetIntervalKeepsFiringUntilCleared(t *testing.T) {
	host := newFakeHost()
	l := New(host)
	fired := 0
	id := l.SetInterval(10, func() { fired++ })
	host.Fire(1)
	host.Fire(1)
	assert.Equal(t, 2, fired)
	assert.Equal(t, 1, l.PendingCount())
	l.ClearInterval(id)
	assert.Equal(t, 0, l.PendingCount())
	assert.Contains(t, host.cleared, 1)
}

func TestClearTimeoutCancelsBeforeFire(t *testing.T) {
	host := newFakeHost()
	l := New(host)
	fired := false
	id := l.SetTimeout(10, func() { fired = true })
	l.ClearTimeout(id)
	host.Fire(1)
	assert.False(t, fired)
}

func TestSetImmediateSharesTimeoutPath(t *testing.T) {
	host := newFakeHost()
	l := New(host)
	ran := false
	l.SetImmediate(func() { ran = true })
	require.Equal(t, 1, l.PendingCount())
	host.Fire(1)
	assert.True(t, ran)
}
