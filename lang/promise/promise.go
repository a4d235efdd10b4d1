// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package promise implements the Promise capability record of spec §4.K:
// a single-settle state machine with FIFO reaction queues, chaining-cycle
// detection, and Then/Catch/Finally/Observe composition.
//
// Grounded on other_examples/promisealttwo-promise.go.go (a lock-free
// Treiber-stack Promise built on eventloop.JS.QueueMicrotask) for the API
// shape — State/Then/Catch/Finally/Observe, reversed-stack-to-FIFO
// handler ordering, chaining-cycle detection via self-reference check,
// Finally's recover-wrapped passthrough — but its atomic.Int32/
// unsafe.Pointer Treiber-stack internals are deliberately simplified to a
// plain slice-backed FIFO queue: spec.md §5 states the runtime is
// single-threaded per VM instance with exactly two suspension points, so
// carrying forward lock-free concurrency primitives that defend against a
// race which cannot happen here would be cargo-culting, not grounding.
package promise

import (
	"fmt"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
)

// State is a promise's settlement state (spec §4.K).
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Scheduler is the microtask queue a Promise schedules its reactions on
// (implemented by lang/eventloop.Loop). A nil Scheduler runs reactions
// synchronously, which is useful in tests and for a VM with no attached
// event loop.
type Scheduler interface {
	QueueMicrotask(func())
}

// Reaction is one registered onFulfilled/onRejected pair plus the child
// promise it settles (spec §4.K "reaction record").
type Reaction struct {
	OnFulfilled func(value.Value) (value.Value, error)
	OnRejected  func(value.Value) (value.Value, error)
	Target      *Promise
}

// Promise is one ecmalite promise capability (spec §4.K, §3 "Promise").
type Promise struct {
	*object.Object
	sched     Scheduler
	state     State
	result    value.Value
	handlers  []Reaction
	handled   bool
}

func (p *Promise) ClassOf() value.Class { return value.ClassPromise }

// New creates a pending promise with its resolve/reject capability pair
// (spec §4.K "capability record").
func New(sched Scheduler) (p *Promise, resolve func(value.Value), reject func(value.Value)) {
	p = &Promise{Object: object.New(value.ClassPromise, nil), sched: sched, state: Pending}
	return p, p.resolve, p.reject
}

// Resolved returns an already-fulfilled promise (Promise.resolve).
func Resolved(sched Scheduler, v value.Value) *Promise {
	p, resolve, _ := New(sched)
	resolve(v)
	return p
}

// Rejected returns an already-rejected promise (Promise.reject).
func Rejected(sched Scheduler, reason value.Value) *Promise {
	p, _, reject := New(sched)
	reject(reason)
	return p
}

// State reports the promise's current settlement state.
func (p *Promise) State() State { return p.state }

// Settled implements lang/vm's settledValue interface: (result, isError).
// Awaiting a pending promise returns the zero Value and false; callers
// should drain microtasks until State() is no longer Pending first.
func (p *Promise) Settled() (value.Value, bool) {
	return p.result, p.state == Rejected
}

func (p *Promise) resolve(v value.Value) {
	if p.state != Pending {
		return
	}
	if inner, ok := v.AsObject().(*Promise); ok {
		if inner == p {
			p.reject(value.Str("TypeError: Chaining cycle detected for promise"))
			return
		}
		inner.Observe(func(fv value.Value) (value.Value, error) {
			p.resolve(fv)
			return value.UndefinedValue, nil
		}, func(rv value.Value) (value.Value, error) {
			p.reject(rv)
			return value.UndefinedValue, nil
		})
		return
	}
	p.state = Fulfilled
	p.result = v
	p.flush()
}

func (p *Promise) reject(reason value.Value) {
	if p.state != Pending {
		return
	}
	p.state = Rejected
	p.result = reason
	p.flush()
}

// Then registers fulfillment/rejection reactions and returns the derived
// child promise (spec §4.K "Then chains a new capability").
func (p *Promise) Then(onFulfilled, onRejected func(value.Value) (value.Value, error)) *Promise {
	child := &Promise{Object: object.New(value.ClassPromise, nil), sched: p.sched, state: Pending}
	p.handled = true
	r := Reaction{OnFulfilled: onFulfilled, OnRejected: onRejected, Target: child}
	if p.state == Pending {
		p.handlers = append(p.handlers, r)
		return child
	}
	p.scheduleOne(r)
	return child
}

// Catch is sugar for Then(nil, onRejected).
func (p *Promise) Catch(onRejected func(value.Value) (value.Value, error)) *Promise {
	return p.Then(nil, onRejected)
}

// Finally runs onFinally regardless of settlement and passes the original
// result/reason through, per spec §4.K.
func (p *Promise) Finally(onFinally func()) *Promise {
	if onFinally == nil {
		onFinally = func() {}
	}
	next, resolve, reject := New(p.sched)
	runFinally := func(v value.Value, isRejection bool) (result value.Value, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		onFinally()
		if isRejection {
			reject(v)
		} else {
			resolve(v)
		}
		return value.UndefinedValue, nil
	}
	p.Observe(func(v value.Value) (value.Value, error) {
		return runFinally(v, false)
	}, func(v value.Value) (value.Value, error) {
		return runFinally(v, true)
	})
	return next
}

// Observe registers reactions without producing a usable child promise
// (used internally for chaining and by await).
func (p *Promise) Observe(onFulfilled, onRejected func(value.Value) (value.Value, error)) {
	r := Reaction{OnFulfilled: onFulfilled, OnRejected: onRejected}
	if p.state == Pending {
		p.handlers = append(p.handlers, r)
		return
	}
	p.scheduleOne(r)
}

// flush drains the FIFO handler queue in registration order, scheduling
// each as a microtask (spec §4.K "reactions run as microtasks, in FIFO
// order"). Unlike the grounding source's Treiber-stack (LIFO push, with
// an explicit reverse pass before dispatch), handlers here are already
// appended in FIFO order, so no reversal is needed.
func (p *Promise) flush() {
	pending := p.handlers
	p.handlers = nil
	for _, r := range pending {
		p.scheduleOne(r)
	}
}

func (p *Promise) scheduleOne(r Reaction) {
	state, result := p.state, p.result
	run := func() { p.runReaction(r, state, result) }
	if p.sched != nil {
		p.sched.QueueMicrotask(run)
		return
	}
	run()
}

func (p *Promise) runReaction(r Reaction, state State, result value.Value) {
	var fn func(value.Value) (value.Value, error)
	if state == Fulfilled {
		fn = r.OnFulfilled
	} else {
		fn = r.OnRejected
	}
	if fn == nil {
		if r.Target != nil {
			if state == Fulfilled {
				r.Target.resolve(result)
			} else {
				r.Target.reject(result)
			}
		}
		return
	}
	out, err := fn(result)
	if r.Target == nil {
		return
	}
	if err != nil {
		r.Target.reject(value.Str(err.Error()))
		return
	}
	r.Target.resolve(out)
}
