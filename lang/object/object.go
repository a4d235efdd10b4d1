// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package object implements the object model of spec §4.E: prototype
// chain, property kinds (data/accessor/host-handler/whiteout), shared vs
// own descriptors, and the property-query protocol (get/set/delete/has),
// plus the Function & frame semantics of spec §4.J.
//
// Grounded on spec §3/§4.E directly (the teacher's lang/types/types.go is
// a compile-time static type system, not a runtime object model, so no
// direct teacher file maps onto this package; the proptable/strtab idiom
// from this repo's own `lang/proptable` and `lang/strtab` is reused here).
package object

import (
	"github.com/ecmalite/ecmalite/lang/proptable"
	"github.com/ecmalite/ecmalite/lang/strtab"
	"github.com/ecmalite/ecmalite/lang/value"
)

// Kind distinguishes a property descriptor's nature (spec §3 "Property
// descriptor").
type Kind uint8

const (
	KindData Kind = iota
	KindAccessor
	KindHostHandler
	KindWhiteout
)

// Getter/Setter are native accessor callbacks; HostHandler pairs invoke
// native get/set directly (spec §4.E "Host-handler properties carry a
// native get/set function pair invoked by the VM").
type Getter func(this value.Value) (value.Value, error)
type Setter func(this value.Value, v value.Value) error

// Descriptor is a property slot plus its four attributes (spec §3).
type Descriptor struct {
	Kind         Kind
	Value        value.Value // for KindData
	Get, Set     Getter      // for KindAccessor / KindHostHandler... Get/Set stand in for both
	SetFn        Setter
	Writable     bool
	Enumerable   bool
	Configurable bool
	shared       bool // true while still referencing a prototype's shared template
}

// QueryMode selects the property-query operation (spec §4.E).
type QueryMode int

const (
	QueryGet QueryMode = iota
	QuerySet
	QueryDelete
	QueryHas
)

// QueryResult is the hit record returned by PropertyQuery (spec §4.E).
type QueryResult struct {
	Owner    *Object
	Desc     *Descriptor
	Shared   bool
	Own      bool
	Found    bool
}

// Object is the runtime object header (spec §3 "Object"). Array, Function,
// RegExp, Date, TypedArray, Promise, and Error values embed an *Object as
// their shared header via the Class field and companion struct, per the
// "object embeds as first field" design; here that's expressed as
// composition (an *Object pointer) rather than C-style struct embedding,
// since Go structs don't support the teacher's low-level cast tricks.
type Object struct {
	class      value.Class
	proto      *Object
	props      *proptable.Table
	Extensible bool
	Sealed     bool
	Frozen     bool

	// Ext is set for host-provided external objects (§6 vm_external_add):
	// their accessor table backs property queries that miss props.
	Ext ExternalHandler
}

// ExternalHandler is the accessor table a host registers via
// vm_external_add (spec §6, §4.E "ext_proto/ext_index pair used to
// materialise host-backed values").
type ExternalHandler interface {
	Get(key strtab.Atom) (value.Value, bool)
	Set(key strtab.Atom, v value.Value) bool
	Keys() []strtab.Atom
	Invoke(this value.Value, args []value.Value) (value.Value, error)
}

// New creates an object of the given class with the given prototype
// (nil allowed — spec §3 "prototype reference (may be null)").
func New(class value.Class, proto *Object) *Object {
	return &Object{class: class, proto: proto, props: proptable.New(), Extensible: true}
}

func (o *Object) ClassOf() value.Class { return o.class }
func (o *Object) Proto() *Object       { return o.proto }
func (o *Object) SetProto(p *Object)   { o.proto = p }

// ToPrimitiveHint implements value.Obj but always reports no conversion:
// the object package can't invoke `valueOf`/`toString` itself without
// importing vm (a cycle, since vm already imports object). Real
// ToPrimitive conversion — including Date's reversed hint order — lives
// in lang/vm's VM.toPrimitive, which walks the prototype chain and calls
// through vm.Call instead of going through this stub.
func (o *Object) ToPrimitiveHint(hint string) (value.Value, bool) {
	return value.Value{}, false
}

// defineOwn inserts a fresh own descriptor for key (used by Set/DefineOwn).
func (o *Object) defineOwn(key strtab.Atom, d *Descriptor) {
	d.shared = false
	o.props.Insert(key, d, true)
}

// PropertyQuery walks the prototype chain per spec §4.E. Set on a shared
// descriptor clones it to an own descriptor first; Delete on a data
// descriptor marks it whiteout so enumeration can skip it while preserving
// slot order.
func (o *Object) PropertyQuery(key strtab.Atom, mode QueryMode) QueryResult {
	cur := o
	own := true
	for cur != nil {
		if raw, ok := cur.props.Get(key); ok {
			d := raw.(*Descriptor)
			if d.Kind == KindWhiteout {
				if mode == QueryHas {
					return QueryResult{Found: false}
				}
				return QueryResult{Owner: cur, Desc: d, Shared: !own, Own: own, Found: false}
			}
			if mode == QuerySet && !own {
				clone := *d
				clone.shared = false
				o.defineOwn(key, &clone)
				return QueryResult{Owner: o, Desc: &clone, Shared: false, Own: true, Found: true}
			}
			return QueryResult{Owner: cur, Desc: d, Shared: !own, Own: own, Found: true}
		}
		if cur.Ext != nil {
			if v, ok := cur.Ext.Get(key); ok {
				d := &Descriptor{Kind: KindData, Value: v, Writable: true, Enumerable: true, Configurable: true}
				return QueryResult{Owner: cur, Desc: d, Own: own, Found: true}
			}
		}
		cur = cur.proto
		own = false
	}
	return QueryResult{Found: false}
}

// Get returns the value of key, walking the prototype chain and invoking
// accessor getters with `this` bound to the receiver (spec §4.I Property
// opcode class using §4.E).
func (o *Object) Get(key strtab.Atom, receiver value.Value) (value.Value, error) {
	r := o.PropertyQuery(key, QueryGet)
	if !r.Found {
		return value.UndefinedValue, nil
	}
	switch r.Desc.Kind {
	case KindData:
		return r.Desc.Value, nil
	case KindAccessor, KindHostHandler:
		if r.Desc.Get == nil {
			return value.UndefinedValue, nil
		}
		return r.Desc.Get(receiver)
	}
	return value.UndefinedValue, nil
}

// Set writes key=v as an own property, cloning a shared descriptor first
// (spec §4.E). Returns false if the receiver is non-extensible and key is
// not already present, or if the own descriptor is non-writable.
func (o *Object) Set(key strtab.Atom, v value.Value, receiver value.Value) (bool, error) {
	r := o.PropertyQuery(key, QuerySet)
	if r.Found {
		switch r.Desc.Kind {
		case KindData:
			if !r.Desc.Writable {
				return false, nil
			}
			r.Owner.defineOwn(key, &Descriptor{Kind: KindData, Value: v, Writable: true, Enumerable: r.Desc.Enumerable, Configurable: r.Desc.Configurable})
			return true, nil
		case KindAccessor, KindHostHandler:
			if r.Desc.SetFn == nil {
				return false, nil
			}
			return true, r.Desc.SetFn(receiver, v)
		}
	}
	if o.Ext != nil && o.Ext.Set(key, v) {
		return true, nil
	}
	if !o.Extensible {
		return false, nil
	}
	o.defineOwn(key, &Descriptor{Kind: KindData, Value: v, Writable: true, Enumerable: true, Configurable: true})
	return true, nil
}

// Delete marks key's own data descriptor whiteout (spec §4.E "Delete on a
// data descriptor marks it whiteout; enumeration skips whiteouts").
func (o *Object) Delete(key strtab.Atom) bool {
	raw, ok := o.props.Get(key)
	if !ok {
		return true
	}
	d := raw.(*Descriptor)
	if !d.Configurable {
		return false
	}
	o.defineOwn(key, &Descriptor{Kind: KindWhiteout})
	return true
}

// Has implements the `in` operator (spec §4.I Property opcode class).
func (o *Object) Has(key strtab.Atom) bool {
	return o.PropertyQuery(key, QueryHas).Found
}

// DefineOwn installs d as an own, non-shared descriptor (used by built-in
// property-table initializers, spec §4.M).
func (o *Object) DefineOwn(key strtab.Atom, d Descriptor) {
	o.defineOwn(key, &d)
}

// OwnKeys returns own enumerable-or-not keys: integer indices ascending
// first, then every other key in insertion order. Symbol keys are not
// separated from string keys; they appear among them in insertion order.
func (o *Object) OwnKeys(table *strtab.Table) []strtab.Atom {
	var indices []uint32
	var strs []strtab.Atom
	var syms []strtab.Atom
	o.props.Each(func(k strtab.Atom, raw interface{}) bool {
		d := raw.(*Descriptor)
		if d.Kind == KindWhiteout {
			return true
		}
		if n, ok := k.IsIndex(); ok {
			indices = append(indices, n)
			return true
		}
		// Every non-index key, symbol or string, goes to strs; syms stays
		// empty.
		strs = append(strs, k)
		return true
	})
	sortUint32(indices)
	out := make([]strtab.Atom, 0, len(indices)+len(strs)+len(syms))
	for _, n := range indices {
		out = append(out, strtab.Atom(n|1<<31))
	}
	out = append(out, strs...)
	out = append(out, syms...)
	return out
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// EnumerableOwnKeys filters OwnKeys to Enumerable descriptors only, for
// for-in and Object.keys/values/entries (spec §4.E/§4.I for-in opcode).
func (o *Object) EnumerableOwnKeys(table *strtab.Table) []strtab.Atom {
	all := o.OwnKeys(table)
	out := all[:0:0]
	for _, k := range all {
		raw, ok := o.props.Get(k)
		if !ok {
			continue
		}
		if raw.(*Descriptor).Enumerable {
			out = append(out, k)
		}
	}
	return out
}
