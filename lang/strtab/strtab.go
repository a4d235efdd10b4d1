// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package strtab implements atom interning (spec §3 "Atoms", §4.C
// atomization): property keys and short well-known strings are interned in
// a hash producing a unique 32-bit id, so property lookups operate on atom
// ids rather than raw bytes after the first interning.
//
// Hashing follows the DJB algorithm used throughout nginx njs
// (njs_object_hash.h, nxt_djb_hash.c) for well-known property names.
package strtab

import "strconv"

// Atom is an interned 32-bit id. Integer-index atoms have the high bit set
// (spec §3, §4.C) so property access on array indices avoids hashing.
type Atom uint32

const indexBit = uint32(1) << 31

// djbInit is nxt's NXT_DJB_HASH_INIT seed.
const djbInit = uint32(5381)

func djbHash(s string) uint32 {
	h := djbInit
	for i := 0; i < len(s); i++ {
		h = h*33 ^ uint32(s[i])
	}
	return h
}

// IsIndex reports whether a is an integer-index atom, and returns its value.
func (a Atom) IsIndex() (uint32, bool) {
	if uint32(a)&indexBit != 0 {
		return uint32(a) &^ indexBit, true
	}
	return 0, false
}

func indexAtom(n uint32) Atom { return Atom(n | indexBit) }

// entry is one slot of the table's hash chain.
type entry struct {
	hash uint32
	str  string
	atom Atom
	next int // index into entries, -1 if none
}

// Table is the atom table. Per spec §3 Invariant 8, atom ids below a fixed
// boundary belong to the shared-immutable table; a VM-private table starts
// its sequential allocation above that boundary. Per SPEC_FULL.md Open
// Question resolution #1, both the shared-boot and per-VM tables use this
// same type (distinguished by `shared` and the boundary each starts from),
// avoiding the dual direct-enum / stringify-handler paths the original
// njs-derived design left unconverged.
type Table struct {
	shared   bool
	buckets  []int // bucket head index into entries, -1 if empty
	entries  []entry
	byAtom   map[Atom]string
	next     uint32
	boundary uint32
}

// SharedBoundary is the first atom id available to a per-VM table; ids
// below it are reserved for the shared-immutable, process-wide table
// (well-known property names, seeded once at package init).
const SharedBoundary = 1 << 16

// wellKnown lists the property names njs's njs_object_hash.h pre-hashes at
// boot, seeded here into the shared table instead of discovered lazily.
var wellKnown = []string{
	"constructor", "prototype", "length", "name", "message", "stack",
	"toString", "valueOf", "join", "index", "input", "toISOString",
	"value", "writable", "enumerable", "configurable", "get", "set",
	"done", "next", "then", "catch", "finally",
}

var sharedTable = newTable(true, 0)

func init() {
	for _, w := range wellKnown {
		sharedTable.Atomize(w)
	}
}

func newTable(shared bool, startAt uint32) *Table {
	t := &Table{
		shared:   shared,
		buckets:  make([]int, 64),
		byAtom:   make(map[Atom]string),
		next:     startAt,
		boundary: SharedBoundary,
	}
	for i := range t.buckets {
		t.buckets[i] = -1
	}
	return t
}

// NewVMTable creates a per-VM table whose sequential allocation starts
// above SharedBoundary, per Invariant 8.
func NewVMTable() *Table { return newTable(false, SharedBoundary) }

// Shared returns the process-wide shared-immutable atom table.
func Shared() *Table { return sharedTable }

func (t *Table) bucket(h uint32) int { return int(h % uint32(len(t.buckets))) }

func (t *Table) lookup(s string, h uint32) (Atom, bool) {
	b := t.bucket(h)
	for i := t.buckets[b]; i != -1; i = t.entries[i].next {
		if t.entries[i].hash == h && t.entries[i].str == s {
			return t.entries[i].atom, true
		}
	}
	return 0, false
}

func (t *Table) rehash() {
	bigger := make([]int, len(t.buckets)*2)
	for i := range bigger {
		bigger[i] = -1
	}
	t.buckets = bigger
	for i := range t.entries {
		b := t.bucket(t.entries[i].hash)
		t.entries[i].next = t.buckets[b]
		t.buckets[b] = i
	}
}

// Atomize interns s, returning its atom id. If s parses as an integer in
// [0, 2^31-1], the atom id is that integer with the high bit set (no
// hashing is performed); otherwise it is looked up/assigned the next free
// sequential id. Symbol atomization (fresh, never-deduplicated ids) is
// provided by NewSymbol.
func (t *Table) Atomize(s string) Atom {
	if n, ok := parseArrayIndex(s); ok {
		return indexAtom(n)
	}
	h := djbHash(s)
	if !t.shared {
		if a, ok := sharedTable.lookup(s, h); ok {
			return a
		}
	}
	b := t.bucket(h)
	for i := t.buckets[b]; i != -1; i = t.entries[i].next {
		if t.entries[i].hash == h && t.entries[i].str == s {
			return t.entries[i].atom
		}
	}
	if len(t.entries)*2 > len(t.buckets)*3 {
		t.rehash()
		b = t.bucket(h)
	}
	a := Atom(t.next)
	t.next++
	t.entries = append(t.entries, entry{hash: h, str: s, atom: a, next: t.buckets[b]})
	t.buckets[b] = len(t.entries) - 1
	t.byAtom[a] = s
	return a
}

// NewSymbol allocates a fresh, never-deduplicated atom id for description
// desc (spec §4.C: "Symbol atomization always allocates a fresh id").
func (t *Table) NewSymbol(desc string) Atom {
	a := Atom(t.next)
	t.next++
	t.byAtom[a] = desc
	return a
}

// String returns the original string an atom was interned from, or the
// decimal string for an integer-index atom.
func (t *Table) String(a Atom) string {
	if n, ok := a.IsIndex(); ok {
		return strconv.FormatUint(uint64(n), 10)
	}
	if s, ok := t.byAtom[a]; ok {
		return s
	}
	if s, ok := sharedTable.byAtom[a]; ok {
		return s
	}
	return ""
}

func parseArrayIndex(s string) (uint32, bool) {
	if s == "" || len(s) > 10 {
		return 0, false
	}
	if s[0] == '0' && len(s) > 1 {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + uint64(s[i]-'0')
		if n > 0x7fffffff {
			return 0, false
		}
	}
	return uint32(n), true
}
