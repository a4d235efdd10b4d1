// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package proptable implements the order-preserving flat hash used for
// object property tables (spec §4.B): a contiguous array of
// (next_elt, key_hash, value-ref) tuples plus a cell index, supporting
// insertion-order iteration (the property-iteration-order invariant
// required by the language, spec §4.E/§9) and tombstone deletes.
package proptable

import "github.com/ecmalite/ecmalite/lang/strtab"

type entry struct {
	key     strtab.Atom
	value   interface{}
	deleted bool
}

// Table is an insertion-ordered, atom-keyed map with tombstone deletion.
type Table struct {
	cells      []int // hash(key) % len(cells) -> index into entries, -1 empty
	chain      []int // entries[i]'s next same-bucket entry index, -1 if none
	entries    []entry
	order      []int // indices into entries, in insertion order
	tombstones int
}

// New creates an empty property table.
func New() *Table {
	t := &Table{cells: make([]int, 8)}
	for i := range t.cells {
		t.cells[i] = -1
	}
	return t
}

func (t *Table) cellFor(a strtab.Atom) int { return int(uint32(a) % uint32(len(t.cells))) }

func (t *Table) find(key strtab.Atom) int {
	c := t.cellFor(key)
	for i := t.cells[c]; i != -1; i = t.chain[i] {
		if t.entries[i].key == key && !t.entries[i].deleted {
			return i
		}
	}
	return -1
}

func (t *Table) rebuildChains() {
	for i := range t.cells {
		t.cells[i] = -1
	}
	t.chain = make([]int, len(t.entries))
	for i, e := range t.entries {
		if e.deleted {
			t.chain[i] = -1
			continue
		}
		c := t.cellFor(e.key)
		t.chain[i] = t.cells[c]
		t.cells[c] = i
	}
}

// Insert adds or updates key with value. When replace is false and key is
// already present, Insert returns false and leaves the table unchanged
// (spec §4.B "fails with already-present"); otherwise it returns true.
func (t *Table) Insert(key strtab.Atom, value interface{}, replace bool) bool {
	if idx := t.find(key); idx != -1 {
		if !replace {
			return false
		}
		t.entries[idx].value = value
		return true
	}
	if len(t.entries)+1 > len(t.cells) {
		t.cells = make([]int, len(t.cells)*2)
		t.rebuildChains()
	}
	idx := len(t.entries)
	t.entries = append(t.entries, entry{key: key, value: value})
	c := t.cellFor(key)
	var next int
	if t.chain == nil {
		next = -1
	} else {
		next = t.cells[c]
	}
	t.chain = append(t.chain, next)
	t.cells[c] = idx
	t.order = append(t.order, idx)
	return true
}

// Get looks up key, returning (value, true) if present and not deleted.
func (t *Table) Get(key strtab.Atom) (interface{}, bool) {
	idx := t.find(key)
	if idx == -1 {
		return nil, false
	}
	return t.entries[idx].value, true
}

// Has reports whether key is present and not deleted.
func (t *Table) Has(key strtab.Atom) bool { return t.find(key) != -1 }

// Delete tombstones key's entry, preserving enumeration order of the
// remaining entries (spec §4.B: "delete tombstones the entry"). When the
// table holds more than 8 entries and tombstones exceed half of all
// entries (live and deleted), the table compacts.
func (t *Table) Delete(key strtab.Atom) bool {
	idx := t.find(key)
	if idx == -1 {
		return false
	}
	t.entries[idx].deleted = true
	t.tombstones++
	if t.tombstones > len(t.entries)/2 && len(t.entries) > 8 {
		t.Compact()
	}
	return true
}

// Compact rebuilds the table dropping tombstoned entries, preserving the
// relative insertion order of surviving entries.
func (t *Table) Compact() {
	var newOrder []int
	var newEntries []entry
	for _, idx := range t.order {
		e := t.entries[idx]
		if e.deleted {
			continue
		}
		newOrder = append(newOrder, len(newEntries))
		newEntries = append(newEntries, e)
	}
	t.entries = newEntries
	t.order = newOrder
	t.tombstones = 0
	t.cells = make([]int, nextPow2(len(t.entries)*2+8))
	t.rebuildChains()
}

func nextPow2(n int) int {
	p := 8
	for p < n {
		p *= 2
	}
	return p
}

// Each walks entries in insertion order (spec §4.B "An each iterator walks
// entries in insertion order"), skipping tombstones. Stops early if fn
// returns false.
func (t *Table) Each(fn func(key strtab.Atom, value interface{}) bool) {
	for _, idx := range t.order {
		e := t.entries[idx]
		if e.deleted {
			continue
		}
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Len returns the number of live (non-tombstoned) entries.
func (t *Table) Len() int {
	return len(t.entries) - t.tombstones
}
