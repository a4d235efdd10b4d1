// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package arena implements the page-clustered bump allocator of spec §4.A,
// narrowed per SPEC_FULL.md's Open Question resolution: it backs
// bytecode/constant-pool storage and host-resource cleanup-hook lifecycle
// (timers, external handles, promise capabilities), not the GC'd object
// heap itself — Go's own collector serves that role, consistent with the
// Non-goal against a custom generational/moving GC.
//
// Grounded on lang/vm/memory.go (teacher): bump allocator with
// alloc/free/roundUp/bounds-checked access, adapted from raw byte-buffer
// VM memory into a typed cleanup-hook arena plus a raw byte arena for
// bytecode chunks.
package arena

import "fmt"

// ErrOutOfBounds mirrors spec §4.A's "no compaction" bounds-checked access.
var ErrOutOfBounds = fmt.Errorf("arena: access out of bounds")

const defaultPageSize = 4096

// page is one fixed-size page of a cluster.
type page struct {
	data   []byte
	used   int
}

// Bytes is the raw byte-backed half of the arena: bytecode chunks and
// constant pools are allocated from it. There is no per-allocation free;
// `IsEmpty` is coarse, per spec §4.A/Lifecycles ("deallocation is coarse —
// the pool is destroyed with the VM instance").
type Bytes struct {
	pageSize int
	pages    []*page
}

// NewBytes creates a byte arena with the given page size (0 -> default).
func NewBytes(pageSize int) *Bytes {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Bytes{pageSize: pageSize}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// Alloc returns a zero-filled slice of size bytes from the first page with
// enough room, allocating a new page (sized to fit if size exceeds the
// page size) when none fits.
func (b *Bytes) Alloc(size int) []byte {
	size = roundUp(size, 8)
	for _, p := range b.pages {
		if len(p.data)-p.used >= size {
			s := p.data[p.used : p.used+size]
			p.used += size
			return s
		}
	}
	sz := b.pageSize
	if size > sz {
		sz = size
	}
	p := &page{data: make([]byte, sz)}
	b.pages = append(b.pages, p)
	p.used = size
	return p.data[:size]
}

// IsEmpty reports whether every page is unallocated (spec §4.A).
func (b *Bytes) IsEmpty() bool {
	for _, p := range b.pages {
		if p.used > 0 {
			return false
		}
	}
	return true
}

// Used returns total bytes handed out across all pages.
func (b *Bytes) Used() int {
	n := 0
	for _, p := range b.pages {
		n += p.used
	}
	return n
}

// CleanupFunc runs when a hook fires.
type CleanupFunc func()

// Hooks is an ordered list (a slice) of cleanup callbacks. Registered per host
// resource allocation (timers, external handles, promise capabilities);
// destruction traverses hooks in reverse order of registration, then frees
// all clusters (spec §4.A).
type Hooks struct {
	list []CleanupFunc
}

// Register appends a cleanup hook, run in reverse order on Close.
func (h *Hooks) Register(fn CleanupFunc) {
	h.list = append(h.list, fn)
}

// Close runs every registered hook in reverse order of registration, then
// clears the list — mirroring "cleanup hooks run in reverse order of
// registration" from spec §4.A Lifecycles.
func (h *Hooks) Close() {
	for i := len(h.list) - 1; i >= 0; i-- {
		h.list[i]()
	}
	h.list = nil
}

// Clone creates a fresh, empty Bytes arena (same page size, no Hooks) for a
// VM clone, per spec §4.A
// Lifecycles: "each execution clones only the mutable value arena ... into
// a child pool." The source's byte pages (shared bytecode/constants) are
// intentionally not copied here — only the caller's mutable scope-value
// arena (kept at a higher layer) is cloned; this Bytes arena is reused
// read-only by clones that share already-compiled bytecode.
func (b *Bytes) Clone() *Bytes {
	return NewBytes(b.pageSize)
}
