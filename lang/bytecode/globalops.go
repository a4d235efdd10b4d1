// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package bytecode

// Global-by-name opcodes. Local and closure slots use the packed Index
// scheme of spec §4.H (OpLoadVar/OpStoreVar), but free/top-level bindings
// resolve dynamically against the global object by atom name — matching
// ECMAScript's rule that top-level `var`/function declarations become
// properties of the global object, and that an unresolved sloppy-mode
// assignment implicitly creates one.
const (
	OpLoadGlobalByName Opcode = iota + 200
	OpStoreGlobalByName
	OpDeclareGlobal // ensure a global property exists, initialised to undefined, without overwriting an existing value
)

func init() {
	names[OpLoadGlobalByName] = "load.global"
	names[OpStoreGlobalByName] = "store.global"
	names[OpDeclareGlobal] = "declare.global"
}
