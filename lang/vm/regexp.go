// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package vm

import (
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
)

// RegExpHandle is the opaque RegExp surface (spec §9: "RegExp as an opaque
// external object"). It carries the source/flags any host-provided PCRE
// backend needs plus the mutable lastIndex a host keeps in sync across
// exec() calls — matching is delegated to Ext (vm_external_add) when one
// is registered; there is no built-in PCRE engine per Non-goals.
type RegExpHandle struct {
	*object.Object
	Source     string
	Global     bool
	IgnoreCase bool
	Multiline  bool
}

// NewRegExp parses the njs-style flag letters (g, i, m) out of flags.
func NewRegExp(proto *object.Object, source, flags string) *RegExpHandle {
	h := &RegExpHandle{Object: object.New(value.ClassRegExp, proto), Source: source}
	for _, f := range flags {
		switch f {
		case 'g':
			h.Global = true
		case 'i':
			h.IgnoreCase = true
		case 'm':
			h.Multiline = true
		}
	}
	return h
}

// Flags renders the flag letters back in njs's canonical g/i/m order.
func (h *RegExpHandle) Flags() string {
	s := ""
	if h.Global {
		s += "g"
	}
	if h.IgnoreCase {
		s += "i"
	}
	if h.Multiline {
		s += "m"
	}
	return s
}
