// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package vm

import (
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
)

// DateHandle wraps a single epoch-millisecond instant (spec supplement:
// njs's njs_date.c storage), backed by a Go float64 rather than a
// time.Time so NaN ("Invalid Date") round-trips the same way it does for
// ordinary numbers.
type DateHandle struct {
	*object.Object
	Millis float64
}

// NewDate builds a Date instance for millis (may be NaN for Invalid Date).
func NewDate(proto *object.Object, millis float64) *DateHandle {
	return &DateHandle{Object: object.New(value.ClassDate, proto), Millis: millis}
}
