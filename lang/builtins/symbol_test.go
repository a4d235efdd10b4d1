// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolToStringIncludesDescription(t *testing.T) {
	v := run(t, `Symbol("tag").toString();`)
	assert.Equal(t, "Symbol(tag)", v.AsString())
}

func TestSymbolCallsAreMutuallyUnique(t *testing.T) {
	v := run(t, `Symbol("x") === Symbol("x");`)
	assert.False(t, v.ToBoolean())
}
