// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateGetTimeRoundTripsConstructorArg(t *testing.T) {
	v := run(t, `new Date(1700000000000).getTime();`)
	assert.Equal(t, float64(1700000000000), v.AsNumber())
}

func TestDateToISOStringFormatsUTC(t *testing.T) {
	v := run(t, `new Date(0).toISOString();`)
	assert.Equal(t, "1970-01-01T00:00:00.000Z", v.AsString())
}

func TestDateFieldGetters(t *testing.T) {
	v := run(t, `
		var d = new Date(0);
		"" + d.getFullYear() + "-" + d.getMonth() + "-" + d.getDate();
	`)
	assert.Equal(t, "1970-0-1", v.AsString())
}

func TestDatePlusStringUsesToStringNotObjectTag(t *testing.T) {
	v := run(t, `new Date(0) + "";`)
	assert.NotContains(t, v.AsString(), "%!")
	assert.Contains(t, v.AsString(), "1970")
}
