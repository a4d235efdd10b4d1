// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegExpConstructorExposesSourceAndFlags(t *testing.T) {
	v := run(t, `
		var re = new RegExp("a+b", "gi");
		"" + re.source + "," + re.global + "," + re.ignoreCase + "," + re.multiline;
	`)
	assert.Equal(t, "a+b,true,true,false", v.AsString())
}

func TestRegExpToStringRendersLiteralForm(t *testing.T) {
	v := run(t, `new RegExp("x", "m").toString();`)
	assert.Equal(t, "/x/m", v.AsString())
}

func TestRegExpTestWithoutBackendThrows(t *testing.T) {
	v := run(t, `
		var caught = "";
		try {
			new RegExp("a").test("a");
		} catch (e) {
			caught = e;
		}
		caught;
	`)
	assert.Contains(t, v.AsString(), "external backend")
}
