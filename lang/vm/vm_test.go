// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmalite/ecmalite/lang/generator"
	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/parser"
	"github.com/ecmalite/ecmalite/lang/value"
)

func newTestVM() *VM {
	vm := New()
	vm.Protos.Object = object.New(value.ClassPlain, nil)
	vm.Protos.Function = object.New(value.ClassPlain, vm.Protos.Object)
	vm.Protos.Array = object.New(value.ClassPlain, vm.Protos.Object)
	vm.Global.SetProto(vm.Protos.Object)
	return vm
}

func run(t *testing.T, src string) value.Value {
	t.Helper()
	prog, errs := parser.Parse("test.js", src)
	require.Empty(t, errs)
	chunk, err := generator.Generate("test.js", src, prog)
	require.NoError(t, err)
	v, err := newTestVM().Run(chunk)
	require.NoError(t, err)
	return v
}

func TestArithmeticEvaluatesWithPrecedence(t *testing.T) {
	v := run(t, "1 + 2 * 3;")
	assert.True(t, v.IsNumber())
	assert.Equal(t, float64(7), v.AsNumber())
}

func TestStringConcatenation(t *testing.T) {
	v := run(t, `"foo" + "bar";`)
	assert.Equal(t, "foobar", v.AsString())
}

func TestVariableDeclarationAndGlobalMutation(t *testing.T) {
	v := run(t, "var x = 10; x = x + 5; x;")
	assert.Equal(t, float64(15), v.AsNumber())
}

func TestPlusCoercesObjectViaValueOfBeforeToString(t *testing.T) {
	v := run(t, `
		var obj = {
			valueOf: function() { return 42; },
			toString: function() { return "ignored"; }
		};
		obj + 1;
	`)
	assert.Equal(t, float64(43), v.AsNumber())
}

func TestPlusFallsBackToToStringWhenNoValueOf(t *testing.T) {
	v := run(t, `
		var obj = { toString: function() { return "hi"; } };
		obj + "!";
	`)
	assert.Equal(t, "hi!", v.AsString())
}

func TestIfElseBranching(t *testing.T) {
	v := run(t, `var r; if (1 < 2) { r = "yes"; } else { r = "no"; } r;`)
	assert.Equal(t, "yes", v.AsString())
}

func TestWhileLoopAccumulates(t *testing.T) {
	v := run(t, `
		var sum = 0;
		var i = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		sum;
	`)
	assert.Equal(t, float64(10), v.AsNumber())
}

func TestFunctionCallReturnsValue(t *testing.T) {
	v := run(t, `
		function add(a, b) { return a + b; }
		add(3, 4);
	`)
	assert.Equal(t, float64(7), v.AsNumber())
}

func TestClosureCapturesOuterVariable(t *testing.T) {
	v := run(t, `
		function makeCounter() {
			var n = 0;
			function inc() { n = n + 1; return n; }
			return inc;
		}
		var counter = makeCounter();
		counter();
		counter();
		counter();
	`)
	assert.Equal(t, float64(3), v.AsNumber())
}

func TestObjectAndArrayLiterals(t *testing.T) {
	v := run(t, `
		var obj = { a: 1, b: 2 };
		var arr = [1, 2, 3];
		obj.a + arr[2];
	`)
	assert.Equal(t, float64(4), v.AsNumber())
}

func TestTryCatchRecoversThrownValue(t *testing.T) {
	v := run(t, `
		var caught;
		try {
			throw "boom";
		} catch (e) {
			caught = e;
		}
		caught;
	`)
	assert.Equal(t, "boom", v.AsString())
}

func TestForInEnumeratesKeys(t *testing.T) {
	v := run(t, `
		var obj = { a: 1, b: 2 };
		var keys = "";
		for (var k in obj) {
			keys = keys + k;
		}
		keys;
	`)
	assert.Equal(t, "ab", v.AsString())
}

func TestNewConstructsInstance(t *testing.T) {
	v := run(t, `
		function Point(x, y) { this.x = x; this.y = y; }
		var p = new Point(1, 2);
		p.x + p.y;
	`)
	assert.Equal(t, float64(3), v.AsNumber())
}

// A finally with no catch handler must run, then still propagate the
// exception rather than silently absorb it.
func TestFinallyWithoutCatchRunsThenRethrows(t *testing.T) {
	v := run(t, `
		var log = "";
		try {
			try {
				throw "boom";
			} finally {
				log = log + "finally";
			}
		} catch (e) {
			log = log + ":" + e;
		}
		log;
	`)
	assert.Equal(t, "finally:boom", v.AsString())
}

// A return inside a try body must run the pending finally before the
// call completes.
func TestReturnInsideTryRunsFinally(t *testing.T) {
	v := run(t, `
		var log = "";
		function f() {
			try {
				return "result";
			} finally {
				log = log + "ran";
			}
		}
		f();
		log;
	`)
	assert.Equal(t, "ran", v.AsString())
}

// A break out of a loop from inside a try body must run the pending
// finally before leaving the loop.
func TestBreakInsideTryRunsFinally(t *testing.T) {
	v := run(t, `
		var log = "";
		for (var i = 0; i < 3; i = i + 1) {
			try {
				if (i === 1) {
					break;
				}
			} finally {
				log = log + i;
			}
		}
		log;
	`)
	assert.Equal(t, "01", v.AsString())
}
