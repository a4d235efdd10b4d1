// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmalite/ecmalite/lang/eventloop"
	"github.com/ecmalite/ecmalite/lang/generator"
	"github.com/ecmalite/ecmalite/lang/parser"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

func newTestVM() *vm.VM {
	v := vm.New()
	v.Loop = eventloop.New(nil)
	Install(v)
	return v
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

func TestArrayMapFilterReduce(t *testing.T) {
	v := run(t, `
		var doubled = [1, 2, 3].map(function(x) { return x * 2; });
		var evens = doubled.filter(function(x) { return x % 4 === 0; });
		evens.reduce(function(a, b) { return a + b; }, 0);
	`)
	assert.Equal(t, float64(4), v.AsNumber())
}

func TestArrayPushPopSliceJoin(t *testing.T) {
	v := run(t, `
		var a = [1, 2, 3];
		a.push(4);
		a.shift();
		a.slice(0, 2).join("-");
	`)
	assert.Equal(t, "2-3", v.AsString())
}

func TestStringMethods(t *testing.T) {
	v := run(t, `
		"  Hello World  ".trim().toLowerCase().split(" ").join("_");
	`)
	assert.Equal(t, "hello_world", v.AsString())
}

func TestNumberStaticsAndToFixed(t *testing.T) {
	v := run(t, `
		(Number.isInteger(4) && !Number.isInteger(4.5)) + "";
	`)
	assert.Equal(t, "true", v.AsString())

	v2 := run(t, `(3.14159).toFixed(2);`)
	assert.Equal(t, "3.14", v2.AsString())
}

func TestMathBasics(t *testing.T) {
	v := run(t, `Math.max(1, 5, 3) + Math.floor(2.9);`)
	assert.Equal(t, float64(7), v.AsNumber())
}

func TestJSONRoundTrip(t *testing.T) {
	v := run(t, `
		var obj = { a: 1, b: [1, 2, 3], c: "x" };
		var s = JSON.stringify(obj);
		var parsed = JSON.parse(s);
		parsed.a + parsed.b[1] + parsed.c.length;
	`)
	assert.Equal(t, float64(4), v.AsNumber())
}

func TestErrorToString(t *testing.T) {
	v := run(t, `
		var e = new TypeError("bad value");
		e.toString();
	`)
	assert.Equal(t, "TypeError: bad value", v.AsString())
}

func TestTryCatchWithThrownBuiltinError(t *testing.T) {
	v := run(t, `
		var caught = "";
		try {
			throw new RangeError("out of range");
		} catch (e) {
			caught = e.message;
		}
		caught;
	`)
	assert.Equal(t, "out of range", v.AsString())
}

func TestFunctionBindAppliesBoundArgs(t *testing.T) {
	v := run(t, `
		function add(a, b) { return a + b; }
		var add5 = add.bind(null, 5);
		add5(10);
	`)
	assert.Equal(t, float64(15), v.AsNumber())
}

func TestPromiseThenChainResolves(t *testing.T) {
	v := run(t, `
		var result;
		Promise.resolve(1)
			.then(function(x) { return x + 1; })
			.then(function(x) { result = x * 10; });
		result;
	`)
	assert.Equal(t, float64(20), v.AsNumber())
}

func TestPromiseAllCollectsResults(t *testing.T) {
	v := run(t, `
		var result;
		Promise.all([Promise.resolve(1), Promise.resolve(2), 3]).then(function(vals) {
			result = vals[0] + vals[1] + vals[2];
		});
		result;
	`)
	assert.Equal(t, float64(6), v.AsNumber())
}

func TestObjectKeysAndAssign(t *testing.T) {
	v := run(t, `
		var target = { a: 1 };
		Object.assign(target, { b: 2 });
		Object.keys(target).join(",");
	`)
	assert.Equal(t, "a,b", v.AsString())
}

func TestUint8ArrayIndexedReadWrite(t *testing.T) {
	v := run(t, `
		var buf = new Uint8Array(3);
		buf[0] = 10;
		buf[1] = 20;
		buf[2] = buf[0] + buf[1];
		buf.toString();
	`)
	assert.Equal(t, "10,20,30", v.AsString())
}

func TestGlobalParseIntAndIsNaN(t *testing.T) {
	v := run(t, `
		parseInt("42px") + (isNaN("abc") ? 1 : 0);
	`)
	assert.Equal(t, float64(43), v.AsNumber())
}
