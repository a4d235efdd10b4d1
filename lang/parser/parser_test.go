// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmalite/ecmalite/lang/ast"
)

func TestParseFibonacci(t *testing.T) {
	src := `function f(n){ if (n>1) return f(n-1)+f(n-2); return 1 }`
	prog, errs := Parse("t.js", src)
	require.Empty(t, errs)
	require.Len(t, prog.Statements, 1)
	_, ok := prog.Statements[0].(*ast.FunctionDeclaration)
	assert.True(t, ok)
}

func TestParseVariableDeclarations(t *testing.T) {
	prog, errs := Parse("t.js", `let x = 1, y = 2; const [a, b] = [1, 2];`)
	require.Empty(t, errs)
	require.Len(t, prog.Statements, 2)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	assert.Equal(t, ast.VarKindLet, decl.Kind)
	assert.Len(t, decl.Declarators, 2)
}

func TestParseArrowFunction(t *testing.T) {
	prog, errs := Parse("t.js", `const add = (a, b) => a + b;`)
	require.Empty(t, errs)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	fn, ok := decl.Declarators[0].Init.(*ast.FunctionExpression)
	require.True(t, ok)
	assert.True(t, fn.IsArrow)
	assert.NotNil(t, fn.ExprBody)
}

func TestParseAsyncAwait(t *testing.T) {
	src := `async function g(){ return await Promise.resolve(41)+1 }`
	prog, errs := Parse("t.js", src)
	require.Empty(t, errs)
	fd := prog.Statements[0].(*ast.FunctionDeclaration)
	assert.True(t, fd.Function.IsAsync)
}

func TestParseTryCatch(t *testing.T) {
	src := `try { throw new TypeError('x') } catch(e) { e.name }`
	prog, errs := Parse("t.js", src)
	require.Empty(t, errs)
	_, ok := prog.Statements[0].(*ast.TryStatement)
	assert.True(t, ok)
}

func TestParseForLoop(t *testing.T) {
	src := `let s = ''; for (let i=0;i<3;i++) s+=i;`
	prog, errs := Parse("t.js", src)
	require.Empty(t, errs)
	require.Len(t, prog.Statements, 2)
	_, ok := prog.Statements[1].(*ast.ForStatement)
	assert.True(t, ok)
}

func TestParseForOf(t *testing.T) {
	prog, errs := Parse("t.js", `for (const x of arr) { sum += x; }`)
	require.Empty(t, errs)
	_, ok := prog.Statements[0].(*ast.ForOfStatement)
	assert.True(t, ok)
}

func TestParseObjectAndArrayLiterals(t *testing.T) {
	prog, errs := Parse("t.js", `({a:1, b:[1,2,3]})`)
	require.Empty(t, errs)
	stmt := prog.Statements[0].(*ast.ExpressionStatement)
	obj, ok := stmt.Expression.(*ast.ObjectLiteral)
	require.True(t, ok)
	assert.Len(t, obj.Properties, 2)
}

func TestParseTemplateLiteral(t *testing.T) {
	prog, errs := Parse("t.js", "let s = `a${x+1}b`;")
	require.Empty(t, errs)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	tmpl, ok := decl.Declarators[0].Init.(*ast.TemplateLiteral)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tmpl.Quasis)
	assert.Len(t, tmpl.Expressions, 1)
}

func TestParseClassLite(t *testing.T) {
	src := `class Point { constructor(x,y) { this.x = x; } dist() { return this.x; } }`
	prog, errs := Parse("t.js", src)
	require.Empty(t, errs)
	cd, ok := prog.Statements[0].(*ast.ClassDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Point", cd.Class.Name.Name)
	assert.Len(t, cd.Class.Members, 2)
}
