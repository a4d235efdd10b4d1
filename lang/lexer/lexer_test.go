// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecmalite/ecmalite/lang/lexer"
	"github.com/ecmalite/ecmalite/lang/token"
)

func TestTokenizeBasics(t *testing.T) {
	src := `let x = 1 + 2; function f(n) { return n; }`
	toks := lexer.New("t.js", src).Tokenize()
	var types []token.Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, token.LET, types[0])
	assert.Equal(t, token.IDENT, types[1])
	assert.Equal(t, token.ASSIGN, types[2])
	assert.Equal(t, token.NUMBER, types[3])
	assert.Equal(t, token.PLUS, types[4])
	assert.Equal(t, token.EOF, types[len(types)-1])
}

func TestRegexVsDivisionDisambiguation(t *testing.T) {
	toks := lexer.New("t.js", `a / b`).Tokenize()
	assert.Equal(t, token.SLASH, toks[1].Type)

	toks = lexer.New("t.js", `return /abc/g`).Tokenize()
	assert.Equal(t, token.REGEX, toks[1].Type)
	assert.Equal(t, "/abc/g", toks[1].Literal)
}

func TestStringEscapesPreserved(t *testing.T) {
	toks := lexer.New("t.js", `"a\nb"`).Tokenize()
	assert.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, `a\nb`, toks[0].Literal)
}

func TestTemplateLiteralNoInterpolation(t *testing.T) {
	toks := lexer.New("t.js", "`hello`").Tokenize()
	assert.Equal(t, token.TEMPLATE_STRING, toks[0].Type)
	assert.Equal(t, "hello", toks[0].Literal)
}

func TestTemplateLiteralHeadAndTail(t *testing.T) {
	l := lexer.New("t.js", "`a${x}b`")
	head := l.NextToken()
	assert.Equal(t, token.TEMPLATE_HEAD, head.Type)
	assert.Equal(t, "a", head.Literal)
	ident := l.NextToken()
	assert.Equal(t, token.IDENT, ident.Type)
	rbrace := l.NextToken()
	assert.Equal(t, token.RBRACE, rbrace.Type)
	tail := l.ContinueTemplate()
	assert.Equal(t, token.TEMPLATE_TAIL, tail.Type)
	assert.Equal(t, "b", tail.Literal)
}

func TestNumericLiterals(t *testing.T) {
	for _, src := range []string{"0", "42", "3.14", "0x1F", "0b101", "0o17", "1e10", "1.5e-3"} {
		toks := lexer.New("t.js", src).Tokenize()
		assert.Equal(t, token.NUMBER, toks[0].Type, src)
		assert.Equal(t, src, toks[0].Literal, src)
	}
}

func TestKeywordsAndAsyncAwait(t *testing.T) {
	toks := lexer.New("t.js", "async function f() { await g(); }").Tokenize()
	assert.Equal(t, token.ASYNC, toks[0].Type)
	assert.Equal(t, token.FUNCTION, toks[1].Type)
}
