// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package parser implements a recursive-descent / Pratt parser for the
// ecmalite ECMAScript subset named in spec §4.G: declarations
// (var/let/const/function/async function/class-lite), expressions with
// precedence climbing, for/for-in/for-of/try/throw/switch, destructuring,
// template literals, arrow functions, await.
//
// Design overview:
//
//   - Declarations and statements are parsed with straightforward recursive
//     descent.
//   - Expressions are parsed with a Pratt (top-down operator precedence)
//     table.
//   - Errors are collected rather than aborting; after an error the parser
//     simply continues from the next token, without skipping ahead to a
//     statement boundary.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ecmalite/ecmalite/lang/ast"
	"github.com/ecmalite/ecmalite/lang/lexer"
	"github.com/ecmalite/ecmalite/lang/token"
)

// ---------------------------------------------------------------------------
// Precedence levels (Pratt)
// ---------------------------------------------------------------------------

type precedence int

const (
	precLowest     precedence = iota
	precAssign                // = += -= ...
	precConditional           // ?:
	precNullish               // ??
	precOr                    // ||
	precAnd                   // &&
	precBitOr                 // |
	precBitXor                // ^
	precBitAnd                // &
	precEquality              // == != === !==
	precCompare               // < > <= >= instanceof in
	precShift                 // << >> >>>
	precAdd                   // + -
	precMul                   // * / %
	precExponent              // **
	precPrefix                // ! ~ -x +x typeof void delete ++x --x
	precPostfix                // x++ x--
	precCall                  // . [] () ?.
)

var infixPrecedence = map[token.Type]precedence{
	token.OR_OR:          precOr,
	token.AND_AND:        precAnd,
	token.NULLISH:        precNullish,
	token.BIT_OR:         precBitOr,
	token.BIT_XOR:        precBitXor,
	token.BIT_AND:        precBitAnd,
	token.EQ:             precEquality,
	token.NOT_EQ:         precEquality,
	token.STRICT_EQ:      precEquality,
	token.STRICT_NOT_EQ:  precEquality,
	token.LT:             precCompare,
	token.GT:             precCompare,
	token.LT_EQ:          precCompare,
	token.GT_EQ:          precCompare,
	token.INSTANCEOF:     precCompare,
	token.IN:             precCompare,
	token.SHL:            precShift,
	token.SHR:            precShift,
	token.USHR:           precShift,
	token.PLUS:           precAdd,
	token.MINUS:          precAdd,
	token.STAR:           precMul,
	token.SLASH:          precMul,
	token.PERCENT:        precMul,
	token.STAR_STAR:      precExponent,
	token.LPAREN:         precCall,
	token.DOT:            precCall,
	token.LBRACKET:       precCall,
	token.QUESTION_DOT:   precCall,
}

var assignOps = map[token.Type]bool{
	token.ASSIGN: true, token.PLUS_ASSIGN: true, token.MINUS_ASSIGN: true,
	token.STAR_ASSIGN: true, token.SLASH_ASSIGN: true, token.PERCENT_ASSIGN: true,
	token.AND_ASSIGN: true, token.OR_ASSIGN: true, token.NULLISH_ASSIGN: true,
}

// Parser holds parsing state over a token stream produced eagerly by the
// lexer (so the parser can freely peek/backtrack tokens).
type Parser struct {
	l      *lexer.Lexer
	source string

	toks []token.Token
	pos  int

	errors []string
}

// New creates a parser over source text from filename.
func New(filename, source string) *Parser {
	l := lexer.New(filename, source)
	return &Parser{l: l, source: source, toks: l.Tokenize()}
}

// Errors returns every parse error collected during Parse.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peekN(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}
func (p *Parser) peek() token.Token { return p.peekN(1) }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur().Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek().Type == t }

func (p *Parser) expect(t token.Type) token.Token {
	if p.curIs(t) {
		return p.advance()
	}
	p.errorf("expected %s, got %s", t, p.cur().Type)
	return p.cur()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("%s: %s", p.cur().Pos, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, msg)
}

// skipTo advances until one of the given types is current (or EOF). No
// parse routine calls it at present.
func (p *Parser) skipTo(types ...token.Type) {
	for !p.curIs(token.EOF) {
		for _, t := range types {
			if p.curIs(t) {
				return
			}
		}
		p.advance()
	}
}

// consumeSemicolon implements ASI loosely: an explicit `;` is consumed if
// present; otherwise parsing simply continues (no newline tracking beyond
// that, consistent with the teacher's relaxed statement-termination style).
func (p *Parser) consumeSemicolon() {
	if p.curIs(token.SEMICOLON) {
		p.advance()
	}
}

// ---------------------------------------------------------------------------
// Entry point
// ---------------------------------------------------------------------------

// Parse parses the full token stream into a Program.
func Parse(filename, source string) (*ast.Program, []string) {
	p := New(filename, source)
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog, p.errors
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() ast.Statement {
	defer func() {
		if len(p.errors) > 0 && p.errors[len(p.errors)-1] != "" {
			// no-op: errors already recorded with position context
		}
	}()
	switch p.cur().Type {
	case token.VAR, token.LET, token.CONST:
		return p.parseVariableDeclaration()
	case token.FUNCTION:
		return p.parseFunctionDeclaration(false)
	case token.ASYNC:
		if p.peekIs(token.FUNCTION) {
			p.advance()
			return p.parseFunctionDeclaration(true)
		}
	case token.CLASS:
		return p.parseClassDeclaration()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.SEMICOLON:
		tok := p.advance()
		return &ast.EmptyStatement{Tok: tok}
	case token.IDENT:
		if p.peekIs(token.COLON) {
			return p.parseLabeledStatement()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	tok := p.expect(token.LBRACE)
	block := &ast.BlockStatement{Tok: tok}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		block.Statements = append(block.Statements, p.parseStatement())
	}
	p.expect(token.RBRACE)
	return block
}

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	tok := p.advance()
	var kind ast.VarKind
	switch tok.Type {
	case token.VAR:
		kind = ast.VarKindVar
	case token.LET:
		kind = ast.VarKindLet
	case token.CONST:
		kind = ast.VarKindConst
	}
	decl := &ast.VariableDeclaration{Tok: tok, Kind: kind}
	for {
		target := p.parseBindingTarget()
		var init ast.Expression
		if p.curIs(token.ASSIGN) {
			p.advance()
			init = p.parseExpression(precAssign)
		}
		decl.Declarators = append(decl.Declarators, &ast.VariableDeclarator{Target: target, Init: init})
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	p.consumeSemicolon()
	return decl
}

func (p *Parser) parseBindingTarget() ast.Pattern {
	switch p.cur().Type {
	case token.LBRACKET:
		return p.parseArrayPattern()
	case token.LBRACE:
		return p.parseObjectPattern()
	default:
		tok := p.expect(token.IDENT)
		return &ast.Identifier{Tok: tok, Name: tok.Literal}
	}
}

func (p *Parser) parseArrayPattern() *ast.ArrayPattern {
	tok := p.expect(token.LBRACKET)
	pat := &ast.ArrayPattern{Tok: tok}
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			pat.Elements = append(pat.Elements, nil)
			p.advance()
			continue
		}
		el := &ast.ArrayPatternElement{}
		if p.curIs(token.DOT_DOT_DOT) {
			p.advance()
			el.Rest = true
		}
		el.Target = p.parseBindingTarget()
		if p.curIs(token.ASSIGN) {
			p.advance()
			el.Default = p.parseExpression(precAssign)
		}
		pat.Elements = append(pat.Elements, el)
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACKET)
	return pat
}

func (p *Parser) parseObjectPattern() *ast.ObjectPattern {
	tok := p.expect(token.LBRACE)
	pat := &ast.ObjectPattern{Tok: tok}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		prop := &ast.ObjectPatternProperty{}
		if p.curIs(token.DOT_DOT_DOT) {
			p.advance()
			prop.Rest = true
			prop.Target = p.parseBindingTarget()
			pat.Properties = append(pat.Properties, prop)
			if p.curIs(token.COMMA) {
				p.advance()
			}
			continue
		}
		keyTok := p.cur()
		if p.curIs(token.LBRACKET) {
			p.advance()
			prop.Key = p.parseExpression(precLowest)
			prop.Computed = true
			p.expect(token.RBRACKET)
		} else {
			p.advance()
			prop.Key = &ast.Identifier{Tok: keyTok, Name: keyTok.Literal}
		}
		if p.curIs(token.COLON) {
			p.advance()
			prop.Target = p.parseBindingTarget()
		} else {
			prop.Target = &ast.Identifier{Tok: keyTok, Name: keyTok.Literal}
		}
		if p.curIs(token.ASSIGN) {
			p.advance()
			prop.Default = p.parseExpression(precAssign)
		}
		pat.Properties = append(pat.Properties, prop)
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return pat
}

func (p *Parser) parseFunctionDeclaration(isAsync bool) *ast.FunctionDeclaration {
	tok := p.cur()
	fn := p.parseFunctionLiteral(isAsync, false)
	return &ast.FunctionDeclaration{Tok: tok, Function: fn}
}

func (p *Parser) parseFunctionLiteral(isAsync, requireName bool) *ast.FunctionExpression {
	tok := p.expect(token.FUNCTION)
	srcStart := p.cur().Pos.Column // approximate; full offset tracking omitted
	_ = srcStart
	if p.curIs(token.STAR) {
		p.errorf("generator functions are not supported")
		p.advance()
	}
	fn := &ast.FunctionExpression{Tok: tok, IsAsync: isAsync}
	if p.curIs(token.IDENT) {
		nt := p.advance()
		fn.Name = &ast.Identifier{Tok: nt, Name: nt.Literal}
	} else if requireName {
		p.errorf("expected function name")
	}
	fn.Params = p.parseParamList()
	fn.Body = p.parseBlockStatement()
	return fn
}

func (p *Parser) parseParamList() []*ast.ArrayPatternElement {
	p.expect(token.LPAREN)
	var params []*ast.ArrayPatternElement
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		el := &ast.ArrayPatternElement{}
		if p.curIs(token.DOT_DOT_DOT) {
			p.advance()
			el.Rest = true
		}
		el.Target = p.parseBindingTarget()
		if p.curIs(token.ASSIGN) {
			p.advance()
			el.Default = p.parseExpression(precAssign)
		}
		params = append(params, el)
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseClassDeclaration() *ast.ClassDeclaration {
	tok := p.cur()
	cls := p.parseClassLiteral()
	return &ast.ClassDeclaration{Tok: tok, Class: cls}
}

func (p *Parser) parseClassLiteral() *ast.ClassLiteral {
	tok := p.expect(token.CLASS)
	cls := &ast.ClassLiteral{Tok: tok}
	if p.curIs(token.IDENT) {
		nt := p.advance()
		cls.Name = &ast.Identifier{Tok: nt, Name: nt.Literal}
	}
	if p.curIs(token.EXTENDS) {
		p.advance()
		cls.SuperClass = p.parseExpression(precCall)
	}
	p.expect(token.LBRACE)
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			p.advance()
			continue
		}
		cls.Members = append(cls.Members, p.parseClassMember())
	}
	p.expect(token.RBRACE)
	return cls
}

func (p *Parser) parseClassMember() *ast.ClassMember {
	m := &ast.ClassMember{Kind: "method"}
	if p.curIs(token.STATIC) {
		p.advance()
		m.Static = true
	}
	isAsync := false
	if p.curIs(token.ASYNC) && !p.peekIs(token.LPAREN) {
		p.advance()
		isAsync = true
	}
	if (p.curIs(token.GET) || p.curIs(token.SET)) && !p.peekIs(token.LPAREN) {
		kindTok := p.advance()
		m.Kind = kindTok.Type.String()
	}
	keyTok := p.cur()
	if p.curIs(token.LBRACKET) {
		p.advance()
		m.Key = p.parseExpression(precLowest)
		m.Computed = true
		p.expect(token.RBRACKET)
	} else {
		p.advance()
		m.Key = &ast.Identifier{Tok: keyTok, Name: keyTok.Literal}
	}
	if p.curIs(token.LPAREN) {
		if id, ok := m.Key.(*ast.Identifier); ok && id.Name == "constructor" && m.Kind == "method" {
			m.Kind = "constructor"
		}
		fn := &ast.FunctionExpression{Tok: keyTok, IsAsync: isAsync}
		fn.Params = p.parseParamList()
		fn.Body = p.parseBlockStatement()
		m.Value = fn
		return m
	}
	// field
	m.Kind = "field"
	if p.curIs(token.ASSIGN) {
		p.advance()
		m.FieldVal = p.parseExpression(precAssign)
	}
	p.consumeSemicolon()
	return m
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	tok := p.advance()
	stmt := &ast.ReturnStatement{Tok: tok}
	if !p.curIs(token.SEMICOLON) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt.Argument = p.parseExpression(precLowest)
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	tok := p.advance()
	p.expect(token.LPAREN)
	test := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	cons := p.parseStatement()
	stmt := &ast.IfStatement{Tok: tok, Test: test, Consequent: cons}
	if p.curIs(token.ELSE) {
		p.advance()
		stmt.Alternate = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.advance()
	p.expect(token.LPAREN)

	var init ast.Node
	if p.curIs(token.VAR) || p.curIs(token.LET) || p.curIs(token.CONST) {
		kindTok := p.cur()
		var kind ast.VarKind
		switch kindTok.Type {
		case token.VAR:
			kind = ast.VarKindVar
		case token.LET:
			kind = ast.VarKindLet
		case token.CONST:
			kind = ast.VarKindConst
		}
		p.advance()
		target := p.parseBindingTarget()
		if p.curIs(token.IN) || p.curIs(token.OF) {
			isOf := p.curIs(token.OF)
			p.advance()
			right := p.parseExpression(precLowest)
			p.expect(token.RPAREN)
			body := p.parseStatement()
			decl := &ast.VariableDeclaration{Tok: kindTok, Kind: kind, Declarators: []*ast.VariableDeclarator{{Target: target}}}
			if isOf {
				return &ast.ForOfStatement{Tok: tok, Left: decl, Right: right, Body: body}
			}
			return &ast.ForInStatement{Tok: tok, Left: decl, Right: right, Body: body}
		}
		decl := &ast.VariableDeclaration{Tok: kindTok, Kind: kind}
		var initExpr ast.Expression
		if p.curIs(token.ASSIGN) {
			p.advance()
			initExpr = p.parseExpression(precAssign)
		}
		decl.Declarators = append(decl.Declarators, &ast.VariableDeclarator{Target: target, Init: initExpr})
		for p.curIs(token.COMMA) {
			p.advance()
			t2 := p.parseBindingTarget()
			var i2 ast.Expression
			if p.curIs(token.ASSIGN) {
				p.advance()
				i2 = p.parseExpression(precAssign)
			}
			decl.Declarators = append(decl.Declarators, &ast.VariableDeclarator{Target: t2, Init: i2})
		}
		init = decl
		p.expect(token.SEMICOLON)
	} else if !p.curIs(token.SEMICOLON) {
		expr := p.parseExpression(precLowest)
		if p.curIs(token.IN) || p.curIs(token.OF) {
			isOf := p.curIs(token.OF)
			p.advance()
			right := p.parseExpression(precLowest)
			p.expect(token.RPAREN)
			body := p.parseStatement()
			if isOf {
				return &ast.ForOfStatement{Tok: tok, Left: expr, Right: right, Body: body}
			}
			return &ast.ForInStatement{Tok: tok, Left: expr, Right: right, Body: body}
		}
		init = expr
		p.expect(token.SEMICOLON)
	} else {
		p.advance()
	}

	var test ast.Expression
	if !p.curIs(token.SEMICOLON) {
		test = p.parseExpression(precLowest)
	}
	p.expect(token.SEMICOLON)

	var update ast.Expression
	if !p.curIs(token.RPAREN) {
		update = p.parseExpression(precLowest)
	}
	p.expect(token.RPAREN)

	body := p.parseStatement()
	return &ast.ForStatement{Tok: tok, Init: init, Test: test, Update: update, Body: body}
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	tok := p.advance()
	p.expect(token.LPAREN)
	test := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.WhileStatement{Tok: tok, Test: test, Body: body}
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	tok := p.advance()
	body := p.parseStatement()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	test := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	p.consumeSemicolon()
	return &ast.DoWhileStatement{Tok: tok, Body: body, Test: test}
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	tok := p.advance()
	stmt := &ast.BreakStatement{Tok: tok}
	if p.curIs(token.IDENT) {
		lt := p.advance()
		stmt.Label = &ast.Identifier{Tok: lt, Name: lt.Literal}
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	tok := p.advance()
	stmt := &ast.ContinueStatement{Tok: tok}
	if p.curIs(token.IDENT) {
		lt := p.advance()
		stmt.Label = &ast.Identifier{Tok: lt, Name: lt.Literal}
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseLabeledStatement() *ast.LabeledStatement {
	lt := p.advance()
	p.expect(token.COLON)
	body := p.parseStatement()
	return &ast.LabeledStatement{Tok: lt, Label: &ast.Identifier{Tok: lt, Name: lt.Literal}, Body: body}
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	tok := p.advance()
	arg := p.parseExpression(precLowest)
	p.consumeSemicolon()
	return &ast.ThrowStatement{Tok: tok, Argument: arg}
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	tok := p.advance()
	stmt := &ast.TryStatement{Tok: tok, Block: p.parseBlockStatement()}
	if p.curIs(token.CATCH) {
		p.advance()
		handler := &ast.CatchClause{}
		if p.curIs(token.LPAREN) {
			p.advance()
			handler.Param = p.parseBindingTarget()
			p.expect(token.RPAREN)
		}
		handler.Body = p.parseBlockStatement()
		stmt.Handler = handler
	}
	if p.curIs(token.FINALLY) {
		p.advance()
		stmt.Finally = p.parseBlockStatement()
	}
	if stmt.Handler == nil && stmt.Finally == nil {
		p.errorf("missing catch or finally after try")
	}
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	tok := p.advance()
	p.expect(token.LPAREN)
	disc := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	stmt := &ast.SwitchStatement{Tok: tok, Discriminant: disc}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		c := &ast.SwitchCase{}
		if p.curIs(token.CASE) {
			p.advance()
			c.Test = p.parseExpression(precLowest)
		} else {
			p.expect(token.DEFAULT)
		}
		p.expect(token.COLON)
		for !p.curIs(token.CASE) && !p.curIs(token.DEFAULT) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
			c.Consequent = append(c.Consequent, p.parseStatement())
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.expect(token.RBRACE)
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	tok := p.cur()
	if tok.Type == token.EOF {
		return nil
	}
	expr := p.parseExpression(precLowest)
	p.consumeSemicolon()
	return &ast.ExpressionStatement{Tok: tok, Expression: expr}
}

// ---------------------------------------------------------------------------
// Expressions (Pratt)
// ---------------------------------------------------------------------------

func (p *Parser) parseExpression(minPrec precedence) ast.Expression {
	left := p.parseUnary()
	return p.parseInfix(left, minPrec)
}

func (p *Parser) parseInfix(left ast.Expression, minPrec precedence) ast.Expression {
	for {
		t := p.cur().Type
		if assignOps[t] && minPrec <= precAssign {
			tok := p.advance()
			value := p.parseExpression(precAssign)
			left = &ast.AssignmentExpression{Tok: tok, Target: left, Operator: tok.Literal, Value: value}
			continue
		}
		if t == token.QUESTION && minPrec < precConditional {
			tok := p.advance()
			cons := p.parseExpression(precAssign)
			p.expect(token.COLON)
			alt := p.parseExpression(precAssign)
			left = &ast.ConditionalExpression{Tok: tok, Test: left, Consequent: cons, Alternate: alt}
			continue
		}
		if t == token.COMMA && minPrec == precLowest {
			tok := p.advance()
			seq := &ast.SequenceExpression{Tok: tok, Expressions: []ast.Expression{left}}
			for {
				seq.Expressions = append(seq.Expressions, p.parseExpression(precAssign))
				if !p.curIs(token.COMMA) {
					break
				}
				p.advance()
			}
			left = seq
			continue
		}
		prec, ok := infixPrecedence[t]
		if !ok || prec < minPrec {
			return left
		}
		switch t {
		case token.AND_AND, token.OR_OR, token.NULLISH:
			tok := p.advance()
			right := p.parseExpression(prec + 1)
			left = &ast.LogicalExpression{Tok: tok, Left: left, Operator: tok.Type.String(), Right: right}
		case token.DOT:
			tok := p.advance()
			propTok := p.advance()
			left = &ast.MemberExpression{Tok: tok, Object: left, Property: &ast.Identifier{Tok: propTok, Name: propTok.Literal}}
		case token.QUESTION_DOT:
			tok := p.advance()
			if p.curIs(token.LPAREN) {
				args := p.parseArgs()
				left = &ast.CallExpression{Tok: tok, Callee: left, Args: args, Optional: true}
			} else if p.curIs(token.LBRACKET) {
				p.advance()
				idx := p.parseExpression(precLowest)
				p.expect(token.RBRACKET)
				left = &ast.MemberExpression{Tok: tok, Object: left, Property: idx, Computed: true, Optional: true}
			} else {
				propTok := p.advance()
				left = &ast.MemberExpression{Tok: tok, Object: left, Property: &ast.Identifier{Tok: propTok, Name: propTok.Literal}, Optional: true}
			}
		case token.LBRACKET:
			tok := p.advance()
			idx := p.parseExpression(precLowest)
			p.expect(token.RBRACKET)
			left = &ast.MemberExpression{Tok: tok, Object: left, Property: idx, Computed: true}
		case token.LPAREN:
			tok := p.cur()
			args := p.parseArgs()
			left = &ast.CallExpression{Tok: tok, Callee: left, Args: args}
		case token.STAR_STAR:
			tok := p.advance()
			right := p.parseExpression(prec) // right-associative
			left = &ast.InfixExpression{Tok: tok, Left: left, Operator: "**", Right: right}
		default:
			tok := p.advance()
			right := p.parseExpression(prec + 1)
			left = &ast.InfixExpression{Tok: tok, Left: left, Operator: tok.Type.String(), Right: right}
		}
	}
}

func (p *Parser) parseArgs() []ast.Expression {
	p.expect(token.LPAREN)
	var args []ast.Expression
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.DOT_DOT_DOT) {
			tok := p.advance()
			args = append(args, &ast.SpreadElement{Tok: tok, Argument: p.parseExpression(precAssign)})
		} else {
			args = append(args, p.parseExpression(precAssign))
		}
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.cur().Type {
	case token.NOT, token.BIT_NOT, token.MINUS, token.PLUS, token.TYPEOF, token.VOID, token.DELETE:
		tok := p.advance()
		right := p.parseExpression(precPrefix)
		return &ast.PrefixExpression{Tok: tok, Operator: tok.Type.String(), Right: right}
	case token.PLUS_PLUS, token.MINUS_MINUS:
		tok := p.advance()
		right := p.parseExpression(precPrefix)
		return &ast.PrefixExpression{Tok: tok, Operator: tok.Type.String(), Right: right}
	case token.AWAIT:
		tok := p.advance()
		arg := p.parseExpression(precPrefix)
		return &ast.AwaitExpression{Tok: tok, Argument: arg}
	case token.NEW:
		return p.parseNewExpression()
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePostfix(left ast.Expression) ast.Expression {
	for p.curIs(token.PLUS_PLUS) || p.curIs(token.MINUS_MINUS) {
		tok := p.advance()
		left = &ast.PostfixExpression{Tok: tok, Operator: tok.Type.String(), Left: left}
	}
	return left
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.advance()
	callee := p.parsePostfix(p.parsePrimary())
	// consume member accesses on the callee before arguments
	for p.curIs(token.DOT) || p.curIs(token.LBRACKET) {
		if p.curIs(token.DOT) {
			dt := p.advance()
			propTok := p.advance()
			callee = &ast.MemberExpression{Tok: dt, Object: callee, Property: &ast.Identifier{Tok: propTok, Name: propTok.Literal}}
		} else {
			bt := p.advance()
			idx := p.parseExpression(precLowest)
			p.expect(token.RBRACKET)
			callee = &ast.MemberExpression{Tok: bt, Object: callee, Property: idx, Computed: true}
		}
	}
	var args []ast.Expression
	if p.curIs(token.LPAREN) {
		args = p.parseArgs()
	}
	return &ast.NewExpression{Tok: tok, Callee: callee, Args: args}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		return &ast.NumberLiteral{Tok: tok, Value: parseNumber(tok.Literal)}
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Tok: tok, Value: decodeEscapes(tok.Literal)}
	case token.TEMPLATE_STRING:
		p.advance()
		return &ast.TemplateLiteral{Tok: tok, Quasis: []string{decodeEscapes(tok.Literal)}}
	case token.TEMPLATE_HEAD:
		return p.parseTemplateLiteral()
	case token.REGEX:
		p.advance()
		pattern, flags := splitRegex(tok.Literal)
		return &ast.RegexLiteral{Tok: tok, Pattern: pattern, Flags: flags}
	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.BoolLiteral{Tok: tok, Value: tok.Type == token.TRUE}
	case token.NULL:
		p.advance()
		return &ast.NullLiteral{Tok: tok}
	case token.UNDEFINED:
		p.advance()
		return &ast.UndefinedLiteral{Tok: tok}
	case token.THIS:
		p.advance()
		return &ast.ThisExpression{Tok: tok}
	case token.IDENT, token.GET, token.SET, token.STATIC, token.OF, token.EVAL:
		p.advance()
		return &ast.Identifier{Tok: tok, Name: tok.Literal}
	case token.FUNCTION:
		return p.parseFunctionLiteral(false, false)
	case token.ASYNC:
		if p.peekIs(token.FUNCTION) {
			p.advance()
			return p.parseFunctionLiteral(true, false)
		}
		if p.peekIs(token.LPAREN) || p.peekIs(token.IDENT) {
			return p.parseArrowOrParen(true)
		}
		p.advance()
		return &ast.Identifier{Tok: tok, Name: tok.Literal}
	case token.CLASS:
		return p.parseClassLiteral()
	case token.LPAREN:
		return p.parseArrowOrParen(false)
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	}
	p.errorf("unexpected token %s in expression", tok.Type)
	p.advance()
	return &ast.UndefinedLiteral{Tok: tok}
}

// parseArrowOrParen disambiguates `(params) => body` from a parenthesized
// expression by a bounded lookahead over the balanced paren group.
func (p *Parser) parseArrowOrParen(isAsync bool) ast.Expression {
	start := p.pos
	if p.curIs(token.LPAREN) {
		depth := 0
		i := p.pos
		for {
			tt := p.toks[i].Type
			if tt == token.LPAREN {
				depth++
			} else if tt == token.RPAREN {
				depth--
				if depth == 0 {
					break
				}
			} else if tt == token.EOF {
				break
			}
			i++
		}
		if i+1 < len(p.toks) && p.toks[i+1].Type == token.ARROW {
			return p.parseArrowFunction(isAsync)
		}
	} else if p.curIs(token.IDENT) && p.peekIs(token.ARROW) {
		return p.parseArrowFunction(isAsync)
	}
	p.pos = start
	p.expect(token.LPAREN)
	expr := p.parseExpression(precLowest)
	p.expect(token.RPAREN)
	return expr
}

func (p *Parser) parseArrowFunction(isAsync bool) ast.Expression {
	tok := p.cur()
	fn := &ast.FunctionExpression{Tok: tok, IsAsync: isAsync, IsArrow: true}
	if p.curIs(token.LPAREN) {
		fn.Params = p.parseParamList()
	} else {
		idt := p.advance()
		fn.Params = []*ast.ArrayPatternElement{{Target: &ast.Identifier{Tok: idt, Name: idt.Literal}}}
	}
	p.expect(token.ARROW)
	if p.curIs(token.LBRACE) {
		fn.Body = p.parseBlockStatement()
	} else {
		fn.ExprBody = p.parseExpression(precAssign)
	}
	return fn
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLiteral {
	tok := p.expect(token.LBRACKET)
	arr := &ast.ArrayLiteral{Tok: tok}
	for !p.curIs(token.RBRACKET) && !p.curIs(token.EOF) {
		if p.curIs(token.COMMA) {
			arr.Elements = append(arr.Elements, nil)
			p.advance()
			continue
		}
		if p.curIs(token.DOT_DOT_DOT) {
			st := p.advance()
			arr.Elements = append(arr.Elements, &ast.SpreadElement{Tok: st, Argument: p.parseExpression(precAssign)})
		} else {
			arr.Elements = append(arr.Elements, p.parseExpression(precAssign))
		}
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACKET)
	return arr
}

func (p *Parser) parseObjectLiteral() *ast.ObjectLiteral {
	tok := p.expect(token.LBRACE)
	obj := &ast.ObjectLiteral{Tok: tok}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.DOT_DOT_DOT) {
			st := p.advance()
			spread := &ast.SpreadElement{Tok: st, Argument: p.parseExpression(precAssign)}
			obj.Properties = append(obj.Properties, &ast.ObjectProperty{Key: spread, Value: spread, Kind: "spread"})
			if p.curIs(token.COMMA) {
				p.advance()
			}
			continue
		}
		isAsync := false
		if p.curIs(token.ASYNC) && !p.peekIs(token.COLON) && !p.peekIs(token.COMMA) && !p.peekIs(token.RBRACE) && !p.peekIs(token.LPAREN) {
			p.advance()
			isAsync = true
		}
		kind := "init"
		if (p.curIs(token.GET) || p.curIs(token.SET)) && !p.peekIs(token.COLON) && !p.peekIs(token.COMMA) && !p.peekIs(token.RBRACE) && !p.peekIs(token.LPAREN) {
			kt := p.advance()
			kind = kt.Type.String()
		}
		keyTok := p.cur()
		prop := &ast.ObjectProperty{Kind: kind}
		if p.curIs(token.LBRACKET) {
			p.advance()
			prop.Key = p.parseExpression(precLowest)
			prop.Computed = true
			p.expect(token.RBRACKET)
		} else if p.curIs(token.STRING) {
			p.advance()
			prop.Key = &ast.StringLiteral{Tok: keyTok, Value: decodeEscapes(keyTok.Literal)}
		} else if p.curIs(token.NUMBER) {
			p.advance()
			prop.Key = &ast.NumberLiteral{Tok: keyTok, Value: parseNumber(keyTok.Literal)}
		} else {
			p.advance()
			prop.Key = &ast.Identifier{Tok: keyTok, Name: keyTok.Literal}
		}
		if p.curIs(token.LPAREN) {
			fn := &ast.FunctionExpression{Tok: keyTok, IsAsync: isAsync}
			fn.Params = p.parseParamList()
			fn.Body = p.parseBlockStatement()
			prop.Value = fn
			if kind == "init" {
				prop.Kind = "method"
			}
		} else if p.curIs(token.COLON) {
			p.advance()
			prop.Value = p.parseExpression(precAssign)
		} else {
			prop.Shorthand = true
			if id, ok := prop.Key.(*ast.Identifier); ok {
				prop.Value = id
			}
		}
		obj.Properties = append(obj.Properties, prop)
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return obj
}

// parseTemplateLiteral assembles a full template literal starting from a
// TEMPLATE_HEAD token by re-driving the lexer's ContinueTemplate between
// interpolated expressions.
func (p *Parser) parseTemplateLiteral() *ast.TemplateLiteral {
	headTok := p.advance()
	tmpl := &ast.TemplateLiteral{Tok: headTok, Quasis: []string{decodeEscapes(headTok.Literal)}}
	for {
		expr := p.parseExpression(precLowest)
		tmpl.Expressions = append(tmpl.Expressions, expr)
		if !p.curIs(token.RBRACE) {
			p.errorf("expected '}' to close template interpolation")
			break
		}
		// Re-scan the remainder of the template starting at `}` using the
		// lexer directly, then splice the result back into the token list.
		next := p.l.ContinueTemplate()
		tmpl.Quasis = append(tmpl.Quasis, decodeEscapes(next.Literal))
		p.toks[p.pos] = next
		if next.Type == token.TEMPLATE_TAIL {
			p.advance()
			break
		}
		p.advance()
	}
	return tmpl
}

// ---------------------------------------------------------------------------
// Literal decoding helpers
// ---------------------------------------------------------------------------

func parseNumber(lit string) float64 {
	s := strings.TrimSpace(lit)
	var v float64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		var n uint64
		n, err = strconv.ParseUint(s[2:], 16, 64)
		v = float64(n)
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		var n uint64
		n, err = strconv.ParseUint(s[2:], 8, 64)
		v = float64(n)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		var n uint64
		n, err = strconv.ParseUint(s[2:], 2, 64)
		v = float64(n)
	default:
		v, err = strconv.ParseFloat(s, 64)
	}
	if err != nil {
		return 0
	}
	return v
}

func decodeEscapes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case '0':
				sb.WriteByte(0)
			case '\\':
				sb.WriteByte('\\')
			case '\'':
				sb.WriteByte('\'')
			case '"':
				sb.WriteByte('"')
			case '`':
				sb.WriteByte('`')
			default:
				sb.WriteByte(s[i])
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func splitRegex(lit string) (pattern, flags string) {
	i := strings.LastIndexByte(lit, '/')
	if i <= 0 {
		return lit, ""
	}
	return lit[1:i], lit[i+1:]
}
