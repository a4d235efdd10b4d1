// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ecmalite/ecmalite/lang/object"
	"github.com/ecmalite/ecmalite/lang/value"
	"github.com/ecmalite/ecmalite/lang/vm"
)

// installJSON wires JSON.stringify/parse, a functional subset covering
// objects, arrays, strings, numbers, booleans and null — enough for the
// AMBIENT STACK's config/log-payload use, not a full replacer/reviver.
func installJSON(v *vm.VM) {
	j := object.New(value.ClassPlain, v.Protos.Object)
	v.Global.DefineOwn(atom(v, "JSON"), object.Descriptor{Kind: object.KindData, Value: value.FromObj(j)})

	staticFn(v, j, "stringify", 3, func(this value.Value, args []value.Value) (value.Value, error) {
		indent := ""
		if len(args) > 2 {
			if args[2].IsNumber() {
				indent = strings.Repeat(" ", int(argNum(args, 2)))
			} else if args[2].IsString() {
				indent = args[2].AsString()
			}
		}
		var b strings.Builder
		if !jsonStringify(v, &b, arg(args, 0), indent, "") {
			return value.UndefinedValue, nil
		}
		return value.Str(b.String()), nil
	})

	staticFn(v, j, "parse", 1, func(this value.Value, args []value.Value) (value.Value, error) {
		p := &jsonParser{s: argStr(args, 0), v: v}
		p.skipWS()
		val, err := p.parseValue()
		if err != nil {
			return value.UndefinedValue, fmt.Errorf("SyntaxError: %s", err.Error())
		}
		p.skipWS()
		if p.pos != len(p.s) {
			return value.UndefinedValue, fmt.Errorf("SyntaxError: unexpected trailing characters in JSON")
		}
		return val, nil
	})
}

func jsonStringify(v *vm.VM, b *strings.Builder, val value.Value, indent, cur string) bool {
	switch {
	case val.IsNullish():
		if val.IsUndefined() {
			return false
		}
		b.WriteString("null")
	case val.IsBoolean():
		if val.ToBoolean() {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case val.IsNumber():
		n := val.AsNumber()
		if n != n { // NaN
			b.WriteString("null")
		} else {
			b.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
		}
	case val.IsString():
		b.WriteString(strconv.Quote(val.AsString()))
	case val.IsObject():
		if val.IsCallable() {
			return false
		}
		if ah, ok := asArray(val); ok {
			jsonArray(v, b, ah.Elements, indent, cur)
			return true
		}
		jsonObject(v, b, val, indent, cur)
	default:
		return false
	}
	return true
}

func jsonArray(v *vm.VM, b *strings.Builder, elems []value.Value, indent, cur string) {
	if len(elems) == 0 {
		b.WriteString("[]")
		return
	}
	next := cur + indent
	b.WriteString("[")
	for i, el := range elems {
		if i > 0 {
			b.WriteString(",")
		}
		if indent != "" {
			b.WriteString("\n" + next)
		}
		if !jsonStringify(v, b, el, indent, next) {
			b.WriteString("null")
		}
	}
	if indent != "" {
		b.WriteString("\n" + cur)
	}
	b.WriteString("]")
}

func jsonObject(v *vm.VM, b *strings.Builder, val value.Value, indent, cur string) {
	h := objHeader(val)
	if h == nil {
		b.WriteString("{}")
		return
	}
	keys := h.EnumerableOwnKeys(v.Atoms)
	type kv struct {
		k string
		v value.Value
	}
	var pairs []kv
	for _, k := range keys {
		name := v.Atoms.String(k)
		pv, _ := h.Get(k, val)
		var buf strings.Builder
		if jsonStringify(v, &buf, pv, indent, cur) {
			pairs = append(pairs, kv{name, pv})
		}
	}
	if len(pairs) == 0 {
		b.WriteString("{}")
		return
	}
	next := cur + indent
	b.WriteString("{")
	for i, p := range pairs {
		if i > 0 {
			b.WriteString(",")
		}
		if indent != "" {
			b.WriteString("\n" + next)
		}
		b.WriteString(strconv.Quote(p.k))
		b.WriteString(":")
		if indent != "" {
			b.WriteString(" ")
		}
		jsonStringify(v, b, p.v, indent, next)
	}
	if indent != "" {
		b.WriteString("\n" + cur)
	}
	b.WriteString("}")
}

// jsonParser is a small recursive-descent JSON parser feeding JSON.parse.
type jsonParser struct {
	s   string
	pos int
	v   *vm.VM
}

func (p *jsonParser) skipWS() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) parseValue() (value.Value, error) {
	p.skipWS()
	if p.pos >= len(p.s) {
		return value.UndefinedValue, fmt.Errorf("unexpected end of JSON input")
	}
	switch c := p.s[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return value.UndefinedValue, err
		}
		return value.Str(s), nil
	case c == 't':
		return p.parseLiteral("true", value.TrueValue)
	case c == 'f':
		return p.parseLiteral("false", value.FalseValue)
	case c == 'n':
		return p.parseLiteral("null", value.NullValue)
	default:
		return p.parseNumber()
	}
}

func (p *jsonParser) parseLiteral(lit string, val value.Value) (value.Value, error) {
	if p.pos+len(lit) > len(p.s) || p.s[p.pos:p.pos+len(lit)] != lit {
		return value.UndefinedValue, fmt.Errorf("invalid token at position %d", p.pos)
	}
	p.pos += len(lit)
	return val, nil
}

func (p *jsonParser) parseNumber() (value.Value, error) {
	start := p.pos
	for p.pos < len(p.s) && strings.ContainsRune("+-.eE0123456789", rune(p.s[p.pos])) {
		p.pos++
	}
	if start == p.pos {
		return value.UndefinedValue, fmt.Errorf("invalid number at position %d", start)
	}
	n, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return value.UndefinedValue, fmt.Errorf("invalid number %q", p.s[start:p.pos])
	}
	return value.Num(n), nil
}

func (p *jsonParser) parseString() (string, error) {
	if p.s[p.pos] != '"' {
		return "", fmt.Errorf("expected string at position %d", p.pos)
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.s) {
				break
			}
			switch p.s[p.pos] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '/':
				b.WriteByte('/')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				if p.pos+4 < len(p.s) {
					code, err := strconv.ParseInt(p.s[p.pos+1:p.pos+5], 16, 32)
					if err == nil {
						b.WriteRune(rune(code))
						p.pos += 4
					}
				}
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *jsonParser) parseArray() (value.Value, error) {
	p.pos++ // '['
	var elems []value.Value
	p.skipWS()
	if p.pos < len(p.s) && p.s[p.pos] == ']' {
		p.pos++
		return arrayOf(elems, p.v), nil
	}
	for {
		el, err := p.parseValue()
		if err != nil {
			return value.UndefinedValue, err
		}
		elems = append(elems, el)
		p.skipWS()
		if p.pos >= len(p.s) {
			return value.UndefinedValue, fmt.Errorf("unterminated array")
		}
		if p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.s[p.pos] == ']' {
			p.pos++
			return arrayOf(elems, p.v), nil
		}
		return value.UndefinedValue, fmt.Errorf("expected ',' or ']' at position %d", p.pos)
	}
}

func (p *jsonParser) parseObject() (value.Value, error) {
	p.pos++ // '{'
	obj := object.New(value.ClassPlain, p.v.Protos.Object)
	p.skipWS()
	if p.pos < len(p.s) && p.s[p.pos] == '}' {
		p.pos++
		return value.FromObj(obj), nil
	}
	for {
		p.skipWS()
		key, err := p.parseString()
		if err != nil {
			return value.UndefinedValue, err
		}
		p.skipWS()
		if p.pos >= len(p.s) || p.s[p.pos] != ':' {
			return value.UndefinedValue, fmt.Errorf("expected ':' at position %d", p.pos)
		}
		p.pos++
		val, err := p.parseValue()
		if err != nil {
			return value.UndefinedValue, err
		}
		obj.DefineOwn(p.v.Atoms.Atomize(key), object.Descriptor{Kind: object.KindData, Value: val, Writable: true, Enumerable: true, Configurable: true})
		p.skipWS()
		if p.pos >= len(p.s) {
			return value.UndefinedValue, fmt.Errorf("unterminated object")
		}
		if p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.s[p.pos] == '}' {
			p.pos++
			return value.FromObj(obj), nil
		}
		return value.UndefinedValue, fmt.Errorf("expected ',' or '}' at position %d", p.pos)
	}
}
