// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Package value implements the tagged value model of spec §3/§4.D: a
// discriminated value carrying a type tag plus payload, with boxing/
// unboxing, type predicates, ToPrimitive/ToNumber/ToInteger/ToLength/
// ToUint32/ToInt32/ToUint16/ToString/ToIndex, and strict/abstract
// equality.
//
// The original spec describes a 128-bit C-style tagged union; this
// package expresses the same discriminated-value idea idiomatically as a
// Go struct with a Tag enum plus payload fields, relying on Go's type
// safety instead of manual bit-packing (per the brief's instruction to
// keep HOW, replace the representation idiom where the host language
// offers a safer native one).
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tag identifies the runtime type of a Value (spec §3 Value).
type Tag uint8

const (
	Invalid Tag = iota
	Undefined
	Null
	Boolean
	Number
	String
	Symbol
	Object // catch-all for object/array/function/regexp/date/typedarray/promise/error/external; Obj.Class distinguishes
)

// Class further distinguishes the Object tag's sub-kind (spec §3's
// "subclassed objects ... embed object as their first field").
type Class uint8

const (
	ClassPlain Class = iota
	ClassArray
	ClassFunction
	ClassRegExp
	ClassDate
	ClassTypedArray
	ClassPromise
	ClassError
	ClassExternal
)

// Obj is the minimal interface lang/object.Object satisfies; kept as an
// interface here to avoid an import cycle between value and object (the
// object package depends on value, not vice versa).
type Obj interface {
	ClassOf() Class
	// ToPrimitiveHint lets built-in objects (Date, custom toString/valueOf)
	// participate in ToPrimitive without value needing to know their shape.
	ToPrimitiveHint(hint string) (Value, bool)
}

// Value is the tagged value (spec §3 "Value (D)").
type Value struct {
	tag Tag
	num float64
	str string
	obj Obj
	sym uint64 // symbol identity when tag==Symbol
}

// Predefined singletons.
var (
	UndefinedValue = Value{tag: Undefined}
	NullValue      = Value{tag: Null}
	TrueValue      = Value{tag: Boolean, num: 1}
	FalseValue     = Value{tag: Boolean, num: 0}
)

func Bool(b bool) Value {
	if b {
		return TrueValue
	}
	return FalseValue
}

func Num(n float64) Value    { return Value{tag: Number, num: n} }
func Str(s string) Value     { return Value{tag: String, str: s} }
func Sym(id uint64, desc string) Value { return Value{tag: Symbol, sym: id, str: desc} }
func FromObj(o Obj) Value    { return Value{tag: Object, obj: o} }

func (v Value) Tag() Tag { return v.tag }
func (v Value) IsUndefined() bool { return v.tag == Undefined }
func (v Value) IsNull() bool      { return v.tag == Null }
func (v Value) IsNullish() bool   { return v.tag == Undefined || v.tag == Null }
func (v Value) IsBoolean() bool   { return v.tag == Boolean }
func (v Value) IsNumber() bool    { return v.tag == Number }
func (v Value) IsString() bool    { return v.tag == String }
func (v Value) IsSymbol() bool    { return v.tag == Symbol }
func (v Value) IsObject() bool    { return v.tag == Object }
func (v Value) IsPrimitive() bool { return v.tag != Object }

func (v Value) IsCallable() bool {
	return v.tag == Object && v.obj != nil && v.obj.ClassOf() == ClassFunction
}

func (v Value) IsError() bool {
	return v.tag == Object && v.obj != nil && v.obj.ClassOf() == ClassError
}

func (v Value) AsBool() bool    { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsString() string  { return v.str }
func (v Value) AsObject() Obj     { return v.obj }
func (v Value) SymbolID() uint64  { return v.sym }

// ToBoolean implements ECMAScript's ToBoolean abstract operation.
func (v Value) ToBoolean() bool {
	switch v.tag {
	case Undefined, Null:
		return false
	case Boolean:
		return v.num != 0
	case Number:
		return v.num != 0 && !math.IsNaN(v.num)
	case String:
		return len(v.str) > 0
	default:
		return true
	}
}

// ToPrimitive implements spec §4.D ToPrimitive; hint is "default", "number"
// or "string". Symbols yield a type-error per spec §4.D's symbol coercion
// rule, signalled by returning ok=false.
func (v Value) ToPrimitive(hint string) (Value, bool) {
	if v.tag == Symbol {
		return v, false
	}
	if v.tag != Object {
		return v, true
	}
	if v.obj != nil {
		if p, ok := v.obj.ToPrimitiveHint(hint); ok {
			return p, true
		}
	}
	return Str(fmt.Sprintf("[object %T]", v.obj)), true
}

// ToNumber implements spec §4.D ToNumber. Symbols fail (ok=false), per
// "Conversions fail with type-error for symbols when coerced to number".
func (v Value) ToNumber() (float64, bool) {
	switch v.tag {
	case Undefined:
		return math.NaN(), true
	case Null:
		return 0, true
	case Boolean:
		return v.num, true
	case Number:
		return v.num, true
	case String:
		return stringToNumber(v.str), true
	case Symbol:
		return 0, false
	default:
		p, ok := v.ToPrimitive("number")
		if !ok {
			return 0, false
		}
		if p.tag == Object {
			return 0, false
		}
		return p.ToNumber()
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if n, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
			return float64(n)
		}
		return math.NaN()
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return math.NaN()
}

// ToInteger truncates toward zero, mapping NaN to 0 (spec §4.D ToInteger).
func (v Value) ToInteger() float64 {
	n, ok := v.ToNumber()
	if !ok || math.IsNaN(n) {
		return 0
	}
	if math.IsInf(n, 0) {
		return n
	}
	return math.Trunc(n)
}

// ToLength clamps to [0, 2^53-1] (spec §4.D ToLength).
func (v Value) ToLength() float64 {
	n := v.ToInteger()
	if n <= 0 {
		return 0
	}
	const maxSafe = 1<<53 - 1
	if n > maxSafe {
		return maxSafe
	}
	return n
}

// ToUint32 wraps per spec §4.D ToUint32.
func (v Value) ToUint32() uint32 {
	n := v.ToInteger()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return uint32(int64(math.Mod(n, 4294967296)))
}

// ToInt32 wraps per spec §4.D ToInt32.
func (v Value) ToInt32() int32 { return int32(v.ToUint32()) }

// ToUint16 wraps per spec §4.D ToUint16.
func (v Value) ToUint16() uint16 {
	n := v.ToInteger()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return uint16(int64(math.Mod(n, 65536)))
}

// ToIndex implements spec §4.D ToIndex: a non-negative safe integer.
func (v Value) ToIndex() (uint32, bool) {
	n := v.ToInteger()
	if n < 0 {
		return 0, false
	}
	return uint32(n), true
}

// ToString implements spec §4.D ToString. Symbols fail explicitly (ok=false).
func (v Value) ToString() (string, bool) {
	switch v.tag {
	case Undefined:
		return "undefined", true
	case Null:
		return "null", true
	case Boolean:
		if v.num != 0 {
			return "true", true
		}
		return "false", true
	case Number:
		return NumberToString(v.num), true
	case String:
		return v.str, true
	case Symbol:
		return "", false
	default:
		p, ok := v.ToPrimitive("string")
		if !ok || p.tag == Object {
			return "", false
		}
		return p.ToString()
	}
}

// NumberToString formats n using the exact shortest round-tripping decimal
// representation (Go's strconv already implements a grisu/ryu-style exact
// float formatter, matching spec §4.F/§4.M's requirement for exact
// dtoa-style number formatting).
func NumberToString(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if n == 0 {
		if math.Signbit(n) {
			return "0" // ToString(-0) === "0" per spec
		}
		return "0"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// TypeOf implements the `typeof` operator's string result.
func (v Value) TypeOf() string {
	switch v.tag {
	case Undefined:
		return "undefined"
	case Null:
		return "object"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case Object:
		if v.IsCallable() {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

// StrictEquals implements `===` (spec §4.D strict equality).
func StrictEquals(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case Undefined, Null:
		return true
	case Boolean:
		return a.num == b.num
	case Number:
		return a.num == b.num
	case String:
		return a.str == b.str
	case Symbol:
		return a.sym == b.sym
	case Object:
		return a.obj == b.obj
	}
	return false
}

// AbstractEquals implements `==` (spec §4.D abstract equality), including
// the cross-type coercion rules for number/string/boolean/object operands.
func AbstractEquals(a, b Value) bool {
	if a.tag == b.tag {
		return StrictEquals(a, b)
	}
	if a.IsNullish() && b.IsNullish() {
		return true
	}
	if a.IsNullish() || b.IsNullish() {
		return false
	}
	if a.tag == Number && b.tag == String {
		bn, ok := b.ToNumber()
		return ok && a.num == bn
	}
	if a.tag == String && b.tag == Number {
		an, ok := a.ToNumber()
		return ok && an == b.num
	}
	if a.tag == Boolean {
		an, _ := a.ToNumber()
		return AbstractEquals(Num(an), b)
	}
	if b.tag == Boolean {
		bn, _ := b.ToNumber()
		return AbstractEquals(a, Num(bn))
	}
	if a.tag == Object && (b.tag == Number || b.tag == String) {
		ap, ok := a.ToPrimitive("default")
		return ok && AbstractEquals(ap, b)
	}
	if b.tag == Object && (a.tag == Number || a.tag == String) {
		bp, ok := b.ToPrimitive("default")
		return ok && AbstractEquals(a, bp)
	}
	return false
}

var caser = cases.Lower(language.Und)
var upperCaser = cases.Upper(language.Und)

// ToLowerCase performs surrogate-aware Unicode case folding (spec §4.C),
// backed by golang.org/x/text/cases which implements the full Unicode
// SpecialCasing tables (e.g. Greek "Ά" -> "ά", scenario 6 of spec §8).
func ToLowerCase(s string) string { return caser.String(s) }

// ToUpperCase is the uppercase counterpart of ToLowerCase.
func ToUpperCase(s string) string { return upperCaser.String(s) }
