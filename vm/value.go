package vm

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindIdent // unresolved identifier reference
)

var kindNames = [...]string{
	KindNull:   "NULL",
	KindNumber: "NUMBER",
	KindString: "STRING",
	KindBool:   "BOOLEAN",
	KindIdent:  "IDENTIFIER",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Value is a runtime value: a number, string, boolean, null, or an
// identifier that has no value yet.
//
// Values pushed for an identifier remember the identifier in ref, whether
// or not it resolved, so assignment and input know which variable to
// write.
type Value struct {
	kind Kind
	num  float64
	str  string // string payload, or the name of a KindIdent
	b    bool
	ref  string
}

// Null is the null value.
var Null = Value{}

// NumberValue creates a number.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// StringValue creates a string.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// BoolValue creates a boolean.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// IdentValue creates an unresolved reference to the variable name.
func IdentValue(name string) Value {
	return Value{kind: KindIdent, str: name, ref: name}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Ref returns the variable the value was loaded from, or "".
func (v Value) Ref() string { return v.ref }

// WithRef returns v tagged as loaded from the variable name.
func (v Value) WithRef(name string) Value {
	v.ref = name
	return v
}

// Unref returns v without its variable tag.
func (v Value) Unref() Value {
	v.ref = ""
	return v
}

// Number returns the numeric payload.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Str returns the string payload.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Name returns the identifier of an unresolved reference.
func (v Value) Name() (string, bool) {
	return v.str, v.kind == KindIdent
}

// String renders the value the way print shows it.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.num)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindIdent:
		return v.str
	default:
		return "null"
	}
}

// Equal reports structural equality: same variant, same payload. The
// variable tag is ignored.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString, KindIdent:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// FormatNumber renders n in the shortest form that round-trips. Integral
// values print without a fraction.
func FormatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case math.IsNaN(n):
		return "NaN"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// ParseValue converts a line of text to a number when it parses as one,
// otherwise to a string.
func ParseValue(s string) Value {
	if isNumeric(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return NumberValue(n)
		}
	}
	return StringValue(s)
}

// isNumeric matches an optionally signed number literal: digits with an
// optional fraction.
func isNumeric(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	digits, dot := 0, false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}
