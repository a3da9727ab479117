// Package extra models the open, source-specific part of a property record:
// an ordered mapping of string keys to a closed set of JSON value kinds.
package extra

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the JSON value kinds an extra field may hold.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is one JSON-compatible value. The zero Value is null.
type Value struct {
	kind Kind
	str  string // string payload, or the number literal for KindNumber
	b    bool
	obj  *Object
	arr  []Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a number value from its JSON literal.
func Number(n json.Number) Value { return Value{kind: KindNumber, str: n.String()} }

// Float creates a number value.
func Float(f float64) Value {
	return Value{kind: KindNumber, str: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// ObjectOf wraps an ordered object.
func ObjectOf(o *Object) Value {
	if o == nil {
		return Null()
	}
	return Value{kind: KindObject, obj: o}
}

// Array creates an array value.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.str, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Object returns the nested object.
func (v Value) Object() (*Object, bool) { return v.obj, v.kind == KindObject }

// Array returns the array items.
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == KindArray }

// Scalar renders strings and numbers as text, the way identifiers are
// compared across sources. Numbers use the shortest round-trip form with
// exponents outside [1e-6, 1e21), as feed producers print them: 1e21 is
// "1e+21", 1.5e-7 is "1.5e-7". Other kinds report false.
func (v Value) Scalar() (string, bool) {
	switch v.kind {
	case KindString:
		return v.str, true
	case KindNumber:
		if f, err := strconv.ParseFloat(v.str, 64); err == nil {
			return numberText(f), true
		}
		return v.str, true
	default:
		return "", false
	}
}

func numberText(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// strconv pads exponents to two digits ("1.5e-07").
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

// Equal reports deep equality. Numbers compare by value, objects by content
// regardless of key order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		a, okA := v.Float()
		b, okB := o.Float()
		if okA && okB {
			return a == b
		}
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindObject:
		return v.obj.Equal(o.obj)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return fmt.Errorf("marshal string: %w", err)
		}
		buf.Write(b)
	case KindNumber:
		buf.WriteString(v.str)
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindObject:
		return v.obj.encode(buf)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unknown value kind %d", v.kind)
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := Decode(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err == nil {
		return errors.New("extra: trailing data after JSON value")
	}
	*v = val
	return nil
}

// Decode reads exactly one JSON value from dec. The decoder should have
// UseNumber enabled so number literals survive verbatim.
func Decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err //nolint:wrapcheck // callers attach offsets
	}
	return DecodeFrom(dec, tok)
}

// DecodeFrom finishes decoding a value whose first token was already read.
func DecodeFrom(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case float64:
		return Float(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return Value{}, err //nolint:wrapcheck // callers attach offsets
		}
		key, ok := kt.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key must be a string, got %v", kt)
		}
		val, err := Decode(dec)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err //nolint:wrapcheck // callers attach offsets
	}
	return ObjectOf(obj), nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := make([]Value, 0)
	for dec.More() {
		val, err := Decode(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, val)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err //nolint:wrapcheck // callers attach offsets
	}
	return Array(items...), nil
}
