package extra

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// Object is an insertion-ordered mapping of string keys to values.
// Re-setting an existing key keeps its original position.
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Set stores a value under key.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// All iterates fields in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.vals[k]) {
				return
			}
		}
	}
}

// Lookup follows a path of nested object keys.
func (o *Object) Lookup(path ...string) (Value, bool) {
	cur := o
	for i, key := range path {
		v, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		if i == len(path)-1 {
			return v, true
		}
		next, isObj := v.Object()
		if !isObj {
			return Value{}, false
		}
		cur = next
	}
	return Value{}, false
}

// Equal compares two objects by content, ignoring key order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for k, v := range o.All() {
		ov, ok := other.Get(k)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler, emitting keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := o.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Object) encode(buf *bytes.Buffer) error {
	if o == nil {
		buf.WriteString("null")
		return nil
	}
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		if err := o.vals[k].encode(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Object) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	obj, ok := v.Object()
	if !ok {
		return fmt.Errorf("extra: expected JSON object, got %s", v.Kind())
	}
	*o = *obj
	return nil
}
