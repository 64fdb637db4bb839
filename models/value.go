package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/stellar/go/support/errors"
)

// Kind identifies which JSON type a Value holds
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is a decoded JSON value. The zero Value is null.
//
// Numbers are kept as their literal text so satoshi amounts larger than
// 2^53 survive a decode/encode round trip.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null value
func Null() Value { return Value{} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a JSON number literal
func Number(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// Int wraps an integer
func Int(i int64) Value { return Number(json.Number(strconv.FormatInt(i, 10))) }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array wraps a list of values
func Array(values ...Value) Value { return Value{kind: KindArray, arr: values} }

// Object wraps a map of values
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindObject, obj: fields}
}

// Kind reports the JSON type held by v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null (or was never set)
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string held by v
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the number literal held by v
func (v Value) AsNumber() (json.Number, bool) { return v.num, v.kind == KindNumber }

// AsInt64 returns v as an integer. It fails for non-numbers and for numbers
// with a fractional part.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	i, err := v.num.Int64()
	return i, err == nil
}

// AsFloat64 returns v as a float
func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.num.Float64()
	return f, err == nil
}

// AsArray returns the elements held by v
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the fields held by v
func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// Get returns the field named key. Missing keys and non-objects yield null.
func (v Value) Get(key string) Value {
	if v.kind != KindObject {
		return Value{}
	}
	return v.obj[key]
}

// Has reports whether v is an object with the field key
func (v Value) Has(key string) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.obj[key]
	return ok
}

// Index returns the i-th element. Out of range and non-arrays yield null.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Len returns the number of elements or fields, zero for scalars
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Keys returns the object's field names sorted
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface converts v into the plain Go representation encoding/json would
// produce, with numbers left as json.Number.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		return []byte(v.num.String()), nil
	default:
		return json.Marshal(v.Interface())
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	decoded, err := fromInterface(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// DecodeValue parses a complete JSON document. Trailing data after the
// first value is an error.
func DecodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Value{}, errors.Wrap(err, "decode json")
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, errors.New("decode json: trailing data")
	}
	return fromInterface(raw)
}

func fromInterface(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Value{}, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case []interface{}:
		arr := make([]Value, len(t))
		for i, e := range t {
			ev, err := fromInterface(e)
			if err != nil {
				return Value{}, err
			}
			arr[i] = ev
		}
		return Array(arr...), nil
	case map[string]interface{}:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := fromInterface(e)
			if err != nil {
				return Value{}, err
			}
			obj[k] = ev
		}
		return Object(obj), nil
	default:
		return Value{}, errors.New(fmt.Sprintf("unsupported json type %T", raw))
	}
}
