package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind enumerates the JSON value variants a route response may hold.
type Kind int

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
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "null"
	}
}

// Value is an immutable JSON value. It keeps the verbatim encoding it was
// parsed from so responses are served exactly as configured.
type Value struct {
	kind Kind
	raw  []byte
}

// StringValue returns a Value holding s.
func StringValue(s string) Value {
	raw, _ := json.Marshal(s)
	return Value{kind: KindString, raw: raw}
}

// NumberValue returns a Value holding f.
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, raw: []byte(strconv.FormatFloat(f, 'g', -1, 64))}
}

// BoolValue returns a Value holding b.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, raw: []byte(strconv.FormatBool(b))}
}

// NullValue returns the JSON null Value.
func NullValue() Value {
	return Value{kind: KindNull, raw: []byte("null")}
}

// ParseValue builds a Value from a single JSON document.
func ParseValue(raw []byte) (Value, error) {
	if !gjson.ValidBytes(raw) {
		return Value{}, fmt.Errorf("%w: response is not a JSON value", ErrMalformedJSON)
	}
	return valueFromResult(gjson.ParseBytes(raw)), nil
}

func valueFromResult(res gjson.Result) Value {
	raw := []byte(res.Raw)
	switch res.Type {
	case gjson.String:
		return Value{kind: KindString, raw: raw}
	case gjson.Number:
		return Value{kind: KindNumber, raw: raw}
	case gjson.True, gjson.False:
		return Value{kind: KindBool, raw: raw}
	case gjson.JSON:
		if res.IsArray() {
			return Value{kind: KindArray, raw: raw}
		}
		return Value{kind: KindObject, raw: raw}
	default:
		return NullValue()
	}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// TypeName reports the JavaScript typeof name of the value, which is what the
// documentation endpoint publishes as responseType.
func (v Value) TypeName() string {
	switch v.kind {
	case KindString, KindNumber, KindBool:
		return v.kind.String()
	default:
		return "object"
	}
}

// Raw returns a copy of the JSON encoding of v.
func (v Value) Raw() []byte {
	if len(v.raw) == 0 {
		return []byte("null")
	}
	return bytes.Clone(v.raw)
}

// Str returns the string held by v and whether v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return gjson.ParseBytes(v.raw).Str, true
}

// Float returns the number held by v and whether v is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return gjson.ParseBytes(v.raw).Num, true
}

// Bool returns the boolean held by v and whether v is a boolean.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return gjson.ParseBytes(v.raw).Bool(), true
}

// Equal reports whether both values carry the same variant and encoding.
func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && bytes.Equal(v.Raw(), other.Raw())
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.Raw(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
