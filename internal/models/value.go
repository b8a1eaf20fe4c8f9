// Adobe Destination - Event Forwarding for Adobe Analytics and Media
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adobe-destination

package models

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// String returns the lowercase name of the kind.
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
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a dynamically-typed property value: string, number, bool, list,
// map or null. The zero Value is null.
//
// Accessors are explicit and report whether the value holds the requested
// variant; there are no implicit conversions between variants.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	m    Map
}

// Map is a string-keyed bag of Values (event properties, context, settings).
// A nil Map means the bag was absent from the payload.
type Map map[string]Value

// Null returns the null Value.
func Null() Value { return Value{} }

// String builds a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number builds a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Int builds a numeric Value from an int.
func Int(n int) Value { return Value{kind: KindNumber, num: float64(n)} }

// Bool builds a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List builds a list Value.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Object builds a map Value.
func Object(m Map) Value { return Value{kind: KindMap, m: m} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsFloat returns the number held by v.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsInt returns the number held by v when it is integral.
func (v Value) AsInt() (int, bool) {
	if v.kind != KindNumber || v.num != math.Trunc(v.num) {
		return 0, false
	}
	if v.num > math.MaxInt32 || v.num < math.MinInt32 {
		return 0, false
	}
	return int(v.num), true
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsList returns the items held by v.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// AsMap returns the map held by v.
func (v Value) AsMap() (Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// Numeric returns a number for numeric values and for strings that parse as
// a float. Ecommerce payloads commonly carry prices and quantities as text.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Text renders a scalar as a string. Lists and maps render as JSON.
// Null renders as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNull:
		return ""
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// Equal reports whether two values hold the same variant and contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(other.m)
	}
	return false
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("%s(%s)", v.kind, v.Text())
}

// Interface converts v to plain Go values (string, float64, bool, []any,
// map[string]any, nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		return v.m.Interface()
	default:
		return nil
	}
}

// FromInterface converts decoded JSON/YAML data into a Value. Unsupported
// types become null.
func FromInterface(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Int(t)
	case int64:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromInterface(item)
		}
		return List(items...)
	case []map[string]any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = Object(MapFromInterface(item))
		}
		return List(items...)
	case map[string]any:
		return Object(MapFromInterface(t))
	case map[any]any:
		m := make(Map, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = FromInterface(item)
		}
		return Object(m)
	case Map:
		return Object(t)
	default:
		return Null()
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	*v = FromInterface(raw)
	return nil
}

// MapFromInterface converts a decoded JSON object into a Map.
func MapFromInterface(in map[string]any) Map {
	if in == nil {
		return nil
	}
	out := make(Map, len(in))
	for k, item := range in {
		out[k] = FromInterface(item)
	}
	return out
}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m[key]
	return v, ok
}

// Has reports whether key is present with a non-null value.
func (m Map) Has(key string) bool {
	v, ok := m.Get(key)
	return ok && !v.IsNull()
}

// Lookup walks nested maps following path. It reports false when any segment
// is missing, null, or not a map.
func (m Map) Lookup(path ...string) (Value, bool) {
	if len(path) == 0 {
		return Value{}, false
	}
	current := m
	for i, key := range path {
		v, ok := current.Get(key)
		if !ok || v.IsNull() {
			return Value{}, false
		}
		if i == len(path)-1 {
			return v, true
		}
		next, ok := v.AsMap()
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return Value{}, false
}

// StringOr returns the string under key or def.
func (m Map) StringOr(key, def string) string {
	if v, ok := m.Get(key); ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return def
}

// FloatOr returns the number under key or def.
func (m Map) FloatOr(key string, def float64) float64 {
	if v, ok := m.Get(key); ok {
		if f, ok := v.AsFloat(); ok {
			return f
		}
	}
	return def
}

// IntOr returns the integral number under key or def.
func (m Map) IntOr(key string, def int) int {
	if v, ok := m.Get(key); ok {
		if n, ok := v.AsInt(); ok {
			return n
		}
	}
	return def
}

// BoolOr returns the boolean under key or def.
func (m Map) BoolOr(key string, def bool) bool {
	if v, ok := m.Get(key); ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return def
}

// IsEmpty reports whether m has no entries.
func (m Map) IsEmpty() bool { return len(m) == 0 }

// Clone returns a shallow copy of m. A nil map clones to nil.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both maps hold equal values under the same keys.
func (m Map) Equal(other Map) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Interface converts m to a map[string]any.
func (m Map) Interface() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler so that a JSON null decodes to a
// nil (absent) Map while {} decodes to an empty one.
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode map: %w", err)
	}
	*m = MapFromInterface(raw)
	return nil
}
