// Package value holds the dynamically typed values kept in the store and the
// literal text codec used to persist them.
//
// Every backend stores text. Values are encoded to their most literal form
// (5, 1.5, True, ['a', 1], {'k': 'v'}) and decoded back by parsing that
// literal. Text that is not a valid literal decodes to a plain string, so free
// text and URLs survive the round trip unchanged.
package value

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

type Kind uint8

const (
	KindNone Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a tagged variant. The zero Value is None.
type Value struct {
	kind  Kind
	s     string
	i     int64
	f     float64
	b     bool
	items []Value
	pairs []Pair
}

// Pair is one mapping entry. Mappings keep insertion order.
type Pair struct {
	Key   Value
	Value Value
}

func None() Value            { return Value{} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func List(vs ...Value) Value { return Value{kind: KindList, items: append([]Value{}, vs...)} }

// Map builds a mapping from ordered pairs. A repeated key keeps its first
// position and its last value.
func Map(ps ...Pair) Value {
	out := Value{kind: KindMap, pairs: make([]Pair, 0, len(ps))}
	for _, p := range ps {
		out.pairs = setPair(out.pairs, p)
	}
	return out
}

// StringMap builds a mapping with string keys, sorted for stable encoding.
func StringMap(m map[string]Value) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ps := make([]Pair, 0, len(keys))
	for _, k := range keys {
		ps = append(ps, Pair{Key: String(k), Value: m[k]})
	}
	return Value{kind: KindMap, pairs: ps}
}

func setPair(ps []Pair, p Pair) []Pair {
	for i := range ps {
		if ps[i].Key.Equal(p.Key) {
			ps[i].Value = p.Value
			return ps
		}
	}
	return append(ps, p)
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNone() bool   { return v.kind == KindNone }
func (v Value) Str() string    { return v.s }
func (v Value) Int() int64     { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Bool() bool     { return v.b }

// Items returns a copy of the list elements.
func (v Value) Items() []Value { return append([]Value(nil), v.items...) }

// Pairs returns a copy of the mapping entries in insertion order.
func (v Value) Pairs() []Pair { return append([]Pair(nil), v.pairs...) }

func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len(v.s)
	case KindList:
		return len(v.items)
	case KindMap:
		return len(v.pairs)
	}
	return 0
}

// Lookup finds a mapping entry by key.
func (v Value) Lookup(key Value) (Value, bool) {
	for _, p := range v.pairs {
		if p.Key.Equal(key) {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Truthy follows literal truthiness: None, zero numbers, False and empty
// strings or containers are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.s != ""
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindBool:
		return v.b
	case KindList:
		return len(v.items) > 0
	case KindMap:
		return len(v.pairs) > 0
	}
	return false
}

// Equal compares structurally. Int and Float never compare equal to each
// other; NaN equals NaN so decoded values compare stable.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.pairs) != len(o.pairs) {
			return false
		}
		for _, p := range v.pairs {
			ov, ok := o.Lookup(p.Key)
			if !ok || !p.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns the persisted text form, same as Encode.
func (v Value) String() string { return Encode(v) }

// Interface converts to plain Go values: nil, string, int64, float64, bool,
// []any and map[string]any. Non-string mapping keys are rendered with Encode.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.pairs))
		for _, p := range v.pairs {
			k := p.Key.s
			if p.Key.kind != KindString {
				k = Encode(p.Key)
			}
			out[k] = p.Value.Interface()
		}
		return out
	}
	return nil
}

// Of converts a plain Go value into a Value.
func Of(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return None(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Value{}, fmt.Errorf("value: %d overflows int64", t)
		}
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("value: %d overflows int64", t)
		}
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case []string:
		out := make([]Value, len(t))
		for i, s := range t {
			out[i] = String(s)
		}
		return Value{kind: KindList, items: out}, nil
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			ev, err := Of(e)
			if err != nil {
				return Value{}, err
			}
			out[i] = ev
		}
		return Value{kind: KindList, items: out}, nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := Of(e)
			if err != nil {
				return Value{}, err
			}
			m[k] = ev
		}
		return StringMap(m), nil
	case map[string]string:
		m := make(map[string]Value, len(t))
		for k, s := range t {
			m[k] = String(s)
		}
		return StringMap(m), nil
	}
	return Value{}, fmt.Errorf("value: unsupported type %s", reflect.TypeOf(x))
}

// MustOf is like Of but panics on error.
func MustOf(x any) Value {
	v, err := Of(x)
	if err != nil {
		panic(err)
	}
	return v
}
