// Copyright (C) 2023 Figware, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package kiwi

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Value is one node of a decoded message tree.
//
// A Value is one of
//
//	Bool, Byte, Int, Uint, Int64, Uint64, Float, String,
//	List, Struct, Enum
//
// Struct holds both struct- and message-kind instances (a
// mapping from field name to Value); Enum carries the raw
// member value plus the resolved member name.
type Value interface {
	// Interface converts the value to plain Go data
	// (bool/uint8/int32/.../string, []any, map[string]any)
	// for JSON or msgpack serialization.
	Interface() any

	equal(Value) bool
}

var (
	_ Value = Bool(false)
	_ Value = Byte(0)
	_ Value = Int(0)
	_ Value = Uint(0)
	_ Value = Int64(0)
	_ Value = Uint64(0)
	_ Value = Float(0)
	_ Value = String("")
	_ Value = List(nil)
	_ Value = Struct(nil)
	_ Value = Enum{}
)

// Bool is a decoded bool field.
type Bool bool

func (v Bool) Interface() any { return bool(v) }
func (v Bool) equal(o Value) bool {
	o2, ok := o.(Bool)
	return ok && v == o2
}

// Byte is a decoded byte field.
type Byte uint8

func (v Byte) Interface() any { return uint8(v) }
func (v Byte) equal(o Value) bool {
	o2, ok := o.(Byte)
	return ok && v == o2
}

// Int is a decoded 32-bit int field.
type Int int32

func (v Int) Interface() any { return int32(v) }
func (v Int) equal(o Value) bool {
	o2, ok := o.(Int)
	return ok && v == o2
}

// Uint is a decoded 32-bit uint field.
type Uint uint32

func (v Uint) Interface() any { return uint32(v) }
func (v Uint) equal(o Value) bool {
	o2, ok := o.(Uint)
	return ok && v == o2
}

// Int64 is a decoded 64-bit int field.
type Int64 int64

func (v Int64) Interface() any { return int64(v) }
func (v Int64) equal(o Value) bool {
	o2, ok := o.(Int64)
	return ok && v == o2
}

// Uint64 is a decoded 64-bit uint field.
type Uint64 uint64

func (v Uint64) Interface() any { return uint64(v) }
func (v Uint64) equal(o Value) bool {
	o2, ok := o.(Uint64)
	return ok && v == o2
}

// Float is a decoded float field. Both dialects store
// 32-bit floats on the wire; the value is widened for
// convenience.
type Float float64

func (v Float) Interface() any { return float64(v) }
func (v Float) equal(o Value) bool {
	o2, ok := o.(Float)
	return ok && v == o2
}

// String is a decoded string field.
type String string

func (v String) Interface() any { return string(v) }
func (v String) equal(o Value) bool {
	o2, ok := o.(String)
	return ok && v == o2
}

// List is a decoded array field, in wire order.
type List []Value

func (v List) Interface() any {
	out := make([]any, len(v))
	for i := range v {
		out[i] = v[i].Interface()
	}
	return out
}

func (v List) equal(o Value) bool {
	o2, ok := o.(List)
	return ok && slices.EqualFunc(v, o2, Equal)
}

// Struct is a decoded struct or message instance: a mapping
// from field name to value.
type Struct map[string]Value

func (v Struct) Interface() any {
	out := make(map[string]any, len(v))
	for k, f := range v {
		out[k] = f.Interface()
	}
	return out
}

func (v Struct) equal(o Value) bool {
	o2, ok := o.(Struct)
	if !ok || len(v) != len(o2) {
		return false
	}
	for k, f := range v {
		f2, ok := o2[k]
		if !ok || !Equal(f, f2) {
			return false
		}
	}
	return true
}

// Keys returns the field names present in the struct,
// sorted for deterministic iteration.
func (v Struct) Keys() []string {
	keys := maps.Keys(v)
	slices.Sort(keys)
	return keys
}

// Enum is a decoded enum field: the raw wire value plus the
// resolved member name, or a synthesized "unknown(N)" label
// when the schema has no member with that value.
type Enum struct {
	Value uint32
	Name  string
}

// UnknownEnumLabel is the label synthesized for an enum
// value with no matching member.
func UnknownEnumLabel(v uint32) string {
	return fmt.Sprintf("unknown(%d)", v)
}

func (v Enum) Interface() any { return v.Name }
func (v Enum) equal(o Value) bool {
	o2, ok := o.(Enum)
	return ok && v == o2
}

// Equal reports deep equality of two value trees. Values of
// different concrete types are never equal, even when
// numerically equivalent.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.equal(b)
}
