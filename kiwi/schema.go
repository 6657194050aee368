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
	"strings"

	"golang.org/x/exp/slices"
)

// Kind discriminates the three definition kinds. The
// numeric values are the wire encoding and must not be
// rearranged.
type Kind uint8

const (
	KindEnum    Kind = 0
	KindStruct  Kind = 1
	KindMessage Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindMessage:
		return "message"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Primitive type IDs. On the wire, a field's type is a
// varint: these negative sentinels select a primitive, and
// any non-negative value is an index into the schema's
// definition list.
const (
	TypeBool   = -1
	TypeByte   = -2
	TypeInt    = -3
	TypeUint   = -4
	TypeFloat  = -5
	TypeString = -6
	TypeInt64  = -7
	TypeUint64 = -8
)

var primitiveNames = map[int]string{
	TypeBool:   "bool",
	TypeByte:   "byte",
	TypeInt:    "int",
	TypeUint:   "uint",
	TypeFloat:  "float",
	TypeString: "string",
	TypeInt64:  "int64",
	TypeUint64: "uint64",
}

var primitiveIDs = map[string]int{
	"bool":   TypeBool,
	"byte":   TypeByte,
	"int":    TypeInt,
	"uint":   TypeUint,
	"float":  TypeFloat,
	"string": TypeString,
	"int64":  TypeInt64,
	"uint64": TypeUint64,
}

// Field is one field of a Definition.
//
// Exactly one of Type and TypeName is authoritative: a
// Field decoded from binary carries Type (negative
// primitive sentinel or definition index); a Field built
// programmatically or from a schema definition file may
// instead carry TypeName, which is resolved to an ID when
// the schema is encoded or the field is decoded against.
//
// Value is the field's ordinal for struct fields, the wire
// tag for message fields, and the member value for enum
// fields.
type Field struct {
	Name     string
	Type     int
	TypeName string
	IsArray  bool
	Value    uint32
}

// Definition is one named type declaration in a Schema.
// Definitions are immutable once the schema is in use.
type Definition struct {
	Name   string
	Kind   Kind
	Fields []Field
}

func (d *Definition) fieldByValue(v uint32) *Field {
	for i := range d.Fields {
		if d.Fields[i].Value == v {
			return &d.Fields[i]
		}
	}
	return nil
}

// Schema is an ordered list of definitions. Order is
// significant: non-negative field type IDs address this
// list positionally, so it must not be reordered once
// index-based references exist.
type Schema struct {
	Defs []Definition
}

// Lookup finds a definition by name.
func (s *Schema) Lookup(name string) (*Definition, bool) {
	for i := range s.Defs {
		if s.Defs[i].Name == name {
			return &s.Defs[i], true
		}
	}
	return nil, false
}

// index returns the position of the named definition, or -1.
func (s *Schema) index(name string) int {
	for i := range s.Defs {
		if s.Defs[i].Name == name {
			return i
		}
	}
	return -1
}

// resolveType resolves a field's type reference to a type
// ID, consulting TypeName when set. It returns
// ErrUnknownType (wrapped with the offending name or index)
// when the reference does not resolve.
func (s *Schema) resolveType(f *Field) (int, error) {
	if f.TypeName != "" {
		if id, ok := primitiveIDs[f.TypeName]; ok {
			return id, nil
		}
		if i := s.index(f.TypeName); i >= 0 {
			return i, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, f.TypeName)
	}
	if f.Type >= 0 && f.Type >= len(s.Defs) {
		return 0, fmt.Errorf("%w: type index %d out of range (have %d definitions)",
			ErrUnknownType, f.Type, len(s.Defs))
	}
	if f.Type < 0 {
		if _, ok := primitiveNames[f.Type]; !ok {
			return 0, fmt.Errorf("%w: type id %d", ErrUnknownType, f.Type)
		}
	}
	return f.Type, nil
}

// TypeLabel renders a field's type reference for display:
// the primitive name, the referenced definition's name, or
// the raw index when it is out of range.
func (s *Schema) TypeLabel(f *Field) string {
	if f.TypeName != "" {
		return f.TypeName
	}
	if name, ok := primitiveNames[f.Type]; ok {
		return name
	}
	if f.Type >= 0 && f.Type < len(s.Defs) {
		return s.Defs[f.Type].Name
	}
	return fmt.Sprintf("type(%d)", f.Type)
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	out := &Schema{Defs: slices.Clone(s.Defs)}
	for i := range out.Defs {
		out.Defs[i].Fields = slices.Clone(out.Defs[i].Fields)
	}
	return out
}

// Equal reports structural equality of two schemas,
// including definition and field order.
func (s *Schema) Equal(o *Schema) bool {
	return slices.EqualFunc(s.Defs, o.Defs, func(a, b Definition) bool {
		return a.Name == b.Name && a.Kind == b.Kind && slices.Equal(a.Fields, b.Fields)
	})
}

// String renders the schema in a kiwi-IDL-like textual
// form, for diagnostics and tooling output.
func (s *Schema) String() string {
	var sb strings.Builder
	for i := range s.Defs {
		d := &s.Defs[i]
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %s {\n", d.Kind, d.Name)
		for j := range d.Fields {
			f := &d.Fields[j]
			if d.Kind == KindEnum {
				fmt.Fprintf(&sb, "  %s = %d;\n", f.Name, f.Value)
				continue
			}
			suffix := ""
			if f.IsArray {
				suffix = "[]"
			}
			fmt.Fprintf(&sb, "  %s%s %s = %d;\n", s.TypeLabel(f), suffix, f.Name, f.Value)
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}
