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
)

// DefaultMaxDepth is the recursion ceiling applied when
// DecodeLimits.MaxDepth is zero.
const DefaultMaxDepth = 200

// DecodeLimits bounds a decode against adversarial input.
// The zero value applies defaults.
type DecodeLimits struct {
	// MaxDepth caps the nesting depth of custom types
	// before the decoder fails with ErrTooDeep.
	MaxDepth int
}

func (l DecodeLimits) maxDepth() int {
	if l.MaxDepth > 0 {
		return l.MaxDepth
	}
	return DefaultMaxDepth
}

// DecodeMessage decodes a message in the generic dialect
// against the definition named typeName.
func DecodeMessage(s *Schema, data []byte, typeName string) (Value, error) {
	return decodeRoot(s, data, typeName, genericDialect, DecodeLimits{})
}

// DecodeMessageOpts is DecodeMessage with explicit limits.
func DecodeMessageOpts(s *Schema, data []byte, typeName string, lim DecodeLimits) (Value, error) {
	return decodeRoot(s, data, typeName, genericDialect, lim)
}

// DecodeFigMessage decodes a message in the fig dialect
// (null-terminated strings, raw 32-bit floats, and
// abort-on-unknown-field message handling).
func DecodeFigMessage(s *Schema, data []byte, typeName string) (Value, error) {
	return decodeRoot(s, data, typeName, figDialect, DecodeLimits{})
}

// DecodeFigMessageOpts is DecodeFigMessage with explicit limits.
func DecodeFigMessageOpts(s *Schema, data []byte, typeName string, lim DecodeLimits) (Value, error) {
	return decodeRoot(s, data, typeName, figDialect, lim)
}

func decodeRoot(s *Schema, data []byte, typeName string, dia *dialect, lim DecodeLimits) (Value, error) {
	def, ok := s.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("decode: %w: no definition named %q", ErrUnknownType, typeName)
	}
	d := &decoder{st: s, c: NewCursor(data), dia: dia, max: lim.maxDepth()}
	v, err := d.definition(def)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", typeName, err)
	}
	return v, nil
}

type decoder struct {
	st    *Schema
	c     *Cursor
	dia   *dialect
	depth int
	max   int
}

func (d *decoder) definition(def *Definition) (Value, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > d.max {
		return nil, ErrTooDeep
	}
	switch def.Kind {
	case KindStruct:
		return d.structBody(def)
	case KindMessage:
		return d.messageBody(def)
	case KindEnum:
		return d.enumBody(def)
	default:
		return nil, fmt.Errorf("%s: bad definition kind %d", def.Name, def.Kind)
	}
}

// structBody reads every field in declared order. Structs
// have no end marker; the schema fixes the layout.
func (d *decoder) structBody(def *Definition) (Value, error) {
	out := make(Struct, len(def.Fields))
	for i := range def.Fields {
		f := &def.Fields[i]
		v, err := d.fieldValue(f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}

// messageBody reads tagged fields until the zero sentinel.
// An unknown tag is skipped as a length-prefixed blob in
// the generic dialect; the fig dialect cannot know the
// unknown field's length and returns the fields decoded so
// far instead.
func (d *decoder) messageBody(def *Definition) (Value, error) {
	byTag := make(map[uint32]*Field, len(def.Fields))
	for i := range def.Fields {
		byTag[def.Fields[i].Value] = &def.Fields[i]
	}
	out := make(Struct, len(def.Fields))
	for {
		tag, err := d.c.ReadVarUint()
		if err != nil {
			return nil, fmt.Errorf("%s: reading field tag: %w", def.Name, err)
		}
		if tag == 0 {
			return out, nil
		}
		f, ok := byTag[tag]
		if !ok {
			if d.dia.onUnknown == skipUnknown {
				if _, err := d.c.ReadByteArray(); err != nil {
					return nil, fmt.Errorf("%s: skipping unknown field %d: %w", def.Name, tag, err)
				}
				continue
			}
			return out, nil
		}
		v, err := d.fieldValue(f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
		}
		out[f.Name] = v
	}
}

func (d *decoder) enumBody(def *Definition) (Value, error) {
	v, err := d.c.ReadVarUint()
	if err != nil {
		return nil, fmt.Errorf("%s: reading enum value: %w", def.Name, err)
	}
	if f := def.fieldByValue(v); f != nil {
		return Enum{Value: v, Name: f.Name}, nil
	}
	return Enum{Value: v, Name: UnknownEnumLabel(v)}, nil
}

func (d *decoder) fieldValue(f *Field) (Value, error) {
	id, err := d.st.resolveType(f)
	if err != nil {
		return nil, err
	}
	if !f.IsArray {
		return d.value(id)
	}
	n, err := d.c.ReadVarUint()
	if err != nil {
		return nil, fmt.Errorf("reading array count: %w", err)
	}
	// cap the initial allocation: a hostile count must not
	// allocate ahead of the bytes that back it
	out := make(List, 0, min32(n, 1024))
	for i := uint32(0); i < n; i++ {
		v, err := d.value(id)
		if err != nil {
			return nil, fmt.Errorf("element %d of %d: %w", i, n, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *decoder) value(id int) (Value, error) {
	if id >= 0 {
		return d.definition(&d.st.Defs[id])
	}
	switch id {
	case TypeBool:
		v, err := d.c.ReadBool()
		return Bool(v), err
	case TypeByte:
		v, err := d.c.ReadByte()
		return Byte(v), err
	case TypeInt:
		v, err := d.c.ReadVarInt()
		return Int(v), err
	case TypeUint:
		v, err := d.c.ReadVarUint()
		return Uint(v), err
	case TypeInt64:
		v, err := d.c.ReadVarInt64()
		return Int64(v), err
	case TypeUint64:
		v, err := d.c.ReadVarUint64()
		return Uint64(v), err
	case TypeFloat:
		v, err := d.dia.readFloat(d.c)
		return Float(v), err
	case TypeString:
		v, err := d.dia.readString(d.c)
		return String(v), err
	default:
		return nil, fmt.Errorf("%w: type id %d", ErrUnknownType, id)
	}
}

func min32(a uint32, b int) int {
	if int64(a) < int64(b) {
		return int(a)
	}
	return b
}
