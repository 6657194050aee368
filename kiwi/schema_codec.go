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

// DecodeSchema decodes a schema chunk in the generic
// dialect (length-prefixed names).
func DecodeSchema(data []byte) (*Schema, error) {
	return decodeSchema(data, genericDialect)
}

// DecodeFigSchema decodes a schema chunk in the fig dialect
// (null-terminated names). The layout is otherwise
// identical to the generic dialect.
func DecodeFigSchema(data []byte) (*Schema, error) {
	return decodeSchema(data, figDialect)
}

func decodeSchema(data []byte, dia *dialect) (*Schema, error) {
	c := NewCursor(data)
	count, err := c.ReadVarUint()
	if err != nil {
		return nil, fmt.Errorf("schema: reading definition count: %w", err)
	}
	s := &Schema{}
	for i := uint32(0); i < count; i++ {
		def, err := decodeDefinition(c, dia)
		if err != nil {
			return nil, fmt.Errorf("schema: definition %d: %w", i, err)
		}
		// append before decoding siblings so that later
		// definitions can reference this one by index
		s.Defs = append(s.Defs, *def)
	}
	return s, nil
}

func decodeDefinition(c *Cursor, dia *dialect) (*Definition, error) {
	name, err := dia.readString(c)
	if err != nil {
		return nil, fmt.Errorf("reading name: %w", err)
	}
	kind, err := c.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%s: reading kind: %w", name, err)
	}
	if kind > uint8(KindMessage) {
		return nil, fmt.Errorf("%s: bad definition kind %d", name, kind)
	}
	nfields, err := c.ReadVarUint()
	if err != nil {
		return nil, fmt.Errorf("%s: reading field count: %w", name, err)
	}
	def := &Definition{Name: name, Kind: Kind(kind)}
	for j := uint32(0); j < nfields; j++ {
		f, err := decodeField(c, dia)
		if err != nil {
			return nil, fmt.Errorf("%s: field %d: %w", name, j, err)
		}
		def.Fields = append(def.Fields, *f)
	}
	return def, nil
}

func decodeField(c *Cursor, dia *dialect) (*Field, error) {
	name, err := dia.readString(c)
	if err != nil {
		return nil, fmt.Errorf("reading name: %w", err)
	}
	typeID, err := c.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("%s: reading type id: %w", name, err)
	}
	isArray, err := c.ReadBool()
	if err != nil {
		return nil, fmt.Errorf("%s: reading array flag: %w", name, err)
	}
	value, err := c.ReadVarUint()
	if err != nil {
		return nil, fmt.Errorf("%s: reading value: %w", name, err)
	}
	return &Field{
		Name:    name,
		Type:    int(typeID),
		IsArray: isArray,
		Value:   value,
	}, nil
}

// EncodeSchema encodes a schema in the generic dialect.
// Fields whose type is a named reference are resolved to
// their type ID here: primitives through the fixed sentinel
// table, definitions to their positional index. An
// unresolvable name fails with ErrUnknownType.
func EncodeSchema(s *Schema) ([]byte, error) {
	return encodeSchema(s, genericDialect)
}

// EncodeFigSchema encodes a schema in the fig dialect.
func EncodeFigSchema(s *Schema) ([]byte, error) {
	return encodeSchema(s, figDialect)
}

func encodeSchema(s *Schema, dia *dialect) ([]byte, error) {
	var b Buffer
	b.WriteVarUint(uint32(len(s.Defs)))
	for i := range s.Defs {
		d := &s.Defs[i]
		dia.writeString(&b, d.Name)
		b.WriteU8(uint8(d.Kind))
		b.WriteVarUint(uint32(len(d.Fields)))
		for j := range d.Fields {
			f := &d.Fields[j]
			id, err := s.resolveType(f)
			if err != nil {
				return nil, fmt.Errorf("schema: %s.%s: %w", d.Name, f.Name, err)
			}
			dia.writeString(&b, f.Name)
			b.WriteVarInt(int32(id))
			b.WriteBool(f.IsArray)
			b.WriteVarUint(f.Value)
		}
	}
	return b.Bytes(), nil
}
