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

// EncodeOptions configures message encoding.
type EncodeOptions struct {
	// Strict rejects value fields that have no matching
	// schema field instead of silently dropping them.
	Strict bool

	// MaxDepth caps value-tree nesting, guarding against
	// cyclic Struct values. Zero applies DefaultMaxDepth.
	MaxDepth int
}

func (o *EncodeOptions) maxDepth() int {
	if o != nil && o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

// EncodeMessage encodes v against the definition named
// typeName in the generic dialect, with lenient handling of
// unknown value fields.
func EncodeMessage(s *Schema, v Value, typeName string) ([]byte, error) {
	return encodeRoot(s, v, typeName, genericDialect, nil)
}

// EncodeMessageOpts is EncodeMessage with explicit options.
func EncodeMessageOpts(s *Schema, v Value, typeName string, opts *EncodeOptions) ([]byte, error) {
	return encodeRoot(s, v, typeName, genericDialect, opts)
}

// EncodeFigMessage encodes v against the definition named
// typeName in the fig dialect.
func EncodeFigMessage(s *Schema, v Value, typeName string) ([]byte, error) {
	return encodeRoot(s, v, typeName, figDialect, nil)
}

// EncodeFigMessageOpts is EncodeFigMessage with explicit options.
func EncodeFigMessageOpts(s *Schema, v Value, typeName string, opts *EncodeOptions) ([]byte, error) {
	return encodeRoot(s, v, typeName, figDialect, opts)
}

func encodeRoot(s *Schema, v Value, typeName string, dia *dialect, opts *EncodeOptions) ([]byte, error) {
	def, ok := s.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("encode: %w: no definition named %q", ErrUnknownType, typeName)
	}
	e := &encoder{st: s, dia: dia, max: opts.maxDepth()}
	if opts != nil {
		e.strict = opts.Strict
	}
	if err := e.definition(def, v); err != nil {
		return nil, fmt.Errorf("encode %s: %w", typeName, err)
	}
	return e.b.Bytes(), nil
}

type encoder struct {
	st     *Schema
	b      Buffer
	dia    *dialect
	strict bool
	depth  int
	max    int
}

func (e *encoder) definition(def *Definition, v Value) error {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.max {
		return ErrTooDeep
	}
	switch def.Kind {
	case KindStruct:
		return e.structBody(def, v)
	case KindMessage:
		return e.messageBody(def, v)
	case KindEnum:
		return e.enumBody(def, v)
	default:
		return fmt.Errorf("%s: bad definition kind %d", def.Name, def.Kind)
	}
}

func (e *encoder) structBody(def *Definition, v Value) error {
	st, ok := v.(Struct)
	if !ok {
		return fmt.Errorf("%s: cannot encode %T as struct", def.Name, v)
	}
	for i := range def.Fields {
		f := &def.Fields[i]
		fv, ok := st[f.Name]
		if !ok {
			return fmt.Errorf("%s: missing struct field %q", def.Name, f.Name)
		}
		if err := e.fieldValue(f, fv); err != nil {
			return fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
		}
	}
	if e.strict && len(st) != len(def.Fields) {
		return e.unknownFieldError(def, st)
	}
	return nil
}

func (e *encoder) messageBody(def *Definition, v Value) error {
	st, ok := v.(Struct)
	if !ok {
		return fmt.Errorf("%s: cannot encode %T as message", def.Name, v)
	}
	// emit present fields in schema order so encoding is
	// deterministic regardless of map iteration order
	present := 0
	for i := range def.Fields {
		f := &def.Fields[i]
		fv, ok := st[f.Name]
		if !ok {
			continue
		}
		present++
		e.b.WriteVarUint(f.Value)
		if err := e.fieldValue(f, fv); err != nil {
			return fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
		}
	}
	if e.strict && present != len(st) {
		return e.unknownFieldError(def, st)
	}
	e.b.WriteVarUint(0) // sentinel terminates the message
	return nil
}

func (e *encoder) unknownFieldError(def *Definition, st Struct) error {
	for _, k := range st.Keys() {
		found := false
		for i := range def.Fields {
			if def.Fields[i].Name == k {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: unknown field %q", def.Name, k)
		}
	}
	// struct-kind can also reach here with a duplicate-free
	// map shorter than the field list; structBody reports
	// missing fields before strict checks run
	return nil
}

func (e *encoder) enumBody(def *Definition, v Value) error {
	en, ok := v.(Enum)
	if !ok {
		return fmt.Errorf("%s: cannot encode %T as enum", def.Name, v)
	}
	if en.Name != "" {
		for i := range def.Fields {
			if def.Fields[i].Name == en.Name {
				e.b.WriteVarUint(def.Fields[i].Value)
				return nil
			}
		}
		if e.strict {
			return fmt.Errorf("%s: unknown enum member %q", def.Name, en.Name)
		}
	}
	e.b.WriteVarUint(en.Value)
	return nil
}

func (e *encoder) fieldValue(f *Field, v Value) error {
	id, err := e.st.resolveType(f)
	if err != nil {
		return err
	}
	if !f.IsArray {
		return e.value(id, v)
	}
	l, ok := v.(List)
	if !ok {
		return fmt.Errorf("cannot encode %T as array", v)
	}
	e.b.WriteVarUint(uint32(len(l)))
	for i := range l {
		if err := e.value(id, l[i]); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (e *encoder) value(id int, v Value) error {
	if id >= 0 {
		return e.definition(&e.st.Defs[id], v)
	}
	switch id {
	case TypeBool:
		b, ok := v.(Bool)
		if !ok {
			return typeMismatch("bool", v)
		}
		e.b.WriteBool(bool(b))
	case TypeByte:
		b, ok := v.(Byte)
		if !ok {
			return typeMismatch("byte", v)
		}
		e.b.WriteU8(uint8(b))
	case TypeInt:
		n, ok := v.(Int)
		if !ok {
			return typeMismatch("int", v)
		}
		e.b.WriteVarInt(int32(n))
	case TypeUint:
		n, ok := v.(Uint)
		if !ok {
			return typeMismatch("uint", v)
		}
		e.b.WriteVarUint(uint32(n))
	case TypeInt64:
		n, ok := v.(Int64)
		if !ok {
			return typeMismatch("int64", v)
		}
		e.b.WriteVarInt64(int64(n))
	case TypeUint64:
		n, ok := v.(Uint64)
		if !ok {
			return typeMismatch("uint64", v)
		}
		e.b.WriteVarUint64(uint64(n))
	case TypeFloat:
		f, ok := v.(Float)
		if !ok {
			return typeMismatch("float", v)
		}
		e.dia.writeFloat(&e.b, float64(f))
	case TypeString:
		s, ok := v.(String)
		if !ok {
			return typeMismatch("string", v)
		}
		e.dia.writeString(&e.b, string(s))
	default:
		return fmt.Errorf("%w: type id %d", ErrUnknownType, id)
	}
	return nil
}

func typeMismatch(want string, v Value) error {
	return fmt.Errorf("cannot encode %T as %s", v, want)
}
