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

	"sigs.k8s.io/yaml"
)

// schema definition files give tests and tooling a way to
// build a Schema without writing wire bytes by hand:
//
//	definitions:
//	  - name: Point
//	    kind: struct
//	    fields:
//	      - { name: x, type: float }
//	      - { name: y, type: float }
//
// Field values (ordinals, message tags, enum member values)
// default to the 1-based field position when omitted.

type schemaDefFile struct {
	Definitions []schemaDef `json:"definitions"`
}

type schemaDef struct {
	Name   string           `json:"name"`
	Kind   string           `json:"kind"`
	Fields []schemaDefField `json:"fields"`
}

type schemaDefField struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Array bool   `json:"array,omitempty"`
	Value uint32 `json:"value,omitempty"`
}

// ParseSchemaText parses a YAML schema definition into a
// Schema. Type references stay name-based (Field.TypeName)
// and are resolved when the schema is encoded or a message
// is decoded against it, so definitions may reference each
// other in any order.
func ParseSchemaText(data []byte) (*Schema, error) {
	var file schemaDefFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("schema definition: %w", err)
	}
	if len(file.Definitions) == 0 {
		return nil, fmt.Errorf("schema definition: no definitions")
	}
	s := &Schema{}
	for i := range file.Definitions {
		d := &file.Definitions[i]
		var kind Kind
		switch d.Kind {
		case "enum":
			kind = KindEnum
		case "struct":
			kind = KindStruct
		case "message":
			kind = KindMessage
		default:
			return nil, fmt.Errorf("schema definition: %s: bad kind %q", d.Name, d.Kind)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("schema definition: definition %d has no name", i)
		}
		if _, dup := s.Lookup(d.Name); dup {
			return nil, fmt.Errorf("schema definition: duplicate definition %q", d.Name)
		}
		def := Definition{Name: d.Name, Kind: kind}
		for j := range d.Fields {
			f := &d.Fields[j]
			if f.Name == "" {
				return nil, fmt.Errorf("schema definition: %s: field %d has no name", d.Name, j)
			}
			if kind != KindEnum && f.Type == "" {
				return nil, fmt.Errorf("schema definition: %s.%s: missing type", d.Name, f.Name)
			}
			value := f.Value
			if value == 0 {
				value = uint32(j) + 1
			}
			def.Fields = append(def.Fields, Field{
				Name:     f.Name,
				TypeName: f.Type,
				IsArray:  f.Array,
				Value:    value,
			})
		}
		s.Defs = append(s.Defs, def)
	}
	// surface dangling references eagerly rather than on
	// first decode
	for i := range s.Defs {
		d := &s.Defs[i]
		if d.Kind == KindEnum {
			continue
		}
		for j := range d.Fields {
			if _, err := s.resolveType(&d.Fields[j]); err != nil {
				return nil, fmt.Errorf("schema definition: %s.%s: %w", d.Name, d.Fields[j].Name, err)
			}
		}
	}
	return s, nil
}
