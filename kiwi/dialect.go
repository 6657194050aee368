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

// unknownFieldPolicy selects how message decoding treats a
// field tag with no matching schema field.
type unknownFieldPolicy uint8

const (
	// skipUnknown reads the unknown field as a
	// length-prefixed blob and continues the tag loop.
	skipUnknown unknownFieldPolicy = iota
	// abortUnknown stops the tag loop and returns the
	// fields decoded so far. The fig dialect cannot
	// determine an unknown field's byte length, so this is
	// its only safe option.
	abortUnknown
)

// dialect captures the three points where the generic and
// fig wire formats diverge: string encoding, float
// encoding, and unknown-field handling. Everything else in
// the schema and value codecs is shared.
type dialect struct {
	name        string
	readString  func(*Cursor) (string, error)
	writeString func(*Buffer, string)
	readFloat   func(*Cursor) (float64, error)
	writeFloat  func(*Buffer, float64)
	onUnknown   unknownFieldPolicy
}

var genericDialect = &dialect{
	name:        "kiwi",
	readString:  (*Cursor).ReadString,
	writeString: (*Buffer).WriteString,
	readFloat: func(c *Cursor) (float64, error) {
		f, err := c.ReadVarFloat()
		return float64(f), err
	},
	writeFloat: (*Buffer).WriteVarFloat,
	onUnknown:  skipUnknown,
}

var figDialect = &dialect{
	name:        "fig",
	readString:  (*Cursor).ReadNullString,
	writeString: (*Buffer).WriteNullString,
	readFloat: func(c *Cursor) (float64, error) {
		f, err := c.ReadFloat32()
		return float64(f), err
	},
	writeFloat: (*Buffer).WriteFloat32,
	onUnknown:  abortUnknown,
}
