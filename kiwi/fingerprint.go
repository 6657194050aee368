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
	"github.com/dchest/siphash"
)

// fixed keys so fingerprints are stable across processes
const (
	fpk0 = 0x66696777_61726521 // "figware!"
	fpk1 = 0x6b697769_73636873 // "kiwischs"
)

// Fingerprint returns a 64-bit content fingerprint of a raw
// schema chunk. Design files frequently embed identical
// schemas; callers can use the fingerprint to recognize a
// schema they have already decoded without retaining the
// chunk bytes. It is not a cryptographic digest.
func Fingerprint(schemaChunk []byte) uint64 {
	return siphash.Hash(fpk0, fpk1, schemaChunk)
}

// Fingerprint returns the fingerprint of the schema's
// generic-dialect encoding. It returns 0 for a schema that
// cannot be encoded (dangling type references).
func (s *Schema) Fingerprint() uint64 {
	enc, err := EncodeSchema(s)
	if err != nil {
		return 0
	}
	return Fingerprint(enc)
}
