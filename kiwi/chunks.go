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

// SplitChunks splits a generic payload into its schema and
// data chunks. Each chunk is a varuint byte length followed
// by that many bytes; the two sit back to back. The
// returned slices alias payload.
func SplitChunks(payload []byte) (schema, data []byte, err error) {
	c := NewCursor(payload)
	schema, err = c.ReadByteArray()
	if err != nil {
		return nil, nil, fmt.Errorf("chunks: reading schema chunk: %w", err)
	}
	data, err = c.ReadByteArray()
	if err != nil {
		return nil, nil, fmt.Errorf("chunks: reading data chunk: %w", err)
	}
	return schema, data, nil
}

// CombineChunks is the inverse of SplitChunks.
func CombineChunks(schema, data []byte) []byte {
	var b Buffer
	b.WriteByteArray(schema)
	b.WriteByteArray(data)
	return b.Bytes()
}

// SplitFigChunks splits a fig payload. The schema chunk's
// length is not stored in the payload; it comes from the
// fig file header, so the caller passes it in. The data
// chunk that follows is prefixed with a raw little-endian
// 32-bit length rather than a varuint.
func SplitFigChunks(payload []byte, schemaSize int) (schema, data []byte, err error) {
	c := NewCursor(payload)
	schema, err = c.ReadBytes(schemaSize)
	if err != nil {
		return nil, nil, fmt.Errorf("chunks: reading fig schema chunk: %w", err)
	}
	n, err := c.ReadUint32()
	if err != nil {
		return nil, nil, fmt.Errorf("chunks: reading fig data length: %w", err)
	}
	data, err = c.ReadBytes(int(n))
	if err != nil {
		return nil, nil, fmt.Errorf("chunks: reading fig data chunk: %w", err)
	}
	return schema, data, nil
}

// CombineFigChunks is the inverse of SplitFigChunks: the
// schema chunk verbatim, then the length-prefixed data
// chunk. The schema chunk's size must be carried separately
// (fig files store it in the file header).
func CombineFigChunks(schema, data []byte) []byte {
	var b Buffer
	b.WriteRaw(schema)
	b.WriteUint32(uint32(len(data)))
	b.WriteRaw(data)
	return b.Bytes()
}
