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

// Package kiwi implements the Kiwi self-describing binary
// schema/message format in its two wire dialects: the
// generic dialect (length-prefixed strings, variable-length
// floats) and the "fig" dialect used by fig design files
// (null-terminated strings, raw 32-bit floats).
//
// A Schema decoded from a schema chunk drives the recursive
// message codec; see DecodeSchema, DecodeMessage and their
// fig counterparts.
package kiwi

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Cursor is a position-tracked, bounds-checked reader over
// an immutable byte buffer. Every read either consumes
// exactly the bytes it reports or fails without advancing
// the position; a read past the end of the buffer returns a
// *TruncError and never yields garbage.
//
// A Cursor is not safe for concurrent use; distinct Cursors
// over the same buffer are.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor positioned at the start of buf.
// The Cursor borrows buf; callers must not mutate it while
// the Cursor is in use.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

func (c *Cursor) need(n int) error {
	if c.Remaining() < n {
		return &TruncError{Off: c.pos, Need: n, Have: c.Remaining()}
	}
	return nil
}

// ReadByte reads a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// ReadBool reads a single byte and interprets any nonzero
// value as true.
func (c *Cursor) ReadBool() (bool, error) {
	b, err := c.ReadByte()
	return b != 0, err
}

// ReadUint16 reads a little-endian 16-bit integer.
func (c *Cursor) ReadUint16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadUint32 reads a little-endian 32-bit integer.
func (c *Cursor) ReadUint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadFloat32 reads a raw little-endian IEEE-754 single.
// The fig dialect stores "float" fields this way rather
// than with the variable-length encoding.
func (c *Cursor) ReadFloat32() (float32, error) {
	v, err := c.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadVarUint reads an LEB128 unsigned integer of at most
// 32 bits (up to 5 bytes). A continuation past the fifth
// byte or a value exceeding 32 bits fails with
// ErrVarintOverflow.
func (c *Cursor) ReadVarUint() (uint32, error) {
	v, n, err := readVarUint(c.buf[c.pos:], c.pos, 32)
	if err != nil {
		return 0, err
	}
	c.pos += n
	return uint32(v), nil
}

// ReadVarUint64 reads an LEB128 unsigned integer of at most
// 64 bits (up to 10 bytes).
func (c *Cursor) ReadVarUint64() (uint64, error) {
	v, n, err := readVarUint(c.buf[c.pos:], c.pos, 64)
	if err != nil {
		return 0, err
	}
	c.pos += n
	return v, nil
}

// ReadVarInt reads a zig-zag encoded LEB128 signed integer
// of at most 32 bits.
func (c *Cursor) ReadVarInt() (int32, error) {
	v, err := c.ReadVarUint()
	return int32(v>>1) ^ -int32(v&1), err
}

// ReadVarInt64 reads a zig-zag encoded LEB128 signed
// integer of at most 64 bits.
func (c *Cursor) ReadVarInt64() (int64, error) {
	v, err := c.ReadVarUint64()
	return int64(v>>1) ^ -int64(v&1), err
}

// readVarUint decodes an LEB128 integer from the front of
// buf without committing any cursor state. base is the
// absolute offset of buf[0], used only for error reporting.
func readVarUint(buf []byte, base, width int) (uint64, int, error) {
	var v uint64
	for i, shift := 0, 0; ; i, shift = i+1, shift+7 {
		if shift >= width {
			return 0, 0, ErrVarintOverflow
		}
		if i >= len(buf) {
			return 0, 0, &TruncError{Off: base + i, Need: 1, Have: 0}
		}
		b := buf[i]
		chunk := uint64(b & 0x7f)
		if rem := width - shift; rem < 7 && chunk>>uint(rem) != 0 {
			return 0, 0, ErrVarintOverflow
		}
		v |= chunk << uint(shift)
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}
}

// ReadVarFloat reads the Kiwi variable-length float
// encoding: a single zero byte for zero (and anything whose
// rotated exponent byte is zero), otherwise four bytes
// holding the IEEE-754 single bits rotated so the exponent
// occupies the low byte.
func (c *Cursor) ReadVarFloat() (float32, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	if c.buf[c.pos] == 0 {
		c.pos++
		return 0, nil
	}
	if err := c.need(4); err != nil {
		return 0, err
	}
	bits := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	bits = bits<<23 | bits>>9
	return math.Float32frombits(bits), nil
}

// ReadString reads a varuint byte length followed by that
// many bytes of UTF-8. This is the generic dialect's string
// encoding.
func (c *Cursor) ReadString() (string, error) {
	start := c.pos
	n, err := c.ReadVarUint()
	if err != nil {
		return "", err
	}
	if err := c.need(int(n)); err != nil {
		c.pos = start
		return "", err
	}
	s := string(c.buf[c.pos : c.pos+int(n)])
	c.pos += int(n)
	return s, nil
}

// ReadNullString scans forward for a zero byte and returns
// the preceding bytes as UTF-8, consuming the terminator.
// This is the fig dialect's string encoding. A missing
// terminator is a truncation error.
func (c *Cursor) ReadNullString() (string, error) {
	i := bytes.IndexByte(c.buf[c.pos:], 0)
	if i < 0 {
		return "", &TruncError{Off: c.pos, Need: c.Remaining() + 1, Have: c.Remaining()}
	}
	s := string(c.buf[c.pos : c.pos+i])
	c.pos += i + 1
	return s, nil
}

// ReadBytes returns a view of the next n bytes. The slice
// aliases the Cursor's buffer; it is not a copy.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, &TruncError{Off: c.pos, Need: n, Have: c.Remaining()}
	}
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadByteArray reads a varuint length followed by that
// many raw bytes. Message decoding uses it to skip unknown
// fields in the generic dialect.
func (c *Cursor) ReadByteArray() ([]byte, error) {
	start := c.pos
	n, err := c.ReadVarUint()
	if err != nil {
		return nil, err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		c.pos = start
		return nil, err
	}
	return b, nil
}
