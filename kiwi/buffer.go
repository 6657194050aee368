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
	"math"
)

// Buffer is an append-only encode buffer. The zero value is
// ready to use. Writes never fail; encoding errors (unknown
// types, unknown fields in strict mode) are detected before
// any bytes are written for the offending element.
type Buffer struct {
	buf []byte
}

// Bytes returns the encoded bytes. The slice aliases the
// Buffer's storage and is invalidated by further writes.
func (b *Buffer) Bytes() []byte { return b.buf }

// Size returns the number of bytes written so far.
func (b *Buffer) Size() int { return len(b.buf) }

// Reset truncates the buffer, retaining capacity.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// WriteU8 appends a single byte.
func (b *Buffer) WriteU8(v byte) {
	b.buf = append(b.buf, v)
}

// WriteBool appends 1 for true and 0 for false.
func (b *Buffer) WriteBool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

// WriteUint32 appends a little-endian 32-bit integer.
func (b *Buffer) WriteUint32(v uint32) {
	b.buf = append(b.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteVarUint appends an LEB128 unsigned 32-bit integer
// (at most 5 bytes).
func (b *Buffer) WriteVarUint(v uint32) {
	for v >= 0x80 {
		b.buf = append(b.buf, byte(v)|0x80)
		v >>= 7
	}
	b.buf = append(b.buf, byte(v))
}

// WriteVarUint64 appends an LEB128 unsigned 64-bit integer
// (at most 10 bytes).
func (b *Buffer) WriteVarUint64(v uint64) {
	for v >= 0x80 {
		b.buf = append(b.buf, byte(v)|0x80)
		v >>= 7
	}
	b.buf = append(b.buf, byte(v))
}

// WriteVarInt appends a zig-zag encoded signed 32-bit
// integer.
func (b *Buffer) WriteVarInt(v int32) {
	b.WriteVarUint(uint32(v<<1) ^ uint32(v>>31))
}

// WriteVarInt64 appends a zig-zag encoded signed 64-bit
// integer.
func (b *Buffer) WriteVarInt64(v int64) {
	b.WriteVarUint64(uint64(v<<1) ^ uint64(v>>63))
}

// WriteVarFloat appends the Kiwi variable-length float
// encoding of v (see Cursor.ReadVarFloat). Values whose
// rotated exponent byte is zero, including zero itself and
// all denormals, collapse to a single zero byte; this loss
// matches the paired decoder.
func (b *Buffer) WriteVarFloat(v float64) {
	bits := math.Float32bits(float32(v))
	bits = bits>>23 | bits<<9
	if bits&0xff == 0 {
		b.buf = append(b.buf, 0)
		return
	}
	b.WriteUint32(bits)
}

// WriteFloat32 appends a raw little-endian IEEE-754 single,
// the fig dialect's float encoding.
func (b *Buffer) WriteFloat32(v float64) {
	b.WriteUint32(math.Float32bits(float32(v)))
}

// WriteString appends a varuint byte length followed by the
// UTF-8 bytes of s.
func (b *Buffer) WriteString(s string) {
	b.WriteVarUint(uint32(len(s)))
	b.buf = append(b.buf, s...)
}

// WriteNullString appends the UTF-8 bytes of s followed by
// a zero terminator. Interior zero bytes in s would corrupt
// the stream; the fig format never produces them.
func (b *Buffer) WriteNullString(s string) {
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, 0)
}

// WriteRaw appends p verbatim.
func (b *Buffer) WriteRaw(p []byte) {
	b.buf = append(b.buf, p...)
}

// WriteByteArray appends a varuint length followed by p.
func (b *Buffer) WriteByteArray(p []byte) {
	b.WriteVarUint(uint32(len(p)))
	b.buf = append(b.buf, p...)
}
