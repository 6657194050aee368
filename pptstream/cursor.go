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

package pptstream

import (
	"encoding/binary"
	"fmt"
)

// cursor is a sticky-error reader for the fixed-layout atom
// payloads in this package. After the first short read,
// every subsequent read returns zero and the error is
// inspected once at the end.
type cursor struct {
	buf []byte
	pos int
	err error
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) short(n int) bool {
	if c.err != nil {
		return true
	}
	if len(c.buf)-c.pos < n {
		c.err = fmt.Errorf("truncated atom at offset %d: need %d bytes, have %d",
			c.pos, n, len(c.buf)-c.pos)
		return true
	}
	return false
}

func (c *cursor) byte() uint8 {
	if c.short(1) {
		return 0
	}
	v := c.buf[c.pos]
	c.pos++
	return v
}

func (c *cursor) uint16() uint16 {
	if c.short(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v
}

func (c *cursor) uint32() uint32 {
	if c.short(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v
}

func (c *cursor) bytes(n int) []byte {
	if c.short(n) {
		return nil
	}
	v := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return v
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}
