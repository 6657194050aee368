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
	"errors"
	"math"
	"testing"
)

func TestVarUintRoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 127, 128, 300, 16383, 16384, 1<<21 - 1, 1 << 28, math.MaxUint32}
	for _, want := range cases {
		var b Buffer
		b.WriteVarUint(want)
		c := NewCursor(b.Bytes())
		got, err := c.ReadVarUint()
		if err != nil {
			t.Fatalf("value %d: %s", want, err)
		}
		if got != want {
			t.Errorf("value %d: got %d", want, got)
		}
		if c.Remaining() != 0 {
			t.Errorf("value %d: %d bytes left over", want, c.Remaining())
		}
	}
}

func TestVarUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 1 << 32, 1<<56 - 3, math.MaxUint64}
	for _, want := range cases {
		var b Buffer
		b.WriteVarUint64(want)
		c := NewCursor(b.Bytes())
		got, err := c.ReadVarUint64()
		if err != nil {
			t.Fatalf("value %d: %s", want, err)
		}
		if got != want {
			t.Errorf("value %d: got %d", want, got)
		}
	}
}

func TestVarIntRoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 2, -2, 63, -64, 1000, -1000, math.MaxInt32, math.MinInt32}
	for _, want := range cases {
		var b Buffer
		b.WriteVarInt(want)
		got, err := NewCursor(b.Bytes()).ReadVarInt()
		if err != nil {
			t.Fatalf("value %d: %s", want, err)
		}
		if got != want {
			t.Errorf("value %d: got %d", want, got)
		}
	}
}

func TestVarInt64RoundTrip(t *testing.T) {
	cases := []int64{0, -1, 1, math.MaxInt64, math.MinInt64, -1 << 40}
	for _, want := range cases {
		var b Buffer
		b.WriteVarInt64(want)
		got, err := NewCursor(b.Bytes()).ReadVarInt64()
		if err != nil {
			t.Fatalf("value %d: %s", want, err)
		}
		if got != want {
			t.Errorf("value %d: got %d", want, got)
		}
	}
}

func TestVarIntZigZagEncoding(t *testing.T) {
	// small magnitudes must stay small on the wire
	var b Buffer
	b.WriteVarInt(-1)
	if got := b.Bytes(); len(got) != 1 || got[0] != 1 {
		t.Errorf("-1 encoded as %v", got)
	}
	b.Reset()
	b.WriteVarInt(1)
	if got := b.Bytes(); len(got) != 1 || got[0] != 2 {
		t.Errorf("1 encoded as %v", got)
	}
}

func TestVarUintOverflow(t *testing.T) {
	// six continuation bytes exceed 32 bits
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	if _, err := NewCursor(buf).ReadVarUint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("got %v, want ErrVarintOverflow", err)
	}
	// the fifth byte may only carry 4 bits of payload
	buf = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F}
	if _, err := NewCursor(buf).ReadVarUint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("got %v, want ErrVarintOverflow", err)
	}
	// but the same bytes are a fine 64-bit varint
	if _, err := NewCursor(buf).ReadVarUint64(); err != nil {
		t.Errorf("64-bit read: %s", err)
	}
}

func TestVarFloatRoundTrip(t *testing.T) {
	cases := []float64{0, 1, -1, 1.5, -2.25, 3.14159265358979, 1e10, -1e-10, math.Inf(1), math.Inf(-1)}
	for _, want := range cases {
		var b Buffer
		b.WriteVarFloat(want)
		got, err := NewCursor(b.Bytes()).ReadVarFloat()
		if err != nil {
			t.Fatalf("value %g: %s", want, err)
		}
		if float64(got) != float64(float32(want)) {
			t.Errorf("value %g: got %g", want, got)
		}
	}
}

func TestVarFloatZeroIsOneByte(t *testing.T) {
	var b Buffer
	b.WriteVarFloat(0)
	if got := b.Bytes(); len(got) != 1 || got[0] != 0 {
		t.Errorf("zero encoded as %v", got)
	}
	// negative zero and denormals collapse to zero
	b.Reset()
	b.WriteVarFloat(math.Copysign(0, -1))
	if got := b.Bytes(); len(got) != 1 || got[0] != 0 {
		t.Errorf("-0 encoded as %v", got)
	}
	got, err := NewCursor(b.Bytes()).ReadVarFloat()
	if err != nil || got != 0 {
		t.Errorf("-0 decoded as %g, %v", got, err)
	}
}

func TestReadStringRoundTrip(t *testing.T) {
	cases := []string{"", "a", "hello", "héllo wörld", "日本語"}
	for _, want := range cases {
		var b Buffer
		b.WriteString(want)
		got, err := NewCursor(b.Bytes()).ReadString()
		if err != nil {
			t.Fatalf("%q: %s", want, err)
		}
		if got != want {
			t.Errorf("%q: got %q", want, got)
		}
	}
}

func TestReadNullString(t *testing.T) {
	buf := []byte("hello\x00world\x00")
	c := NewCursor(buf)
	for _, want := range []string{"hello", "world"} {
		got, err := c.ReadNullString()
		if err != nil {
			t.Fatalf("%q: %s", want, err)
		}
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
	if c.Remaining() != 0 {
		t.Errorf("%d bytes left over", c.Remaining())
	}
	// missing terminator is a truncation error
	c = NewCursor([]byte("no terminator"))
	if _, err := c.ReadNullString(); !errors.Is(err, ErrTruncated) {
		t.Errorf("got %v, want ErrTruncated", err)
	}
	if c.Pos() != 0 {
		t.Errorf("failed read advanced the cursor to %d", c.Pos())
	}
}

func TestTruncatedReadsDoNotAdvance(t *testing.T) {
	checks := []struct {
		name string
		buf  []byte
		read func(*Cursor) error
	}{
		{"byte", nil, func(c *Cursor) error { _, err := c.ReadByte(); return err }},
		{"uint32", []byte{1, 2}, func(c *Cursor) error { _, err := c.ReadUint32(); return err }},
		{"varuint", []byte{0x80}, func(c *Cursor) error { _, err := c.ReadVarUint(); return err }},
		{"varfloat", []byte{0x7F, 0x00}, func(c *Cursor) error { _, err := c.ReadVarFloat(); return err }},
		{"string", []byte{5, 'a', 'b'}, func(c *Cursor) error { _, err := c.ReadString(); return err }},
		{"bytes", []byte{1, 2, 3}, func(c *Cursor) error { _, err := c.ReadBytes(4); return err }},
		{"bytearray", []byte{3, 'a'}, func(c *Cursor) error { _, err := c.ReadByteArray(); return err }},
	}
	for _, chk := range checks {
		c := NewCursor(chk.buf)
		err := chk.read(c)
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("%s: got %v, want ErrTruncated", chk.name, err)
		}
		if c.Pos() != 0 {
			t.Errorf("%s: failed read advanced the cursor to %d", chk.name, c.Pos())
		}
	}
}

func TestTruncErrorDetail(t *testing.T) {
	c := NewCursor([]byte{1, 2})
	_, err := c.ReadUint32()
	var te *TruncError
	if !errors.As(err, &te) {
		t.Fatalf("got %T, want *TruncError", err)
	}
	if te.Need != 4 || te.Have != 2 || te.Off != 0 {
		t.Errorf("bad detail: %+v", te)
	}
}

func TestReadBytesAliases(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	c := NewCursor(buf)
	b, err := c.ReadBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if &b[0] != &buf[0] {
		t.Error("ReadBytes copied instead of aliasing")
	}
}
