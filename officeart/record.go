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

// Package officeart reads the 8-byte-header binary record
// format shared by the legacy Office drawing layer and the
// PowerPoint binary format: a 4-bit version, a 12-bit
// instance, a 16-bit type code and a 32-bit payload length,
// followed by the payload. Records whose version nibble is
// 0xF are containers whose payload is itself a sequence of
// records.
//
// The reader is deliberately lenient with corrupt captures:
// a declared payload length past the end of the buffer
// clamps the payload view rather than failing, and
// iteration stops at the first unreadable record, returning
// the records collected so far.
package officeart

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the fixed size of a record header.
const HeaderSize = 8

// containerVersion marks a container record. The sentinel
// is shared by the whole record family, not type-specific.
const containerVersion = 0x0F

var (
	// ErrTruncatedHeader is returned by ReadRecord when
	// fewer than HeaderSize bytes remain at the given
	// offset.
	ErrTruncatedHeader = errors.New("officeart: truncated record header")

	// ErrTooDeep is returned by ParseRecordTree when
	// container nesting exceeds the recursion ceiling.
	ErrTooDeep = errors.New("officeart: record nesting too deep")
)

// maxTreeDepth bounds ParseRecordTree recursion. Real
// document trees stay under ten levels.
const maxTreeDepth = 64

// Record is one parsed record. Data aliases the source
// buffer; it is a view, not a copy.
type Record struct {
	Version  uint8  // low 4 bits of the first header word
	Instance uint16 // high 12 bits of the first header word
	Type     uint16 // record type code
	Length   uint32 // declared payload length, excluding the header
	Data     []byte // payload view, clamped to the source buffer
	Offset   int    // offset of the header in the buffer it was read from
	Children []Record
}

// IsContainer reports whether the record's payload is a
// sequence of child records.
func (r *Record) IsContainer() bool {
	return r.Version == containerVersion
}

// TypeName returns the registry name of the record's type.
func (r *Record) TypeName() string {
	return TypeName(r.Type)
}

// ReadRecord reads the record starting at off.
//
// The declared payload length is preserved in Length even
// when it runs past the end of buf; Data is clamped to the
// bytes actually present. Callers advancing to a sibling
// must use Length, not len(Data).
func ReadRecord(buf []byte, off int) (Record, error) {
	if off < 0 || off > len(buf) || len(buf)-off < HeaderSize {
		have := 0
		if off >= 0 && off < len(buf) {
			have = len(buf) - off
		}
		return Record{}, fmt.Errorf("%w: offset %d: need %d bytes, have %d",
			ErrTruncatedHeader, off, HeaderSize, have)
	}
	verInst := binary.LittleEndian.Uint16(buf[off:])
	typ := binary.LittleEndian.Uint16(buf[off+2:])
	length := binary.LittleEndian.Uint32(buf[off+4:])
	start := off + HeaderSize
	end := start + int(length)
	if end > len(buf) || end < start {
		// tolerated: corrupt or truncated captures declare
		// lengths past the end of the stream
		end = len(buf)
	}
	return Record{
		Version:  uint8(verInst & 0xF),
		Instance: verInst >> 4,
		Type:     typ,
		Length:   length,
		Data:     buf[start:end:end],
		Offset:   off,
	}, nil
}

// IterateRecords reads consecutive records from start until
// fewer than HeaderSize bytes remain before end or a record
// fails to parse. A mid-stream failure silently ends the
// sequence: callers get the records collected so far, which
// is the documented best-effort policy for walking slightly
// corrupt streams.
func IterateRecords(buf []byte, start, end int) []Record {
	if end > len(buf) {
		end = len(buf)
	}
	var out []Record
	off := start
	for off >= 0 && end-off >= HeaderSize {
		rec, err := ReadRecord(buf[:end], off)
		if err != nil {
			break
		}
		out = append(out, rec)
		next := off + HeaderSize + int(rec.Length)
		if next <= off {
			break
		}
		off = next
	}
	return out
}

// ExpandChildren populates r.Children when r is a
// container. It expands a single level; use ParseRecordTree
// for full recursion.
func ExpandChildren(r *Record) {
	if !r.IsContainer() {
		return
	}
	r.Children = IterateRecords(r.Data, 0, len(r.Data))
}

// ParseRecordTree reads the record at off and recursively
// expands container payloads into child records. Child
// offsets are relative to their parent's payload.
func ParseRecordTree(buf []byte, off int) (Record, error) {
	return parseTree(buf, off, 0)
}

func parseTree(buf []byte, off, depth int) (Record, error) {
	if depth > maxTreeDepth {
		return Record{}, ErrTooDeep
	}
	rec, err := ReadRecord(buf, off)
	if err != nil {
		return Record{}, err
	}
	if err := expandTree(&rec, depth); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func expandTree(r *Record, depth int) error {
	if !r.IsContainer() {
		return nil
	}
	if depth >= maxTreeDepth {
		return ErrTooDeep
	}
	ExpandChildren(r)
	for i := range r.Children {
		if err := expandTree(&r.Children[i], depth+1); err != nil {
			return err
		}
	}
	return nil
}

// FindChildByType returns the first record in recs with the
// given type code.
func FindChildByType(recs []Record, typ uint16) (*Record, bool) {
	for i := range recs {
		if recs[i].Type == typ {
			return &recs[i], true
		}
	}
	return nil, false
}

// FindChildrenByType returns all records in recs with the
// given type code, in order.
func FindChildrenByType(recs []Record, typ uint16) []Record {
	var out []Record
	for i := range recs {
		if recs[i].Type == typ {
			out = append(out, recs[i])
		}
	}
	return out
}
