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
	"fmt"

	"github.com/figware/officebin/officeart"
)

// Warning is a structured diagnostic produced when the edit
// chain walk hits something it can tolerate: an
// out-of-range link, an unexpected record type, a truncated
// directory. The walk keeps whatever it has resolved so far
// and records the condition instead of failing the parse.
type Warning struct {
	Offset int    // stream offset the condition was observed at
	Code   string // stable machine-matchable code
	Msg    string // human-readable description
}

// Warning codes.
const (
	WarnBadEditOffset     = "bad-edit-offset"
	WarnBadEditType       = "bad-edit-type"
	WarnBadEdit           = "bad-edit"
	WarnBadDirOffset      = "bad-directory-offset"
	WarnBadDirType        = "bad-directory-type"
	WarnTruncatedDir      = "truncated-directory"
	WarnEditCycle         = "edit-cycle"
)

func (w Warning) String() string {
	return fmt.Sprintf("%s at offset %d: %s", w.Code, w.Offset, w.Msg)
}

// Directory is a fully merged persist directory: the result
// of walking the user-edit chain.
type Directory struct {
	// Offsets maps persist IDs to the stream offset of the
	// current version of the object.
	Offsets map[uint32]uint32

	// DocPersistID is the persist ID of the document root
	// according to the most recent edit.
	DocPersistID uint32

	// Edits holds the decoded chain, newest first.
	Edits []UserEdit

	// Warnings records the conditions that ended or
	// degraded the walk, in the order observed.
	Warnings []Warning
}

func (d *Directory) warnf(off int, code, format string, args ...any) {
	d.Warnings = append(d.Warnings, Warning{
		Offset: off,
		Code:   code,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// BuildPersistDirectory walks the user-edit chain starting
// at startOffset (normally CurrentUser.OffsetToCurrentEdit)
// and merges the per-edit persist directories.
//
// The walk proceeds from the newest edit backward, so a
// persist ID already present in the map must not be
// overwritten by a later-visited (chronologically older)
// delta: the most recent mapping is authoritative and the
// merge is first-write-wins. A visited set guards against
// cyclic chains in corrupt files.
func BuildPersistDirectory(stream []byte, startOffset uint32) *Directory {
	dir := &Directory{Offsets: make(map[uint32]uint32)}
	visited := make(map[uint32]bool)
	current := startOffset
	for current != 0 {
		if visited[current] {
			dir.warnf(int(current), WarnEditCycle, "edit chain revisits offset %d", current)
			break
		}
		visited[current] = true
		if int64(current) >= int64(len(stream)) {
			dir.warnf(int(current), WarnBadEditOffset,
				"edit offset %d beyond stream end %d", current, len(stream))
			break
		}
		rec, err := officeart.ReadRecord(stream, int(current))
		if err != nil {
			dir.warnf(int(current), WarnBadEditOffset, "%v", err)
			break
		}
		if rec.Type != officeart.TypeUserEditAtom {
			dir.warnf(int(current), WarnBadEditType,
				"expected UserEditAtom, found %s", rec.TypeName())
			break
		}
		ue, err := parseUserEdit(rec)
		if err != nil {
			dir.warnf(int(current), WarnBadEdit, "%v", err)
			break
		}
		if len(dir.Edits) == 0 {
			// the newest edit names the live document root
			dir.DocPersistID = ue.DocPersistIDRef
		}
		dir.Edits = append(dir.Edits, *ue)
		dir.mergeDirectory(stream, ue.OffsetPersistDirectory)
		current = ue.OffsetLastEdit
	}
	return dir
}

// mergeDirectory decodes the PersistDirectoryAtom at off
// and merges its entries, skipping persist IDs that already
// have a (newer) mapping.
func (d *Directory) mergeDirectory(stream []byte, off uint32) {
	if int64(off) >= int64(len(stream)) {
		d.warnf(int(off), WarnBadDirOffset,
			"directory offset %d beyond stream end %d", off, len(stream))
		return
	}
	rec, err := officeart.ReadRecord(stream, int(off))
	if err != nil {
		d.warnf(int(off), WarnBadDirOffset, "%v", err)
		return
	}
	if rec.Type != officeart.TypePersistDirectoryAtom {
		d.warnf(int(off), WarnBadDirType,
			"expected PersistDirectoryAtom, found %s", rec.TypeName())
		return
	}
	c := newCursor(rec.Data)
	for c.remaining() >= 4 {
		// each group: one packed header word (20-bit start
		// persist ID, 12-bit count), then count offsets
		head := c.uint32()
		start := head & 0xFFFFF
		count := head >> 20
		for i := uint32(0); i < count; i++ {
			entryOff := c.uint32()
			if c.err != nil {
				d.warnf(int(off), WarnTruncatedDir,
					"directory group at id %d truncated after %d of %d entries", start, i, count)
				return
			}
			id := start + i
			if _, ok := d.Offsets[id]; !ok {
				d.Offsets[id] = entryOff
			}
		}
	}
}
