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
	"errors"
	"fmt"

	"github.com/figware/officebin/officeart"
)

var (
	// ErrNoDocument is returned when the persist directory
	// has no entry for the document root's persist ID.
	ErrNoDocument = errors.New("pptstream: document persist ID not in directory")

	// ErrNotDocument is returned when the resolved offset
	// does not hold a DocumentContainer record.
	ErrNotDocument = errors.New("pptstream: record at document offset is not a DocumentContainer")
)

// FindDocument resolves and parses the current document
// tree of a PowerPoint stream: it walks the edit chain from
// the CurrentUser entry point, looks up the document root's
// persist ID in the merged directory, and parses the record
// tree at the resolved offset.
//
// The returned Directory is always non-nil and carries any
// walk diagnostics, including when an error is returned.
func FindDocument(stream []byte, cu *CurrentUser) (officeart.Record, *Directory, error) {
	dir := BuildPersistDirectory(stream, cu.OffsetToCurrentEdit)
	off, ok := dir.Offsets[dir.DocPersistID]
	if !ok {
		return officeart.Record{}, dir, fmt.Errorf("%w: id %d", ErrNoDocument, dir.DocPersistID)
	}
	rec, err := officeart.ParseRecordTree(stream, int(off))
	if err != nil {
		return officeart.Record{}, dir, fmt.Errorf("pptstream: parsing document at offset %d: %w", off, err)
	}
	if rec.Type != officeart.TypeDocument {
		return rec, dir, fmt.Errorf("%w: found %s at offset %d", ErrNotDocument, rec.TypeName(), off)
	}
	return rec, dir, nil
}

// ResolvePersist parses the record tree for an arbitrary
// persist ID, e.g. a slide root referenced from a
// SlidePersistAtom.
func ResolvePersist(stream []byte, dir *Directory, id uint32) (officeart.Record, error) {
	off, ok := dir.Offsets[id]
	if !ok {
		return officeart.Record{}, fmt.Errorf("pptstream: persist ID %d not in directory", id)
	}
	rec, err := officeart.ParseRecordTree(stream, int(off))
	if err != nil {
		return officeart.Record{}, fmt.Errorf("pptstream: parsing persist %d at offset %d: %w", id, off, err)
	}
	return rec, nil
}
