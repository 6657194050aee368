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

// UserEdit is one decoded UserEditAtom: a link in the
// backward edit chain.
type UserEdit struct {
	LastSlideIDRef         uint32
	Version                uint16
	MinorVersion           uint8
	MajorVersion           uint8
	OffsetLastEdit         uint32 // previous edit in the chain; 0 terminates
	OffsetPersistDirectory uint32 // this edit's PersistDirectoryAtom
	DocPersistIDRef        uint32 // persist ID of the document root as of this edit
	PersistIDSeed          uint32
	LastView               uint16
}

// parseUserEdit decodes a UserEditAtom record payload.
func parseUserEdit(rec officeart.Record) (*UserEdit, error) {
	if rec.Type != officeart.TypeUserEditAtom {
		return nil, fmt.Errorf("expected UserEditAtom, found %s", rec.TypeName())
	}
	c := newCursor(rec.Data)
	ue := &UserEdit{
		LastSlideIDRef:         c.uint32(),
		Version:                c.uint16(),
		MinorVersion:           c.byte(),
		MajorVersion:           c.byte(),
		OffsetLastEdit:         c.uint32(),
		OffsetPersistDirectory: c.uint32(),
		DocPersistIDRef:        c.uint32(),
		PersistIDSeed:          c.uint32(),
		LastView:               c.uint16(),
	}
	if c.err != nil {
		return nil, fmt.Errorf("UserEditAtom: %w", c.err)
	}
	return ue, nil
}
