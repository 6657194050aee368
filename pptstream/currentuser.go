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

// Package pptstream locates the authoritative document tree
// inside a PowerPoint binary stream.
//
// The stream is append-only: every save appends a
// UserEditAtom pointing backward at the previous one, plus
// a PersistDirectoryAtom mapping persist IDs to the stream
// offsets that are current as of that edit. Walking the
// chain from the offset named by the CurrentUser stream and
// merging the directories yields the offsets of the live
// records; the officeart reader then materializes the tree
// from there.
package pptstream

import (
	"errors"
	"fmt"

	"github.com/figware/officebin/officeart"
)

// CurrentUser stream header tokens. The encrypted token
// marks a password-protected document.
const (
	currentUserToken   = 0xE391C05F
	encryptedUserToken = 0xF3D1C4DF
)

var (
	// ErrNotCurrentUser is returned when the CurrentUser
	// stream does not start with a CurrentUserAtom record.
	ErrNotCurrentUser = errors.New("pptstream: not a CurrentUserAtom")

	// ErrBadHeaderToken is returned when the CurrentUserAtom
	// carries neither of the two known header tokens.
	ErrBadHeaderToken = errors.New("pptstream: bad CurrentUserAtom header token")
)

// CurrentUser is the decoded CurrentUser stream: the entry
// point of a document parse. OffsetToCurrentEdit is the
// stream offset of the most recent UserEditAtom.
type CurrentUser struct {
	OffsetToCurrentEdit uint32
	Encrypted           bool
	DocFileVersion      uint16
	MajorVersion        uint8
	MinorVersion        uint8
	UserName            string
	ReleaseVersion      uint32
}

// ParseCurrentUser decodes the CurrentUser stream.
func ParseCurrentUser(stream []byte) (*CurrentUser, error) {
	rec, err := officeart.ReadRecord(stream, 0)
	if err != nil {
		return nil, fmt.Errorf("pptstream: reading CurrentUserAtom header: %w", err)
	}
	if rec.Type != officeart.TypeCurrentUserAtom {
		return nil, fmt.Errorf("%w: found %s", ErrNotCurrentUser, rec.TypeName())
	}
	c := newCursor(rec.Data)
	var (
		size     = c.uint32()
		token    = c.uint32()
		offset   = c.uint32()
		nameLen  = c.uint16()
		fileVer  = c.uint16()
		majorVer = c.byte()
		minorVer = c.byte()
		_        = c.uint16() // unused
	)
	_ = size
	name := c.bytes(int(nameLen))
	relVer := c.uint32()
	if c.err != nil {
		return nil, fmt.Errorf("pptstream: CurrentUserAtom: %w", c.err)
	}
	switch token {
	case currentUserToken, encryptedUserToken:
	default:
		return nil, fmt.Errorf("%w: 0x%08X", ErrBadHeaderToken, token)
	}
	return &CurrentUser{
		OffsetToCurrentEdit: offset,
		Encrypted:           token == encryptedUserToken,
		DocFileVersion:      fileVer,
		MajorVersion:        majorVer,
		MinorVersion:        minorVer,
		UserName:            string(name),
		ReleaseVersion:      relVer,
	}, nil
}
