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
	"fmt"
)

var (
	// ErrTruncated is returned (possibly wrapped) by any
	// read that would consume more bytes than remain in
	// the input buffer.
	ErrTruncated = errors.New("truncated input")

	// ErrVarintOverflow is returned when a variable-length
	// integer does not fit the width of its target type.
	ErrVarintOverflow = errors.New("varint overflows target width")

	// ErrUnknownType is returned when a field's type
	// reference does not resolve to a primitive type or to
	// a schema definition.
	ErrUnknownType = errors.New("unknown type reference")

	// ErrTooDeep is returned when nested values exceed the
	// decoder's recursion ceiling.
	ErrTooDeep = errors.New("nesting too deep")
)

// TruncError is the concrete error produced by a Cursor
// read past the end of its buffer. It unwraps to
// ErrTruncated so callers can match with errors.Is.
type TruncError struct {
	Off  int // cursor position when the read was attempted
	Need int // bytes the read required
	Have int // bytes that actually remained
}

func (e *TruncError) Error() string {
	return fmt.Sprintf("truncated input at offset %d: need %d bytes, have %d", e.Off, e.Need, e.Have)
}

func (e *TruncError) Unwrap() error { return ErrTruncated }
