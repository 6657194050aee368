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

// Package figfile reads and writes the fig design-file
// container: a 16-byte header, a compressed Kiwi schema
// chunk, and a compressed Kiwi message chunk holding the
// document tree.
//
// Layout:
//
//	offset 0:  8-byte ASCII magic "fig-kiwi"
//	offset 8:  1-byte version character
//	offset 9:  3 reserved bytes (ignored)
//	offset 12: little-endian 32-bit schema chunk size
//	offset 16: schema chunk, then LE32-prefixed data chunk
//
// Each chunk is independently compressed with either raw
// deflate or Zstandard, auto-detected by magic bytes.
package figfile

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/figware/officebin/compr"
	"github.com/figware/officebin/kiwi"
)

// Magic is the 8-byte signature beginning every fig file.
const Magic = "fig-kiwi"

// HeaderSize is the fixed size of the container header.
const HeaderSize = 16

// DefaultRootType is the definition name of the document
// root message in fig schemas.
const DefaultRootType = "Message"

var (
	// ErrBadMagic is returned when the input does not
	// begin with the fig signature.
	ErrBadMagic = errors.New("figfile: bad magic")

	// ErrTruncated is returned when the input is shorter
	// than its header requires.
	ErrTruncated = errors.New("figfile: truncated file")
)

// Header is the decoded container header.
type Header struct {
	Version    byte   // version character, e.g. '1'
	SchemaSize uint32 // compressed schema chunk size
}

// File is a fully parsed fig file.
type File struct {
	Header Header

	// Schema is the decoded type table.
	Schema *kiwi.Schema

	// SchemaFingerprint identifies the decompressed schema
	// chunk; files produced by the same tool version share
	// a fingerprint.
	SchemaFingerprint uint64

	// Root is the decoded document root message.
	Root kiwi.Value
}

// Parse decodes a fig file using DefaultRootType as the
// root definition name.
func Parse(data []byte) (*File, error) {
	return ParseRoot(data, DefaultRootType)
}

// ParseRoot decodes a fig file whose root message is the
// definition named rootType.
func ParseRoot(data []byte, rootType string) (*File, error) {
	hdr, payload, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	schemaChunk, dataChunk, err := kiwi.SplitFigChunks(payload, int(hdr.SchemaSize))
	if err != nil {
		return nil, fmt.Errorf("figfile: %w", err)
	}
	schemaRaw, err := compr.Decode(schemaChunk)
	if err != nil {
		return nil, fmt.Errorf("figfile: decompressing schema chunk (%s): %w",
			compr.Detect(schemaChunk), err)
	}
	dataRaw, err := compr.Decode(dataChunk)
	if err != nil {
		return nil, fmt.Errorf("figfile: decompressing data chunk (%s): %w",
			compr.Detect(dataChunk), err)
	}
	schema, err := kiwi.DecodeFigSchema(schemaRaw)
	if err != nil {
		return nil, fmt.Errorf("figfile: %w", err)
	}
	root, err := kiwi.DecodeFigMessage(schema, dataRaw, rootType)
	if err != nil {
		return nil, fmt.Errorf("figfile: %w", err)
	}
	return &File{
		Header:            *hdr,
		Schema:            schema,
		SchemaFingerprint: kiwi.Fingerprint(schemaRaw),
		Root:              root,
	}, nil
}

func parseHeader(data []byte) (*Header, []byte, error) {
	if len(data) < HeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncated, len(data), HeaderSize)
	}
	if !bytes.Equal(data[:len(Magic)], []byte(Magic)) {
		return nil, nil, ErrBadMagic
	}
	hdr := &Header{
		Version:    data[8],
		SchemaSize: uint32(data[12]) | uint32(data[13])<<8 | uint32(data[14])<<16 | uint32(data[15])<<24,
	}
	return hdr, data[HeaderSize:], nil
}

// Build encodes a fig file from a schema and a root value.
// compression selects the chunk codec by name ("deflate" or
// "zstd"); fig tooling historically writes deflate.
func Build(schema *kiwi.Schema, root kiwi.Value, rootType, compression string) ([]byte, error) {
	comp := compr.Compression(compression)
	if comp == nil {
		return nil, fmt.Errorf("figfile: unknown compression %q", compression)
	}
	schemaRaw, err := kiwi.EncodeFigSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("figfile: %w", err)
	}
	dataRaw, err := kiwi.EncodeFigMessage(schema, root, rootType)
	if err != nil {
		return nil, fmt.Errorf("figfile: %w", err)
	}
	schemaChunk, err := comp.Compress(schemaRaw, nil)
	if err != nil {
		return nil, fmt.Errorf("figfile: compressing schema chunk: %w", err)
	}
	dataChunk, err := comp.Compress(dataRaw, nil)
	if err != nil {
		return nil, fmt.Errorf("figfile: compressing data chunk: %w", err)
	}
	out := make([]byte, 0, HeaderSize+len(schemaChunk)+4+len(dataChunk))
	out = append(out, Magic...)
	out = append(out, '1', 0, 0, 0)
	n := uint32(len(schemaChunk))
	out = append(out, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	out = append(out, kiwi.CombineFigChunks(schemaChunk, dataChunk)...)
	return out, nil
}
