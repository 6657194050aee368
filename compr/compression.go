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

// Package compr provides a unified interface wrapping
// third-party compression libraries, covering the two
// codecs fig chunks use: raw deflate and Zstandard.
package compr

import (
	"bytes"
	"fmt"
	"io"
	"runtime"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// Compressor describes a compression algorithm.
type Compressor interface {
	// Name is the name of the compression algorithm.
	Name() string
	// Compress should append the compressed contents
	// of src to dst and return the result.
	Compress(src, dst []byte) ([]byte, error)
}

// Decompressor is the interface used to decompress chunks
// whose decoded size is not known in advance (fig chunks
// carry no size hint, so decompression must allocate).
type Decompressor interface {
	// Name is the name of the compression algorithm.
	// See also Compressor.Name.
	Name() string
	// Decompress decompresses src into a fresh buffer.
	//
	// It must be safe to make multiple calls to
	// Decompress simultaneously from different
	// goroutines.
	Decompress(src []byte) ([]byte, error)
}

type zstdCompressor struct {
	enc *zstd.Encoder
}

func (z zstdCompressor) Compress(src, dst []byte) ([]byte, error) {
	return z.enc.EncodeAll(src, dst), nil
}

func (z zstdCompressor) Name() string { return "zstd" }

var zstdDecoder *zstd.Decoder

func init() {
	// by default, concurrency is set to min(4, GOMAXPROCS);
	// we'd like it to *always* be GOMAXPROCS
	z, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdDecoder = z
}

type zstdDecompressor struct{}

func (zstdDecompressor) Name() string { return "zstd" }

func (zstdDecompressor) Decompress(src []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(src, nil)
}

type flateCompressor struct{}

func (flateCompressor) Name() string { return "deflate" }

func (flateCompressor) Compress(src, dst []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return append(dst, buf.Bytes()...), nil
}

func (flateCompressor) Decompress(src []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return out, nil
}

// zstdMagic begins every Zstandard frame. Raw deflate has
// no self-describing header, so anything else is assumed to
// be deflate.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Detect sniffs the compression algorithm of src by its
// leading magic bytes and returns "zstd" or "deflate".
func Detect(src []byte) string {
	if bytes.HasPrefix(src, zstdMagic) {
		return "zstd"
	}
	return "deflate"
}

// Decode decompresses src, auto-detecting the algorithm.
func Decode(src []byte) ([]byte, error) {
	return Decompression(Detect(src)).Decompress(src)
}

// Compression selects a compression algorithm by name.
// The returned Compressor will return the same value
// for Compressor.Name as the specified name.
func Compression(name string) Compressor {
	switch name {
	case "zstd-better":
		z, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderConcurrency(1))
		return zstdCompressor{z}
	case "zstd":
		z, _ := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		return zstdCompressor{z}
	case "deflate":
		return flateCompressor{}
	default:
		return nil
	}
}

// Decompression selects a decompression algorithm by name.
func Decompression(name string) Decompressor {
	switch name {
	case "zstd", "zstd-better":
		return zstdDecompressor{}
	case "deflate":
		return flateCompressor{}
	default:
		return nil
	}
}
