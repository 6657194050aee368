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
	"errors"
	"testing"

	"github.com/figware/officebin/officeart"
)

func appendRecord(dst []byte, verInst, typ uint16, payload []byte) []byte {
	var hdr [officeart.HeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[0:], verInst)
	binary.LittleEndian.PutUint16(hdr[2:], typ)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(payload)))
	dst = append(dst, hdr[:]...)
	return append(dst, payload...)
}

func userEditPayload(lastEdit, dirOff, docID uint32) []byte {
	var p [26]byte
	binary.LittleEndian.PutUint32(p[0:], 256) // lastSlideIDRef
	binary.LittleEndian.PutUint16(p[4:], 6)   // version
	p[6], p[7] = 0, 3                         // minor, major
	binary.LittleEndian.PutUint32(p[8:], lastEdit)
	binary.LittleEndian.PutUint32(p[12:], dirOff)
	binary.LittleEndian.PutUint32(p[16:], docID)
	binary.LittleEndian.PutUint32(p[20:], docID+1) // persistIDSeed
	binary.LittleEndian.PutUint16(p[24:], 1)       // lastView
	return p[:]
}

// persistDirPayload packs a single directory group: a header
// word with the starting persist ID in the low 20 bits and
// the entry count in the high 12, then one offset per entry.
func persistDirPayload(start uint32, offsets ...uint32) []byte {
	p := make([]byte, 4+4*len(offsets))
	binary.LittleEndian.PutUint32(p, start|uint32(len(offsets))<<20)
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(p[4+4*i:], off)
	}
	return p
}

func currentUserPayload(offsetToCurrentEdit uint32, token uint32, name string) []byte {
	p := make([]byte, 20+len(name)+4)
	binary.LittleEndian.PutUint32(p[0:], 20)
	binary.LittleEndian.PutUint32(p[4:], token)
	binary.LittleEndian.PutUint32(p[8:], offsetToCurrentEdit)
	binary.LittleEndian.PutUint16(p[12:], uint16(len(name)))
	binary.LittleEndian.PutUint16(p[14:], 0x03F4) // docFileVersion
	p[16], p[17] = 3, 0                           // major, minor
	copy(p[20:], name)
	binary.LittleEndian.PutUint32(p[20+len(name):], 9) // releaseVersion
	return p
}

// testStream assembles an append-only stream with two saves.
// The first save maps persist ID 1 to a bogus offset; the
// second remaps it to the live DocumentContainer at offset 0
// and adds persist ID 2. Walking from the newest edit must
// prefer the second save's mappings.
type testStream struct {
	buf      []byte
	docOff   uint32
	atomOff  uint32
	edit1Off uint32
	edit2Off uint32
	staleOff uint32
}

func buildTestStream() *testStream {
	ts := &testStream{}
	// document container at offset 0 with one child atom
	inner := appendRecord(nil, 0x0001, 0x03E9, []byte{1, 2, 3, 4})
	ts.docOff = uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x000F, officeart.TypeDocument, inner)

	// a standalone atom reachable through persist ID 2
	ts.atomOff = uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x0001, 0x03F3, []byte{7, 7})

	// stale mapping: persist ID 1 points into the weeds
	ts.staleOff = 9999
	dir1Off := uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x0000, officeart.TypePersistDirectoryAtom,
		persistDirPayload(1, ts.staleOff))
	ts.edit1Off = uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x0000, officeart.TypeUserEditAtom,
		userEditPayload(0, dir1Off, 1))

	// second save: ID 1 -> live document, ID 2 -> atom
	dir2Off := uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x0000, officeart.TypePersistDirectoryAtom,
		persistDirPayload(1, ts.docOff, ts.atomOff))
	ts.edit2Off = uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x0000, officeart.TypeUserEditAtom,
		userEditPayload(ts.edit1Off, dir2Off, 1))
	return ts
}

func TestParseCurrentUser(t *testing.T) {
	stream := appendRecord(nil, 0x0000, officeart.TypeCurrentUserAtom,
		currentUserPayload(1234, currentUserToken, "alice"))
	cu, err := ParseCurrentUser(stream)
	if err != nil {
		t.Fatal(err)
	}
	if cu.OffsetToCurrentEdit != 1234 {
		t.Errorf("offset: got %d", cu.OffsetToCurrentEdit)
	}
	if cu.Encrypted {
		t.Error("plain document reported encrypted")
	}
	if cu.UserName != "alice" {
		t.Errorf("user name: got %q", cu.UserName)
	}
	if cu.MajorVersion != 3 || cu.MinorVersion != 0 || cu.DocFileVersion != 0x03F4 {
		t.Errorf("versions: %+v", cu)
	}
	if cu.ReleaseVersion != 9 {
		t.Errorf("release version: got %d", cu.ReleaseVersion)
	}
}

func TestParseCurrentUserEncrypted(t *testing.T) {
	stream := appendRecord(nil, 0x0000, officeart.TypeCurrentUserAtom,
		currentUserPayload(64, encryptedUserToken, "bob"))
	cu, err := ParseCurrentUser(stream)
	if err != nil {
		t.Fatal(err)
	}
	if !cu.Encrypted {
		t.Error("encrypted token not detected")
	}
}

func TestParseCurrentUserErrors(t *testing.T) {
	// wrong record type
	stream := appendRecord(nil, 0x0000, officeart.TypeUserEditAtom, make([]byte, 26))
	if _, err := ParseCurrentUser(stream); !errors.Is(err, ErrNotCurrentUser) {
		t.Errorf("got %v, want ErrNotCurrentUser", err)
	}
	// unknown header token
	stream = appendRecord(nil, 0x0000, officeart.TypeCurrentUserAtom,
		currentUserPayload(64, 0xDEADBEEF, "x"))
	if _, err := ParseCurrentUser(stream); !errors.Is(err, ErrBadHeaderToken) {
		t.Errorf("got %v, want ErrBadHeaderToken", err)
	}
	// truncated payload
	stream = appendRecord(nil, 0x0000, officeart.TypeCurrentUserAtom, []byte{1, 2, 3})
	if _, err := ParseCurrentUser(stream); err == nil {
		t.Error("truncated CurrentUserAtom accepted")
	}
}

func TestBuildPersistDirectory(t *testing.T) {
	ts := buildTestStream()
	dir := BuildPersistDirectory(ts.buf, ts.edit2Off)
	if len(dir.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", dir.Warnings)
	}
	if len(dir.Edits) != 2 {
		t.Fatalf("got %d edits", len(dir.Edits))
	}
	// newest first
	if dir.Edits[0].OffsetLastEdit != ts.edit1Off || dir.Edits[1].OffsetLastEdit != 0 {
		t.Errorf("edit order: %+v", dir.Edits)
	}
	if dir.DocPersistID != 1 {
		t.Errorf("doc persist ID: got %d", dir.DocPersistID)
	}
	// the newest edit's mapping wins over the stale one
	off1, ok := dir.Offsets[1]
	if !ok || off1 != ts.docOff {
		t.Errorf("persist 1: got offset %d (%v), want %d", off1, ok, ts.docOff)
	}
	off2, ok := dir.Offsets[2]
	if !ok || off2 != ts.atomOff {
		t.Errorf("persist 2: got offset %d (%v), want %d", off2, ok, ts.atomOff)
	}
}

func TestBuildPersistDirectoryOldestOnly(t *testing.T) {
	// walking from the first save sees only the stale mapping
	ts := buildTestStream()
	dir := BuildPersistDirectory(ts.buf, ts.edit1Off)
	if len(dir.Edits) != 1 {
		t.Fatalf("got %d edits", len(dir.Edits))
	}
	if got := dir.Offsets[1]; got != ts.staleOff {
		t.Errorf("persist 1: got offset %d, want %d", got, ts.staleOff)
	}
	if _, ok := dir.Offsets[2]; ok {
		t.Error("persist 2 visible from the first save")
	}
}

func TestEditChainCycle(t *testing.T) {
	// an edit that names itself as its predecessor
	var buf []byte
	buf = append(buf, 0xEE) // push the edit off offset 0
	editOff := uint32(len(buf))
	buf = appendRecord(buf, 0x0000, officeart.TypeUserEditAtom,
		userEditPayload(editOff, 0xFFFF, 1))
	dir := BuildPersistDirectory(buf, editOff)
	if len(dir.Edits) != 1 {
		t.Fatalf("got %d edits", len(dir.Edits))
	}
	found := false
	for _, w := range dir.Warnings {
		if w.Code == WarnEditCycle {
			found = true
		}
	}
	if !found {
		t.Errorf("no cycle warning in %v", dir.Warnings)
	}
}

func TestWalkWarnings(t *testing.T) {
	ts := buildTestStream()

	// start offset beyond the stream
	dir := BuildPersistDirectory(ts.buf, uint32(len(ts.buf))+100)
	if len(dir.Warnings) != 1 || dir.Warnings[0].Code != WarnBadEditOffset {
		t.Errorf("beyond-end: %v", dir.Warnings)
	}

	// start offset lands on a non-edit record
	dir = BuildPersistDirectory(ts.buf, ts.atomOff)
	if len(dir.Warnings) != 1 || dir.Warnings[0].Code != WarnBadEditType {
		t.Errorf("non-edit: %v", dir.Warnings)
	}

	// edit whose directory offset lands on a non-directory record
	var buf []byte
	buf = append(buf, 0xEE)
	atomOff := uint32(len(buf))
	buf = appendRecord(buf, 0x0000, 0x03E9, []byte{1})
	editOff := uint32(len(buf))
	buf = appendRecord(buf, 0x0000, officeart.TypeUserEditAtom,
		userEditPayload(0, atomOff, 1))
	dir = BuildPersistDirectory(buf, editOff)
	if len(dir.Edits) != 1 {
		t.Fatalf("edit not kept: %v", dir.Warnings)
	}
	if len(dir.Warnings) != 1 || dir.Warnings[0].Code != WarnBadDirType {
		t.Errorf("non-directory: %v", dir.Warnings)
	}
}

func TestTruncatedDirectoryGroup(t *testing.T) {
	// header word promises 3 entries, payload holds 1
	var buf []byte
	buf = append(buf, 0xEE)
	payload := persistDirPayload(5, 100, 200, 300)
	payload = payload[:8]
	dirOff := uint32(len(buf))
	buf = appendRecord(buf, 0x0000, officeart.TypePersistDirectoryAtom, payload)
	editOff := uint32(len(buf))
	buf = appendRecord(buf, 0x0000, officeart.TypeUserEditAtom,
		userEditPayload(0, dirOff, 5))
	dir := BuildPersistDirectory(buf, editOff)
	if len(dir.Warnings) != 1 || dir.Warnings[0].Code != WarnTruncatedDir {
		t.Fatalf("warnings: %v", dir.Warnings)
	}
	// the entry that was present is kept
	if got := dir.Offsets[5]; got != 100 {
		t.Errorf("persist 5: got %d", got)
	}
	if _, ok := dir.Offsets[6]; ok {
		t.Error("phantom entry resolved")
	}
}

func TestFindDocument(t *testing.T) {
	ts := buildTestStream()
	cuStream := appendRecord(nil, 0x0000, officeart.TypeCurrentUserAtom,
		currentUserPayload(ts.edit2Off, currentUserToken, "carol"))
	cu, err := ParseCurrentUser(cuStream)
	if err != nil {
		t.Fatal(err)
	}
	doc, dir, err := FindDocument(ts.buf, cu)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Type != officeart.TypeDocument || doc.Offset != int(ts.docOff) {
		t.Errorf("doc: type %#x at %d", doc.Type, doc.Offset)
	}
	if len(doc.Children) != 1 || doc.Children[0].Type != 0x03E9 {
		t.Errorf("doc children: %+v", doc.Children)
	}
	if dir == nil || len(dir.Warnings) != 0 {
		t.Errorf("directory: %+v", dir)
	}
}

func TestFindDocumentMissingID(t *testing.T) {
	ts := buildTestStream()
	// an edit chain whose doc persist ID was never mapped
	dirOff := uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x0000, officeart.TypePersistDirectoryAtom,
		persistDirPayload(40, 123))
	editOff := uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x0000, officeart.TypeUserEditAtom,
		userEditPayload(0, dirOff, 77))
	cu := &CurrentUser{OffsetToCurrentEdit: editOff}
	_, dir, err := FindDocument(ts.buf, cu)
	if !errors.Is(err, ErrNoDocument) {
		t.Errorf("got %v, want ErrNoDocument", err)
	}
	if dir == nil {
		t.Fatal("directory dropped on error")
	}
}

func TestFindDocumentWrongType(t *testing.T) {
	ts := buildTestStream()
	// map the document persist ID at the standalone atom
	dirOff := uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x0000, officeart.TypePersistDirectoryAtom,
		persistDirPayload(1, ts.atomOff))
	editOff := uint32(len(ts.buf))
	ts.buf = appendRecord(ts.buf, 0x0000, officeart.TypeUserEditAtom,
		userEditPayload(0, dirOff, 1))
	cu := &CurrentUser{OffsetToCurrentEdit: editOff}
	_, _, err := FindDocument(ts.buf, cu)
	if !errors.Is(err, ErrNotDocument) {
		t.Errorf("got %v, want ErrNotDocument", err)
	}
}

func TestResolvePersist(t *testing.T) {
	ts := buildTestStream()
	dir := BuildPersistDirectory(ts.buf, ts.edit2Off)
	rec, err := ResolvePersist(ts.buf, dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Type != 0x03F3 || len(rec.Data) != 2 {
		t.Errorf("resolved: %+v", rec)
	}
	if _, err := ResolvePersist(ts.buf, dir, 42); err == nil {
		t.Error("resolved a persist ID that was never written")
	}
}
