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

package officeart

import "fmt"

// Record type codes used by the PowerPoint document stream
// and the OfficeArt drawing layer. The registry is not
// exhaustive; TypeName falls back to the hex code for
// anything unlisted.
const (
	TypeDocument             uint16 = 0x03E8
	TypeDocumentAtom         uint16 = 0x03E9
	TypeEndDocumentAtom      uint16 = 0x03EA
	TypeSlide                uint16 = 0x03EE
	TypeSlideAtom            uint16 = 0x03EF
	TypeNotes                uint16 = 0x03F0
	TypeEnvironment          uint16 = 0x03F2
	TypeSlidePersistAtom     uint16 = 0x03F3
	TypeMainMaster           uint16 = 0x03F8
	TypeSlideShowInfo        uint16 = 0x03F9
	TypeExternalObjectList   uint16 = 0x0409
	TypeDrawingGroup         uint16 = 0x040B
	TypeDrawing              uint16 = 0x040C
	TypeList                 uint16 = 0x07D0
	TypeSoundCollection      uint16 = 0x07E4
	TypeTextCharsAtom        uint16 = 0x0FA0
	TypeStyleTextPropAtom    uint16 = 0x0FA1
	TypeTextBytesAtom        uint16 = 0x0FA8
	TypeSlideListWithText    uint16 = 0x0FF0
	TypeUserEditAtom         uint16 = 0x0FF5
	TypeCurrentUserAtom      uint16 = 0x0FF6
	TypePersistDirectoryAtom uint16 = 0x1772

	TypeDggContainer    uint16 = 0xF000
	TypeBStoreContainer uint16 = 0xF001
	TypeDgContainer     uint16 = 0xF002
	TypeSpgrContainer   uint16 = 0xF003
	TypeSpContainer     uint16 = 0xF004
	TypeFDGG            uint16 = 0xF006
	TypeFBSE            uint16 = 0xF007
	TypeFDG             uint16 = 0xF008
	TypeFSPGR           uint16 = 0xF009
	TypeFSP             uint16 = 0xF00A
	TypeFOPT            uint16 = 0xF00B
	TypeChildAnchor     uint16 = 0xF00F
	TypeClientAnchor    uint16 = 0xF010
	TypeClientData      uint16 = 0xF011
	TypeClientTextbox   uint16 = 0xF00D
)

var typeNames = map[uint16]string{
	TypeDocument:             "DocumentContainer",
	TypeDocumentAtom:         "DocumentAtom",
	TypeEndDocumentAtom:      "EndDocumentAtom",
	TypeSlide:                "SlideContainer",
	TypeSlideAtom:            "SlideAtom",
	TypeNotes:                "NotesContainer",
	TypeEnvironment:          "DocumentTextInfoContainer",
	TypeSlidePersistAtom:     "SlidePersistAtom",
	TypeMainMaster:           "MainMasterContainer",
	TypeSlideShowInfo:        "SlideShowInfoAtom",
	TypeExternalObjectList:   "ExObjListContainer",
	TypeDrawingGroup:         "DrawingGroupContainer",
	TypeDrawing:              "DrawingContainer",
	TypeList:                 "ListContainer",
	TypeSoundCollection:      "SoundCollectionContainer",
	TypeTextCharsAtom:        "TextCharsAtom",
	TypeStyleTextPropAtom:    "StyleTextPropAtom",
	TypeTextBytesAtom:        "TextBytesAtom",
	TypeSlideListWithText:    "SlideListWithTextContainer",
	TypeUserEditAtom:         "UserEditAtom",
	TypeCurrentUserAtom:      "CurrentUserAtom",
	TypePersistDirectoryAtom: "PersistDirectoryAtom",
	TypeDggContainer:         "OfficeArtDggContainer",
	TypeBStoreContainer:      "OfficeArtBStoreContainer",
	TypeDgContainer:          "OfficeArtDgContainer",
	TypeSpgrContainer:        "OfficeArtSpgrContainer",
	TypeSpContainer:          "OfficeArtSpContainer",
	TypeFDGG:                 "OfficeArtFDGGBlock",
	TypeFBSE:                 "OfficeArtFBSE",
	TypeFDG:                  "OfficeArtFDG",
	TypeFSPGR:                "OfficeArtFSPGR",
	TypeFSP:                  "OfficeArtFSP",
	TypeFOPT:                 "OfficeArtFOPT",
	TypeChildAnchor:          "OfficeArtChildAnchor",
	TypeClientAnchor:         "OfficeArtClientAnchor",
	TypeClientData:           "OfficeArtClientData",
	TypeClientTextbox:        "OfficeArtClientTextbox",
}

// TypeName returns the registry name for a record type
// code, or the hex code when the type is not registered.
func TypeName(t uint16) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", t)
}
