package pttbbs

import (
	"encoding/binary"
	"errors"
	"strconv"

	"github.com/ptt/boardd/dbcs"
)

var (
	ErrShortRecord = errors.New("record too short")
)

// On-disk record sizes.
const (
	BoardHeaderSize = 256
	FileHeaderSize  = 128
)

// Board title layout: 4 bytes of class, then a 3-byte marker, then the title.
const (
	ClassLen         = 4
	TitlePrefixLen   = 7
	maxBrdNameLen    = 12
	maxBoardTitleLen = 48
	maxBMLen         = 38
)

// Field offsets of a boardheader record.
const (
	bhBrdName = 0
	bhTitle   = 13
	bhBM      = 62
	bhAttr    = 104
	bhLevel   = 124
	bhGid     = 132
	bhParent  = 152
	bhNuser   = 160
)

// BoardHeader is one record of the .BRD file.
type BoardHeader struct {
	BrdName string
	// Title is raw: class, marker and display title, Big5 encoded.
	Title  string
	BM     string
	Attr   uint32
	Level  uint32
	Gid    int
	Parent int
	Nuser  int
}

func (h *BoardHeader) UnmarshalBinary(b []byte) error {
	if len(b) < BoardHeaderSize {
		return ErrShortRecord
	}
	le := binary.LittleEndian
	h.BrdName = string(dbcs.CString(b[bhBrdName : bhBrdName+maxBrdNameLen+1]))
	h.Title = string(dbcs.CString(b[bhTitle : bhTitle+maxBoardTitleLen+1]))
	h.BM = string(dbcs.CString(b[bhBM : bhBM+maxBMLen+1]))
	h.Attr = le.Uint32(b[bhAttr:])
	h.Level = le.Uint32(b[bhLevel:])
	h.Gid = int(int32(le.Uint32(b[bhGid:])))
	h.Parent = int(int32(le.Uint32(b[bhParent:])))
	h.Nuser = int(int32(le.Uint32(b[bhNuser:])))
	return nil
}

func (h *BoardHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, BoardHeaderSize)
	le := binary.LittleEndian
	putCString(b[bhBrdName:bhBrdName+maxBrdNameLen+1], h.BrdName)
	putCString(b[bhTitle:bhTitle+maxBoardTitleLen+1], h.Title)
	putCString(b[bhBM:bhBM+maxBMLen+1], h.BM)
	le.PutUint32(b[bhAttr:], h.Attr)
	le.PutUint32(b[bhLevel:], h.Level)
	le.PutUint32(b[bhGid:], uint32(int32(h.Gid)))
	le.PutUint32(b[bhParent:], uint32(int32(h.Parent)))
	le.PutUint32(b[bhNuser:], uint32(int32(h.Nuser)))
	return b, nil
}

func (h *BoardHeader) IsGroup() bool {
	return h.Attr&BoardGroup != 0
}

func (h *BoardHeader) IsOver18() bool {
	return h.Attr&BoardOver18 != 0
}

// IsHidden reports whether the board must not be shown to the public: it is
// hidden or pinned administratively, or its read level asks for more than
// the baseline without the post-mask exception.
func (h *BoardHeader) IsHidden() bool {
	if h.Attr&(BoardHide|BoardTop) != 0 {
		return true
	}
	return h.Level&^PermBaseline != 0 && h.Attr&BoardPostMask == 0
}

// Class returns the class code at the front of the raw title.
func (h *BoardHeader) Class() string {
	if len(h.Title) < ClassLen {
		return h.Title
	}
	return h.Title[:ClassLen]
}

// DisplayTitle returns the raw title without its class prefix.
func (h *BoardHeader) DisplayTitle() string {
	if len(h.Title) < TitlePrefixLen {
		return ""
	}
	return h.Title[TitlePrefixLen:]
}

// Field offsets of a fileheader record.
const (
	fhFilename  = 0
	fhRecommend = 28
	fhOwner     = 29
	fhDate      = 43
	fhTitle     = 49
	fhMulti     = 115
	fhFileMode  = 127

	fnLen    = 28
	ownerLen = 14
	dateLen  = 6
	titleLen = 65
)

// FileHeader is one record of a .DIR index.
type FileHeader struct {
	Filename  string
	Recommend int
	Owner     string
	Date      string
	Title     string
	Multi     int
	FileMode  int
}

func (f *FileHeader) UnmarshalBinary(b []byte) error {
	if len(b) < FileHeaderSize {
		return ErrShortRecord
	}
	f.Filename = string(dbcs.CString(b[fhFilename : fhFilename+fnLen]))
	f.Recommend = int(int8(b[fhRecommend]))
	f.Owner = string(dbcs.CString(b[fhOwner : fhOwner+ownerLen]))
	f.Date = string(dbcs.CString(b[fhDate : fhDate+dateLen]))
	f.Title = string(dbcs.CString(b[fhTitle : fhTitle+titleLen]))
	f.Multi = int(int32(binary.LittleEndian.Uint32(b[fhMulti:])))
	f.FileMode = int(b[fhFileMode])
	return nil
}

func (f *FileHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, FileHeaderSize)
	putCString(b[fhFilename:fhFilename+fnLen], f.Filename)
	b[fhRecommend] = byte(int8(f.Recommend))
	putCString(b[fhOwner:fhOwner+ownerLen], f.Owner)
	putCString(b[fhDate:fhDate+dateLen], f.Date)
	putCString(b[fhTitle:fhTitle+titleLen], f.Title)
	binary.LittleEndian.PutUint32(b[fhMulti:], uint32(int32(f.Multi)))
	b[fhFileMode] = byte(f.FileMode)
	return b, nil
}

// AppendListLine appends the boardd listing line of f. index is the 1-based
// record number.
func (f *FileHeader) AppendListLine(dst []byte, index int) []byte {
	dst = strconv.AppendInt(dst, int64(index), 10)
	dst = append(dst, ',')
	dst = append(dst, f.Filename...)
	dst = append(dst, ',')
	dst = append(dst, f.Date...)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(f.Recommend), 10)
	dst = append(dst, ',')
	dst = strconv.AppendInt(dst, int64(f.FileMode), 10)
	dst = append(dst, ',')
	dst = append(dst, f.Owner...)
	dst = append(dst, ',')
	dst = append(dst, dbcs.TrimRight([]byte(f.Title))...)
	return append(dst, '\n')
}

// putCString copies s into a NUL-terminated fixed field, truncating it.
func putCString(field []byte, s string) {
	n := copy(field[:len(field)-1], s)
	for i := n; i < len(field); i++ {
		field[i] = 0
	}
}
