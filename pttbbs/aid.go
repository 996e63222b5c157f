package pttbbs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidAid = errors.New("invalid aid")
)

const (
	aidTable = `0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_`
)

// Aid is the compact article id shown to users, e.g. #1HNXB7zo. It packs
// the article type, post time and random suffix of the file name.
type Aid uint64

func ParseAid(s string) (Aid, error) {
	s = strings.TrimPrefix(s, "#")
	// Not to overflow
	if len(s) > 10 {
		return Aid(0), ErrInvalidAid
	}

	var aid Aid
parseLoop:
	for _, c := range s {
		i := strings.IndexRune(aidTable, c)
		switch {
		case i >= 0:
			aid = aid<<6 | Aid(i)
		case c == '@':
			break parseLoop
		default:
			return Aid(0), ErrInvalidAid
		}
	}
	return aid, nil
}

// AidFromFilename is the inverse of Filename.
func AidFromFilename(filename string) (Aid, error) {
	parts := strings.Split(filename, ".")
	if len(parts) != 4 || parts[2] != "A" {
		return 0, ErrInvalidAid
	}
	var tp Aid
	switch parts[0] {
	case "M":
	case "G":
		tp = 1
	default:
		return 0, ErrInvalidAid
	}
	v1, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, ErrInvalidAid
	}
	v2, err := strconv.ParseUint(parts[3], 16, 12)
	if err != nil {
		return 0, ErrInvalidAid
	}
	return tp<<44 | Aid(v1)<<12 | Aid(v2), nil
}

func (aid Aid) String() string {
	var s [10]byte
	i := len(s)
	for aid > 0 && i > 0 {
		i--
		s[i] = aidTable[aid%64]
		aid /= 64
	}
	return string(s[i:])
}

func (aid Aid) Filename() string {
	tp := uint64((aid >> 44) & 0xF)
	v1 := uint64((aid >> 12) & 0xFFFFFFFF)
	v2 := uint64(aid & 0xFFF)

	tpc := 'M'
	if tp != 0 {
		tpc = 'G'
	}
	return fmt.Sprintf("%c.%v.A.%03X", tpc, v1, v2)
}
