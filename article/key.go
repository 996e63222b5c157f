package article

import (
	"fmt"
	"strconv"
	"strings"
)

// ContentKey addresses a byte range of one specific file instance.
//
// Its text form is <tag>.<offset>.<length>.<filename>. Tag is the file's
// "<dev>-<ino>" identity as handed out earlier, or empty to skip the check.
type ContentKey struct {
	Tag      string
	Offset   int
	Length   int
	Filename string
}

func ParseContentKey(s string) (ContentKey, error) {
	var k ContentKey
	var rest, field string
	var ok bool

	if k.Tag, rest, ok = strings.Cut(s, "."); !ok {
		return ContentKey{}, ErrParse
	}
	if field, rest, ok = strings.Cut(rest, "."); !ok {
		return ContentKey{}, ErrParse
	}
	off, err := strconv.Atoi(field)
	if err != nil {
		return ContentKey{}, fmt.Errorf("%w: offset %q", ErrParse, field)
	}
	if field, rest, ok = strings.Cut(rest, "."); !ok {
		return ContentKey{}, ErrParse
	}
	length, err := strconv.Atoi(field)
	if err != nil {
		return ContentKey{}, fmt.Errorf("%w: length %q", ErrParse, field)
	}
	k.Offset, k.Length, k.Filename = off, length, rest
	return k, nil
}

func (k ContentKey) String() string {
	return fmt.Sprintf("%s.%d.%d.%s", k.Tag, k.Offset, k.Length, k.Filename)
}
