package pttbbs

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidFileName = errors.New("invalid article file name")
)

var (
	validBrdNameRegexp = regexp.MustCompile(`^[0-9a-zA-Z][0-9a-zA-Z_\.\-]+$`)
)

func IsValidBrdName(brdname string) bool {
	return validBrdNameRegexp.MatchString(brdname)
}

// IsValidArticleFileName accepts "M.<suffix>" names that stay inside the
// board directory.
func IsValidArticleFileName(filename string) bool {
	return len(filename) > 2 &&
		strings.HasPrefix(filename, "M.") &&
		!strings.ContainsAny(filename, "/\x00")
}

// ParseFileNameTime returns the creation time encoded in an article file
// name such as M.1365119687.A.F72.
func ParseFileNameTime(filename string) (time.Time, error) {
	parts := strings.Split(filename, ".")
	if len(parts) < 2 {
		return time.Time{}, ErrInvalidFileName
	}
	sec, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0), nil
}
