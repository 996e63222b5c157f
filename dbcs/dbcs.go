// Package dbcs selects byte ranges of double-byte (Big5) text without
// splitting a character in half.
package dbcs

import (
	"errors"
	"fmt"
)

var (
	ErrRangeInvalid  = errors.New("selected range exceeds buffer")
	ErrUnknownPolicy = errors.New("unknown select policy")
)

// IsLead reports whether b starts a double-byte character.
func IsLead(b byte) bool {
	return b >= 0x80
}

// Range is a view of [Offset, Offset+Size) into a buffer.
type Range struct {
	Offset int
	Size   int
}

// Slice returns the bytes of data covered by r. It borrows from data.
func (r Range) Slice(data []byte) []byte {
	return data[r.Offset : r.Offset+r.Size]
}

type Policy int

const (
	Whole Policy = iota
	Head
	Tail
)

func (p Policy) String() string {
	switch p {
	case Whole:
		return "whole"
	case Head:
		return "head"
	case Tail:
		return "tail"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Select applies policy p to data and checks the result fits.
func Select(p Policy, data []byte) (Range, error) {
	var r Range
	switch p {
	case Whole:
		r = SelectWhole(data)
	case Head:
		r = SelectHead(data)
	case Tail:
		r = SelectTail(data)
	default:
		return Range{}, ErrUnknownPolicy
	}
	if r.Offset < 0 || r.Size < 0 || r.Offset+r.Size > len(data) {
		return Range{}, ErrRangeInvalid
	}
	return r, nil
}

func SelectWhole(data []byte) Range {
	return Range{Offset: 0, Size: len(data)}
}

// SelectHead truncates data at the end of its last complete line, or at the
// last character boundary if there is no newline at all.
func SelectHead(data []byte) Range {
	return Range{Offset: 0, Size: headSize(data)}
}

// SelectTail skips the first (likely partial) line and then truncates the
// rest the same way SelectHead does.
func SelectTail(data []byte) Range {
	start := firstLineEnd(data)
	return Range{Offset: start, Size: headSize(data[start:])}
}

func headSize(data []byte) int {
	lastLineEnd, lastCharEnd, lastTrail := 0, 0, 0
	// Positions are 1-based: position i covers data[i-1].
	for i := 1; i <= len(data); i++ {
		c := data[i-1]
		if i > lastTrail {
			if IsLead(c) {
				lastTrail = i + 1
				if i+1 <= len(data) {
					lastCharEnd = i + 1
				}
			} else {
				lastCharEnd = i
			}
		}
		if c == '\n' {
			lastLineEnd = i
		}
	}
	if lastLineEnd > 0 {
		return lastLineEnd
	}
	return lastCharEnd
}

// firstLineEnd returns the 1-based position of the first '\n', or 0.
func firstLineEnd(data []byte) int {
	for i, c := range data {
		if c == '\n' {
			return i + 1
		}
	}
	return 0
}
