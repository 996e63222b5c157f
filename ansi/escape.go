package ansi

import (
	"strconv"
)

const Esc = '\033'

// Colors a bare `ESC[m` resets to.
const (
	DefaultFg = 7
	DefaultBg = 0
)

type EscapeSequence struct {
	Nums      []int
	Trailings []rune
	Mode      rune
}

func (e *EscapeSequence) Reset() {
	if e.Nums == nil {
		e.Nums = make([]int, 0, 4)
	} else {
		e.Nums = e.Nums[0:0]
	}

	if e.Trailings == nil {
		e.Trailings = make([]rune, 0, 4)
	} else {
		e.Trailings = e.Trailings[0:0]
	}

	e.Mode = 0
}

func (e *EscapeSequence) ParseNumbers(buf []rune) {
	part := make([]rune, 0, 4)
	for i, r := range buf {
		if r != ';' {
			part = append(part, r)
		}
		if r == ';' || i == len(buf)-1 {
			num, err := strconv.Atoi(string(part))
			if err != nil {
				num = 0 // empty parameter
			}
			e.Nums = append(e.Nums, num)
			part = part[0:0]
		}
	}
}

// Status of a raw SGR scan.
type Status int

const (
	Complete Status = iota
	// Malformed means the run is terminated by something other than 'm'.
	Malformed
	// Incomplete means the input ended before the run was terminated.
	Incomplete
)

// ScanSGR scans a select-graphic-rendition run `ESC [ n ; n ... m` at the
// start of b. It returns the parameters, the run length in bytes, and whether
// the run was complete. An empty parameter counts as 0; `ESC[m` yields no
// parameters at all.
func ScanSGR(b []byte) (nums []int, n int, st Status) {
	if len(b) < 1 || b[0] != Esc {
		return nil, 0, Malformed
	}
	if len(b) < 2 {
		return nil, 0, Incomplete
	}
	if b[1] != '[' {
		return nil, 0, Malformed
	}
	i := 2
	if i < len(b) && b[i] == 'm' {
		return nil, i + 1, Complete
	}
	v := 0
	for ; i < len(b); i++ {
		c := b[i]
		switch {
		case c >= '0' && c <= '9':
			if v < 1<<20 {
				v = v*10 + int(c-'0')
			}
		case c == ';':
			nums = append(nums, v)
			v = 0
		case c == 'm':
			nums = append(nums, v)
			return nums, i + 1, Complete
		default:
			return nil, 0, Malformed
		}
	}
	return nil, 0, Incomplete
}
