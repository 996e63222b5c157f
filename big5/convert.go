// Package big5 converts Big5 article text with in-character color escapes to
// UTF-8.
//
// BBS editors attach color changes to a double-byte character by placing
// `ESC[...m` runs between its lead and trail bytes. Such runs cannot survive
// a plain charset conversion, so the converter lifts them out of the
// character and re-emits the accumulated colors next to the converted rune.
package big5

import (
	"errors"
	"unicode/utf8"

	"github.com/ptt/boardd/ansi"
	"github.com/ptt/boardd/dbcs"
)

var (
	ErrUnderflow     = errors.New("big5: input ends inside a character or escape")
	ErrWindowOverrun = errors.New("big5: in-character escape exceeds lookahead window")
	ErrEmptyOutput   = errors.New("big5: empty output")
)

// Placement decides where lifted colors go relative to the character.
type Placement int

const (
	// After emits plain SGR codes right after the character.
	After Placement = iota
	// Before emits shifted codes (see ansi.Attr.Shifted) right before the
	// character so they cannot be mistaken for surrounding runs.
	Before
)

const DefaultWindow = 16

// Converter is safe for concurrent use; it holds configuration only.
type Converter struct {
	// Window bounds lead byte, one escape run and trail byte together.
	Window    int
	Placement Placement
}

func NewConverter(window int, placement Placement) *Converter {
	return &Converter{Window: window, Placement: placement}
}

func (c *Converter) window() int {
	if c == nil || c.Window <= 0 {
		return DefaultWindow
	}
	return c.Window
}

func (c *Converter) placement() Placement {
	if c == nil {
		return After
	}
	return c.Placement
}

// Convert converts all of src or fails. The returned buffer never aliases src
// unless src is empty.
func (c *Converter) Convert(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return src, nil
	}
	maxRun := c.window() - 2
	dst := make([]byte, 0, len(src)+len(src)/2)

	for i := 0; i < len(src); {
		lead := src[i]
		if !dbcs.IsLead(lead) {
			dst = append(dst, lead)
			i++
			continue
		}

		attr := ansi.NoAttr()
		j := i + 1
		malformed := false
	runs:
		for j < len(src) && src[j] == ansi.Esc {
			end := j + maxRun
			if end > len(src) {
				end = len(src)
			}
			nums, n, st := ansi.ScanSGR(src[j:end])
			switch st {
			case ansi.Incomplete:
				if end < len(src) {
					return nil, ErrWindowOverrun
				}
				return nil, ErrUnderflow
			case ansi.Malformed:
				malformed = true
				break runs
			}
			attr.Apply(nums)
			j += n
		}

		if malformed {
			// The ESC stands in for the trail byte. Colors gathered so far
			// are dropped and the rest of the run passes through as text.
			dst = utf8.AppendRune(dst, utf8.RuneError)
			i = j + 1
			continue
		}
		if j >= len(src) {
			return nil, ErrUnderflow
		}

		r := Rune(lead, src[j])
		if attr.IsSet() && c.placement() == Before {
			dst = ansi.AppendSGR(dst, attr.Shifted())
		}
		dst = utf8.AppendRune(dst, r)
		if attr.IsSet() && c.placement() == After {
			dst = ansi.AppendSGR(dst, attr)
		}
		i = j + 1
	}

	if len(dst) == 0 {
		return nil, ErrEmptyOutput
	}
	return dst, nil
}
