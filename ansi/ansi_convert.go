// Package ansi parses and emits the terminal escape sequences found in BBS
// articles.
package ansi

import (
	"bytes"
	"unicode/utf8"
)

// States
const (
	Default = iota
	Escaping
	ParsingControl
	SkipOne
)

// Parser walks UTF-8 text and reports printable runes and escape sequences
// separately.
type Parser struct {
	Rune   func(r rune)
	Escape func(e EscapeSequence)
}

func (a *Parser) Scan(input []byte) {
	s := Default
	buf := make([]rune, 0, 16)
	var esc EscapeSequence

	for i, n := 0, len(input); i < n; {
		r, sz := utf8.DecodeRune(input[i:])
		if r == utf8.RuneError && sz <= 1 {
			i++
			continue
		}
		switch s {
		case Default:
			switch r {
			case Esc:
				s = Escaping
				buf = buf[0:0]
				esc.Reset()
			default:
				a.emitRune(r)
			}
		case Escaping:
			switch r {
			case '*':
				// ptt's in-place variable expansion, not supported
				s = SkipOne
			case '[':
				s = ParsingControl
			default:
				if r >= '@' && r <= '_' {
					// 2-char control code, not supported
					s = SkipOne
				} else {
					// error! but be nice
					a.emitRune(r)
					s = Default
				}
			}
		case ParsingControl:
			switch {
			case r >= ' ' && r <= '/':
				esc.Trailings = append(esc.Trailings, r)
			case r >= '@' && r <= '~':
				esc.Mode = r
				esc.ParseNumbers(buf)
				if a.Escape != nil {
					a.Escape(esc)
				}
				s = Default
			default:
				buf = append(buf, r)
			}
		case SkipOne:
			s = Default
		}
		i += sz
	}
}

func (a *Parser) emitRune(r rune) {
	if a.Rune != nil {
		a.Rune(r)
	}
}

// Strip returns input without its escape sequences.
func Strip(input []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(input))
	p := Parser{
		Rune: func(r rune) { out.WriteRune(r) },
	}
	p.Scan(input)
	return out.Bytes()
}
