package ansi

import "strconv"

// Unset marks an attribute that does not change.
const Unset = -1

// Attr is the color state carried by SGR runs. Each field is Unset or the
// original code (30-37, 40-47, 0/1).
type Attr struct {
	Fg, Bg, Bright int
}

func NoAttr() Attr {
	return Attr{Fg: Unset, Bg: Unset, Bright: Unset}
}

func (a Attr) IsSet() bool {
	return a.Fg != Unset || a.Bg != Unset || a.Bright != Unset
}

// Apply folds SGR parameters into a. No parameters means reset.
func (a *Attr) Apply(nums []int) {
	if len(nums) == 0 {
		a.Fg, a.Bg, a.Bright = DefaultFg, DefaultBg, 0
		return
	}
	for _, v := range nums {
		switch {
		case v == 0:
			a.Bright = 0
		case v == 1:
			a.Bright = 1
		case v >= 30 && v <= 37:
			a.Fg = v
		case v >= 40 && v <= 47:
			a.Bg = v
		}
	}
}

// Shifted moves the codes out of the standard SGR range: 0/1 become 110/111,
// 3x becomes 13x, and 4x becomes 14x.
func (a Attr) Shifted() Attr {
	s := a
	if s.Fg != Unset {
		s.Fg += 100
	}
	if s.Bg != Unset {
		s.Bg += 100
	}
	if s.Bright != Unset {
		s.Bright += 110
	}
	return s
}

// AppendSGR appends `ESC[<bright>;<fg>;<bg>m` with the unset fields left
// out. An Attr with nothing set renders as a reset.
func AppendSGR(dst []byte, a Attr) []byte {
	dst = append(dst, Esc, '[')
	sep := false
	for _, v := range [...]int{a.Bright, a.Fg, a.Bg} {
		if v == Unset {
			continue
		}
		if sep {
			dst = append(dst, ';')
		}
		dst = strconv.AppendInt(dst, int64(v), 10)
		sep = true
	}
	return append(dst, 'm')
}
