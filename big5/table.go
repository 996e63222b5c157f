package big5

import (
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding/traditionalchinese"
)

var (
	tableOnce sync.Once
	// table[(lead-0x80)<<8|trail]
	table []rune
)

func buildTable() {
	table = make([]rune, 0x80<<8)
	dec := traditionalchinese.Big5.NewDecoder()
	pair := make([]byte, 2)
	for lead := 0x80; lead <= 0xff; lead++ {
		for trail := 0; trail <= 0xff; trail++ {
			pair[0], pair[1] = byte(lead), byte(trail)
			r := utf8.RuneError
			if out, err := dec.Bytes(pair); err == nil {
				if dr, size := utf8.DecodeRune(out); size == len(out) {
					r = dr
				}
			}
			table[(lead-0x80)<<8|trail] = r
		}
	}
}

// Rune maps a double-byte code to its Unicode scalar. Codes without a mapping
// become utf8.RuneError.
func Rune(lead, trail byte) rune {
	if lead < 0x80 {
		return utf8.RuneError
	}
	tableOnce.Do(buildTable)
	return table[int(lead-0x80)<<8|int(trail)]
}
