package dbcs

// TrimRight drops trailing spaces and an incomplete trailing character from s.
// The result always ends on a character boundary.
func TrimRight(s []byte) []byte {
	end := 0
	for i := 0; i < len(s); {
		c := s[i]
		if IsLead(c) {
			if i+1 >= len(s) {
				// Lead byte without its trail.
				break
			}
			i += 2
			end = i
			continue
		}
		i++
		if !isSpace(c) {
			end = i
		}
	}
	return s[:end]
}

// CString returns the bytes of a NUL-padded fixed-width field.
func CString(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
