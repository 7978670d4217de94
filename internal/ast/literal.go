package ast

import "strconv"

// ParseNumber parses a GLSL numeric literal, ignoring type suffixes.
// Integers follow C rules: 0x is hex and a leading 0 is octal.
func ParseNumber(s string) (float64, bool) {
	trimmed := s
	if n := len(trimmed); n > 0 {
		switch trimmed[n-1] {
		case 'u', 'U':
			trimmed = trimmed[:n-1]
		case 'f', 'F':
			// 0xF is a hex digit, not a suffix
			if len(trimmed) < 2 || trimmed[0] != '0' || (trimmed[1] != 'x' && trimmed[1] != 'X') {
				trimmed = trimmed[:n-1]
			}
		}
	}
	if i, err := strconv.ParseInt(trimmed, 0, 64); err == nil {
		return float64(i), true
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	return f, err == nil
}

// Number returns the numeric value of a non-bool literal.
func (l *Literal) Number() (float64, bool) {
	if l.Kind == LiteralBool {
		return 0, false
	}
	return ParseNumber(l.Text)
}
