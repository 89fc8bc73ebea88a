package scheme

import "strings"

// ResolveDimension turns the raw value of a size field into a usable grid
// dimension. The value is read the way the admin form always read it: leading
// whitespace is skipped, an optional sign is accepted and the longest run of
// decimal digits is taken ("12abc" is 12, "3.7" is 3). Anything that does not
// yield a positive number, or exceeds max when max > 0, resolves to fallback.
func ResolveDimension(candidate string, fallback, max int) int {
	n, ok := parseLeadingInt(candidate)
	if !ok || n < 1 {
		return fallback
	}
	if max > 0 && n > max {
		return fallback
	}
	return n
}

// parseLeadingInt reports false when no digits are found. Overflowing
// inputs are reported as unparsable.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	const limit = 1 << 31
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + int(s[digits]-'0')
		if n >= limit {
			return 0, false
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
