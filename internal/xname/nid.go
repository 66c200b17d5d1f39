package xname

import (
	"fmt"
	"strconv"
	"strings"
)

// nidDigits is the fixed width of the numeric part of a node ID label.
const nidDigits = 6

// IsNID reports whether s looks like a node ID label ("nid001234").
func IsNID(s string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(s), "nid")
	if !ok || len(rest) != nidDigits {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatNID renders a numeric node ID as its zero-padded label.
func FormatNID(nid int64) string {
	return fmt.Sprintf("nid%0*d", nidDigits, nid)
}

// ParseNID extracts the numeric node ID from a label accepted by IsNID.
func ParseNID(s string) (int64, error) {
	if !IsNID(s) {
		return 0, fmt.Errorf("%w: %q is not a nid label", ErrInvalid, s)
	}
	return strconv.ParseInt(strings.ToLower(s)[len("nid"):], 10, 64)
}
