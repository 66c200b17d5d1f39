// Package xname models the hierarchical hardware identifiers used by the
// management plane (cabinet, chassis, slot, BMC, node).
//
// An XName is an immutable value: construct one with Parse or New and never
// mutate it. A shorter identifier denotes the enclosure containing every
// identifier that shares its prefix, so x1000c0 is an ancestor of
// x1000c0s4b0n1.
package xname

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid reports text that does not match the xname grammar or carries
// an out-of-range component value.
var ErrInvalid = errors.New("invalid xname")

// Level identifies how deep into the hierarchy an identifier reaches.
type Level int

const (
	LevelCabinet Level = iota + 1
	LevelChassis
	LevelSlot
	LevelBMC
	LevelNode
)

// String returns the location name for the level.
func (l Level) String() string {
	switch l {
	case LevelCabinet:
		return "cabinet"
	case LevelChassis:
		return "chassis"
	case LevelSlot:
		return "slot"
	case LevelBMC:
		return "bmc"
	case LevelNode:
		return "node"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// markers and bounds follow the CSM component naming convention:
// x<0-9999> c<0-7> s<0-64> b<0-1> n<0-7>.
var (
	markers = []byte{'x', 'c', 's', 'b', 'n'}
	maxVal  = []int{9999, 7, 64, 1, 7}
)

// XName is one hardware identifier, possibly a container (fewer trailing
// components). The zero value is not valid; use Parse or New.
type XName struct {
	comps [5]int
	depth Level
}

// New builds an identifier from explicit component values, stopping at the
// given depth. Components beyond depth are ignored.
func New(depth Level, cabinet, chassis, slot, bmc, node int) (XName, error) {
	vals := [5]int{cabinet, chassis, slot, bmc, node}
	if depth < LevelCabinet || depth > LevelNode {
		return XName{}, fmt.Errorf("%w: depth %d out of range", ErrInvalid, depth)
	}
	x := XName{depth: depth}
	for i := 0; i < int(depth); i++ {
		if vals[i] < 0 || vals[i] > maxVal[i] {
			return XName{}, fmt.Errorf("%w: %c%d out of range 0-%d", ErrInvalid, markers[i], vals[i], maxVal[i])
		}
		x.comps[i] = vals[i]
	}
	return x, nil
}

// Parse converts canonical text such as "x1000c0s4b0n1" into an XName.
// Any strict prefix ending at a component boundary is valid and denotes a
// container: "x1000", "x1000c0", "x1000c0s4", "x1000c0s4b0".
func Parse(text string) (XName, error) {
	if text == "" {
		return XName{}, fmt.Errorf("%w: empty string", ErrInvalid)
	}

	var x XName
	rest := text
	for i, marker := range markers {
		if rest == "" {
			break
		}
		if rest[0] != marker {
			return XName{}, fmt.Errorf("%w: %q (expected %q at %q)", ErrInvalid, text, marker, rest)
		}
		rest = rest[1:]

		j := 0
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		if j == 0 {
			return XName{}, fmt.Errorf("%w: %q (missing value after %q)", ErrInvalid, text, marker)
		}
		v, err := strconv.Atoi(rest[:j])
		if err != nil {
			return XName{}, fmt.Errorf("%w: %q: %v", ErrInvalid, text, err)
		}
		if v > maxVal[i] {
			return XName{}, fmt.Errorf("%w: %q (%c%d exceeds %d)", ErrInvalid, text, marker, v, maxVal[i])
		}
		x.comps[i] = v
		x.depth = Level(i + 1)
		rest = rest[j:]
	}

	if rest != "" {
		return XName{}, fmt.Errorf("%w: %q (trailing %q)", ErrInvalid, text, rest)
	}
	if x.depth == 0 {
		return XName{}, fmt.Errorf("%w: %q", ErrInvalid, text)
	}
	return x, nil
}

// MustParse is Parse for statically known identifiers; it panics on error.
func MustParse(text string) XName {
	x, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return x
}

// String renders the canonical unpadded form.
func (x XName) String() string {
	var b strings.Builder
	for i := 0; i < int(x.depth); i++ {
		b.WriteByte(markers[i])
		b.WriteString(strconv.Itoa(x.comps[i]))
	}
	return b.String()
}

// Depth reports how many components the identifier carries.
func (x XName) Depth() Level { return x.depth }

// Component returns the value at the given level. It panics if the
// identifier does not reach that level.
func (x XName) Component(l Level) int {
	if l < LevelCabinet || l > x.depth {
		panic(fmt.Sprintf("xname %q has no %s component", x, l))
	}
	return x.comps[l-1]
}

// IsNode reports whether the identifier addresses a node (full depth).
func (x XName) IsNode() bool { return x.depth == LevelNode }

// IsController reports whether the identifier addresses a BMC.
func (x XName) IsController() bool { return x.depth == LevelBMC }

// Parent returns the containing identifier, or false for a bare cabinet.
func (x XName) Parent() (XName, bool) {
	if x.depth <= LevelCabinet {
		return XName{}, false
	}
	p := x
	p.depth--
	p.comps[p.depth] = 0
	return p, true
}

// IsAncestorOf reports whether x's components are a strict prefix of o's.
// An identifier is never its own ancestor.
func (x XName) IsAncestorOf(o XName) bool {
	if x.depth == 0 || x.depth >= o.depth {
		return false
	}
	for i := 0; i < int(x.depth); i++ {
		if x.comps[i] != o.comps[i] {
			return false
		}
	}
	return true
}

// Compare orders identifiers component-wise, shorter prefixes first.
// It returns -1, 0, or 1 in the manner of strings.Compare.
func Compare(a, b XName) int {
	n := min(a.depth, b.depth)
	for i := 0; i < int(n); i++ {
		if a.comps[i] != b.comps[i] {
			if a.comps[i] < b.comps[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case a.depth < b.depth:
		return -1
	case a.depth > b.depth:
		return 1
	}
	return 0
}
