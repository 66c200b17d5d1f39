// Package groups resolves operator-entered target expressions into concrete
// node sets.
//
// An expression combines literal xnames, per-component patterns, and named
// group references with set algebra: ',' union, '&' intersection, '!'
// difference, '~' complement, parentheses for grouping. Patterns are
// evaluated against the live inventory, never a static table, so a
// resolution always reflects current membership.
package groups

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shastaops/csmgo/internal/xname"
)

var (
	// ErrInvalidExpression reports text that does not parse.
	ErrInvalidExpression = errors.New("invalid target expression")
	// ErrUnknownGroup reports a named group the inventory does not know.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrAmbiguousComplement reports a complement with no usable universe.
	ErrAmbiguousComplement = errors.New("complement has no base set")
)

// Expr is one node of a parsed target expression. Expressions are built by
// Parse and evaluated by structural recursion in Resolver.Resolve; they
// carry no state and may be reused, though resolution results must not be
// cached across calls because inventory membership moves underneath them.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Literal is a single fully specified identifier.
type Literal struct {
	X xname.XName
}

func (Literal) isExpr()          {}
func (l Literal) String() string { return l.X.String() }

// Pattern matches identifiers component-wise: a wildcard or range at each
// position. A pattern shallower than node depth matches by prefix, so
// "x1000c0" and "x1000c0s*" both cover every node in that chassis.
type Pattern struct {
	raw      string
	matchers []componentMatcher
}

func (Pattern) isExpr()          {}
func (p Pattern) String() string { return p.raw }

// Matches reports whether the node identifier falls under the pattern.
func (p Pattern) Matches(x xname.XName) bool {
	if int(x.Depth()) < len(p.matchers) {
		return false
	}
	for i, m := range p.matchers {
		if !m.matches(x.Component(xname.Level(i + 1))) {
			return false
		}
	}
	return true
}

// GroupRef names an inventory group (or partition) by label.
type GroupRef struct {
	Name string
}

func (GroupRef) isExpr()          {}
func (g GroupRef) String() string { return g.Name }

// Op is a binary set operator.
type Op int

const (
	OpUnion Op = iota + 1
	OpIntersect
	OpDifference
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return ","
	case OpIntersect:
		return "&"
	case OpDifference:
		return "!"
	}
	return "?"
}

// Binary applies a set operator to two sub-expressions.
type Binary struct {
	Op   Op
	L, R Expr
}

func (Binary) isExpr() {}
func (b Binary) String() string {
	return fmt.Sprintf("(%s%s%s)", b.L, b.Op, b.R)
}

// Complement is the universe minus the sub-expression.
type Complement struct {
	E Expr
}

func (Complement) isExpr()          {}
func (c Complement) String() string { return "~" + c.E.String() }

// componentMatcher matches one positional component value.
type componentMatcher struct {
	wildcard bool
	ranges   [][2]int // inclusive lo..hi pairs; exact values are lo==hi
}

func (m componentMatcher) matches(v int) bool {
	if m.wildcard {
		return true
	}
	for _, r := range m.ranges {
		if v >= r[0] && v <= r[1] {
			return true
		}
	}
	return false
}

// IsPatternShaped reports whether the token looks like an xname pattern
// (starts with the cabinet marker). Anything else is read as a group label.
func IsPatternShaped(token string) bool {
	return strings.HasPrefix(token, "x") && len(token) > 1 &&
		(token[1] >= '0' && token[1] <= '9' || token[1] == '*' || token[1] == '[')
}
