package groups

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shastaops/csmgo/internal/xname"
)

// Parse turns expression text into its tree form. Operator precedence,
// loosest first: ',' (union), '!' (difference), '&' (intersection); '~'
// (complement) and parentheses bind tighter than all of them.
func Parse(text string) (Expr, error) {
	p := &parser{input: text}
	p.next()
	expr, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrInvalidExpression, p.tok.text, p.tok.pos)
	}
	return expr, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokComma
	tokAmp
	tokBang
	tokTilde
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	input string
	pos   int
	tok   token
}

// next advances to the following token. Bracket contents are consumed as
// part of a word so range commas do not read as union operators.
func (p *parser) next() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	switch c := p.input[p.pos]; c {
	case ',':
		p.pos++
		p.tok = token{kind: tokComma, text: ",", pos: start}
	case '&':
		p.pos++
		p.tok = token{kind: tokAmp, text: "&", pos: start}
	case '!':
		p.pos++
		p.tok = token{kind: tokBang, text: "!", pos: start}
	case '~':
		p.pos++
		p.tok = token{kind: tokTilde, text: "~", pos: start}
	case '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	default:
		inBrackets := false
		for p.pos < len(p.input) {
			c := p.input[p.pos]
			if c == '[' {
				inBrackets = true
			}
			if c == ']' {
				inBrackets = false
			}
			if !inBrackets && (c == ' ' || c == ',' || c == '&' || c == '!' || c == '~' || c == '(' || c == ')') {
				break
			}
			p.pos++
		}
		p.tok = token{kind: tokWord, text: p.input[start:p.pos], pos: start}
	}
}

func (p *parser) parseUnion() (Expr, error) {
	left, err := p.parseDifference()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokComma {
		p.next()
		right, err := p.parseDifference()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: OpUnion, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseDifference() (Expr, error) {
	left, err := p.parseIntersection()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokBang {
		p.next()
		right, err := p.parseIntersection()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: OpDifference, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseIntersection() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokAmp {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: OpIntersect, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.tok.kind {
	case tokTilde:
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Complement{E: inner}, nil
	case tokLParen:
		p.next()
		inner, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ')' at offset %d", ErrInvalidExpression, p.tok.pos)
		}
		p.next()
		return inner, nil
	case tokWord:
		word := p.tok.text
		pos := p.tok.pos
		p.next()
		return parseAtom(word, pos)
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrInvalidExpression)
	default:
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrInvalidExpression, p.tok.text, p.tok.pos)
	}
}

// parseAtom classifies one word. '@' forces a group reference; an
// xname-shaped word becomes a literal or pattern; anything else is read as
// a group label.
func parseAtom(word string, pos int) (Expr, error) {
	if name, ok := strings.CutPrefix(word, "@"); ok {
		if name == "" {
			return nil, fmt.Errorf("%w: empty group name at offset %d", ErrInvalidExpression, pos)
		}
		return GroupRef{Name: name}, nil
	}

	if IsPatternShaped(word) {
		return parsePatternWord(word, pos)
	}

	for _, r := range word {
		if !isLabelRune(r) {
			return nil, fmt.Errorf("%w: %q is neither an xname nor a group label (offset %d)", ErrInvalidExpression, word, pos)
		}
	}
	return GroupRef{Name: word}, nil
}

func isLabelRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-' || r == '.'
}

var patternMarkers = []byte{'x', 'c', 's', 'b', 'n'}

// parsePatternWord reads an xname-shaped word into a Literal (all
// components exact) or a Pattern (any wildcard or range present).
func parsePatternWord(word string, pos int) (Expr, error) {
	rest := word
	var matchers []componentMatcher
	exact := true

	for _, marker := range patternMarkers {
		if rest == "" {
			break
		}
		// A terminal '*' stands for any value at this position and every
		// deeper one; prefix matching covers the rest.
		if rest == "*" {
			rest = ""
			exact = false
			break
		}
		if rest[0] != marker {
			return nil, fmt.Errorf("%w: %q (expected %q, found %q) at offset %d", ErrInvalidExpression, word, marker, rest, pos)
		}
		rest = rest[1:]

		m, consumed, err := parseMatcher(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, word, err)
		}
		if m.wildcard || len(m.ranges) != 1 || m.ranges[0][0] != m.ranges[0][1] {
			exact = false
		}
		matchers = append(matchers, m)
		rest = rest[consumed:]
	}
	if rest != "" {
		return nil, fmt.Errorf("%w: %q (trailing %q) at offset %d", ErrInvalidExpression, word, rest, pos)
	}
	if len(matchers) == 0 {
		return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidExpression, word, pos)
	}

	if exact && len(matchers) == int(xname.LevelNode) {
		x, err := xname.Parse(word)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
		}
		return Literal{X: x}, nil
	}
	return Pattern{raw: word, matchers: matchers}, nil
}

// parseMatcher reads one component value: digits, '*', or a bracketed
// range list such as "[0-3,7]". It returns the bytes consumed.
func parseMatcher(s string) (componentMatcher, int, error) {
	if s == "" {
		return componentMatcher{}, 0, fmt.Errorf("missing component value")
	}

	if s[0] == '*' {
		return componentMatcher{wildcard: true}, 1, nil
	}

	if s[0] == '[' {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return componentMatcher{}, 0, fmt.Errorf("unterminated '['")
		}
		m := componentMatcher{}
		for _, item := range strings.Split(s[1:end], ",") {
			lo, hi, err := parseRangeItem(item)
			if err != nil {
				return componentMatcher{}, 0, err
			}
			m.ranges = append(m.ranges, [2]int{lo, hi})
		}
		if len(m.ranges) == 0 {
			return componentMatcher{}, 0, fmt.Errorf("empty range list")
		}
		return m, end + 1, nil
	}

	j := 0
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == 0 {
		return componentMatcher{}, 0, fmt.Errorf("missing component value at %q", s)
	}
	v, err := strconv.Atoi(s[:j])
	if err != nil {
		return componentMatcher{}, 0, err
	}
	return componentMatcher{ranges: [][2]int{{v, v}}}, j, nil
}

func parseRangeItem(item string) (int, int, error) {
	if lo, hi, ok := strings.Cut(item, "-"); ok {
		l, err := strconv.Atoi(lo)
		if err != nil {
			return 0, 0, fmt.Errorf("bad range %q", item)
		}
		h, err := strconv.Atoi(hi)
		if err != nil {
			return 0, 0, fmt.Errorf("bad range %q", item)
		}
		if h < l {
			return 0, 0, fmt.Errorf("inverted range %q", item)
		}
		return l, h, nil
	}
	v, err := strconv.Atoi(item)
	if err != nil {
		return 0, 0, fmt.Errorf("bad range item %q", item)
	}
	return v, v, nil
}
