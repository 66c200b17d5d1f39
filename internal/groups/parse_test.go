package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shastaops/csmgo/internal/xname"
)

func TestParse_Literal(t *testing.T) {
	t.Parallel()

	expr, err := Parse("x1000c0s0b0n1")
	require.NoError(t, err)

	lit, ok := expr.(Literal)
	require.True(t, ok, "expected Literal, got %T", expr)
	assert.Equal(t, xname.MustParse("x1000c0s0b0n1"), lit.X)
}

func TestParse_ContainerLiteral(t *testing.T) {
	t.Parallel()

	expr, err := Parse("x1000c0")
	require.NoError(t, err)
	// Shallow exact tokens stay patterns so they expand by prefix.
	_, ok := expr.(Pattern)
	assert.True(t, ok, "expected Pattern, got %T", expr)
}

func TestParse_PatternRanges(t *testing.T) {
	t.Parallel()

	expr, err := Parse("x1000c0s0b0n[0-3]")
	require.NoError(t, err)

	pat, ok := expr.(Pattern)
	require.True(t, ok, "expected Pattern, got %T", expr)

	assert.True(t, pat.Matches(xname.MustParse("x1000c0s0b0n0")))
	assert.True(t, pat.Matches(xname.MustParse("x1000c0s0b0n3")))
	assert.False(t, pat.Matches(xname.MustParse("x1000c0s0b0n4")))
	assert.False(t, pat.Matches(xname.MustParse("x1000c0s1b0n0")))
}

func TestParse_PatternWildcardAndList(t *testing.T) {
	t.Parallel()

	expr, err := Parse("x1000c[0,2]s*")
	require.NoError(t, err)

	pat := expr.(Pattern)
	assert.True(t, pat.Matches(xname.MustParse("x1000c0s5b0n1")))
	assert.True(t, pat.Matches(xname.MustParse("x1000c2s0b0n0")))
	assert.False(t, pat.Matches(xname.MustParse("x1000c1s0b0n0")))
	assert.False(t, pat.Matches(xname.MustParse("x1001c0s0b0n0")))
}

func TestParse_TrailingWildcard(t *testing.T) {
	t.Parallel()

	// A terminal '*' right after a component value covers every deeper
	// position.
	expr, err := Parse("x1000*")
	require.NoError(t, err)
	pat, ok := expr.(Pattern)
	require.True(t, ok, "expected Pattern, got %T", expr)
	assert.True(t, pat.Matches(xname.MustParse("x1000c0s0b0n0")))
	assert.True(t, pat.Matches(xname.MustParse("x1000c7s64b1n7")))
	assert.False(t, pat.Matches(xname.MustParse("x1001c0s0b0n0")))

	expr, err = Parse("x1000c1*")
	require.NoError(t, err)
	pat = expr.(Pattern)
	assert.True(t, pat.Matches(xname.MustParse("x1000c1s0b0n0")))
	assert.False(t, pat.Matches(xname.MustParse("x1000c0s0b0n0")))

	// Only the terminal position may elide its marker.
	_, err = Parse("x1000*c0")
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestParse_GroupRef(t *testing.T) {
	t.Parallel()

	expr, err := Parse("blue")
	require.NoError(t, err)
	assert.Equal(t, GroupRef{Name: "blue"}, expr)

	expr, err = Parse("@x1000")
	require.NoError(t, err)
	assert.Equal(t, GroupRef{Name: "x1000"}, expr, "'@' forces group interpretation")
}

func TestParse_Algebra(t *testing.T) {
	t.Parallel()

	expr, err := Parse("blue , green & x1000* ! red")
	require.NoError(t, err)

	// ',' binds loosest, '!' next, '&' tightest:
	// blue , ((green & x1000*) ! red)
	union, ok := expr.(Binary)
	require.True(t, ok)
	require.Equal(t, OpUnion, union.Op)
	assert.Equal(t, GroupRef{Name: "blue"}, union.L)

	diff, ok := union.R.(Binary)
	require.True(t, ok)
	require.Equal(t, OpDifference, diff.Op)
	assert.Equal(t, GroupRef{Name: "red"}, diff.R)

	inter, ok := diff.L.(Binary)
	require.True(t, ok)
	assert.Equal(t, OpIntersect, inter.Op)
}

func TestParse_ComplementAndParens(t *testing.T) {
	t.Parallel()

	expr, err := Parse("~(blue , green)")
	require.NoError(t, err)

	comp, ok := expr.(Complement)
	require.True(t, ok)
	inner, ok := comp.E.(Binary)
	require.True(t, ok)
	assert.Equal(t, OpUnion, inner.Op)
}

func TestParse_BracketCommaIsNotUnion(t *testing.T) {
	t.Parallel()

	expr, err := Parse("x1000c0s0b0n[0,3]")
	require.NoError(t, err)

	pat, ok := expr.(Pattern)
	require.True(t, ok, "expected Pattern, got %T", expr)
	assert.True(t, pat.Matches(xname.MustParse("x1000c0s0b0n0")))
	assert.False(t, pat.Matches(xname.MustParse("x1000c0s0b0n1")))
	assert.True(t, pat.Matches(xname.MustParse("x1000c0s0b0n3")))
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"",
		"blue ,",
		", blue",
		"(blue",
		"blue)",
		"~",
		"@",
		"x1000c0s0b0n[3-0]",
		"x1000c0s0b0n[",
		"x1000z3",
		"bad/label",
		"blue & & green",
	} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrInvalidExpression, "input %q", text)
	}
}

func TestParse_StringRoundTripsStructure(t *testing.T) {
	t.Parallel()

	expr, err := Parse("blue,(green&red)")
	require.NoError(t, err)
	assert.Equal(t, "(blue,(green&red))", expr.String())
}
