package xname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		"x0",
		"x1000",
		"x1000c0",
		"x1000c7s64",
		"x1000c0s4b0",
		"x1000c0s4b0n1",
		"x9999c7s64b1n7",
	} {
		x, err := Parse(text)
		require.NoError(t, err, text)
		assert.Equal(t, text, x.String())
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"bad prefix", "c0s0"},
		{"missing value", "x"},
		{"missing chassis value", "x1000c"},
		{"chassis out of range", "x1000c8"},
		{"slot out of range", "x1000c0s65"},
		{"bmc out of range", "x1000c0s0b2"},
		{"node out of range", "x1000c0s0b0n8"},
		{"cabinet out of range", "x10000"},
		{"trailing garbage", "x1000c0s0b0n0z"},
		{"wrong order", "x1000s0c0"},
		{"negative", "x-1"},
		{"hostname", "nid001000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tc.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestNew_MatchesParse(t *testing.T) {
	t.Parallel()

	x, err := New(LevelNode, 1000, 0, 4, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, MustParse("x1000c0s4b0n1"), x)

	_, err = New(LevelNode, 1000, 0, 4, 0, 9)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestIsAncestorOf(t *testing.T) {
	t.Parallel()

	cab := MustParse("x1000")
	chassis := MustParse("x1000c0")
	node := MustParse("x1000c0s4b0n1")
	otherNode := MustParse("x1001c0s4b0n1")

	assert.True(t, cab.IsAncestorOf(chassis))
	assert.True(t, cab.IsAncestorOf(node))
	assert.True(t, chassis.IsAncestorOf(node))
	assert.False(t, node.IsAncestorOf(cab))
	assert.False(t, cab.IsAncestorOf(otherNode))
	assert.False(t, node.IsAncestorOf(node), "never its own ancestor")
}

func TestIsAncestorOf_Antisymmetric(t *testing.T) {
	t.Parallel()

	ids := []XName{
		MustParse("x0"),
		MustParse("x1000"),
		MustParse("x1000c0"),
		MustParse("x1000c0s4"),
		MustParse("x1000c0s4b0"),
		MustParse("x1000c0s4b0n1"),
		MustParse("x1001c0s4b0n1"),
	}
	for _, a := range ids {
		for _, b := range ids {
			if a.IsAncestorOf(b) && b.IsAncestorOf(a) {
				t.Fatalf("both %s and %s claim ancestry of each other", a, b)
			}
		}
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"x1000c0s0b0n0", "x1000c0s0b0n0", 0},
		{"x1000c0s0b0n0", "x1000c0s0b0n1", -1},
		{"x1000c0s0b0n1", "x1000c0s0b0n0", 1},
		{"x1000", "x1000c0", -1},
		{"x1000c1", "x1000c0s4b0n7", 1},
		{"x999c0s0b0n0", "x1000", -1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Compare(MustParse(tc.a), MustParse(tc.b)), "%s vs %s", tc.a, tc.b)
	}
}

func TestParent(t *testing.T) {
	t.Parallel()

	node := MustParse("x1000c0s4b0n1")
	bmc, ok := node.Parent()
	require.True(t, ok)
	assert.Equal(t, "x1000c0s4b0", bmc.String())

	_, ok = MustParse("x1000").Parent()
	assert.False(t, ok)
}

func TestComponentAccess(t *testing.T) {
	t.Parallel()

	x := MustParse("x1000c3s4b1n2")
	assert.Equal(t, LevelNode, x.Depth())
	assert.Equal(t, 1000, x.Component(LevelCabinet))
	assert.Equal(t, 3, x.Component(LevelChassis))
	assert.Equal(t, 4, x.Component(LevelSlot))
	assert.Equal(t, 1, x.Component(LevelBMC))
	assert.Equal(t, 2, x.Component(LevelNode))
	assert.True(t, x.IsNode())
	assert.False(t, x.IsController())

	bmc := MustParse("x1000c3s4b1")
	assert.True(t, bmc.IsController())
	assert.Panics(t, func() { bmc.Component(LevelNode) })
}

func TestNIDHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNID("nid001234"))
	assert.True(t, IsNID("NID001234"))
	assert.False(t, IsNID("nid1234"))
	assert.False(t, IsNID("nid00123x"))
	assert.False(t, IsNID("x1000c0s0b0n0"))

	assert.Equal(t, "nid001234", FormatNID(1234))

	n, err := ParseNID("nid001234")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), n)

	_, err = ParseNID("bogus")
	assert.ErrorIs(t, err, ErrInvalid)
}
