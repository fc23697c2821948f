package laws

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAll_NamesUniqueAndDescribed(t *testing.T) {
	seen := map[string]bool{}
	for _, law := range All() {
		assert.False(t, seen[law.Name], "duplicate law %s", law.Name)
		seen[law.Name] = true
		assert.NotEmpty(t, law.Description, law.Name)
		assert.Contains(t, []int{1, 2, 3}, law.Arity, law.Name)
		assert.NotNil(t, law.Check, law.Name)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	laws := All()
	laws[0].Name = "changed"
	assert.NotEqual(t, "changed", All()[0].Name)
}

func TestLookup(t *testing.T) {
	law, ok := Lookup("trichotomy")
	require.True(t, ok)
	assert.Equal(t, 2, law.Arity)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestLaws_HoldOnEdges(t *testing.T) {
	cases := [][3]int32{
		{math.MinInt32, -1, 0},
		{math.MaxInt32, 1, 1},
		{-7, 2, 0},
		{7, 2, 0},
		{1, 31, 0},
		{1, 32, 0},
		{-1, -1, -1},
	}
	for _, law := range All() {
		for _, c := range cases {
			assert.NoError(t, law.Check(c[0], c[1], c[2]), "%s%v", law.Name, c)
		}
	}
}

func TestLaws_DetectBrokenArithmetic(t *testing.T) {
	law := Law{
		Name:  "broken",
		Arity: 1,
		Check: func(a, _, _ int32) error {
			return expectEqual("a+1", a+1, a)
		},
	}
	err := law.Check(5, 0, 0)
	require.Error(t, err)
	assert.Equal(t, "a+1: got 6, want 5", err.Error())
}

func TestLaws_Properties(t *testing.T) {
	for _, law := range All() {
		t.Run(law.Name, func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				a := rapid.Int32().Draw(rt, "a")
				b := rapid.Int32().Draw(rt, "b")
				c := rapid.Int32().Draw(rt, "c")
				if err := law.Check(a, b, c); err != nil {
					rt.Fatalf("%s(%d, %d, %d): %v", law.Name, a, b, c, err)
				}
			})
		})
	}
}

func TestLaws_ShiftCountProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.Int32().Draw(rt, "a")
		count := rapid.Int32Range(-40, 40).Draw(rt, "count")
		for _, name := range []string{"shift_domain", "shift_semantics"} {
			law, _ := Lookup(name)
			if err := law.Check(a, count, 0); err != nil {
				rt.Fatalf("%s: %v", name, err)
			}
		}
	})
}
