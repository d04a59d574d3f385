package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizePreserveSpacingRoundTrips(t *testing.T) {
	inputs := []string{
		"Hello world.",
		"  leading and trailing  ",
		"One,two;three!",
		"",
		"emoji 🎉 ok",
	}
	for _, in := range inputs {
		toks := TokenizePreserveSpacing(in)
		require.Equal(t, in, strings.Join(toks, ""))
	}
}

func TestNormalizeForCompare(t *testing.T) {
	assert.Equal(t, "hello world", NormalizeForCompare("  Hello   World  "))
	assert.Equal(t, "", NormalizeForCompare(""))
	assert.Equal(t, "a b", NormalizeForCompare("A\tB"))
}

func TestShinglesBelowWindowIsEmpty(t *testing.T) {
	toks := []string{"a", "b"}
	s := Shingles(toks, 5)
	assert.Empty(t, s)
}

func TestShinglesWindow(t *testing.T) {
	toks := []string{"a", "b", "c", "d"}
	s := Shingles(toks, 2)
	assert.Len(t, s, 3)
	assert.Contains(t, s, "a b")
	assert.Contains(t, s, "b c")
	assert.Contains(t, s, "c d")
}

func TestJaccard(t *testing.T) {
	empty := map[string]struct{}{}
	a := map[string]struct{}{"x": {}, "y": {}}
	b := map[string]struct{}{"y": {}, "z": {}}

	assert.Equal(t, 1.0, Jaccard(empty, empty))
	assert.Equal(t, 0.0, Jaccard(empty, a))
	assert.InDelta(t, 1.0/3.0, Jaccard(a, b), 1e-9)
	assert.Equal(t, 1.0, Jaccard(a, a))
}
