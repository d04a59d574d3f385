package move

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortex/supercompare/internal/compare/model"
)

func tokens(s string) []string { return strings.Fields(s) }

const longPassage = "the committee reviewed the quarterly budget proposal and recommended several adjustments to the staffing plan before the meeting adjourned"

func TestDetectMatchesIdenticalMovedSpan(t *testing.T) {
	del := Span{Path: model.Path{0, 5, 0}, Tokens: tokens(longPassage), CharStart: 0, CharEnd: len(longPassage)}
	ins := Span{Path: model.Path{0, 1, 0}, Tokens: tokens(longPassage), CharStart: 0, CharEnd: len(longPassage)}

	pairs := Detect([]Span{del}, []Span{ins}, DefaultOptions())
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].ID)
	assert.Equal(t, del, pairs[0].Del)
	assert.Equal(t, ins, pairs[0].Ins)
}

func TestDetectSkipsSpansBelowMinTokens(t *testing.T) {
	short := "too short to count"
	del := Span{Path: model.Path{0, 0, 0}, Tokens: tokens(short)}
	ins := Span{Path: model.Path{0, 1, 0}, Tokens: tokens(short)}

	pairs := Detect([]Span{del}, []Span{ins}, DefaultOptions())
	assert.Empty(t, pairs)
}

func TestDetectRequiresThreshold(t *testing.T) {
	del := Span{Path: model.Path{0, 0, 0}, Tokens: tokens(longPassage)}
	unrelated := "completely different words describing an unrelated topic entirely with no overlap whatsoever here"
	ins := Span{Path: model.Path{0, 1, 0}, Tokens: tokens(unrelated)}

	pairs := Detect([]Span{del}, []Span{ins}, DefaultOptions())
	assert.Empty(t, pairs)
}

func TestDetectJaccardThresholdIsInclusive(t *testing.T) {
	opts := Options{ShingleSize: 1, JaccardThreshold: 0.5, MinSpanTokens: 1}

	// |{a,b,c} ∩ {b,c,d}| / |union| = 2/4, exactly at the threshold.
	del := Span{Path: model.Path{0, 0, 0}, Tokens: []string{"a", "b", "c"}}
	ins := Span{Path: model.Path{0, 1, 0}, Tokens: []string{"b", "c", "d"}}
	pairs := Detect([]Span{del}, []Span{ins}, opts)
	require.Len(t, pairs, 1)

	// 1/5 is strictly below and must not match.
	far := Span{Path: model.Path{0, 1, 0}, Tokens: []string{"c", "d", "e"}}
	pairs = Detect([]Span{del}, []Span{far}, opts)
	assert.Empty(t, pairs)
}

func TestDetectEachSpanUsedAtMostOnce(t *testing.T) {
	delA := Span{Path: model.Path{0, 0, 0}, Tokens: tokens(longPassage)}
	delB := Span{Path: model.Path{0, 2, 0}, Tokens: tokens(longPassage)}
	ins := Span{Path: model.Path{0, 1, 0}, Tokens: tokens(longPassage)}

	pairs := Detect([]Span{delA, delB}, []Span{ins}, DefaultOptions())
	require.Len(t, pairs, 1)
	assert.Equal(t, delA, pairs[0].Del) // delA sorts first: identical shingle-set size, earlier path wins the tie
}

func TestDetectTieBreaksOnLowestInsertionPath(t *testing.T) {
	del := Span{Path: model.Path{0, 0, 0}, Tokens: tokens(longPassage)}
	insLate := Span{Path: model.Path{0, 9, 0}, Tokens: tokens(longPassage)}
	insEarly := Span{Path: model.Path{0, 1, 0}, Tokens: tokens(longPassage)}

	pairs := Detect([]Span{del}, []Span{insLate, insEarly}, DefaultOptions())
	require.Len(t, pairs, 1)
	assert.Equal(t, insEarly, pairs[0].Ins)
}
