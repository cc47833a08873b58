package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"reviewdiff/internal/diffview"
)

func engineFor(oldText, newText, query string) *Engine {
	e := New()
	e.SetLines(diffview.Align(oldText, newText, 4).Lines)
	e.Begin()
	for _, r := range query {
		e.Insert(r)
	}
	return e
}

func TestEmptyQueryHasNoMatches(t *testing.T) {
	e := engineFor("foo\n", "foo\n", "")

	require.Equal(t, 0, e.MatchCount())
	_, ok := e.Next()
	require.False(t, ok)
}

func TestNoLinesHasNoMatches(t *testing.T) {
	e := New()
	e.Begin()
	e.Insert('x')

	require.Equal(t, 0, e.MatchCount())
	require.Empty(t, e.MatchesForLine(0, diffview.SideOld))
}

func TestMatchesAreCaseInsensitiveAndOrdered(t *testing.T) {
	e := engineFor("Foo bar\nzip\n", "foo FOO\nzip\n", "foo")

	require.Equal(t, 3, e.MatchCount())
	require.Equal(t, []Match{
		{Panel: diffview.SideOld, Line: 0, Start: 0, End: 3},
		{Panel: diffview.SideNew, Line: 0, Start: 0, End: 3},
		{Panel: diffview.SideNew, Line: 0, Start: 4, End: 7},
	}, e.Matches())
}

func TestNavigationWrapsBothWays(t *testing.T) {
	e := engineFor("a x\nb\nx\n", "a x\nb\nx\n", "x")
	require.Equal(t, 4, e.MatchCount())

	cur, _ := e.Current()
	require.Equal(t, 0, cur.Line)

	prev, ok := e.Prev()
	require.True(t, ok)
	require.Equal(t, 2, prev.Line)
	require.Equal(t, diffview.SideNew, prev.Panel)
	pos, total := e.Status()
	require.Equal(t, 4, pos)
	require.Equal(t, 4, total)

	next, _ := e.Next()
	require.Equal(t, e.Matches()[0], next)
}

func TestQueryAndMatchesSurviveConfirmAndCancel(t *testing.T) {
	e := engineFor("needle\n", "needle\n", "need")
	e.Confirm()
	require.Equal(t, Inactive, e.State())
	require.Equal(t, "need", e.Query())
	require.Equal(t, 2, e.MatchCount())

	e.Begin()
	e.Insert('n')
	e.Cancel()
	require.Equal(t, "n", e.Query())
	require.Equal(t, 2, e.MatchCount())

	e.Clear()
	require.Equal(t, "", e.Query())
	require.Equal(t, 0, e.MatchCount())
}

func TestInsertIgnoredOutsideCompose(t *testing.T) {
	e := engineFor("abc\n", "abc\n", "b")
	e.Confirm()
	e.Insert('z')

	require.Equal(t, "b", e.Query())
}

func TestBackspaceRecomputes(t *testing.T) {
	e := engineFor("ab ac\n", "", "ab")
	require.Equal(t, 1, e.MatchCount())

	e.Backspace()
	require.Equal(t, 2, e.MatchCount())
	e.Backspace()
	e.Backspace()
	require.Equal(t, 0, e.MatchCount())
}

func TestMatchesForLineMarksCurrent(t *testing.T) {
	e := engineFor("xx\n", "x\n", "x")
	require.Equal(t, 3, e.MatchCount())

	old := e.MatchesForLine(0, diffview.SideOld)
	require.Equal(t, []LineMatch{{Start: 0, End: 1, Current: true}, {Start: 1, End: 2}}, old)

	e.Next()
	require.Equal(t, []LineMatch{{Start: 0, End: 1, Current: true}}, e.MatchesForLine(0, diffview.SideNew))
	require.False(t, e.MatchesForLine(0, diffview.SideOld)[0].Current)
}

func TestSeekFromWraps(t *testing.T) {
	e := engineFor("x\ny\nx\n", "x\ny\nx\n", "x")

	m, _ := e.SeekFrom(1)
	require.Equal(t, 2, m.Line)
	m, _ = e.SeekFrom(3)
	require.Equal(t, 0, m.Line)
}

func TestFindAllKeepsRuneBoundaries(t *testing.T) {
	text := "Ünïcode ünï"
	spans := FindAll(text, []rune("ÜNÏ"))

	require.Equal(t, [][2]int{{0, 5}, {10, 15}}, spans)
	for _, s := range spans {
		require.Equal(t, "ünï", strings.ToLower(text[s[0]:s[1]]))
	}
}

func TestFindAllIsNonOverlapping(t *testing.T) {
	require.Equal(t, [][2]int{{0, 2}, {2, 4}}, FindAll("aaaaa", []rune("aa")))
}

func TestMatchesStayOrderedAndWrap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.SampledFrom([]string{"ab", "AB", "b", "é", "x", " "})
		mk := func(label string) string {
			parts := rapid.SliceOfN(word, 0, 20).Draw(t, label)
			out := ""
			for i, p := range parts {
				out += p
				if i%4 == 3 {
					out += "\n"
				}
			}
			return out
		}
		e := engineFor(mk("old"), mk("new"), rapid.SampledFrom([]string{"a", "b", "ab", "é"}).Draw(t, "q"))

		ms := e.Matches()
		for i := 1; i < len(ms); i++ {
			if ms[i].less(ms[i-1]) {
				t.Fatalf("matches out of order at %d: %+v %+v", i, ms[i-1], ms[i])
			}
		}
		if len(ms) == 0 {
			return
		}
		for i := 0; i < len(ms); i++ {
			e.Next()
		}
		cur, _ := e.Current()
		if cur != ms[0] {
			t.Fatalf("full cycle of Next did not return to first match")
		}
	})
}
