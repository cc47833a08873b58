package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reviewdiff/internal/diffview"
)

func TestGetOrComputeRunsOnce(t *testing.T) {
	m := New[int]("test", DefaultExpiration, DefaultCleanupInterval)
	calls := 0
	fn := func() int {
		calls++
		return 42
	}

	require.Equal(t, 42, m.GetOrCompute("k", fn))
	require.Equal(t, 42, m.GetOrCompute("k", fn))
	require.Equal(t, 1, calls)
	require.Equal(t, 1, m.Len())

	m.Flush()
	_, ok := m.Get("k")
	require.False(t, ok)
}

func TestKeyIsLengthPrefixed(t *testing.T) {
	require.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	require.Equal(t, Key("x", "y"), Key("x", "y"))
}

func TestAlignerMatchesDirectAlignment(t *testing.T) {
	a := NewAligner()
	f := diffview.NewFileDiff("a.go", "a\nb\n", "a\nc\n")

	got := a.Align(f, 4)
	require.Equal(t, diffview.Align(f.OldContent, f.NewContent, 4), got)
	require.Equal(t, got, a.Align(f, 4))
	require.Equal(t, 1, a.m.Len())

	a.Align(f, 8)
	require.Equal(t, 2, a.m.Len())
}
