package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		in   string
		want Reference
	}{
		{"", Reference{Kind: RefWorkingTree}},
		{"  ", Reference{Kind: RefWorkingTree}},
		{"HEAD~3", Reference{Kind: RefCommit, From: "HEAD~3"}},
		{"main..feature", Reference{Kind: RefRange, From: "main", To: "feature"}},
		{"main...feature", Reference{Kind: RefMergeBase, From: "main", To: "feature"}},
		{"main..", Reference{Kind: RefRange, From: "main", To: "HEAD"}},
		{"...feature", Reference{Kind: RefMergeBase, From: "HEAD", To: "feature"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReference(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseReferenceRejectsMalformed(t *testing.T) {
	for _, in := range []string{"..", "...", "a..b..c", "a b"} {
		_, err := ParseReference(in)
		require.Error(t, err, in)
		require.True(t, errors.Is(err, ErrBadReference), in)
	}
}

func TestReferenceString(t *testing.T) {
	require.Equal(t, "working tree", Reference{}.String())
	require.Equal(t, "a..b", Reference{Kind: RefRange, From: "a", To: "b"}.String())
	require.Equal(t, "a...b", Reference{Kind: RefMergeBase, From: "a", To: "b"}.String())
}

func TestBinaryPlaceholder(t *testing.T) {
	require.Equal(t, "text\n", binaryPlaceholder("text\n"))
	require.Equal(t, "[binary content, 4 bytes]\n", binaryPlaceholder("a\x00bc"))
}

func TestFilterPaths(t *testing.T) {
	paths := []string{"cmd/main.go", "internal/a.go", "internal/b/c.go", "internalx.go"}
	require.Equal(t, paths, filterPaths(paths, nil))
	require.Equal(t, []string{"internal/a.go", "internal/b/c.go"}, filterPaths(paths, []string{"internal/"}))
	require.Equal(t, []string{"cmd/main.go"}, filterPaths(paths, []string{"cmd/main.go"}))
}
