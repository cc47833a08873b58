package filetree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"reviewdiff/internal/diffview"
)

func files(names ...string) []diffview.FileDiff {
	out := make([]diffview.FileDiff, 0, len(names))
	for _, n := range names {
		out = append(out, diffview.NewFileDiff(n, "old", "new"))
	}
	return out
}

func TestBuildNestsDirectoriesAndInterleavesByName(t *testing.T) {
	entries := Flatten(Build(files("src/main.go", "README.md", "src/app/model.go", "go.mod", "src/a.go")))

	type row struct {
		name  string
		depth int
		file  bool
	}
	got := make([]row, 0, len(entries))
	for _, e := range entries {
		got = append(got, row{e.Name, e.Depth, e.IsFile()})
	}
	require.Equal(t, []row{
		{"README.md", 0, true},
		{"go.mod", 0, true},
		{"src", 0, false},
		{"a.go", 1, true},
		{"app", 1, false},
		{"model.go", 2, true},
		{"main.go", 1, true},
	}, got)
}

func TestBuildDirectoryPrecedesFileOnNameTie(t *testing.T) {
	entries := Flatten(Build(files("lib", "lib/x.go")))

	require.Equal(t, KindDir, entries[0].Kind)
	require.Equal(t, "x.go", entries[1].Name)
	require.Equal(t, KindFile, entries[2].Kind)
	require.Equal(t, 0, entries[2].FileIndex)
}

func TestBuildCarriesStatusAndPath(t *testing.T) {
	in := []diffview.FileDiff{
		diffview.NewFileDiff("pkg/new.go", "", "x"),
		diffview.NewFileDiff("pkg/gone.go", "x", ""),
	}
	entries := Flatten(Build(in))

	require.Equal(t, "pkg", entries[0].Path)
	require.Equal(t, "pkg/gone.go", entries[1].Path)
	require.Equal(t, diffview.StatusDeleted, entries[1].Status)
	require.Equal(t, 1, entries[1].FileIndex)
	require.Equal(t, diffview.StatusAdded, entries[2].Status)
}

func TestBuildEmpty(t *testing.T) {
	require.Empty(t, Build(nil))
	require.Equal(t, -1, FirstFile(Flatten(Build(nil))))
}

func TestFileNavigationSkipsDirectories(t *testing.T) {
	entries := Flatten(Build(files("a/b/c.go", "a/d.go", "z.go")))

	first := FirstFile(entries)
	require.Equal(t, 2, first)
	next := NextFile(entries, first, 1)
	require.Equal(t, "d.go", entries[next].Name)
	require.Equal(t, first, NextFile(entries, next, -1))
	require.Equal(t, -1, NextFile(entries, first, -1))
	require.Equal(t, IndexOfFile(entries, 2), NextFile(entries, next, 1))
}

func TestBuildIsDeterministicWithOneLeafPerFile(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seg := rapid.SampledFrom([]string{"a", "b", "src", "lib", "x.go", "y.go"})
		names := rapid.SliceOfNDistinct(
			rapid.Custom(func(t *rapid.T) string {
				parts := rapid.SliceOfN(seg, 1, 3).Draw(t, "parts")
				name := parts[0]
				for _, p := range parts[1:] {
					name += "/" + p
				}
				return name
			}),
			0, 12,
			func(s string) string { return s },
		).Draw(t, "names")
		in := files(names...)

		first := Flatten(Build(in))
		second := Flatten(Build(in))
		if len(first) != len(second) {
			t.Fatalf("tree size changed between builds")
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("entry %d differs: %+v vs %+v", i, first[i], second[i])
			}
		}

		seen := make(map[int]int)
		for _, e := range first {
			if e.IsFile() {
				seen[e.FileIndex]++
			}
		}
		for i := range in {
			if seen[i] != 1 {
				t.Fatalf("file %d (%s) has %d leaves", i, in[i].Filename, seen[i])
			}
		}
	})
}
