// Package filetree groups changed files into the sidebar's directory tree.
package filetree

import (
	"sort"
	"strings"

	"reviewdiff/internal/diffview"
)

type Kind int

const (
	KindDir Kind = iota
	KindFile
)

// Node is a directory or a file leaf. FileIndex is -1 for directories.
type Node struct {
	Kind      Kind
	Name      string
	Path      string
	FileIndex int
	Status    diffview.Status
	Children  []*Node
}

// Entry is a flattened node as displayed in the sidebar.
type Entry struct {
	Kind      Kind
	Name      string
	Path      string
	Depth     int
	FileIndex int
	Status    diffview.Status
}

func (e Entry) IsFile() bool {
	return e.Kind == KindFile
}

// Build returns the top-level nodes for files. Children at every level are
// ordered by name with directories and files interleaved; on an exact name
// tie the directory comes first.
func Build(files []diffview.FileDiff) []*Node {
	root := &Node{Kind: KindDir, FileIndex: -1}
	dirs := map[string]*Node{"": root}

	for i, f := range files {
		parts := strings.Split(strings.Trim(f.Filename, "/"), "/")
		parent := root
		for d := 0; d < len(parts)-1; d++ {
			path := strings.Join(parts[:d+1], "/")
			child, ok := dirs[path]
			if !ok {
				child = &Node{Kind: KindDir, Name: parts[d], Path: path, FileIndex: -1}
				dirs[path] = child
				parent.Children = append(parent.Children, child)
			}
			parent = child
		}
		parent.Children = append(parent.Children, &Node{
			Kind:      KindFile,
			Name:      parts[len(parts)-1],
			Path:      f.Filename,
			FileIndex: i,
			Status:    f.Status,
		})
	}

	sortNodes(root.Children)
	return root.Children
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Kind != b.Kind {
			return a.Kind == KindDir
		}
		return a.FileIndex < b.FileIndex
	})
	for _, n := range nodes {
		if n.Kind == KindDir {
			sortNodes(n.Children)
		}
	}
}

// Flatten walks nodes in display order.
func Flatten(nodes []*Node) []Entry {
	out := make([]Entry, 0, len(nodes)*2)
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			out = append(out, Entry{
				Kind:      n.Kind,
				Name:      n.Name,
				Path:      n.Path,
				Depth:     depth,
				FileIndex: n.FileIndex,
				Status:    n.Status,
			})
			if n.Kind == KindDir {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
	return out
}

// FirstFile returns the index of the first file entry, or -1.
func FirstFile(entries []Entry) int {
	for i, e := range entries {
		if e.IsFile() {
			return i
		}
	}
	return -1
}

// IndexOfFile returns the entry index whose FileIndex equals fileIndex,
// or -1.
func IndexOfFile(entries []Entry, fileIndex int) int {
	for i, e := range entries {
		if e.IsFile() && e.FileIndex == fileIndex {
			return i
		}
	}
	return -1
}

// NextFile returns the next file entry after from in direction dir (+1 or
// -1), or -1 when there is none.
func NextFile(entries []Entry, from, dir int) int {
	for i := from + dir; i >= 0 && i < len(entries); i += dir {
		if entries[i].IsFile() {
			return i
		}
	}
	return -1
}
