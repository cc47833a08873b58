// Package source loads the file list under review, either from the local
// git repository or from a GitHub pull request.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reviewdiff/internal/diffview"
)

var (
	ErrBadReference = errors.New("invalid reference")
	ErrBadPR        = errors.New("invalid pull request")
)

// Source produces the per-file old/new contents for one review.
type Source interface {
	Load(ctx context.Context) ([]diffview.FileDiff, error)
	// Describe is a short label for the footer.
	Describe() string
	// Local reports whether the source reads the local work tree and can
	// be watched with filesystem events.
	Local() bool
}

type RefKind int

const (
	RefWorkingTree RefKind = iota
	RefCommit
	RefRange
	RefMergeBase
)

// Reference selects what a git source compares.
type Reference struct {
	Kind RefKind
	From string
	To   string
}

func (r Reference) String() string {
	switch r.Kind {
	case RefCommit:
		return r.From
	case RefRange:
		return r.From + ".." + r.To
	case RefMergeBase:
		return r.From + "..." + r.To
	default:
		return "working tree"
	}
}

// ParseReference accepts "", a single revision, "a..b" or "a...b". An
// omitted side of a range means HEAD.
func ParseReference(s string) (Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{Kind: RefWorkingTree}, nil
	}
	if strings.ContainsAny(s, " \t\n") {
		return Reference{}, fmt.Errorf("%w: %q contains whitespace", ErrBadReference, s)
	}

	kind, sep := RefRange, ".."
	if strings.Contains(s, "...") {
		kind, sep = RefMergeBase, "..."
	} else if !strings.Contains(s, "..") {
		return Reference{Kind: RefCommit, From: s}, nil
	}

	from, to, _ := strings.Cut(s, sep)
	if from == "" && to == "" {
		return Reference{}, fmt.Errorf("%w: %q names no revision", ErrBadReference, s)
	}
	if strings.Contains(to, "..") {
		return Reference{}, fmt.Errorf("%w: %q has more than one range separator", ErrBadReference, s)
	}
	if from == "" {
		from = "HEAD"
	}
	if to == "" {
		to = "HEAD"
	}
	return Reference{Kind: kind, From: from, To: to}, nil
}

// binaryPlaceholder stands in for content that is not text.
func binaryPlaceholder(content string) string {
	if !strings.ContainsRune(content, 0) {
		return content
	}
	return fmt.Sprintf("[binary content, %d bytes]\n", len(content))
}

func filterPaths(paths, filter []string) []string {
	if len(filter) == 0 {
		return paths
	}
	out := paths[:0:0]
	for _, p := range paths {
		for _, f := range filter {
			f = strings.TrimSuffix(f, "/")
			if p == f || strings.HasPrefix(p, f+"/") {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
