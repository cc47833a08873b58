package git

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"reviewdiff/internal/util"
)

// ShowFile returns the content of path at rev. A path that does not exist
// at rev yields an empty string and no error.
func ShowFile(ctx context.Context, cwd, rev, path string) (string, error) {
	if rev == EmptyTree {
		return "", nil
	}
	out, err := util.Run(ctx, cwd, "git", "show", rev+":"+path)
	if err != nil {
		if util.ExitCode(err) == 128 && isMissingPath(err) {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

func isMissingPath(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "does not exist in") ||
		strings.Contains(msg, "exists on disk, but not in")
}

// ChangedPaths lists paths that differ between two revisions. An empty to
// compares from against the working tree.
func ChangedPaths(ctx context.Context, cwd, from, to string, filter []string) ([]string, error) {
	args := []string{"diff", "--name-only", "-z", "--no-renames", from}
	if to != "" {
		args = append(args, to)
	}
	if len(filter) > 0 {
		args = append(args, "--")
		args = append(args, filter...)
	}
	out, err := util.Run(ctx, cwd, "git", args...)
	if err != nil {
		return nil, err
	}
	return splitNUL(out), nil
}

func splitNUL(out string) []string {
	var paths []string
	for _, rec := range bytes.Split([]byte(out), []byte{0}) {
		if len(rec) > 0 {
			paths = append(paths, string(rec))
		}
	}
	sort.Strings(paths)
	return paths
}
