package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reviewdiff/internal/util"
)

// ErrNotGitRepo is returned when the working directory is outside a git
// work tree.
var ErrNotGitRepo = errors.New("not a git repository")

// EmptyTree is the well-known id of git's empty tree. It stands in for the
// parent of a root commit.
const EmptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

func DiscoverRepoRoot(ctx context.Context, cwd string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotGitRepo, err)
	}
	return strings.TrimSpace(out), nil
}

func DiscoverGitDir(ctx context.Context, cwd string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotGitRepo, err)
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch, or the short commit id
// when HEAD is detached.
func CurrentBranch(ctx context.Context, cwd string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch != "HEAD" {
		return branch, nil
	}
	out, err = util.Run(ctx, cwd, "git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ResolveCommit verifies that rev names a commit and returns its id.
func ResolveCommit(ctx context.Context, cwd, rev string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ParentOf returns the first parent of commit, or EmptyTree for a root
// commit.
func ParentOf(ctx context.Context, cwd, commit string) (string, error) {
	parent, err := ResolveCommit(ctx, cwd, commit+"^")
	if err != nil {
		if util.ExitCode(err) == 1 {
			return EmptyTree, nil
		}
		return "", err
	}
	return parent, nil
}

func MergeBase(ctx context.Context, cwd, a, b string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "merge-base", a, b)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RemoteURL returns the fetch URL of the named remote.
func RemoteURL(ctx context.Context, cwd, remote string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
