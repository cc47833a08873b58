package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"reviewdiff/internal/diffview"
	"reviewdiff/internal/git"
	"reviewdiff/internal/log"
)

// fetchConcurrency bounds the number of git processes per load.
const fetchConcurrency = 8

type GitOptions struct {
	Ref   Reference
	Paths []string
}

// Git reads diffs from a local repository through the git CLI.
type Git struct {
	dir  string
	opts GitOptions
}

func NewGit(dir string, opts GitOptions) *Git {
	return &Git{dir: dir, opts: opts}
}

func (g *Git) Describe() string {
	return g.opts.Ref.String()
}

func (g *Git) Local() bool {
	return g.opts.Ref.Kind == RefWorkingTree
}

func (g *Git) Load(ctx context.Context) ([]diffview.FileDiff, error) {
	root, err := git.DiscoverRepoRoot(ctx, g.dir)
	if err != nil {
		return nil, err
	}
	if g.opts.Ref.Kind == RefWorkingTree {
		return g.loadWorkingTree(ctx, root)
	}

	from, to, err := g.resolveRange(ctx, root)
	if err != nil {
		return nil, err
	}
	paths, err := git.ChangedPaths(ctx, root, from, to, g.opts.Paths)
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatGit, "changed paths", "ref", g.opts.Ref, "from", from, "to", to, "count", len(paths))

	return fetchAll(ctx, paths, func(ctx context.Context, path string) (diffview.FileDiff, error) {
		oldContent, err := git.ShowFile(ctx, root, from, path)
		if err != nil {
			return diffview.FileDiff{}, err
		}
		newContent, err := git.ShowFile(ctx, root, to, path)
		if err != nil {
			return diffview.FileDiff{}, err
		}
		return diffview.NewFileDiff(path, binaryPlaceholder(oldContent), binaryPlaceholder(newContent)), nil
	})
}

func (g *Git) resolveRange(ctx context.Context, root string) (string, string, error) {
	ref := g.opts.Ref
	resolve := func(rev string) (string, error) {
		id, err := git.ResolveCommit(ctx, root, rev)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrBadReference, rev, err)
		}
		return id, nil
	}

	from, err := resolve(ref.From)
	if err != nil {
		return "", "", err
	}
	switch ref.Kind {
	case RefCommit:
		parent, err := git.ParentOf(ctx, root, from)
		return parent, from, err
	case RefRange:
		to, err := resolve(ref.To)
		return from, to, err
	case RefMergeBase:
		to, err := resolve(ref.To)
		if err != nil {
			return "", "", err
		}
		base, err := git.MergeBase(ctx, root, from, to)
		if err != nil {
			return "", "", fmt.Errorf("%w: no merge base for %s: %v", ErrBadReference, ref, err)
		}
		return base, to, nil
	}
	return "", "", fmt.Errorf("%w: unsupported kind %d", ErrBadReference, ref.Kind)
}

func (g *Git) loadWorkingTree(ctx context.Context, root string) ([]diffview.FileDiff, error) {
	items, err := git.ListChangedFiles(ctx, root, g.opts.Paths)
	if err != nil {
		return nil, err
	}
	base := "HEAD"
	if _, err := git.ResolveCommit(ctx, root, "HEAD"); err != nil {
		// Repository without commits yet.
		base = git.EmptyTree
	}
	log.Debug(log.CatGit, "working tree changes", "count", len(items), "base", base)

	origins := make(map[string]string, len(items))
	paths := make([]string, 0, len(items))
	for _, it := range items {
		paths = append(paths, it.Path)
		origins[it.Path] = it.Path
		if it.OrigPath != "" {
			origins[it.Path] = it.OrigPath
		}
	}

	return fetchAll(ctx, paths, func(ctx context.Context, path string) (diffview.FileDiff, error) {
		oldContent, err := git.ShowFile(ctx, root, base, origins[path])
		if err != nil {
			return diffview.FileDiff{}, err
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return diffview.FileDiff{}, fmt.Errorf("read %s: %w", path, err)
		}
		return diffview.NewFileDiff(path, binaryPlaceholder(oldContent), binaryPlaceholder(string(data))), nil
	})
}

// fetchAll runs fetch for every path with bounded concurrency and keeps
// the input order.
func fetchAll(ctx context.Context, paths []string, fetch func(context.Context, string) (diffview.FileDiff, error)) ([]diffview.FileDiff, error) {
	out := make([]diffview.FileDiff, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, p := range paths {
		g.Go(func() error {
			fd, err := fetch(gctx, p)
			if err != nil {
				return err
			}
			out[i] = fd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
