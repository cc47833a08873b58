package git

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"reviewdiff/internal/util"
)

// FileItem is one changed path from git status.
type FileItem struct {
	Path        string
	OrigPath    string // source path of a rename or copy
	Status      string
	HasStaged   bool
	HasUnstaged bool
	Untracked   bool
}

// ListChangedFiles returns the union of staged, unstaged and untracked
// paths in the work tree, sorted by path. Paths in filter narrow the
// result.
func ListChangedFiles(ctx context.Context, cwd string, filter []string) ([]FileItem, error) {
	args := []string{"status", "--porcelain=v2", "--untracked-files=all", "-z"}
	if len(filter) > 0 {
		args = append(args, "--")
		args = append(args, filter...)
	}
	out, err := util.Run(ctx, cwd, "git", args...)
	if err != nil {
		return nil, err
	}

	items, err := parsePorcelainV2Z([]byte(out))
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})
	return items, nil
}

// Field counts before the path in porcelain v2 records.
const (
	ordinaryFields = 8
	renameFields   = 9
	unmergedFields = 10
)

func parsePorcelainV2Z(data []byte) ([]FileItem, error) {
	records := bytes.Split(data, []byte{0})
	items := make([]FileItem, 0, len(records))

	for i := 0; i < len(records); i++ {
		rec := string(records[i])
		if rec == "" {
			continue
		}

		switch rec[0] {
		case '1':
			fields := strings.SplitN(rec, " ", ordinaryFields+1)
			if len(fields) != ordinaryFields+1 {
				return nil, fmt.Errorf("unexpected porcelain record: %q", rec)
			}
			items = append(items, itemFromXY(fields[ordinaryFields], fields[1]))

		case 'u':
			fields := strings.SplitN(rec, " ", unmergedFields+1)
			if len(fields) != unmergedFields+1 {
				return nil, fmt.Errorf("unexpected unmerged record: %q", rec)
			}
			items = append(items, itemFromXY(fields[unmergedFields], fields[1]))

		case '2':
			fields := strings.SplitN(rec, " ", renameFields+1)
			if len(fields) != renameFields+1 {
				return nil, fmt.Errorf("unexpected rename/copy record: %q", rec)
			}
			item := itemFromXY(fields[renameFields], fields[1])
			if i+1 < len(records) {
				i++ // -z emits the original path as its own record
				item.OrigPath = string(records[i])
			}
			items = append(items, item)

		case '?':
			items = append(items, FileItem{
				Path:        strings.TrimPrefix(rec, "? "),
				Status:      "??",
				HasUnstaged: true,
				Untracked:   true,
			})

		case '!', '#':
			continue

		default:
			return nil, fmt.Errorf("unknown porcelain record: %q", rec)
		}
	}

	return items, nil
}

func itemFromXY(path, xy string) FileItem {
	hasStaged := len(xy) > 0 && xy[0] != '.'
	hasUnstaged := len(xy) > 1 && xy[1] != '.'
	status := strings.TrimSpace(xy)
	if status == "" {
		status = ".."
	}

	return FileItem{
		Path:        path,
		Status:      status,
		HasStaged:   hasStaged,
		HasUnstaged: hasUnstaged,
	}
}
