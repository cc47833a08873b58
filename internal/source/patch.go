package source

import (
	"fmt"
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// PatchFile is one file entry of a unified multi-file diff.
type PatchFile struct {
	Path     string
	OrigPath string
	Added    bool
	Deleted  bool
	Binary   bool
	Hunks    int
}

// ParsePatchFiles lists the files touched by a unified diff, in diff order.
func ParsePatchFiles(raw []byte) ([]PatchFile, error) {
	fileDiffs, err := sgdiff.ParseMultiFileDiff(raw)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	out := make([]PatchFile, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		pf := PatchFile{
			Path:     normalizePath(fd),
			OrigPath: trimSidePrefix(fd.OrigName, "a/"),
			Added:    fd.OrigName == "/dev/null",
			Deleted:  fd.NewName == "/dev/null",
			Hunks:    len(fd.Hunks),
		}
		if pf.Added || pf.OrigPath == pf.Path {
			pf.OrigPath = ""
		}
		for _, x := range fd.Extended {
			if strings.HasPrefix(x, "Binary files ") || x == "GIT binary patch" {
				pf.Binary = true
			}
			// Pure renames and mode changes carry no ---/+++ lines.
			if name, ok := strings.CutPrefix(x, "rename from "); ok {
				pf.OrigPath = name
			}
			if name, ok := strings.CutPrefix(x, "rename to "); ok && pf.Path == "" {
				pf.Path = name
			}
			if x == "new file mode" || strings.HasPrefix(x, "new file mode ") {
				pf.Added = true
			}
			if strings.HasPrefix(x, "deleted file mode ") {
				pf.Deleted = true
			}
		}
		if pf.Path == "" && len(fd.Extended) > 0 {
			pf.Path = pathFromGitHeader(fd.Extended[0])
		}
		if pf.Path == "" {
			continue
		}
		out = append(out, pf)
	}
	return out, nil
}

func normalizePath(fd *sgdiff.FileDiff) string {
	if fd.NewName != "" && fd.NewName != "/dev/null" {
		return trimSidePrefix(fd.NewName, "b/")
	}
	if fd.OrigName == "/dev/null" {
		return ""
	}
	return trimSidePrefix(fd.OrigName, "a/")
}

// trimSidePrefix drops the a/ or b/ marker of one side only, so a real
// top-level a/ or b/ directory survives.
func trimSidePrefix(path, prefix string) string {
	return strings.TrimPrefix(strings.TrimSpace(path), prefix)
}

// pathFromGitHeader takes the b/ side of "diff --git a/x b/y".
func pathFromGitHeader(header string) string {
	rest, ok := strings.CutPrefix(header, "diff --git ")
	if !ok {
		return ""
	}
	i := strings.LastIndex(rest, " b/")
	if i < 0 {
		return ""
	}
	return rest[i+3:]
}
