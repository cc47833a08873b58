package diffview

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	DefaultTabWidth = 4
	// HunkLookback is how many rows above a hunk stay visible when
	// scrolling to it.
	HunkLookback = 5
)

// ExpandTabs replaces every tab with width spaces.
func ExpandTabs(s string, width int) string {
	if width < 1 {
		width = DefaultTabWidth
	}
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", width))
}

// SplitLines splits content into physical lines. A trailing newline does
// not produce an extra empty line and CRLF endings are treated as LF.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

// Align computes the side-by-side alignment of two file versions.
//
// Lines are compared exactly after tab expansion. Equal lines come from a
// minimal line-level edit script. Inside every replace region, deleted and
// inserted lines are paired positionally as Modified up to the shorter run;
// the surplus stays Delete or Insert.
func Align(oldContent, newContent string, tabWidth int) Alignment {
	oldLines := SplitLines(ExpandTabs(oldContent, tabWidth))
	newLines := SplitLines(ExpandTabs(newContent, tabWidth))

	lines := make([]AlignedLine, 0, maxInt(len(oldLines), len(newLines)))
	oldLn, newLn := 0, 0
	dels, adds := 0, 0
	flush := func() {
		lines = pairEditRuns(lines, oldLines[oldLn:oldLn+dels], newLines[newLn:newLn+adds], &oldLn, &newLn)
		dels, adds = 0, 0
	}

	for _, op := range lineDiff(oldLines, newLines) {
		n := utf8.RuneCountInString(op.Text)
		switch op.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			for i := 0; i < n; i++ {
				lines = append(lines, AlignedLine{
					Old:    &SideLine{Number: oldLn + 1, Text: oldLines[oldLn]},
					New:    &SideLine{Number: newLn + 1, Text: newLines[newLn]},
					Change: ChangeEqual,
				})
				oldLn++
				newLn++
			}
		case diffmatchpatch.DiffDelete:
			dels += n
		case diffmatchpatch.DiffInsert:
			adds += n
		}
	}
	flush()

	return Alignment{Lines: lines, Hunks: HunkStarts(lines)}
}

// pairEditRuns appends one replace region: rows pair deleted and inserted
// lines by position and the longer run spills over as pure edits.
func pairEditRuns(out []AlignedLine, dels, adds []string, oldLn, newLn *int) []AlignedLine {
	count := maxInt(len(dels), len(adds))
	for i := 0; i < count; i++ {
		var row AlignedLine
		hasDel := i < len(dels)
		hasAdd := i < len(adds)

		if hasDel {
			row.Old = &SideLine{Number: *oldLn + 1, Text: dels[i]}
			*oldLn++
		}
		if hasAdd {
			row.New = &SideLine{Number: *newLn + 1, Text: adds[i]}
			*newLn++
		}

		switch {
		case hasDel && hasAdd:
			row.Change = ChangeModified
		case hasDel:
			row.Change = ChangeDelete
		default:
			row.Change = ChangeInsert
		}
		out = append(out, row)
	}
	return out
}

// lineDiff runs a line-granularity diff by mapping every distinct line to
// a private rune. Each op's rune count is its line count.
func lineDiff(oldLines, newLines []string) []diffmatchpatch.Diff {
	ids := make(map[string]rune, len(oldLines)+len(newLines))
	next := rune(0)
	encode := func(lines []string) []rune {
		out := make([]rune, len(lines))
		for i, line := range lines {
			r, ok := ids[line]
			if !ok {
				r = next
				ids[line] = r
				next++
				if next == 0xD800 {
					next = 0xE000
				}
			}
			out[i] = r
		}
		return out
	}
	a := encode(oldLines)
	b := encode(newLines)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return dmp.DiffMainRunes(a, b, false)
}

// HunkStarts returns the start index of every maximal run of non-equal
// lines.
func HunkStarts(lines []AlignedLine) []int {
	var hunks []int
	for i, line := range lines {
		if line.Change == ChangeEqual {
			continue
		}
		if i == 0 || lines[i-1].Change == ChangeEqual {
			hunks = append(hunks, i)
		}
	}
	return hunks
}

// InitialScroll is the default scroll position for a file: a few rows
// above the first hunk.
func InitialScroll(hunks []int) int {
	if len(hunks) == 0 {
		return 0
	}
	return maxInt(0, hunks[0]-HunkLookback)
}

// Stats counts added and removed lines. A modified row counts once on
// each side.
func Stats(lines []AlignedLine) (added, removed int) {
	for _, line := range lines {
		switch line.Change {
		case ChangeInsert:
			added++
		case ChangeDelete:
			removed++
		case ChangeModified:
			added++
			removed++
		}
	}
	return added, removed
}

// SideOffset is the number of physical lines of side that appear before
// aligned row index.
func SideOffset(lines []AlignedLine, index int, side Side) int {
	if index > len(lines) {
		index = len(lines)
	}
	n := 0
	for _, line := range lines[:maxInt(0, index)] {
		if _, ok := line.Line(side); ok {
			n++
		}
	}
	return n
}

// ChangedFiles reports the filenames whose content differs between two
// polls, including files that appeared or disappeared.
func ChangedFiles(prev, next []FileDiff) map[string]struct{} {
	before := make(map[string]FileDiff, len(prev))
	for _, f := range prev {
		before[f.Filename] = f
	}
	changed := make(map[string]struct{})
	seen := make(map[string]struct{}, len(next))
	for _, f := range next {
		seen[f.Filename] = struct{}{}
		old, ok := before[f.Filename]
		if !ok || old.OldContent != f.OldContent || old.NewContent != f.NewContent {
			changed[f.Filename] = struct{}{}
		}
	}
	for name := range before {
		if _, ok := seen[name]; !ok {
			changed[name] = struct{}{}
		}
	}
	return changed
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
