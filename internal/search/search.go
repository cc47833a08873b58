// Package search finds query matches across both panels of an aligned diff
// and tracks the current match.
package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"reviewdiff/internal/diffview"
)

type State int

const (
	Inactive State = iota
	Composing
)

// Match is one occurrence of the query. Start and End are byte offsets
// into the side text of Lines[Line] and always fall on rune boundaries.
type Match struct {
	Panel diffview.Side
	Line  int
	Start int
	End   int
}

func (a Match) less(b Match) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.Panel < b.Panel
}

// LineMatch is a match span on a single rendered line.
type LineMatch struct {
	Start   int
	End     int
	Current bool
}

// Engine holds the query, the lines it runs against and the ordered
// match list. The zero value is an inactive engine with no matches.
type Engine struct {
	state   State
	query   []rune
	lines   []diffview.AlignedLine
	matches []Match
	current int
}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Composing() bool {
	return e.state == Composing
}

func (e *Engine) Query() string {
	return string(e.query)
}

// Begin enters compose mode with an empty query.
func (e *Engine) Begin() {
	e.state = Composing
	e.query = e.query[:0]
	e.recompute()
}

func (e *Engine) Insert(r rune) {
	if e.state != Composing {
		return
	}
	e.query = append(e.query, r)
	e.recompute()
}

func (e *Engine) Backspace() {
	if e.state != Composing || len(e.query) == 0 {
		return
	}
	e.query = e.query[:len(e.query)-1]
	e.recompute()
}

// Confirm leaves compose mode keeping the query and matches.
func (e *Engine) Confirm() {
	e.state = Inactive
}

// Cancel leaves compose mode. The query and matches are kept so n/N keep
// working.
func (e *Engine) Cancel() {
	e.state = Inactive
}

// Clear drops the query and all matches.
func (e *Engine) Clear() {
	e.state = Inactive
	e.query = nil
	e.matches = nil
	e.current = 0
}

// SetLines rebinds the engine to another file's lines and recomputes.
func (e *Engine) SetLines(lines []diffview.AlignedLine) {
	e.lines = lines
	e.recompute()
}

func (e *Engine) MatchCount() int {
	return len(e.matches)
}

func (e *Engine) Matches() []Match {
	return e.matches
}

// Current returns the current match, if any.
func (e *Engine) Current() (Match, bool) {
	if len(e.matches) == 0 {
		return Match{}, false
	}
	return e.matches[e.current], true
}

// Status returns the 1-based current match position and the total.
func (e *Engine) Status() (int, int) {
	if len(e.matches) == 0 {
		return 0, 0
	}
	return e.current + 1, len(e.matches)
}

func (e *Engine) Next() (Match, bool) {
	if len(e.matches) == 0 {
		return Match{}, false
	}
	e.current = (e.current + 1) % len(e.matches)
	return e.matches[e.current], true
}

func (e *Engine) Prev() (Match, bool) {
	if len(e.matches) == 0 {
		return Match{}, false
	}
	e.current = (e.current - 1 + len(e.matches)) % len(e.matches)
	return e.matches[e.current], true
}

// SeekFrom moves the cursor to the first match on or after line, wrapping
// to the first match.
func (e *Engine) SeekFrom(line int) (Match, bool) {
	if len(e.matches) == 0 {
		return Match{}, false
	}
	idx := sort.Search(len(e.matches), func(i int) bool {
		return e.matches[i].Line >= line
	})
	if idx == len(e.matches) {
		idx = 0
	}
	e.current = idx
	return e.matches[idx], true
}

// MatchesForLine returns the spans on one line of one panel.
func (e *Engine) MatchesForLine(line int, panel diffview.Side) []LineMatch {
	lo := sort.Search(len(e.matches), func(i int) bool {
		return e.matches[i].Line >= line
	})
	var out []LineMatch
	for i := lo; i < len(e.matches) && e.matches[i].Line == line; i++ {
		m := e.matches[i]
		if m.Panel != panel {
			continue
		}
		out = append(out, LineMatch{Start: m.Start, End: m.End, Current: i == e.current})
	}
	return out
}

func (e *Engine) recompute() {
	e.matches = e.matches[:0]
	e.current = 0
	if len(e.query) == 0 {
		return
	}
	for i, line := range e.lines {
		for _, side := range []diffview.Side{diffview.SideOld, diffview.SideNew} {
			sl, ok := line.Line(side)
			if !ok {
				continue
			}
			for _, span := range FindAll(sl.Text, e.query) {
				e.matches = append(e.matches, Match{Panel: side, Line: i, Start: span[0], End: span[1]})
			}
		}
	}
	sort.SliceStable(e.matches, func(i, j int) bool {
		return e.matches[i].less(e.matches[j])
	})
}

// FindAll returns the byte spans of non-overlapping case-insensitive
// occurrences of query in text, scanning left to right.
func FindAll(text string, query []rune) [][2]int {
	if len(query) == 0 {
		return nil
	}
	var out [][2]int
	for start := 0; start < len(text); {
		if end, ok := matchAt(text, start, query); ok {
			out = append(out, [2]int{start, end})
			start = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		start += size
	}
	return out
}

func matchAt(text string, start int, query []rune) (int, bool) {
	pos := start
	for _, q := range query {
		if pos >= len(text) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(text[pos:])
		if !foldEqual(r, q) {
			return 0, false
		}
		pos += size
	}
	return pos, true
}

func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	return unicode.ToLower(a) == unicode.ToLower(b) || strings.EqualFold(string(a), string(b))
}
