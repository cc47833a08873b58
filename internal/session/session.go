// Package session holds the review session: which file is shown, scroll
// positions, focus, fullscreen mode, viewed markers and search. All
// mutation happens on the UI loop; nothing here blocks.
package session

import (
	"reviewdiff/internal/diffview"
	"reviewdiff/internal/filetree"
	"reviewdiff/internal/log"
	"reviewdiff/internal/search"
)

// ViewportMargin is how many rows past the last line the view may not
// scroll, and the padding kept around a revealed line.
const ViewportMargin = 10

type Focus int

const (
	FocusSidebar Focus = iota
	FocusDiff
)

type Fullscreen int

const (
	FullscreenNone Fullscreen = iota
	FullscreenOld
	FullscreenNew
)

func (f Fullscreen) String() string {
	switch f {
	case FullscreenOld:
		return "old"
	case FullscreenNew:
		return "new"
	default:
		return "split"
	}
}

// Settings are supplied once at construction.
type Settings struct {
	TabWidth int
	Context  diffview.ContextConfig
}

// Aligner produces the alignment for a file. The default calls
// diffview.Align directly; the app injects a caching implementation.
type Aligner interface {
	Align(f diffview.FileDiff, tabWidth int) diffview.Alignment
}

type directAligner struct{}

func (directAligner) Align(f diffview.FileDiff, tabWidth int) diffview.Alignment {
	return diffview.Align(f.OldContent, f.NewContent, tabWidth)
}

type Option func(*State)

func WithAligner(a Aligner) Option {
	return func(s *State) {
		if a != nil {
			s.aligner = a
		}
	}
}

// State is the session. The current file is tracked by filename; indices
// are derived from it whenever the file list changes.
type State struct {
	settings Settings
	aligner  Aligner

	files   []diffview.FileDiff
	entries []filetree.Entry

	current     string
	currentIdx  int
	hasCurrent  bool
	sidebarSel  int
	align       diffview.Alignment
	scroll      int
	hscroll     int
	focusedHunk int
	viewport    int

	focus         Focus
	showSidebar   bool
	fullscreen    Fullscreen
	viewed        map[string]struct{}
	search        *search.Engine
	searchOrigin  int
	pendingReload bool
}

// New builds the sidebar and selects the first file in sidebar order.
func New(files []diffview.FileDiff, settings Settings, opts ...Option) *State {
	if settings.TabWidth < 1 {
		settings.TabWidth = diffview.DefaultTabWidth
	}
	s := &State{
		settings:    settings,
		aligner:     directAligner{},
		showSidebar: true,
		viewed:      make(map[string]struct{}),
		search:      search.New(),
		focusedHunk: -1,
		viewport:    2*ViewportMargin + 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setFiles(files)
	if first := filetree.FirstFile(s.entries); first >= 0 {
		s.SelectFile(s.entries[first].FileIndex)
	}
	return s
}

func (s *State) setFiles(files []diffview.FileDiff) {
	s.files = files
	s.entries = filetree.Flatten(filetree.Build(files))
}

func (s *State) Settings() Settings {
	return s.settings
}

func (s *State) Files() []diffview.FileDiff {
	return s.files
}

func (s *State) Entries() []filetree.Entry {
	return s.entries
}

func (s *State) SidebarSelected() int {
	return s.sidebarSel
}

func (s *State) Scroll() int {
	return s.scroll
}

func (s *State) HScroll() int {
	return s.hscroll
}

func (s *State) Focus() Focus {
	return s.focus
}

func (s *State) ShowSidebar() bool {
	return s.showSidebar
}

func (s *State) Fullscreen() Fullscreen {
	return s.fullscreen
}

func (s *State) PendingReload() bool {
	return s.pendingReload
}

func (s *State) Search() *search.Engine {
	return s.search
}

func (s *State) Alignment() diffview.Alignment {
	return s.align
}

func (s *State) FocusedHunk() int {
	return s.focusedHunk
}

func (s *State) ViewedCount() int {
	return len(s.viewed)
}

func (s *State) IsViewed(filename string) bool {
	_, ok := s.viewed[filename]
	return ok
}

func (s *State) SetViewportHeight(rows int) {
	s.viewport = max(1, rows)
}

func (s *State) ViewportHeight() int {
	return s.viewport
}

func (s *State) RequestReload() {
	s.pendingReload = true
}

func (s *State) Empty() bool {
	return len(s.files) == 0
}

func (s *State) CurrentFilename() (string, bool) {
	return s.current, s.hasCurrent
}

// CurrentIndex is the transient index of the current file.
func (s *State) CurrentIndex() int {
	return s.currentIdx
}

func (s *State) CurrentFile() (diffview.FileDiff, bool) {
	if !s.hasCurrent {
		return diffview.FileDiff{}, false
	}
	return s.files[s.currentIdx], true
}

// MaxScroll is the largest scroll offset for the current file.
func (s *State) MaxScroll() int {
	return max(0, s.align.Total()-ViewportMargin)
}

// DefaultScroll is the hunk-seeking scroll for the current file.
func (s *State) DefaultScroll() int {
	return min(diffview.InitialScroll(s.align.Hunks), s.MaxScroll())
}

// SelectFile switches to files[index]. Fullscreen and horizontal scroll
// reset and the vertical scroll seeks the first hunk.
func (s *State) SelectFile(index int) {
	if index < 0 || index >= len(s.files) {
		return
	}
	s.setCurrent(index)
	s.fullscreen = FullscreenNone
	s.hscroll = 0
	s.scroll = s.DefaultScroll()
	s.focusedHunk = -1
	if len(s.align.Hunks) > 0 {
		s.focusedHunk = 0
	}
}

func (s *State) setCurrent(index int) {
	s.currentIdx = index
	s.current = s.files[index].Filename
	s.hasCurrent = true
	s.refreshAlignment()
	s.syncSidebar()
}

func (s *State) refreshAlignment() {
	if !s.hasCurrent {
		s.align = diffview.Alignment{}
	} else {
		s.align = s.aligner.Align(s.files[s.currentIdx], s.settings.TabWidth)
	}
	s.search.SetLines(s.align.Lines)
}

func (s *State) syncSidebar() {
	if !s.hasCurrent {
		s.sidebarSel = 0
		return
	}
	if idx := filetree.IndexOfFile(s.entries, s.currentIdx); idx >= 0 {
		s.sidebarSel = idx
		return
	}
	s.sidebarSel = max(0, filetree.FirstFile(s.entries))
}

// NextFile selects the next file in sidebar order. It stops at the end.
func (s *State) NextFile() bool {
	return s.stepFile(1)
}

// PrevFile selects the previous file in sidebar order.
func (s *State) PrevFile() bool {
	return s.stepFile(-1)
}

func (s *State) stepFile(dir int) bool {
	next := filetree.NextFile(s.entries, s.sidebarSel, dir)
	if next < 0 {
		return false
	}
	s.SelectFile(s.entries[next].FileIndex)
	return true
}

func (s *State) ScrollTo(offset int) {
	s.scroll = clamp(offset, 0, s.MaxScroll())
	s.focusedHunk = -1
}

func (s *State) ScrollBy(delta int) {
	s.ScrollTo(s.scroll + delta)
}

func (s *State) ScrollTop() {
	s.ScrollTo(0)
}

func (s *State) ScrollBottom() {
	s.ScrollTo(s.MaxScroll())
}

func (s *State) HScrollBy(delta int) {
	s.hscroll = max(0, s.hscroll+delta)
}

func (s *State) ResetHScroll() {
	s.hscroll = 0
}

func (s *State) ToggleSidebar() {
	s.showSidebar = !s.showSidebar
	if !s.showSidebar && s.focus == FocusSidebar {
		s.focus = FocusDiff
	}
}

func (s *State) ToggleFocus() {
	if s.focus == FocusSidebar {
		s.focus = FocusDiff
		return
	}
	s.SetFocus(FocusSidebar)
}

func (s *State) SetFocus(f Focus) {
	s.focus = f
	if f == FocusSidebar {
		s.showSidebar = true
	}
}

// CycleFullscreen goes split, old only, new only, split.
func (s *State) CycleFullscreen() {
	s.fullscreen = (s.fullscreen + 1) % 3
}

func (s *State) SetFullscreen(f Fullscreen) {
	s.fullscreen = f
}

// ToggleViewed flips the viewed marker of the current file and reports
// the new value.
func (s *State) ToggleViewed() bool {
	if !s.hasCurrent {
		return false
	}
	if _, ok := s.viewed[s.current]; ok {
		delete(s.viewed, s.current)
		return false
	}
	s.viewed[s.current] = struct{}{}
	return true
}

// NextHunk scrolls so the following hunk sits a few rows below the top.
func (s *State) NextHunk() bool {
	hunks := s.align.Hunks
	target := -1
	if s.focusedHunk >= 0 {
		if s.focusedHunk+1 < len(hunks) {
			target = s.focusedHunk + 1
		}
	} else {
		anchor := s.scroll + diffview.HunkLookback
		for i, start := range hunks {
			if start > anchor {
				target = i
				break
			}
		}
	}
	return s.gotoHunk(target)
}

func (s *State) PrevHunk() bool {
	hunks := s.align.Hunks
	target := -1
	if s.focusedHunk >= 0 {
		target = s.focusedHunk - 1
	} else {
		anchor := s.scroll + diffview.HunkLookback
		for i := len(hunks) - 1; i >= 0; i-- {
			if hunks[i] < anchor {
				target = i
				break
			}
		}
	}
	return s.gotoHunk(target)
}

func (s *State) gotoHunk(i int) bool {
	if i < 0 || i >= len(s.align.Hunks) {
		return false
	}
	s.ScrollTo(s.align.Hunks[i] - diffview.HunkLookback)
	s.focusedHunk = i
	return true
}

// RevealLine scrolls just enough to keep line ViewportMargin rows inside
// the diff rows. The context band above them grows with the scroll, so
// the target is refined until it settles.
func (s *State) RevealLine(line int) {
	target := s.revealScroll(line, s.scroll)
	for i := 0; i < 3; i++ {
		next := s.revealScroll(line, clamp(target, 0, s.MaxScroll()))
		if next == target {
			break
		}
		target = next
	}
	s.ScrollTo(target)
}

func (s *State) revealScroll(line, from int) int {
	h := max(1, s.viewport-s.bandAt(from))
	switch {
	case h <= 2*ViewportMargin:
		return line - h/2
	case line < from+ViewportMargin:
		return line - ViewportMargin
	case line >= from+h-ViewportMargin:
		return line - (h - ViewportMargin - 1)
	}
	return from
}

// ContextBand is the number of context rows drawn above the diff rows at
// the current scroll. At least one diff row always remains.
func (s *State) ContextBand() int {
	return s.bandAt(s.scroll)
}

func (s *State) bandAt(scroll int) int {
	f, ok := s.CurrentFile()
	if !ok {
		return 0
	}
	showOld, showNew := true, true
	switch {
	case f.Status == diffview.StatusAdded:
		showOld = false
	case f.Status == diffview.StatusDeleted:
		showNew = false
	case s.fullscreen == FullscreenOld:
		showNew = false
	case s.fullscreen == FullscreenNew:
		showOld = false
	}

	cfg, tab := s.settings.Context, s.settings.TabWidth
	var oldCtx, newCtx []diffview.ContextLine
	if showOld {
		oldCtx = diffview.Context(f.OldContent, diffview.SideOffset(s.align.Lines, scroll, diffview.SideOld), cfg, tab)
	}
	if showNew {
		newCtx = diffview.Context(f.NewContent, diffview.SideOffset(s.align.Lines, scroll, diffview.SideNew), cfg, tab)
	}
	return min(diffview.BandHeight(oldCtx, newCtx), max(0, s.viewport-1))
}

func (s *State) BeginSearch() {
	s.searchOrigin = s.scroll
	s.search.Begin()
}

func (s *State) SearchInput(r rune) {
	s.search.Insert(r)
	s.revealFrom(s.searchOrigin)
}

func (s *State) SearchBackspace() {
	s.search.Backspace()
	s.revealFrom(s.searchOrigin)
}

func (s *State) revealFrom(line int) {
	if m, ok := s.search.SeekFrom(line); ok {
		s.RevealLine(m.Line)
	}
}

func (s *State) ConfirmSearch() {
	s.search.Confirm()
}

func (s *State) CancelSearch() {
	s.search.Cancel()
}

func (s *State) ClearSearch() {
	s.search.Clear()
}

func (s *State) NextMatch() bool {
	m, ok := s.search.Next()
	if ok {
		s.RevealLine(m.Line)
	}
	return ok
}

func (s *State) PrevMatch() bool {
	m, ok := s.search.Prev()
	if ok {
		s.RevealLine(m.Line)
	}
	return ok
}

// Reload swaps in a freshly polled file list while keeping the reviewer's
// place. Filenames in changed lose their viewed marker.
func (s *State) Reload(files []diffview.FileDiff, changed map[string]struct{}) {
	prevName, hadCurrent := s.current, s.hasCurrent
	prevScroll, prevHScroll := s.scroll, s.hscroll

	s.setFiles(files)

	s.hasCurrent = false
	s.current = ""
	s.currentIdx = 0
	if len(files) > 0 {
		idx := 0
		if hadCurrent {
			if found := indexByName(files, prevName); found >= 0 {
				idx = found
			}
		}
		s.currentIdx = idx
		s.current = files[idx].Filename
		s.hasCurrent = true
	}

	for name := range changed {
		delete(s.viewed, name)
	}

	s.syncSidebar()
	s.refreshAlignment()

	s.scroll = 0
	s.hscroll = 0
	if s.hasCurrent {
		s.scroll = clamp(prevScroll, 0, s.MaxScroll())
		s.hscroll = prevHScroll
	}
	s.focusedHunk = -1
	s.pendingReload = false

	log.Debug(log.CatSession, "reload applied", "files", len(files), "changed", len(changed), "current", s.current)
}

func indexByName(files []diffview.FileDiff, name string) int {
	for i, f := range files {
		if f.Filename == name {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
