package render

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"reviewdiff/internal/diffview"
	"reviewdiff/internal/highlight"
	"reviewdiff/internal/search"
	"reviewdiff/internal/session"
	"reviewdiff/internal/theme"
)

func newState(files ...diffview.FileDiff) *session.State {
	return session.New(files, session.Settings{
		TabWidth: 4,
		Context:  diffview.ContextConfig{Enabled: true, MaxLines: 3},
	})
}

func draw(t *testing.T, s *session.State, st Status, width, height int) []string {
	t.Helper()
	r := New(theme.Dark(), highlight.New())
	s.SetViewportHeight(r.Layout(s, width, height).DiffRows)
	out := ansi.Strip(r.Render(s, st, width, height))
	return strings.Split(out, "\n")
}

func TestRenderFillsScreen(t *testing.T) {
	s := newState(
		diffview.NewFileDiff("pkg/a.go", "a\nb\nc\n", "a\nB\nc\nd\n"),
		diffview.NewFileDiff("z.txt", "x\n", "y\n"),
	)
	lines := draw(t, s, Status{Label: "main"}, 100, 20)

	require.Len(t, lines, 20)
	for i, line := range lines {
		require.Equal(t, 100, lipgloss.Width(line), "line %d: %q", i, line)
	}
	screen := strings.Join(lines, "\n")
	require.Contains(t, screen, "[1] Files (2)")
	require.Contains(t, screen, "pkg/")
	require.Contains(t, screen, "[2] Old")
	require.Contains(t, screen, "New")
	require.Contains(t, screen, "   2 | B")
	require.Contains(t, screen, "+2 -1")
	require.Contains(t, screen, "(hunk 1/2)")
	require.Contains(t, lines[len(lines)-1], " main ")
	require.Contains(t, lines[len(lines)-1], "pkg/a.go")
}

func TestRenderFocusedHunkMarker(t *testing.T) {
	s := newState(diffview.NewFileDiff("a.txt", "a\nb\n", "a\nc\n"))
	screen := strings.Join(draw(t, s, Status{}, 80, 12), "\n")
	require.Contains(t, screen, focusMarker)

	s.ScrollBy(0)
	screen = strings.Join(draw(t, s, Status{}, 80, 12), "\n")
	require.NotContains(t, screen, focusMarker)
}

func TestRenderAddedFileUsesSinglePanel(t *testing.T) {
	s := newState(diffview.NewFileDiff("new.txt", "", "hello\n"))
	screen := strings.Join(draw(t, s, Status{}, 80, 12), "\n")
	require.Contains(t, screen, "[2] New File")
	require.NotContains(t, screen, "[2] Old")
	require.Contains(t, screen, "   1 | hello")
}

func TestRenderFullscreenOld(t *testing.T) {
	s := newState(diffview.NewFileDiff("a.txt", "a\nb\n", "a\nc\n"))
	s.SetFullscreen(session.FullscreenOld)
	screen := strings.Join(draw(t, s, Status{}, 80, 12), "\n")
	require.Contains(t, screen, "[2] Old")
	require.NotContains(t, screen, " New ")
}

func TestRenderSearchFooter(t *testing.T) {
	s := newState(diffview.NewFileDiff("a.txt", "foo\nbar\n", "foo\nbaz\n"))
	s.BeginSearch()
	for _, r := range "fo" {
		s.SearchInput(r)
	}
	lines := draw(t, s, Status{}, 80, 12)
	require.True(t, strings.HasPrefix(lines[len(lines)-1], "/fo_"))

	s.ConfirmSearch()
	lines = draw(t, s, Status{}, 80, 12)
	require.Contains(t, lines[len(lines)-1], "[1/2] /fo")
	require.Contains(t, lines[len(lines)-1], "n/N navigate")
}

func TestRenderContextBand(t *testing.T) {
	old := "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\nl9\nl10\nl11\nl12\n"
	s := newState(diffview.NewFileDiff("a.txt", old, strings.Replace(old, "l11", "L11", 1)))
	require.Greater(t, s.Scroll(), 0)

	screen := strings.Join(draw(t, s, Status{}, 80, 20), "\n")
	prev := s.Scroll()
	require.Contains(t, screen, " ~ l"+strconv.Itoa(prev))
}

func TestRenderShowsRevealedMatchBelowTallBand(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 300; i++ {
		b.WriteString("row " + strconv.Itoa(i) + "\n")
	}
	old := b.String()
	s := session.New([]diffview.FileDiff{
		diffview.NewFileDiff("a.txt", old, strings.Replace(old, "row 201\n", "needle 201\n", 1)),
	}, session.Settings{TabWidth: 4, Context: diffview.ContextConfig{Enabled: true, MaxLines: 15}})

	r := New(theme.Dark(), highlight.New())
	s.SetViewportHeight(r.Layout(s, 100, 40).DiffRows)
	s.ScrollTop()
	s.BeginSearch()
	for _, c := range "needle" {
		s.SearchInput(c)
	}
	s.ConfirmSearch()
	require.Equal(t, 15, s.ContextBand())

	screen := ansi.Strip(r.Render(s, Status{}, 100, 40))
	require.Contains(t, screen, "needle 201")
}

func TestRenderEmpty(t *testing.T) {
	s := newState()
	screen := strings.Join(draw(t, s, Status{Watching: true, Err: errors.New("boom")}, 60, 10), "\n")
	require.Contains(t, screen, "No changes detected. (watching for changes...)")
	require.Contains(t, screen, "error: boom")
}

func TestLineSpansLayerMatchesOverSyntax(t *testing.T) {
	r := New(theme.Dark(), nil)
	frags := highlight.File("return value\n", "a.go", 4)[0]
	spans := r.lineSpans(frags, "return value", nil, []search.LineMatch{{Start: 4, End: 9}})
	require.Equal(t, "return value", joinSpans(spans))

	// Without fragments the line is one plain run split around the match.
	spans = r.lineSpans(nil, "return value", nil, []search.LineMatch{{Start: 4, End: 9, Current: true}})
	var texts []string
	for _, s := range spans {
		texts = append(texts, s.text)
	}
	require.Equal(t, []string{"retu", "rn va", "lue"}, texts)
}

func TestClipHandlesWideRunes(t *testing.T) {
	spans := []span{{text: "a世界b"}}
	require.Equal(t, "a世", joinSpans(clip(spans, 0, 3)))
	require.Equal(t, " 界", joinSpans(clip(spans, 2, 3)))
	require.Equal(t, "a ", joinSpans(clip(spans, 0, 2)))
	require.Empty(t, clip(spans, 0, 0))
}

func TestTruncateMiddle(t *testing.T) {
	require.Equal(t, "short.go", truncateMiddle("short.go", 20))
	got := truncateMiddle("internal/very/long/path/file.go", 15)
	require.Equal(t, "intern...ile.go", got)
	require.Equal(t, "abc", truncateMiddle("abcdef", 3))
}

func TestOverlayCentersBox(t *testing.T) {
	base := strings.Repeat(strings.Repeat(".", 10)+"\n", 4) + strings.Repeat(".", 10)
	out := Overlay(base, "XX\nXX", 10, 5)
	lines := strings.Split(ansi.Strip(out), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "....XX....", lines[1])
	require.Equal(t, "....XX....", lines[2])
	require.Equal(t, "..........", lines[0])
}

func joinSpans(spans []span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.text)
	}
	return b.String()
}
