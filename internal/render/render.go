// Package render draws the session with lipgloss: sidebar, diff panels,
// context band, footer, empty state and overlays.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"reviewdiff/internal/diffview"
	"reviewdiff/internal/highlight"
	"reviewdiff/internal/session"
	"reviewdiff/internal/theme"
)

// focusMarker flags rows of the focused hunk.
const focusMarker = "▎"

// Status is what the footer and empty state show besides the session.
type Status struct {
	// Label names what is being reviewed: a branch, a range or a PR.
	Label    string
	Watching bool
	Loading  bool
	Alert    string
	Err      error
}

type Renderer struct {
	theme   theme.Theme
	hl      *highlight.Highlighter
	sidebar int
}

type Option func(*Renderer)

// WithSidebarWidth fixes the outer sidebar width. Zero means automatic.
func WithSidebarWidth(w int) Option {
	return func(r *Renderer) { r.sidebar = w }
}

func New(t theme.Theme, hl *highlight.Highlighter, opts ...Option) *Renderer {
	if hl == nil {
		hl = highlight.New()
	}
	r := &Renderer{theme: t, hl: hl}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) Theme() theme.Theme {
	return r.theme
}

// PanelsFor picks the panels for the current file. Added and deleted files
// have only one side worth showing.
func PanelsFor(s *session.State) Panels {
	if f, ok := s.CurrentFile(); ok {
		switch f.Status {
		case diffview.StatusAdded:
			return PanelsNew
		case diffview.StatusDeleted:
			return PanelsOld
		}
	}
	switch s.Fullscreen() {
	case session.FullscreenOld:
		return PanelsOld
	case session.FullscreenNew:
		return PanelsNew
	}
	return PanelsSplit
}

func (r *Renderer) Layout(s *session.State, width, height int) Layout {
	return ComputeLayout(width, height, r.sidebar, s.ShowSidebar(), PanelsFor(s))
}

// Render draws the whole screen.
func (r *Renderer) Render(s *session.State, st Status, width, height int) string {
	if s.Empty() {
		return r.Empty(st, width, height)
	}
	l := r.Layout(s, width, height)

	panes := make([]string, 0, 3)
	if l.Sidebar > 0 {
		panes = append(panes, r.sidebarPane(s, l.Sidebar, l.PaneHeight()))
	}
	panes = append(panes, r.diffPanes(s, l)...)

	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	return lipgloss.JoinVertical(lipgloss.Left, body, r.footer(s, st, width))
}

// Empty is shown when there is nothing to review.
func (r *Renderer) Empty(st Status, width, height int) string {
	msg := "No changes detected."
	if st.Watching {
		msg += " (watching for changes...)"
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("reviewdiff"),
		"",
		msg,
	}
	if st.Label != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(r.theme.Dim).Render(st.Label))
	}
	if st.Loading {
		lines = append(lines, lipgloss.NewStyle().Foreground(r.theme.Dim).Render("loading..."))
	}
	if st.Err != nil {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(r.theme.Error).Render("error: "+st.Err.Error()))
	}

	innerW := max(1, width-2)
	for i, line := range lines {
		lines[i] = fit(line, innerW)
	}
	return lipgloss.NewStyle().
		Width(innerW).
		Height(max(1, height-2)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.theme.Border).
		Render(strings.Join(lines, "\n"))
}

func (r *Renderer) sidebarPane(s *session.State, width, height int) string {
	borderColor := r.theme.Border
	if s.Focus() == session.FocusSidebar {
		borderColor = r.theme.BorderFocused
	}

	title := fmt.Sprintf("[1] Files (%d)", len(s.Files()))
	if n := s.ViewedCount(); n > 0 {
		title += fmt.Sprintf(" %d/%d viewed", n, len(s.Files()))
	}
	lines := []string{fit(lipgloss.NewStyle().Bold(true).Render(title), width), ""}

	entries := s.Entries()
	rows := max(1, height-len(lines))
	selected := s.SidebarSelected()
	start := 0
	if selected >= rows {
		start = selected - rows + 1
	}
	end := min(len(entries), start+rows)

	dim := lipgloss.NewStyle().Foreground(r.theme.Dim)
	for i := start; i < end; i++ {
		e := entries[i]
		prefix := "  "
		if i == selected {
			prefix = "> "
		}
		indent := strings.Repeat("  ", e.Depth)
		if !e.IsFile() {
			lines = append(lines, fit(dim.Render(prefix+indent+e.Name+"/"), width))
			continue
		}

		name := lipgloss.NewStyle()
		if i == selected {
			name = name.Foreground(r.theme.Selected).Bold(true)
		}
		line := prefix + indent +
			lipgloss.NewStyle().Foreground(r.statusColor(e.Status)).Render(e.Status.Symbol()) + " " +
			name.Render(e.Name)
		if s.IsViewed(e.Path) {
			line += lipgloss.NewStyle().Foreground(r.theme.Viewed).Render(" ✓")
		}
		lines = append(lines, fit(line, width))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height + 2).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Render(strings.Join(lines, "\n"))
}

func (r *Renderer) statusColor(st diffview.Status) lipgloss.Color {
	switch st {
	case diffview.StatusAdded:
		return r.theme.StatusAdded
	case diffview.StatusDeleted:
		return r.theme.StatusDeleted
	}
	return r.theme.StatusModified
}
