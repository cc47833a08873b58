package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"reviewdiff/internal/diffview"
	"reviewdiff/internal/session"
)

func (r *Renderer) footer(s *session.State, st Status, width int) string {
	bg := lipgloss.NewStyle().Background(r.theme.FooterBg)
	dim := bg.Foreground(r.theme.Dim)
	accent := bg.Foreground(r.theme.BorderFocused)

	eng := s.Search()
	if eng.Composing() {
		line := accent.Render("/") + bg.Render(eng.Query()) + dim.Render("_")
		return fit(line+bg.Render(spaces(width-lipgloss.Width(line))), width)
	}

	file, _ := s.CurrentFile()
	hasQuery := eng.Query() != ""

	nameLimit := min(50, width-60)
	if hasQuery {
		nameLimit = min(40, width-80)
	}
	left := bg.Render(" ") +
		lipgloss.NewStyle().Foreground(r.theme.BranchFg).Background(r.theme.BranchBg).Render(" "+st.Label+" ") +
		bg.Render(" ") +
		bg.Render(truncateMiddle(file.Filename, max(0, nameLimit)))
	if s.IsViewed(file.Filename) {
		left += bg.Foreground(r.theme.Viewed).Render(" ✓")
	}
	if st.Watching {
		left += bg.Foreground(r.theme.StatusAdded).Render(" watching")
	}
	if st.Loading {
		left += dim.Render(" loading...")
	}

	var center, right string
	switch {
	case st.Alert != "":
		center = bg.Foreground(r.theme.Warn).Bold(true).Render(st.Alert)
		right = dim.Render(" ? help ")
	case hasQuery:
		cur, total := eng.Status()
		center = accent.Render(fmt.Sprintf("[%d/%d] /%s", cur, total, eng.Query()))
		right = dim.Render(" n/N navigate ")
	default:
		added, removed := diffview.Stats(s.Alignment().Lines)
		center = bg.Foreground(r.theme.StatusAdded).Render(fmt.Sprintf("+%d", added)) +
			bg.Render(" ") +
			bg.Foreground(r.theme.StatusDeleted).Render(fmt.Sprintf("-%d", removed)) +
			bg.Render(" ") +
			dim.Render(hunkLabel(s.Alignment().Hunks, s.FocusedHunk()))
		right = dim.Render(" ? help ")
	}

	leftW, centerW, rightW := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	centerStart := max(0, width/2-centerW/2)
	leftPad := max(0, centerStart-leftW)
	rightPad := max(0, width-(leftW+leftPad+centerW)-rightW)
	line := left + bg.Render(spaces(leftPad)) + center + bg.Render(spaces(rightPad)) + right
	return fit(line, width)
}

func hunkLabel(hunks []int, focused int) string {
	n := len(hunks)
	if focused >= 0 && focused < n {
		return fmt.Sprintf("(hunk %d/%d)", focused+1, n)
	}
	if n == 1 {
		return "(1 hunk)"
	}
	return fmt.Sprintf("(%d hunks)", n)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%*s", n, "")
}
