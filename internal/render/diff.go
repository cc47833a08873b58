package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"reviewdiff/internal/diffview"
	"reviewdiff/internal/highlight"
	"reviewdiff/internal/session"
)

// panel is everything needed to draw one side.
type panel struct {
	side   diffview.Side
	width  int
	title  string
	marker bool
	single bool
	left   bool
	frags  [][]highlight.Fragment
	band   []diffview.ContextLine
}

func (r *Renderer) diffPanes(s *session.State, l Layout) []string {
	file, _ := s.CurrentFile()
	tab := s.Settings().TabWidth

	var panels []panel
	switch l.Panels {
	case PanelsOld:
		title := " [2] Old "
		if file.Status == diffview.StatusDeleted {
			title = " [2] Deleted File "
		}
		panels = []panel{{side: diffview.SideOld, width: l.Old, title: title, marker: true, left: true,
			single: file.Status == diffview.StatusDeleted}}
	case PanelsNew:
		title := " [2] New "
		if file.Status == diffview.StatusAdded {
			title = " [2] New File "
		}
		panels = []panel{{side: diffview.SideNew, width: l.New, title: title, marker: true, left: true,
			single: file.Status == diffview.StatusAdded}}
	default:
		panels = []panel{
			{side: diffview.SideOld, width: l.Old, title: " [2] Old ", marker: true, left: true},
			{side: diffview.SideNew, width: l.New, title: " New "},
		}
	}

	lines := s.Alignment().Lines
	cfg := s.Settings().Context
	var oldBand, newBand []diffview.ContextLine
	for i := range panels {
		p := &panels[i]
		content := file.OldContent
		if p.side == diffview.SideNew {
			content = file.NewContent
		}
		p.frags = r.hl.File(content, file.Filename, tab)
		offset := diffview.SideOffset(lines, s.Scroll(), p.side)
		p.band = diffview.Context(content, offset, cfg, tab)
		if p.side == diffview.SideOld {
			oldBand = p.band
		} else {
			newBand = p.band
		}
	}
	// Keep at least one diff row below the band.
	band := min(diffview.BandHeight(oldBand, newBand), l.DiffRows-1)

	out := make([]string, 0, len(panels))
	for _, p := range panels {
		out = append(out, r.renderPanel(s, p, band, l))
	}
	return out
}

func (r *Renderer) renderPanel(s *session.State, p panel, band int, l Layout) string {
	borderColor := r.theme.Border
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(r.theme.Border)
	if s.Focus() == session.FocusDiff {
		borderColor = r.theme.BorderFocused
		titleStyle = titleStyle.Foreground(r.theme.BorderFocused)
	}

	align := s.Alignment()
	numW := max(4, digits(maxLineNumber(align.Lines, p.side)))
	rows := make([]string, 0, l.DiffRows+headerRows)
	rows = append(rows, fit(titleStyle.Render(p.title), p.width))

	ctx := p.band
	if len(ctx) > band {
		ctx = ctx[len(ctx)-band:]
	}
	for i := 0; i < band; i++ {
		if i < len(ctx) {
			rows = append(rows, r.contextRow(p, ctx[i], numW))
		} else {
			rows = append(rows, r.contextPlaceholder(p, numW))
		}
	}

	start := s.Scroll()
	end := min(len(align.Lines), start+l.DiffRows-band)
	for i := start; i < end; i++ {
		rows = append(rows, r.diffRow(s, p, i, numW))
	}

	return lipgloss.NewStyle().
		Width(p.width).
		Height(l.PaneHeight()).
		MaxHeight(l.PaneHeight()+borderRows).
		Border(lipgloss.NormalBorder(), true, true, true, p.left).
		BorderForeground(borderColor).
		Render(strings.Join(rows, "\n"))
}

func (r *Renderer) diffRow(s *session.State, p panel, index, numW int) string {
	align := s.Alignment()
	line := align.Lines[index]

	var b strings.Builder
	used := 0
	if p.marker {
		mark := " "
		if inFocusedHunk(align, s.FocusedHunk(), index) {
			mark = lipgloss.NewStyle().Foreground(r.theme.HunkMarker).Render(focusMarker)
		}
		b.WriteString(mark)
		used++
	}

	sl, ok := line.Line(p.side)
	if !ok {
		b.WriteString(lipgloss.NewStyle().Foreground(r.theme.FillerFg).Render(strings.Repeat(" ", numW+1) + "|"))
		return fit(b.String(), p.width)
	}

	bg := r.changeBg(line.Change, p)
	gutter := lipgloss.NewStyle().Foreground(r.theme.LineNumber)
	if bg != nil {
		gutter = gutter.Background(bg)
	}
	prefix := fmt.Sprintf("%*d | ", numW, sl.Number)
	b.WriteString(gutter.Render(prefix))
	used += len(prefix)

	var frags []highlight.Fragment
	if sl.Number-1 < len(p.frags) {
		frags = p.frags[sl.Number-1]
	}
	matches := s.Search().MatchesForLine(index, p.side)
	textW := max(0, p.width-used)
	spans := clip(r.lineSpans(frags, sl.Text, bg, matches), s.HScroll(), textW)
	b.WriteString(renderSpans(spans))

	if pad := textW - spanWidth(spans); pad > 0 {
		fill := lipgloss.NewStyle()
		if bg != nil {
			fill = fill.Background(bg)
		}
		b.WriteString(fill.Render(strings.Repeat(" ", pad)))
	}
	return fit(b.String(), p.width)
}

func (r *Renderer) contextRow(p panel, cl diffview.ContextLine, numW int) string {
	bg := r.theme.ContextBg
	prefix := fmt.Sprintf("%*d ~ ", numW, cl.Number)
	if p.marker {
		prefix = " " + prefix
	}
	out := lipgloss.NewStyle().Foreground(r.theme.ContextFg).Background(bg).Render(prefix)

	var frags []highlight.Fragment
	if cl.Number-1 < len(p.frags) {
		frags = p.frags[cl.Number-1]
	}
	textW := max(0, p.width-len(prefix))
	spans := clip(r.lineSpans(frags, cl.Content, bg, nil), 0, textW)
	out += renderSpans(spans)
	if pad := textW - spanWidth(spans); pad > 0 {
		out += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", pad))
	}
	return fit(out, p.width)
}

func (r *Renderer) contextPlaceholder(p panel, numW int) string {
	text := strings.Repeat(" ", numW+1) + "~"
	if p.marker {
		text = " " + text
	}
	style := lipgloss.NewStyle().Foreground(r.theme.ContextFg).Background(r.theme.ContextBg)
	return style.Render(fit(text, p.width))
}

// changeBg is the row background for one side, or nil for none.
func (r *Renderer) changeBg(c diffview.Change, p panel) lipgloss.TerminalColor {
	if p.single {
		if p.side == diffview.SideNew {
			return r.theme.AddedBg
		}
		return r.theme.RemovedBg
	}
	switch {
	case c == diffview.ChangeModified && p.side == diffview.SideOld,
		c == diffview.ChangeDelete && p.side == diffview.SideOld:
		return r.theme.RemovedBg
	case c == diffview.ChangeModified && p.side == diffview.SideNew,
		c == diffview.ChangeInsert && p.side == diffview.SideNew:
		return r.theme.AddedBg
	}
	return nil
}

// inFocusedHunk reports whether the changed row index belongs to hunk h.
func inFocusedHunk(a diffview.Alignment, h, index int) bool {
	if h < 0 || h >= len(a.Hunks) || a.Lines[index].Change == diffview.ChangeEqual {
		return false
	}
	end := a.Total()
	if h+1 < len(a.Hunks) {
		end = a.Hunks[h+1]
	}
	return index >= a.Hunks[h] && index < end
}

func maxLineNumber(lines []diffview.AlignedLine, side diffview.Side) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if sl, ok := lines[i].Line(side); ok {
			return sl.Number
		}
	}
	return 0
}
