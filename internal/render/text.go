package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"reviewdiff/internal/highlight"
	"reviewdiff/internal/search"
)

// span is a run of plain text with one style.
type span struct {
	text  string
	style lipgloss.Style
}

// lineSpans styles one line of code: syntax colors from frags, the change
// background, and search matches layered on top.
func (r *Renderer) lineSpans(frags []highlight.Fragment, text string, bg lipgloss.TerminalColor, matches []search.LineMatch) []span {
	if highlight.Text(frags) != text {
		frags = []highlight.Fragment{{Text: text, Class: chroma.Text}}
	}

	out := make([]span, 0, len(frags)+2*len(matches))
	pos := 0
	for _, f := range frags {
		base := r.theme.Syntax(f.Class)
		if bg != nil {
			base = base.Background(bg)
		}
		end := pos + len(f.Text)
		cut := pos
		for cut < end {
			next, style := end, base
			for _, m := range matches {
				switch {
				case m.Start <= cut && cut < m.End:
					next = min(next, m.End)
					style = r.matchStyle(m.Current)
				case cut < m.Start && m.Start < next:
					next = m.Start
				}
			}
			out = append(out, span{text: text[cut:next], style: style})
			cut = next
		}
		pos = end
	}
	return out
}

func (r *Renderer) matchStyle(current bool) lipgloss.Style {
	bg := r.theme.MatchBg
	if current {
		bg = r.theme.CurrentMatchBg
	}
	return lipgloss.NewStyle().Foreground(r.theme.MatchFg).Background(bg).Bold(true)
}

// clip drops the first skip display columns of spans and keeps at most
// width columns. A wide rune cut by either edge becomes a space.
func clip(spans []span, skip, width int) []span {
	if width <= 0 {
		return nil
	}
	out := make([]span, 0, len(spans))
	col := 0
	limit := skip + width
	for _, s := range spans {
		var b strings.Builder
		for _, r := range s.text {
			w := runewidth.RuneWidth(r)
			start, end := col, col+w
			col = end
			switch {
			case end <= skip:
				continue
			case start >= limit:
			case start < skip || end > limit:
				b.WriteString(strings.Repeat(" ", min(end, limit)-max(start, skip)))
			default:
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			out = append(out, span{text: b.String(), style: s.style})
		}
		if col >= limit {
			break
		}
	}
	return out
}

func spanWidth(spans []span) int {
	w := 0
	for _, s := range spans {
		w += runewidth.StringWidth(s.text)
	}
	return w
}

func renderSpans(spans []span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.style.Render(s.text))
	}
	return b.String()
}

// fit truncates or pads an already-styled string to exactly width columns.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	switch {
	case w > width:
		return ansi.Truncate(s, width, "")
	case w < width:
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// truncateMiddle shortens s to limit columns keeping both ends.
func truncateMiddle(s string, limit int) string {
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit < 5 {
		return runewidth.Truncate(s, limit, "")
	}
	half := (limit - 3) / 2
	runes := []rune(s)
	i, w := len(runes), 0
	for i > 0 && w+runewidth.RuneWidth(runes[i-1]) <= half {
		i--
		w += runewidth.RuneWidth(runes[i])
	}
	return runewidth.Truncate(s, half, "") + "..." + string(runes[i:])
}

func digits(n int) int {
	if n <= 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}
