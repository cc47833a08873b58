package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Dock is a titled, bordered box sized for width columns.
func (r *Renderer) Dock(title, body string, width int) string {
	contentW := max(10, width-2)
	titleBar := lipgloss.NewStyle().
		Width(contentW).
		Padding(0, 1).
		Bold(true).
		Foreground(r.theme.Title).
		Background(r.theme.BranchBg).
		Render(ansi.Truncate(title, max(1, contentW-2), ""))

	bodyBlock := lipgloss.NewStyle().
		Width(contentW).
		Padding(1, 2).
		Render(body)

	return lipgloss.NewStyle().
		Width(contentW).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.theme.BorderFocused).
		Render(titleBar + "\n" + bodyBlock)
}

// Overlay draws overlay centered on top of base.
func Overlay(base, overlay string, width, height int) string {
	baseLines := normalizeCanvas(base, width, height)
	overlayLines := strings.Split(overlay, "\n")
	overlayW := lipgloss.Width(overlay)
	overlayH := len(overlayLines)
	if overlayW <= 0 || overlayH <= 0 {
		return strings.Join(baseLines, "\n")
	}

	x := max(0, (width-overlayW)/2)
	y := max(0, (height-overlayH)/2)
	for i, ol := range overlayLines {
		row := y + i
		if row >= len(baseLines) {
			break
		}
		baseLines[row] = overlayLine(baseLines[row], ol, x, overlayW, width)
	}
	return strings.Join(baseLines, "\n")
}

func normalizeCanvas(s string, width, height int) []string {
	width, height = max(1, width), max(1, height)
	raw := strings.Split(s, "\n")
	lines := make([]string, height)
	for i := range lines {
		if i < len(raw) {
			lines[i] = fit(raw[i], width)
		} else {
			lines[i] = strings.Repeat(" ", width)
		}
	}
	return lines
}

// overlayLine splices overlay into base at column x. The left part keeps
// its styling; the right part is drawn plain.
func overlayLine(base, overlay string, x, overlayW, totalW int) string {
	if overlayW <= 0 || x >= totalW {
		return base
	}
	if x+overlayW > totalW {
		overlay = ansi.Truncate(overlay, totalW-x, "")
		overlayW = lipgloss.Width(overlay)
	}
	left := fit(ansi.Truncate(base, x, ""), x)

	var right strings.Builder
	col := 0
	for _, r := range ansi.Strip(base) {
		w := runewidth.RuneWidth(r)
		if col >= x+overlayW {
			right.WriteRune(r)
		} else if col+w > x+overlayW {
			right.WriteString(strings.Repeat(" ", col+w-x-overlayW))
		}
		col += w
	}
	return left + "\x1b[0m" + overlay + right.String()
}
