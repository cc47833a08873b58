// Package theme holds the colors used by the renderer. A Theme is a plain
// value built once at startup and passed down; nothing reads it globally.
package theme

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Name string

	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Title         lipgloss.Color
	Dim           lipgloss.Color
	Warn          lipgloss.Color
	Error         lipgloss.Color

	LineNumber lipgloss.Color
	AddedBg    lipgloss.Color
	RemovedBg  lipgloss.Color
	ModifiedBg lipgloss.Color
	FillerFg   lipgloss.Color
	HunkMarker lipgloss.Color

	StatusAdded    lipgloss.Color
	StatusDeleted  lipgloss.Color
	StatusModified lipgloss.Color
	Selected       lipgloss.Color
	Viewed         lipgloss.Color

	MatchBg        lipgloss.Color
	CurrentMatchBg lipgloss.Color
	MatchFg        lipgloss.Color

	ContextFg lipgloss.Color
	ContextBg lipgloss.Color
	FooterBg  lipgloss.Color
	BranchFg  lipgloss.Color
	BranchBg  lipgloss.Color

	syntax *chroma.Style
}

func Dark() Theme {
	return Theme{
		Name:           "dark",
		Border:         "245",
		BorderFocused:  "39",
		Title:          "230",
		Dim:            "244",
		Warn:           "214",
		Error:          "203",
		LineNumber:     "242",
		AddedBg:        "22",
		RemovedBg:      "52",
		ModifiedBg:     "58",
		FillerFg:       "238",
		HunkMarker:     "39",
		StatusAdded:    "78",
		StatusDeleted:  "203",
		StatusModified: "214",
		Selected:       "39",
		Viewed:         "78",
		MatchBg:        "94",
		CurrentMatchBg: "214",
		MatchFg:        "16",
		ContextFg:      "246",
		ContextBg:      "235",
		FooterBg:       "236",
		BranchFg:       "230",
		BranchBg:       "25",
		syntax:         styles.Get("monokai"),
	}
}

func Light() Theme {
	return Theme{
		Name:           "light",
		Border:         "245",
		BorderFocused:  "27",
		Title:          "235",
		Dim:            "243",
		Warn:           "166",
		Error:          "160",
		LineNumber:     "246",
		AddedBg:        "194",
		RemovedBg:      "224",
		ModifiedBg:     "230",
		FillerFg:       "252",
		HunkMarker:     "27",
		StatusAdded:    "28",
		StatusDeleted:  "160",
		StatusModified: "130",
		Selected:       "27",
		Viewed:         "28",
		MatchBg:        "222",
		CurrentMatchBg: "208",
		MatchFg:        "16",
		ContextFg:      "240",
		ContextBg:      "255",
		FooterBg:       "254",
		BranchFg:       "231",
		BranchBg:       "31",
		syntax:         styles.Get("github"),
	}
}

// ByName resolves "dark", "light" or "auto". Auto asks the terminal.
func ByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		if lipgloss.HasDarkBackground() {
			return Dark(), nil
		}
		return Light(), nil
	case "dark":
		return Dark(), nil
	case "light":
		return Light(), nil
	}
	return Theme{}, fmt.Errorf("unknown theme %q (want auto, dark or light)", name)
}

// Syntax returns the foreground style for a token class. Classes the
// chroma style leaves uncolored render with the terminal default.
func (t Theme) Syntax(class chroma.TokenType) lipgloss.Style {
	s := lipgloss.NewStyle()
	if t.syntax == nil {
		return s
	}
	entry := t.syntax.Get(class)
	if entry.Colour.IsSet() {
		s = s.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	return s
}
