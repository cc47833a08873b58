package diffview

// ContextConfig controls the band of preceding lines shown above the
// first visible row.
type ContextConfig struct {
	Enabled  bool
	MaxLines int
}

type ContextLine struct {
	Number  int
	Content string
}

// Context returns up to cfg.MaxLines lines strictly before the 0-based
// line offset, oldest first.
func Context(content string, offset int, cfg ContextConfig, tabWidth int) []ContextLine {
	if !cfg.Enabled || offset <= 0 || cfg.MaxLines <= 0 {
		return nil
	}
	lines := SplitLines(content)
	if offset > len(lines) {
		offset = len(lines)
	}
	start := maxInt(0, offset-cfg.MaxLines)
	out := make([]ContextLine, 0, offset-start)
	for i := start; i < offset; i++ {
		out = append(out, ContextLine{
			Number:  i + 1,
			Content: ExpandTabs(lines[i], tabWidth),
		})
	}
	return out
}

// BandHeight is the number of rows a context band needs so both panels
// stay level.
func BandHeight(oldCtx, newCtx []ContextLine) int {
	return maxInt(len(oldCtx), len(newCtx))
}
