package cache

import (
	"strconv"

	"reviewdiff/internal/diffview"
)

// Aligner memoizes diffview.Align by content so reloads and file switches
// only realign files whose text changed.
type Aligner struct {
	m *Manager[diffview.Alignment]
}

func NewAligner() *Aligner {
	return &Aligner{m: New[diffview.Alignment]("alignment", DefaultExpiration, DefaultCleanupInterval)}
}

func (a *Aligner) Align(f diffview.FileDiff, tabWidth int) diffview.Alignment {
	key := Key(strconv.Itoa(tabWidth), f.OldContent, f.NewContent)
	return a.m.GetOrCompute(key, func() diffview.Alignment {
		return diffview.Align(f.OldContent, f.NewContent, tabWidth)
	})
}
