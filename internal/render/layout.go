package render

// Panels selects which diff panels are on screen.
type Panels int

const (
	PanelsSplit Panels = iota
	PanelsOld
	PanelsNew
)

const (
	footerRows  = 1
	headerRows  = 1
	borderRows  = 2
	minSidebarW = 20
	maxSidebarW = 35
)

// Layout holds content widths (inside borders) for each pane and the
// number of diff rows a panel can show.
type Layout struct {
	Width    int
	Height   int
	Sidebar  int
	Old      int
	New      int
	Panels   Panels
	DiffRows int
}

// SidebarWidth is the outer sidebar width when none is configured: a
// quarter of the screen, clamped.
func SidebarWidth(total int) int {
	w := total / 4
	if w < minSidebarW {
		w = minSidebarW
	}
	if w > maxSidebarW {
		w = maxSidebarW
	}
	return w
}

// ComputeLayout splits a width x height screen. sidebar is the configured
// outer sidebar width, or 0 for automatic.
func ComputeLayout(width, height, sidebar int, showSidebar bool, panels Panels) Layout {
	if sidebar <= 0 {
		sidebar = SidebarWidth(width)
	}
	// The sidebar's outer width includes its two border columns.
	left, right := paneWidths(width, sidebar-2, !showSidebar, panels == PanelsSplit)

	l := Layout{
		Width:    width,
		Height:   height,
		Sidebar:  left,
		Panels:   panels,
		DiffRows: max(1, height-footerRows-borderRows-headerRows),
	}
	switch panels {
	case PanelsOld:
		l.Old = right
	case PanelsNew:
		l.New = right
	default:
		l.Old, l.New = splitRightPanes(right)
	}
	return l
}

// PaneHeight is the content height of every pane.
func (l Layout) PaneHeight() int {
	return max(1, l.Height-footerRows-borderRows)
}

func paneWidths(totalWidth int, desiredLeft int, hideLeft bool, splitRight bool) (int, int) {
	if hideLeft {
		// Split panels share one divider: 3 border columns, a single
		// panel has 2.
		overhead := 2
		if splitRight {
			overhead = 3
		}
		available := totalWidth - overhead
		if available < 1 {
			return 0, 1
		}
		return 0, available
	}

	overhead := 4
	if splitRight {
		overhead = 5
	}
	available := totalWidth - overhead
	if available < 2 {
		return 1, 1
	}

	left := desiredLeft
	if left < 1 {
		left = 1
	}
	if left > available-1 {
		left = available - 1
	}
	right := available - left
	if right < 1 {
		right = 1
		left = available - right
	}
	return left, right
}

func splitRightPanes(totalWidth int) (int, int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left := totalWidth / 2
	return max(1, left), max(1, totalWidth-left)
}
