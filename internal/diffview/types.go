package diffview

// Side selects the old or new half of a side-by-side diff.
type Side int

const (
	SideOld Side = iota
	SideNew
)

func (s Side) String() string {
	if s == SideNew {
		return "new"
	}
	return "old"
}

// Status is the per-file change status derived from content emptiness.
type Status int

const (
	StatusModified Status = iota
	StatusAdded
	StatusDeleted
)

func (s Status) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	default:
		return "modified"
	}
}

// Symbol is the single-letter status shown in the sidebar.
func (s Status) Symbol() string {
	switch s {
	case StatusAdded:
		return "A"
	case StatusDeleted:
		return "D"
	default:
		return "M"
	}
}

// FileDiff holds both versions of one file. It is never mutated after
// construction; a reload replaces the whole list.
type FileDiff struct {
	Filename   string
	OldContent string
	NewContent string
	Status     Status
}

func NewFileDiff(filename, oldContent, newContent string) FileDiff {
	return FileDiff{
		Filename:   filename,
		OldContent: oldContent,
		NewContent: newContent,
		Status:     DeriveStatus(oldContent, newContent),
	}
}

func DeriveStatus(oldContent, newContent string) Status {
	switch {
	case oldContent == "" && newContent != "":
		return StatusAdded
	case oldContent != "" && newContent == "":
		return StatusDeleted
	default:
		return StatusModified
	}
}

type Change int

const (
	ChangeEqual Change = iota
	ChangeInsert
	ChangeDelete
	ChangeModified
)

func (c Change) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeModified:
		return "modified"
	default:
		return "equal"
	}
}

// SideLine is one physical line of one side. Number is 1-based.
type SideLine struct {
	Number int
	Text   string
}

// AlignedLine is one row of the side-by-side view. Old is nil for pure
// insertions and New is nil for pure deletions.
type AlignedLine struct {
	Old    *SideLine
	New    *SideLine
	Change Change
}

// Line returns the populated side, if any.
func (l AlignedLine) Line(side Side) (SideLine, bool) {
	p := l.Old
	if side == SideNew {
		p = l.New
	}
	if p == nil {
		return SideLine{}, false
	}
	return *p, true
}

// Alignment is the result of aligning two file versions.
type Alignment struct {
	Lines []AlignedLine
	// Hunks holds the index of the first line of each maximal run of
	// non-equal lines.
	Hunks []int
}

// Total is the number of aligned rows.
func (a Alignment) Total() int {
	return len(a.Lines)
}
