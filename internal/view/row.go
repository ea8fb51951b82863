package view

// Coord addresses one cell of the display: row index, column index.
type Coord struct {
	Row int
	Col int
}

// Span is a half-open byte range within a cell that matched the search.
type Span struct {
	Start int
	End   int
}

// CellMatch records the search hits inside one cell. The renderer decides
// how to emphasize them.
type CellMatch struct {
	Col   int
	Spans []Span
}

// Row is one derived display row. Fields holds the ordered cell values,
// including the synthetic leading count cell when dedup mode is active.
type Row struct {
	// ID is a stable identity for the rendering collaborator; it survives
	// position shifts but not content replacement.
	ID int64
	// Key is the composite dedup key; empty when dedup mode is off.
	Key string
	// Ordinal is the arrival ordinal of the row's current content.
	Ordinal int
	// rank breaks sort ties: the arrival ordinal for plain rows, the
	// first-seen ordinal of the group in dedup mode. A full rebuild's
	// stable sort orders equal keys by pre-sort sequence, which is exactly
	// this value, so the incremental bisect uses it too.
	rank    int
	Count   int
	Fields  []string
	Matches []CellMatch
}

// MatchCols returns the column indices holding at least one search hit.
func (r Row) MatchCols() []int {
	out := make([]int, 0, len(r.Matches))
	for _, m := range r.Matches {
		out = append(out, m.Col)
	}
	return out
}
