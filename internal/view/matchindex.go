package view

import "sort"

// MatchIndex is the ordered (row-major) list of search-match coordinates,
// with a navigable cursor. The cursor is -1 while no match is selected.
type MatchIndex struct {
	coords []Coord
	cursor int
}

func newMatchIndex() *MatchIndex { return &MatchIndex{cursor: -1} }

func (ix *MatchIndex) Len() int { return len(ix.coords) }

func (ix *MatchIndex) Coords() []Coord { return ix.coords }

// Cursor returns the current position in the match list, -1 if none.
func (ix *MatchIndex) Cursor() int { return ix.cursor }

// Current returns the selected coordinate, if any.
func (ix *MatchIndex) Current() (Coord, bool) {
	if ix.cursor < 0 || ix.cursor >= len(ix.coords) {
		return Coord{}, false
	}
	return ix.coords[ix.cursor], true
}

// Next advances the cursor, wrapping past the end. Reports false when there
// are no matches; the cursor is left unchanged in that case.
func (ix *MatchIndex) Next() (Coord, bool) { return ix.step(1) }

// Prev retreats the cursor, wrapping past the start.
func (ix *MatchIndex) Prev() (Coord, bool) { return ix.step(-1) }

func (ix *MatchIndex) step(dir int) (Coord, bool) {
	n := len(ix.coords)
	if n == 0 {
		return Coord{}, false
	}
	ix.cursor = (ix.cursor + dir + n) % n
	return ix.coords[ix.cursor], true
}

// JumpFirst selects the first match. Called once after a new search term is
// applied and produced at least one match.
func (ix *MatchIndex) JumpFirst() (Coord, bool) {
	if len(ix.coords) == 0 {
		return Coord{}, false
	}
	ix.cursor = 0
	return ix.coords[0], true
}

func (ix *MatchIndex) reset(coords []Coord) {
	ix.coords = coords
	ix.cursor = -1
}

// purgeRow drops every coordinate on the given display row and shifts rows
// below it up by one, keeping the cursor on the same surviving match.
func (ix *MatchIndex) purgeRow(row int) {
	out := ix.coords[:0]
	newCursor := ix.cursor
	for i, c := range ix.coords {
		if c.Row == row {
			if i < ix.cursor {
				newCursor--
			} else if i == ix.cursor {
				newCursor = -1
			}
			continue
		}
		if c.Row > row {
			c.Row--
		}
		out = append(out, c)
	}
	ix.coords = out
	if newCursor >= len(ix.coords) {
		newCursor = len(ix.coords) - 1
	}
	ix.cursor = newCursor
}

// insertRow shifts coordinates at or below the insertion point down by one
// and splices the new row's coordinates in at their row-major position.
func (ix *MatchIndex) insertRow(row int, cols []int) {
	for i := range ix.coords {
		if ix.coords[i].Row >= row {
			ix.coords[i].Row++
		}
	}
	if len(cols) == 0 {
		return
	}
	pos := sort.Search(len(ix.coords), func(i int) bool { return ix.coords[i].Row > row })
	add := make([]Coord, len(cols))
	for i, col := range cols {
		add[i] = Coord{Row: row, Col: col}
	}
	ix.coords = append(ix.coords[:pos], append(add, ix.coords[pos:]...)...)
	if ix.cursor >= pos {
		ix.cursor += len(add)
	}
}
