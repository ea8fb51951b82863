// Package view maintains the derived, displayable row set over an
// append-only stream of raw delimited lines. The same view definition has
// two maintenance paths: Rebuild recomputes everything from the raw store,
// AppendRecord folds in one new line incrementally. The two must always
// produce identical rows; any spec change invalidates the incremental state
// and requires a Rebuild.
package view

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"nless/internal/delim"
	"nless/internal/util/logx"
)

// ErrSpecChanged is returned by AppendRecord when the passed spec differs
// from the one the current rows were built with. The caller must Rebuild.
var ErrSpecChanged = errors.New("view spec changed since last rebuild")

// keySep joins composite key parts; a unit separator avoids collisions with
// field content.
const keySep = "\x1f"

type groupState struct {
	count     int
	firstRank int
}

// Engine owns the derived view state: display rows, the dedup count table,
// the search match index, and the malformed-line counter. The raw store is
// the source of truth; the Spec is owned by the session controller.
type Engine struct {
	store  *Store
	dspec  delim.Spec
	header []string

	rows      []Row
	groups    map[string]*groupState
	matches   *MatchIndex
	malformed int

	spec      Spec
	specValid bool
	nextID    int64
}

func NewEngine(store *Store, d delim.Spec, header []string) *Engine {
	return &Engine{
		store:   store,
		dspec:   d,
		header:  append([]string(nil), header...),
		groups:  map[string]*groupState{},
		matches: newMatchIndex(),
	}
}

func (e *Engine) Store() *Store         { return e.store }
func (e *Engine) Delimiter() delim.Spec { return e.dspec }
func (e *Engine) Header() []string      { return e.header }
func (e *Engine) Rows() []Row           { return e.rows }
func (e *Engine) Matches() *MatchIndex  { return e.matches }
func (e *Engine) Malformed() int        { return e.malformed }

// Columns returns the display column names: the header, preceded by the
// synthetic count column when dedup mode is active.
func (e *Engine) Columns(spec Spec) []string {
	if !spec.HasUnique() {
		return e.header
	}
	return append([]string{"count"}, e.header...)
}

// ChangeDelimiter re-splits the header and reflows the raw store for a new
// delimiter, invalidating every derived cache. The caller resets its spec
// and rebuilds. Returns the new header columns.
func (e *Engine) ChangeDelimiter(d delim.Spec) []string {
	// A former header line becomes data when the new spec derives columns
	// without one, and vice versa.
	if e.dspec.ConsumesHeaderLine() && !d.ConsumesHeaderLine() {
		if raw, ok := e.store.Header(); ok {
			e.store.PushFront(raw)
		}
	} else if !e.dspec.ConsumesHeaderLine() && d.ConsumesHeaderLine() {
		e.store.TakeFirst()
	}
	e.dspec = d
	if d.ConsumesHeaderLine() {
		raw, _ := e.store.Header()
		e.header = d.Header(raw)
	} else {
		e.header = d.Header("")
	}
	e.rows = nil
	e.groups = map[string]*groupState{}
	e.matches.reset(nil)
	e.malformed = 0
	e.specValid = false
	return e.header
}

// Rebuild recomputes the display rows from scratch: split and validate,
// filter, dedup/count, sort, then index search matches. Each stage runs to
// completion before the next.
func (e *Engine) Rebuild(spec Spec) []Row {
	e.spec = spec
	e.specValid = true
	e.malformed = 0
	e.groups = map[string]*groupState{}

	type parsed struct {
		cells   []string
		ordinal int
	}

	// 1. Split & validate, 2. filter.
	kept := make([]parsed, 0, e.store.Len())
	for ord, line := range e.store.Lines() {
		cells := e.dspec.Split(line)
		if len(cells) != len(e.header) {
			e.malformed++
			continue
		}
		if !e.matchesFilter(spec, cells) {
			continue
		}
		kept = append(kept, parsed{cells: cells, ordinal: ord})
	}

	// 3. Dedup/count: groups in first-seen key order, each holding the most
	// recently arrived content and the post-filter occurrence count.
	rows := make([]Row, 0, len(kept))
	if spec.HasUnique() {
		order := make([]string, 0, len(kept))
		latest := map[string]parsed{}
		for _, p := range kept {
			key := e.compositeKey(spec, p.cells)
			g, ok := e.groups[key]
			if !ok {
				g = &groupState{firstRank: p.ordinal}
				e.groups[key] = g
				order = append(order, key)
			}
			g.count++
			latest[key] = p
		}
		for _, key := range order {
			p := latest[key]
			g := e.groups[key]
			rows = append(rows, e.makeRow(spec, p.cells, p.ordinal, key, g.count, g.firstRank))
		}
	} else {
		for _, p := range kept {
			rows = append(rows, e.makeRow(spec, p.cells, p.ordinal, "", 1, p.ordinal))
		}
	}

	// 4. Sort: stable, so equal keys keep their pre-sort (rank) order.
	if spec.Sort != nil {
		if idx, ok := e.displayColIdx(spec, spec.Sort.Column); ok {
			desc := spec.Sort.Descending
			sort.SliceStable(rows, func(i, j int) bool {
				c := compareValues(rows[i].Fields[idx], rows[j].Fields[idx])
				if desc {
					return c > 0
				}
				return c < 0
			})
		} else {
			logx.Warnf("view: sort column %q not in view, leaving arrival order", spec.Sort.Column)
		}
	}

	// 5. Search highlight.
	coords := []Coord{}
	for i := range rows {
		rows[i].Matches = searchRow(spec, rows[i].Fields)
		for _, m := range rows[i].Matches {
			coords = append(coords, Coord{Row: i, Col: m.Col})
		}
	}
	e.rows = rows
	e.matches.reset(coords)
	return e.rows
}

// Delta describes the display change produced by one AppendRecord call.
type Delta struct {
	// Index is where the new row was inserted, -1 when nothing changed.
	Index int
	// Removed is the pre-insertion index of the replaced row in dedup mode,
	// -1 when none. RemovedID is its identity for the renderer.
	Removed   int
	RemovedID int64
	Row       Row
	Malformed bool
	Filtered  bool
}

// AppendRecord integrates one newly arrived raw line into the current rows,
// with results identical to a full Rebuild over the enlarged store. The spec
// must be the one the last Rebuild ran with; anything else is an error and
// the line is only recorded in the raw store.
func (e *Engine) AppendRecord(spec Spec, line string) (Delta, error) {
	ord := e.store.Append(line)
	if !e.specValid || !e.spec.Equal(spec) {
		return Delta{Index: -1, Removed: -1}, ErrSpecChanged
	}

	cells := e.dspec.Split(line)
	if len(cells) != len(e.header) {
		e.malformed++
		return Delta{Index: -1, Removed: -1, Malformed: true}, nil
	}
	if !e.matchesFilter(spec, cells) {
		return Delta{Index: -1, Removed: -1, Filtered: true}, nil
	}

	delta := Delta{Removed: -1}
	key := ""
	count := 1
	rank := ord
	oldIdx := -1
	if spec.HasUnique() {
		key = e.compositeKey(spec, cells)
		g, ok := e.groups[key]
		if !ok {
			g = &groupState{firstRank: ord}
			e.groups[key] = g
		}
		g.count++
		count = g.count
		rank = g.firstRank
		for i := range e.rows {
			if e.rows[i].Key == key {
				oldIdx = i
				break
			}
		}
	}

	if oldIdx >= 0 {
		delta.Removed = oldIdx
		delta.RemovedID = e.rows[oldIdx].ID
		e.matches.purgeRow(oldIdx)
		e.rows = append(e.rows[:oldIdx], e.rows[oldIdx+1:]...)
	}

	row := e.makeRow(spec, cells, ord, key, count, rank)
	row.Matches = searchRow(spec, row.Fields)

	idx := e.insertionIndex(spec, row, oldIdx)
	e.rows = append(e.rows, Row{})
	copy(e.rows[idx+1:], e.rows[idx:])
	e.rows[idx] = row
	e.matches.insertRow(idx, row.MatchCols())

	delta.Index = idx
	delta.Row = row
	return delta, nil
}

// insertionIndex finds where the new row belongs. Sorted views bisect on
// (sort value, rank), matching what a stable re-sort would produce; unsorted
// views append at the end, or keep a replaced dedup row at its old position
// since a rebuild orders groups by first-seen key.
func (e *Engine) insertionIndex(spec Spec, row Row, oldIdx int) int {
	if spec.Sort == nil {
		if oldIdx >= 0 {
			return oldIdx
		}
		return len(e.rows)
	}
	idx, ok := e.displayColIdx(spec, spec.Sort.Column)
	if !ok {
		if oldIdx >= 0 {
			return oldIdx
		}
		return len(e.rows)
	}
	desc := spec.Sort.Descending
	val := row.Fields[idx]
	return sort.Search(len(e.rows), func(i int) bool {
		c := compareValues(val, e.rows[i].Fields[idx])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return row.rank < e.rows[i].rank
	})
}

func (e *Engine) makeRow(spec Spec, cells []string, ordinal int, key string, count, rank int) Row {
	fields := cells
	if spec.HasUnique() {
		fields = append([]string{strconv.Itoa(count)}, cells...)
	} else {
		fields = append([]string(nil), cells...)
	}
	e.nextID++
	return Row{
		ID:      e.nextID,
		Key:     key,
		Ordinal: ordinal,
		rank:    rank,
		Count:   count,
		Fields:  fields,
	}
}

// matchesFilter applies the filter and expression tests to the raw cells
// (no synthetic count column at this stage).
func (e *Engine) matchesFilter(spec Spec, cells []string) bool {
	if spec.Filter != nil {
		f := spec.Filter
		if f.Column == AnyColumn {
			hit := false
			for _, c := range cells {
				if f.Pattern.MatchString(c) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		} else {
			idx, ok := e.dataColIdx(f.Column)
			if !ok {
				return false
			}
			if !f.Pattern.MatchString(cells[idx]) {
				return false
			}
		}
	}
	if spec.Expr != nil {
		params := make(map[string]any, len(e.header))
		for i, name := range e.header {
			if i >= len(cells) {
				break
			}
			if f, err := strconv.ParseFloat(cells[i], 64); err == nil {
				params[name] = f
			} else {
				params[name] = cells[i]
			}
		}
		res, err := spec.Expr.Evaluate(params)
		if err != nil {
			return false
		}
		b, ok := res.(bool)
		if !ok || !b {
			return false
		}
	}
	return true
}

func (e *Engine) compositeKey(spec Spec, cells []string) string {
	parts := make([]string, 0, len(spec.Unique))
	for _, name := range spec.Unique {
		idx, ok := e.dataColIdx(name)
		if !ok {
			continue
		}
		parts = append(parts, cells[idx])
	}
	return strings.Join(parts, keySep)
}

// dataColIdx resolves a column name to its index in the split cells.
func (e *Engine) dataColIdx(name string) (int, bool) {
	for i, h := range e.header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

// displayColIdx resolves a column name against the display columns, which
// include the synthetic count column in dedup mode.
func (e *Engine) displayColIdx(spec Spec, name string) (int, bool) {
	if spec.HasUnique() {
		if name == "count" {
			return 0, true
		}
		if i, ok := e.dataColIdx(name); ok {
			return i + 1, true
		}
		return 0, false
	}
	return e.dataColIdx(name)
}

func searchRow(spec Spec, fields []string) []CellMatch {
	if spec.Search == nil {
		return nil
	}
	var out []CellMatch
	for col, cell := range fields {
		locs := spec.Search.FindAllStringIndex(cell, -1)
		if len(locs) == 0 {
			continue
		}
		spans := make([]Span, len(locs))
		for i, l := range locs {
			spans[i] = Span{Start: l[0], End: l[1]}
		}
		out = append(out, CellMatch{Col: col, Spans: spans})
	}
	return out
}

// compareValues orders cell values: numbers before non-numbers, numbers by
// value, everything else by string compare. Total, so the bisect insertion
// and the stable sort agree.
func compareValues(a, b string) int {
	fa, ea := strconv.ParseFloat(a, 64)
	fb, eb := strconv.ParseFloat(b, 64)
	switch {
	case ea == nil && eb == nil:
		if fa < fb {
			return -1
		}
		if fa > fb {
			return 1
		}
		return 0
	case ea == nil:
		return -1
	case eb == nil:
		return 1
	}
	return strings.Compare(a, b)
}
