package view

import (
	"fmt"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"nless/internal/delim"
)

func newCSVEngine(t *testing.T, header string) *Engine {
	t.Helper()
	st := NewStore()
	st.SetHeader(header)
	d := delim.Literal(",")
	return NewEngine(st, d, d.Header(header))
}

func rebuildAll(e *Engine, spec Spec, lines []string) []Row {
	for _, l := range lines {
		e.Store().Append(l)
	}
	return e.Rebuild(spec)
}

func appendAll(t *testing.T, e *Engine, spec Spec, lines []string) []Row {
	t.Helper()
	e.Rebuild(spec)
	for _, l := range lines {
		_, err := e.AppendRecord(spec, l)
		require.NoError(t, err)
	}
	return e.Rows()
}

func fieldsOf(rows []Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.Fields
	}
	return out
}

func TestRebuildBasic(t *testing.T) {
	e := newCSVEngine(t, "k,v")
	rows := rebuildAll(e, Spec{}, []string{"1,a", "2,b"})
	require.Len(t, rows, 2)
	require.Equal(t, []string{"1", "a"}, rows[0].Fields)
	require.Equal(t, []string{"2", "b"}, rows[1].Fields)
}

func TestMalformedRowExcludedAndCounted(t *testing.T) {
	e := newCSVEngine(t, "a,b,c")
	rows := rebuildAll(e, Spec{}, []string{"1,2,3", "1,2"})
	require.Len(t, rows, 1)
	require.Equal(t, 1, e.Malformed())

	d, err := e.AppendRecord(Spec{}, "only,two")
	require.NoError(t, err)
	require.True(t, d.Malformed)
	require.Equal(t, -1, d.Index)
	require.Equal(t, 2, e.Malformed())
}

func TestFilterScopedToColumn(t *testing.T) {
	e := newCSVEngine(t, "first,second")
	spec := Spec{Filter: &Filter{Pattern: regexp.MustCompile(`(?i)err`), Column: "first"}}
	rows := rebuildAll(e, spec, []string{"err,ok", "ok,err"})
	require.Len(t, rows, 1)
	require.Equal(t, []string{"err", "ok"}, rows[0].Fields)
}

func TestFilterAnyColumn(t *testing.T) {
	e := newCSVEngine(t, "first,second")
	spec := Spec{Filter: &Filter{Pattern: regexp.MustCompile(`(?i)err`), Column: AnyColumn}}
	rows := rebuildAll(e, spec, []string{"err,ok", "ok,err", "ok,ok"})
	require.Len(t, rows, 2)
}

// Filters resolve against the raw header only; a column that does not exist
// there (the synthetic count column included) matches nothing. Controllers
// are expected to keep such filters from being submitted.
func TestFilterUnknownColumnMatchesNothing(t *testing.T) {
	e := newCSVEngine(t, "k,v")
	spec := Spec{
		Unique: []string{"k"},
		Filter: &Filter{Pattern: regexp.MustCompile(`2`), Column: "count"},
	}
	rows := rebuildAll(e, spec, []string{"1,a", "1,b", "2,c"})
	require.Empty(t, rows)
}

func TestDedupKeepsLatestContentAndCount(t *testing.T) {
	e := newCSVEngine(t, "k,v")
	spec := Spec{Unique: []string{"k"}}
	rows := rebuildAll(e, spec, []string{"1,a", "1,b", "2,c"})
	require.Len(t, rows, 2)
	require.Equal(t, []string{"2", "1", "b"}, rows[0].Fields)
	require.Equal(t, []string{"1", "2", "c"}, rows[1].Fields)
}

func TestDedupCountIsPostFilter(t *testing.T) {
	e := newCSVEngine(t, "k,v")
	spec := Spec{
		Filter: &Filter{Pattern: regexp.MustCompile(`keep`), Column: "v"},
		Unique: []string{"k"},
	}
	rows := rebuildAll(e, spec, []string{"1,keep", "1,drop", "1,keep2"})
	require.Len(t, rows, 1)
	require.Equal(t, []string{"2", "1", "keep2"}, rows[0].Fields)
}

func TestSortStabilityUnderAppend(t *testing.T) {
	asc := Spec{Sort: &Sort{Column: "n"}}
	e := newCSVEngine(t, "n")
	e.Rebuild(asc)
	want := [][][]string{
		{{"3"}},
		{{"1"}, {"3"}},
		{{"1"}, {"2"}, {"3"}},
	}
	for i, line := range []string{"3", "1", "2"} {
		_, err := e.AppendRecord(asc, line)
		require.NoError(t, err)
		require.Equal(t, want[i], fieldsOf(e.Rows()))
	}

	desc := Spec{Sort: &Sort{Column: "n", Descending: true}}
	e2 := newCSVEngine(t, "n")
	e2.Rebuild(desc)
	for _, line := range []string{"3", "1", "2"} {
		_, err := e2.AppendRecord(desc, line)
		require.NoError(t, err)
	}
	require.Equal(t, [][]string{{"3"}, {"2"}, {"1"}}, fieldsOf(e2.Rows()))
}

func TestNumericSortBeatsStringOrder(t *testing.T) {
	spec := Spec{Sort: &Sort{Column: "n"}}
	e := newCSVEngine(t, "n")
	e.Rebuild(spec)
	for _, line := range []string{"10", "9", "100"} {
		_, err := e.AppendRecord(spec, line)
		require.NoError(t, err)
	}
	require.Equal(t, [][]string{{"9"}, {"10"}, {"100"}}, fieldsOf(e.Rows()))
}

func TestUnsortedDedupReplacementKeepsPosition(t *testing.T) {
	e := newCSVEngine(t, "k,v")
	spec := Spec{Unique: []string{"k"}}
	e.Rebuild(spec)
	for _, l := range []string{"a,1", "b,2"} {
		_, err := e.AppendRecord(spec, l)
		require.NoError(t, err)
	}
	d, err := e.AppendRecord(spec, "a,3")
	require.NoError(t, err)
	require.Equal(t, 0, d.Removed)
	require.Equal(t, 0, d.Index)
	require.Equal(t, [][]string{{"2", "a", "3"}, {"1", "b", "2"}}, fieldsOf(e.Rows()))
}

func TestAppendAfterSpecChangeErrors(t *testing.T) {
	e := newCSVEngine(t, "k,v")
	e.Rebuild(Spec{})
	_, err := e.AppendRecord(Spec{Sort: &Sort{Column: "k"}}, "1,a")
	require.ErrorIs(t, err, ErrSpecChanged)
	// The raw line is still recorded, so the forced rebuild sees it.
	require.Equal(t, 1, e.Store().Len())
	rows := e.Rebuild(Spec{Sort: &Sort{Column: "k"}})
	require.Len(t, rows, 1)
}

func TestExpressionFilter(t *testing.T) {
	e := newCSVEngine(t, "status,path")
	spec := Spec{}
	var err error
	spec.Expr, err = CompileExpr("status >= 500")
	require.NoError(t, err)
	spec.ExprText = "status >= 500"
	rows := rebuildAll(e, spec, []string{"200,/ok", "503,/down", "500,/edge"})
	require.Len(t, rows, 2)
	require.Equal(t, "503", rows[0].Fields[0])
}

func TestSearchBuildsMatchIndexAndSpans(t *testing.T) {
	e := newCSVEngine(t, "a,b")
	spec := Spec{Search: regexp.MustCompile(`(?i)err`)}
	rows := rebuildAll(e, spec, []string{"err,ok", "ok,error"})
	require.Equal(t, 2, e.Matches().Len())
	require.Equal(t, []Coord{{Row: 0, Col: 0}, {Row: 1, Col: 1}}, e.Matches().Coords())
	require.Equal(t, []Span{{Start: 0, End: 3}}, rows[0].Matches[0].Spans)
}

// The central correctness property: any append sequence against a fixed
// spec must land on exactly the rows a full rebuild would produce.
func TestRebuildAppendEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	keys := []string{"a", "b", "c", "d"}
	lines := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf("%s,%d,%s", keys[rng.Intn(len(keys))], rng.Intn(20), []string{"ok", "err", "warn"}[rng.Intn(3)]))
	}

	specs := map[string]Spec{
		"plain":           {},
		"filter":          {Filter: &Filter{Pattern: regexp.MustCompile(`(?i)err`), Column: AnyColumn}},
		"sortAsc":         {Sort: &Sort{Column: "n"}},
		"sortDesc":        {Sort: &Sort{Column: "n", Descending: true}},
		"unique":          {Unique: []string{"k"}},
		"uniqueSort":      {Unique: []string{"k"}, Sort: &Sort{Column: "n"}},
		"uniqueSortCount": {Unique: []string{"k"}, Sort: &Sort{Column: "count", Descending: true}},
		"everything": {
			Filter: &Filter{Pattern: regexp.MustCompile(`(?i)(ok|err)`), Column: "s"},
			Unique: []string{"k", "s"},
			Sort:   &Sort{Column: "n"},
			Search: regexp.MustCompile(`err`),
		},
	}

	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			full := rebuildAll(newCSVEngine(t, "k,n,s"), spec, lines)
			inc := appendAll(t, newCSVEngine(t, "k,n,s"), spec, lines)
			require.Equal(t, fieldsOf(full), fieldsOf(inc))

			// The match index must agree as well.
			ef := newCSVEngine(t, "k,n,s")
			rebuildAll(ef, spec, lines)
			ei := newCSVEngine(t, "k,n,s")
			appendAll(t, ei, spec, lines)
			require.Equal(t, ef.Matches().Coords(), ei.Matches().Coords())
		})
	}
}

func TestChangeDelimiterReflowsHeader(t *testing.T) {
	e := newCSVEngine(t, "k,v")
	rebuildAll(e, Spec{}, []string{"1,a", "2,b"})

	// Structured -> raw: the header line becomes data again.
	h := e.ChangeDelimiter(delim.Raw())
	require.Equal(t, []string{"log"}, h)
	rows := e.Rebuild(Spec{})
	require.Len(t, rows, 3)
	require.Equal(t, []string{"k,v"}, rows[0].Fields)

	// Raw -> structured: the first line is consumed as the header.
	h = e.ChangeDelimiter(delim.Literal(","))
	require.Equal(t, []string{"k", "v"}, h)
	rows = e.Rebuild(Spec{})
	require.Len(t, rows, 2)
	require.Equal(t, []string{"1", "a"}, rows[0].Fields)
}

func TestChangeDelimiterInvalidatesAppend(t *testing.T) {
	e := newCSVEngine(t, "k,v")
	rebuildAll(e, Spec{}, []string{"1,a"})
	e.ChangeDelimiter(delim.Raw())
	_, err := e.AppendRecord(Spec{}, "anything")
	require.ErrorIs(t, err, ErrSpecChanged)
}
