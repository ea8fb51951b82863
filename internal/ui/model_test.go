package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"nless/internal/config"
	"nless/internal/delim"
	"nless/internal/ingest"
)

func testModel(t *testing.T, lines ...string) *Model {
	t.Helper()
	cfg := &config.Config{Theme: config.ThemeDark, ExportFormat: "csv"}
	m := initialModel(context.Background(), cfg)
	m.termWidth = 120
	m.termHeight = 40
	buf := make([]ingest.Line, 0, len(lines))
	for _, l := range lines {
		buf = append(buf, ingest.Line{Text: l})
	}
	m.handleInit(initMsg{spec: delim.Literal(","), buffered: buf})
	return m
}

func press(m *Model, r rune) *Model {
	mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return mm.(*Model)
}

func TestSortKeyCyclesAscDescOff(t *testing.T) {
	m := testModel(t, "k,v", "2,b", "1,a", "3,c")

	m = press(m, 's')
	if got := m.tbl.Rows()[0][0]; got != "1" {
		t.Fatalf("asc first row = %q, want 1", got)
	}
	m = press(m, 's')
	if got := m.tbl.Rows()[0][0]; got != "3" {
		t.Fatalf("desc first row = %q, want 3", got)
	}
	m = press(m, 's')
	if got := m.tbl.Rows()[0][0]; got != "2" {
		t.Fatalf("unsorted first row = %q, want arrival order 2", got)
	}
	if m.spec.Sort != nil {
		t.Fatalf("third press should clear the sort")
	}
}

func TestFilterPromptAppliesAndClears(t *testing.T) {
	m := testModel(t, "k,v", "1,err", "2,ok", "3,error")

	m.applyPrompt(promptFilterAny, "err")
	if n := len(m.tbl.Rows()); n != 2 {
		t.Fatalf("filtered rows = %d, want 2", n)
	}
	m = press(m, 'c')
	if n := len(m.tbl.Rows()); n != 3 {
		t.Fatalf("rows after clear = %d, want 3", n)
	}
}

func TestUniqueToggleShowsCountColumn(t *testing.T) {
	m := testModel(t, "k,v", "1,a", "1,b", "2,c")

	m = press(m, 'u') // selected column is k
	rows := m.tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("unique rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "2" {
		t.Fatalf("count cell = %q, want 2", rows[0][0])
	}
	m.selColIdx = 1 // count is now column 0; move back onto k
	m = press(m, 'u')
	if len(m.tbl.Rows()) != 3 {
		t.Fatalf("rows after toggle off = %d, want 3", len(m.tbl.Rows()))
	}
}

func TestFilterOnCountColumnRejected(t *testing.T) {
	m := testModel(t, "k,v", "1,a", "1,b", "2,c")

	m = press(m, 'u') // dedup on k; column 0 is now the count column
	if n := len(m.tbl.Rows()); n != 2 {
		t.Fatalf("unique rows = %d, want 2", n)
	}

	m = press(m, 'f')
	if m.promptMode != promptNone {
		t.Fatalf("filter prompt opened on the count column")
	}
	m = press(m, 'F')
	if m.spec.Filter != nil {
		t.Fatalf("cell filter applied on the count column")
	}
	if n := len(m.tbl.Rows()); n != 2 {
		t.Fatalf("rows = %d after rejected filter, want 2 (group k=1 has count 2)", n)
	}
	if m.lastMsg == "" {
		t.Fatalf("rejection should explain itself in the status line")
	}

	// A data column still takes filters as usual.
	m.selColIdx = 1
	m = press(m, 'f')
	if m.promptMode != promptFilter {
		t.Fatalf("filter prompt should open on a data column")
	}
}

func TestAppendedLinesReachTable(t *testing.T) {
	m := testModel(t, "k,v", "1,a")
	m.handleLines(linesMsg{batch: []ingest.Line{{Text: "2,b"}, {Text: "3,c"}}})
	if n := len(m.tbl.Rows()); n != 3 {
		t.Fatalf("rows = %d, want 3", n)
	}
}

func TestSearchStatusCountsMatches(t *testing.T) {
	m := testModel(t, "k,v", "1,apple", "2,pear", "3,grape")

	m.applyPrompt(promptSearch, "ap")
	if got := m.eng.Matches().Len(); got != 2 {
		t.Fatalf("matches = %d, want 2", got)
	}
	if m.tbl.Cursor() != 0 {
		t.Fatalf("cursor = %d, want first match row 0", m.tbl.Cursor())
	}
	m = press(m, 'n')
	if m.tbl.Cursor() != 2 {
		t.Fatalf("cursor after n = %d, want 2", m.tbl.Cursor())
	}
}
