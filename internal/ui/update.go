package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"nless/internal/delim"
	"nless/internal/export"
	"nless/internal/util/logx"
	"nless/internal/view"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		h := msg.Height - 3
		if h < 3 {
			h = 3
		}
		m.tbl.SetHeight(h)
		m.tbl.SetWidth(msg.Width)
		m.resizeModal()
		return m, nil

	case initMsg:
		return m, m.handleInit(msg)

	case linesMsg:
		m.handleLines(msg)
		return m, waitLines(m)

	case eofMsg:
		m.eof = true
		m.lastMsg = "end of input"
		return m, nil

	case errMsg:
		logx.Errorf("ingest: %v", msg.err)
		m.lastMsg = m.styles.Err.Render(msg.err.Error())
		return m, waitErr(m)

	case toastMsg:
		m.lastMsg = msg.text
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleInit(msg initMsg) tea.Cmd {
	store := view.NewStore()
	lines := msg.buffered
	var header []string
	if msg.spec.ConsumesHeaderLine() && len(lines) > 0 {
		store.SetHeader(lines[0].Text)
		header = msg.spec.Header(lines[0].Text)
		lines = lines[1:]
	} else {
		header = msg.spec.Header("")
	}
	m.eng = view.NewEngine(store, msg.spec, header)
	for _, l := range lines {
		store.Append(l.Text)
	}
	m.spec = view.Spec{}
	m.eng.Rebuild(m.spec)
	m.ready = true
	m.lastMsg = fmt.Sprintf("delimiter: %s", msg.spec.String())
	m.syncTable()
	if m.tailing {
		m.tbl.GotoBottom()
	}
	return tea.Batch(waitLines(m), waitErr(m))
}

func (m *Model) handleLines(msg linesMsg) {
	for _, l := range msg.batch {
		if _, err := m.eng.AppendRecord(m.spec, l.Text); err != nil {
			// The line is already in the raw store; fall back to a full
			// recompute so the two paths cannot drift apart.
			logx.Warnf("append: %v; rebuilding", err)
			m.eng.Rebuild(m.spec)
		}
	}
	m.syncTable()
	if m.tailing {
		m.tbl.GotoBottom()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.promptMode != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.modalActive {
		return m.handleModalKey(msg)
	}
	if !m.ready {
		if keyMatches(msg, m.keymap.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	km := m.keymap
	switch {
	case keyMatches(msg, km.Quit):
		return m, tea.Quit

	case msg.Type == tea.KeyLeft:
		if m.selColIdx > 0 {
			m.selColIdx--
			m.syncTable()
		}
	case msg.Type == tea.KeyRight:
		if m.selColIdx < len(m.eng.Columns(m.spec))-1 {
			m.selColIdx++
			m.syncTable()
		}

	case keyMatches(msg, km.Sort):
		m.cycleSort(m.selectedColumn())
		m.rebuildAndSync()

	case keyMatches(msg, km.Filter):
		if m.countColSelected() {
			m.lastMsg = "count is synthetic; pick a data column"
			return m, nil
		}
		m.openPrompt(promptFilter)
	case keyMatches(msg, km.FilterAny):
		m.openPrompt(promptFilterAny)
	case keyMatches(msg, km.FilterCell):
		if m.countColSelected() {
			m.lastMsg = "count is synthetic; pick a data column"
			return m, nil
		}
		m.filterCurrentCell()
	case keyMatches(msg, km.ClearFilter):
		m.spec.Filter = nil
		m.spec.Expr = nil
		m.spec.ExprText = ""
		m.filterText = ""
		m.lastMsg = "filters cleared"
		m.rebuildAndSync()

	case keyMatches(msg, km.Search):
		m.openPrompt(promptSearch)
	case keyMatches(msg, km.SearchNext):
		m.searchStep(1)
	case keyMatches(msg, km.SearchPrev):
		m.searchStep(-1)
	case keyMatches(msg, km.SearchCell):
		m.searchCurrentCell()
	case keyMatches(msg, km.SearchToFilter):
		m.searchToFilter()

	case keyMatches(msg, km.Unique):
		m.toggleUnique(m.selectedColumn())

	case keyMatches(msg, km.Delimiter):
		m.openPrompt(promptDelimiter)
	case keyMatches(msg, km.Expr):
		m.openPrompt(promptExpr)

	case keyMatches(msg, km.Tail):
		m.tailing = !m.tailing
		if m.tailing {
			m.tbl.GotoBottom()
		}

	case keyMatches(msg, km.Export):
		m.doExport()

	case keyMatches(msg, km.Top):
		m.tailing = false
		m.tbl.GotoTop()
	case keyMatches(msg, km.Bottom):
		m.tbl.GotoBottom()

	case keyMatches(msg, km.Help):
		m.openModal(modalHelp)
	case keyMatches(msg, km.AppLogs):
		m.openModal(modalLogs)

	default:
		if msg.Type == tea.KeyUp || msg.Type == tea.KeyPgUp || msg.Type == tea.KeyHome {
			m.tailing = false
		}
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.promptMode = promptNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		mode := m.promptMode
		text := m.input.Value()
		m.promptMode = promptNone
		m.input.Blur()
		m.applyPrompt(mode, strings.TrimSpace(text))
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.modalActive = false
		m.modalKind = modalNone
		return m, nil
	}
	if keyMatches(msg, m.keymap.Quit) || keyMatches(msg, m.keymap.Help) {
		m.modalActive = false
		m.modalKind = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.modalVP, cmd = m.modalVP.Update(msg)
	return m, cmd
}

func (m *Model) openPrompt(mode promptMode) {
	m.promptMode = mode
	m.input.Reset()
	switch mode {
	case promptFilter:
		m.input.Prompt = fmt.Sprintf("filter %s: ", m.selectedColumn())
		if m.spec.Filter != nil && m.spec.Filter.Column != view.AnyColumn {
			m.input.SetValue(m.filterText)
		}
	case promptFilterAny:
		m.input.Prompt = "filter any column: "
		if m.spec.Filter != nil && m.spec.Filter.Column == view.AnyColumn {
			m.input.SetValue(m.filterText)
		}
	case promptSearch:
		m.input.Prompt = "search: "
		m.input.SetValue(m.searchText)
	case promptDelimiter:
		m.input.Prompt = "delimiter: "
		m.input.SetValue(m.eng.Delimiter().String())
	case promptExpr:
		m.input.Prompt = "expr: "
		m.input.SetValue(m.spec.ExprText)
	}
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) applyPrompt(mode promptMode, text string) {
	switch mode {
	case promptFilter, promptFilterAny:
		if text == "" {
			m.spec.Filter = nil
			m.filterText = ""
			m.rebuildAndSync()
			return
		}
		re, err := regexp.Compile("(?i)" + text)
		if err != nil {
			m.lastMsg = fmt.Sprintf("bad filter: %v", err)
			return
		}
		col := view.AnyColumn
		if mode == promptFilter {
			col = m.selectedColumn()
		}
		m.spec.Filter = &view.Filter{Pattern: re, Column: col}
		m.filterText = text
		m.rebuildAndSync()

	case promptSearch:
		if text == "" {
			m.spec.Search = nil
			m.searchText = ""
			m.rebuildAndSync()
			return
		}
		re, err := regexp.Compile("(?i)" + text)
		if err != nil {
			m.lastMsg = fmt.Sprintf("bad search: %v", err)
			return
		}
		m.spec.Search = re
		m.searchText = text
		m.rebuildAndSync()
		m.jumpToMatch(m.eng.Matches().JumpFirst())

	case promptDelimiter:
		if text == "" {
			return
		}
		s, err := delim.Parse(text)
		if err != nil {
			m.lastMsg = fmt.Sprintf("bad delimiter: %v", err)
			return
		}
		m.changeDelimiter(s)

	case promptExpr:
		if text == "" {
			m.spec.Expr = nil
			m.spec.ExprText = ""
			m.rebuildAndSync()
			return
		}
		expr, err := view.CompileExpr(text)
		if err != nil {
			m.lastMsg = fmt.Sprintf("bad expr: %v", err)
			return
		}
		m.spec.Expr = expr
		m.spec.ExprText = text
		m.rebuildAndSync()
	}
}

// changeDelimiter re-splits everything and drops the whole spec: its column
// references may no longer exist under the new header.
func (m *Model) changeDelimiter(s delim.Spec) {
	m.eng.ChangeDelimiter(s)
	m.spec = view.Spec{}
	m.filterText = ""
	m.searchText = ""
	m.selColIdx = 0
	m.lastMsg = fmt.Sprintf("delimiter: %s", s.String())
	m.rebuildAndSync()
	if !m.cfg.NoCache && strings.TrimSpace(m.cfg.FilePath) != "" {
		if err := delim.SaveCached(m.cfg.FilePath, s); err != nil {
			logx.Warnf("delimiter cache: save failed: %v", err)
		}
	}
}

func (m *Model) cycleSort(col string) {
	s := m.spec.Sort
	switch {
	case s == nil || s.Column != col:
		m.spec.Sort = &view.Sort{Column: col}
	case !s.Descending:
		s.Descending = true
	default:
		m.spec.Sort = nil
	}
}

func (m *Model) toggleUnique(col string) {
	if m.countColSelected() {
		m.lastMsg = "count is synthetic; pick a data column"
		return
	}
	for i, c := range m.spec.Unique {
		if c == col {
			m.spec.Unique = append(m.spec.Unique[:i], m.spec.Unique[i+1:]...)
			m.rebuildAndSync()
			return
		}
	}
	m.spec.Unique = append(m.spec.Unique, col)
	m.rebuildAndSync()
}

func (m *Model) filterCurrentCell() {
	cell, ok := m.currentCell()
	if !ok {
		return
	}
	re := regexp.MustCompile("(?i)^" + regexp.QuoteMeta(cell) + "$")
	m.spec.Filter = &view.Filter{Pattern: re, Column: m.selectedColumn()}
	m.filterText = "^" + regexp.QuoteMeta(cell) + "$"
	m.rebuildAndSync()
}

func (m *Model) searchCurrentCell() {
	cell, ok := m.currentCell()
	if !ok {
		return
	}
	m.spec.Search = regexp.MustCompile("(?i)" + regexp.QuoteMeta(cell))
	m.searchText = regexp.QuoteMeta(cell)
	m.rebuildAndSync()
	m.jumpToMatch(m.eng.Matches().JumpFirst())
}

// searchToFilter promotes the active search pattern into an any-column
// filter and clears the search.
func (m *Model) searchToFilter() {
	if m.spec.Search == nil {
		m.lastMsg = "no active search"
		return
	}
	m.spec.Filter = &view.Filter{Pattern: m.spec.Search, Column: view.AnyColumn}
	m.filterText = m.searchText
	m.spec.Search = nil
	m.searchText = ""
	m.rebuildAndSync()
}

func (m *Model) searchStep(dir int) {
	ix := m.eng.Matches()
	var c view.Coord
	var ok bool
	if dir > 0 {
		c, ok = ix.Next()
	} else {
		c, ok = ix.Prev()
	}
	if !ok {
		m.lastMsg = "no matches"
		return
	}
	m.jumpToMatch(c, true)
}

func (m *Model) jumpToMatch(c view.Coord, ok bool) {
	if !ok {
		return
	}
	m.tailing = false
	m.tbl.SetCursor(c.Row)
	if c.Col < len(m.eng.Columns(m.spec)) {
		m.selColIdx = c.Col
	}
	m.syncTable()
}

func (m *Model) doExport() {
	format := m.cfg.ExportFormat
	if format == "" {
		format = "csv"
	}
	out := m.cfg.ExportOut
	if out == "" {
		out = fmt.Sprintf("nless-export-%s.%s", time.Now().Format("20060102-150405"), format)
	}
	cols := m.eng.Columns(m.spec)
	var err error
	if format == "json" {
		err = export.ToNDJSON(out, cols, m.eng.Rows())
	} else {
		err = export.ToCSV(out, cols, m.eng.Rows())
	}
	if err != nil {
		logx.Errorf("export: %v", err)
		m.lastMsg = fmt.Sprintf("export failed: %v", err)
		return
	}
	m.lastMsg = fmt.Sprintf("exported %d rows to %s", len(m.eng.Rows()), out)
}

func (m *Model) openModal(kind modalKind) {
	m.modalActive = true
	m.modalKind = kind
	m.resizeModal()
	switch kind {
	case modalHelp:
		m.modalVP.SetContent(renderHelp(m.keymap))
	case modalLogs:
		m.modalVP.SetContent(logx.Dump())
	}
}

func (m *Model) resizeModal() {
	w := m.termWidth - 10
	h := m.termHeight - 8
	if w < 20 {
		w = 20
	}
	if h < 5 {
		h = 5
	}
	m.modalVP = viewport.New(w, h)
	switch m.modalKind {
	case modalHelp:
		m.modalVP.SetContent(renderHelp(m.keymap))
	case modalLogs:
		m.modalVP.SetContent(logx.Dump())
	}
}

func (m *Model) rebuildAndSync() {
	if m.eng == nil {
		return
	}
	m.eng.Rebuild(m.spec)
	m.syncTable()
	if m.tailing {
		m.tbl.GotoBottom()
	}
}

// countColSelected reports whether the selection sits on the synthetic
// count column. It exists only in the display; filters run on the raw cells
// before aggregation, so it can never be a filter or dedup target.
func (m *Model) countColSelected() bool {
	return m.spec.HasUnique() && m.selColIdx == 0
}

func (m *Model) selectedColumn() string {
	cols := m.eng.Columns(m.spec)
	if len(cols) == 0 {
		return ""
	}
	if m.selColIdx >= len(cols) {
		m.selColIdx = len(cols) - 1
	}
	return cols[m.selColIdx]
}

func (m *Model) currentCell() (string, bool) {
	rows := m.eng.Rows()
	cur := m.tbl.Cursor()
	if cur < 0 || cur >= len(rows) {
		return "", false
	}
	if m.selColIdx >= len(rows[cur].Fields) {
		return "", false
	}
	return rows[cur].Fields[m.selColIdx], true
}

// syncTable pushes the engine rows into the table widget and rebuilds the
// column headers with selection, sort and dedup markers.
func (m *Model) syncTable() {
	cols := m.eng.Columns(m.spec)
	if len(cols) == 0 {
		m.tbl.SetRows(nil)
		return
	}
	if m.selColIdx >= len(cols) {
		m.selColIdx = len(cols) - 1
	}
	rows := m.eng.Rows()

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len([]rune(c)) + 3 // room for markers
	}
	for _, r := range rows {
		for i := 0; i < len(r.Fields) && i < len(widths); i++ {
			if n := len([]rune(r.Fields[i])); n > widths[i] {
				widths[i] = n
			}
		}
	}

	tcols := make([]table.Column, len(cols))
	for i, c := range cols {
		title := c
		if m.spec.Sort != nil && m.spec.Sort.Column == c {
			if m.spec.Sort.Descending {
				title += "▼"
			} else {
				title += "▲"
			}
		}
		for _, u := range m.spec.Unique {
			if u == c {
				title += "*"
				break
			}
		}
		if i == m.selColIdx {
			title = "«" + title + "»"
		}
		w := widths[i]
		if w > 48 {
			w = 48
		}
		if w < 4 {
			w = 4
		}
		tcols[i] = table.Column{Title: title, Width: w}
	}

	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r.Fields)
	}

	cur := m.tbl.Cursor()
	// Clear rows before swapping columns: bubbles' SetColumns re-renders
	// existing rows and panics if a row has fewer cells than columns.
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
	if cur >= len(trows) {
		cur = len(trows) - 1
	}
	if cur >= 0 {
		m.tbl.SetCursor(cur)
	}
}
