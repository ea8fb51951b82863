package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

func (m *Model) View() string {
	if !m.ready {
		return m.styles.Status.Render("waiting for data... [q]=quit")
	}
	v := m.renderMain()
	if m.modalActive {
		// Dim the background content while keeping it visible
		dimmed := lipgloss.NewStyle().Faint(true).Render(v)
		v = overlay(dimmed, m.renderModal())
	}
	return v
}

func (m *Model) renderMain() string {
	tv := m.tbl.View()

	var bottom string
	if m.promptMode != promptNone {
		bottom = m.input.View() + "    [enter]=apply [esc]=cancel"
	} else if s := m.activeSpecSummary(); s != "" {
		bottom = m.styles.Base.Render(s)
	}
	if bottom == "" && m.termWidth > 0 {
		bottom = strings.Repeat(" ", m.termWidth)
	}

	status := m.statusLine()
	if m.termWidth > 0 {
		status = truncate.StringWithTail(status, uint(m.termWidth), "…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, tv, bottom, m.styles.Status.Render(status))
}

// activeSpecSummary is the persistent line above the status bar describing
// the filters currently shaping the view.
func (m *Model) activeSpecSummary() string {
	parts := []string{}
	if f := m.spec.Filter; f != nil {
		col := f.Column
		if col == "" {
			col = "*"
		}
		parts = append(parts, fmt.Sprintf("filter %s: %s", col, m.filterText))
	}
	if m.spec.ExprText != "" {
		parts = append(parts, "expr: "+m.spec.ExprText)
	}
	if m.spec.HasUnique() {
		parts = append(parts, "unique: "+strings.Join(m.spec.Unique, ","))
	}
	if m.searchText != "" {
		parts = append(parts, "search: "+m.searchText)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "  |  ") + "    [c]=clear filters"
}

func (m *Model) statusLine() string {
	total := len(m.eng.Rows())
	cur := m.tbl.Cursor()
	curDisp := 0
	if cur >= 0 && total > 0 {
		curDisp = cur + 1
	}
	parts := []string{
		fmt.Sprintf("line:%d/%d", curDisp, total),
		fmt.Sprintf("col:%s", m.selectedColumn()),
	}
	if n := m.eng.Malformed(); n > 0 {
		parts = append(parts, m.styles.Warn.Render(fmt.Sprintf("malformed:%d", n)))
	}
	if ix := m.eng.Matches(); m.spec.Search != nil && ix.Len() > 0 {
		parts = append(parts, fmt.Sprintf("match:%d/%d", ix.Cursor()+1, ix.Len()))
	}
	if m.tailing {
		parts = append(parts, m.styles.Tailing.Render("TAIL"))
	}
	if m.eof {
		parts = append(parts, "EOF")
	}
	parts = append(parts, m.styles.StatusKey.Render("[?]=help"))
	if m.lastMsg != "" {
		parts = append(parts, m.lastMsg)
	}
	return strings.Join(parts, " | ")
}

func (m *Model) renderModal() string {
	title := "Help"
	if m.modalKind == modalLogs {
		title = "Application Logs"
	}
	content := m.modalVP.View() + "\n[esc/enter]=close"
	body := m.styles.PopupBox.Render(m.styles.PopupTitle.Render(title) + "\n" + content)
	return lipgloss.Place(m.termWidth, m.termHeight, lipgloss.Center, lipgloss.Center, body)
}

func renderHelp(km KeyMap) string {
	row := func(k, text string) string { return fmt.Sprintf("  [%s] %s", k, text) }
	lines := []string{
		"Navigate:",
		row("↑/↓ pgup/pgdn", "move row"),
		row("←/→", "select column"),
		row(keyLabel(km.Top)+"/"+keyLabel(km.Bottom), "top / bottom"),
		row(keyLabel(km.Tail), "toggle tail mode"),
		"",
		"Shape the view:",
		row(keyLabel(km.Sort), "sort by selected column (asc, desc, off)"),
		row(keyLabel(km.Filter), "filter selected column (regex)"),
		row(keyLabel(km.FilterAny), "filter any column (regex)"),
		row(keyLabel(km.FilterCell), "filter by current cell value"),
		row(keyLabel(km.ClearFilter), "clear filters"),
		row(keyLabel(km.Unique), "toggle selected column in dedup key"),
		row(keyLabel(km.Expr), "expression filter, e.g. status >= 500"),
		row(keyLabel(km.Delimiter), "change delimiter"),
		"",
		"Search:",
		row(keyLabel(km.Search), "search all cells (regex)"),
		row(keyLabel(km.SearchNext)+"/"+keyLabel(km.SearchPrev), "next / previous match"),
		row(keyLabel(km.SearchCell), "search for current cell value"),
		row(keyLabel(km.SearchToFilter), "turn search into a filter"),
		"",
		"Other:",
		row(keyLabel(km.Export), "export visible rows"),
		row(keyLabel(km.AppLogs), "application logs"),
		row(keyLabel(km.Quit), "quit"),
	}
	return strings.Join(lines, "\n")
}

// overlay draws the modal on top of the base view, treating whitespace-only
// modal lines as transparent.
func overlay(base, over string) string {
	bLines := strings.Split(base, "\n")
	oLines := strings.Split(over, "\n")
	maxLen := len(bLines)
	if len(oLines) > maxLen {
		maxLen = len(oLines)
	}
	for len(bLines) < maxLen {
		bLines = append(bLines, "")
	}
	for len(oLines) < maxLen {
		oLines = append(oLines, "")
	}
	out := make([]string, maxLen)
	for i := 0; i < maxLen; i++ {
		if strings.TrimSpace(oLines[i]) != "" {
			out[i] = oLines[i]
		} else {
			out[i] = bLines[i]
		}
	}
	return strings.Join(out, "\n")
}
