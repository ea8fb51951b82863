package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"nless/internal/config"
	"nless/internal/delim"
	"nless/internal/ingest"
	"nless/internal/view"
)

type promptMode int

const (
	promptNone promptMode = iota
	promptFilter
	promptFilterAny
	promptSearch
	promptDelimiter
	promptExpr
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalLogs
)

type Model struct {
	ctx context.Context
	cfg *config.Config

	// Pipeline
	lines <-chan ingest.Line
	errs  <-chan error

	// Core
	eng  *view.Engine
	spec view.Spec
	// textual forms of the compiled specs, for the status bar
	filterText string
	searchText string

	ready bool // delimiter chosen, engine built
	eof   bool

	// UI
	tbl        table.Model
	input      textinput.Model
	modalVP    viewport.Model
	styles     Styles
	keymap     KeyMap
	termWidth  int
	termHeight int

	selColIdx int
	tailing   bool
	lastMsg   string

	promptMode  promptMode
	modalActive bool
	modalKind   modalKind
}

// Pipeline messages.
type initMsg struct {
	spec     delim.Spec
	buffered []ingest.Line
}

type linesMsg struct{ batch []ingest.Line }
type eofMsg struct{}
type errMsg struct{ err error }
type toastMsg struct{ text string }
