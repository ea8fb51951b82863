package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nless/internal/config"
)

func initialModel(ctx context.Context, cfg *config.Config) *Model {
	m := &Model{
		ctx:     ctx,
		cfg:     cfg,
		styles:  NewStyles(cfg.Theme == config.ThemeDark),
		keymap:  DefaultKeyMap(),
		input:   textinput.New(),
		tailing: cfg.Tail,
	}
	m.input.CharLimit = 512
	m.modalVP = viewport.New(80, 20)

	m.tbl = table.New(table.WithFocused(true), table.WithHeight(20))
	// Remove default padding to make width math exact
	ts := table.DefaultStyles()
	ts.Header = m.styles.TableHeader.PaddingRight(1)
	ts.Cell = lipgloss.NewStyle().PaddingRight(1)
	ts.Selected = m.styles.TableSelected
	m.tbl.SetStyles(ts)
	return m
}

func Run(ctx context.Context, cfg *config.Config) error {
	m := initialModel(ctx, cfg)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return setupPipeline(m)
}
