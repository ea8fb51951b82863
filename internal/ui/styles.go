package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Base       lipgloss.Style
	Status     lipgloss.Style
	StatusKey  lipgloss.Style
	Warn       lipgloss.Style
	Err        lipgloss.Style
	Tailing    lipgloss.Style
	PopupBox   lipgloss.Style
	PopupTitle lipgloss.Style

	TableHeader   lipgloss.Style
	TableSelected lipgloss.Style
}

func NewStyles(dark bool) Styles {
	s := Styles{}
	if dark {
		s.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		s.StatusKey = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
		s.Warn = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
		s.Err = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		s.Tailing = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("40"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	} else {
		s.Base = lipgloss.NewStyle()
		s.Status = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.StatusKey = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
		s.Warn = lipgloss.NewStyle().Foreground(lipgloss.Color("130"))
		s.Err = lipgloss.NewStyle().Foreground(lipgloss.Color("124"))
		s.Tailing = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("28"))
		s.PopupBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(1, 2)
		s.PopupTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
	}
	s.TableHeader = lipgloss.NewStyle().Bold(true)
	s.TableSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220"))
	return s
}
