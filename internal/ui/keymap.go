package ui

import tea "github.com/charmbracelet/bubbletea"

type KeyMap struct {
	Quit           tea.Key
	Sort           tea.Key
	Filter         tea.Key
	FilterAny      tea.Key
	FilterCell     tea.Key
	ClearFilter    tea.Key
	Search         tea.Key
	SearchNext     tea.Key
	SearchPrev     tea.Key
	SearchCell     tea.Key
	SearchToFilter tea.Key
	Unique         tea.Key
	Delimiter      tea.Key
	Expr           tea.Key
	Tail           tea.Key
	Export         tea.Key
	Top            tea.Key
	Bottom         tea.Key
	Help           tea.Key
	AppLogs        tea.Key
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:           tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
		Sort:           tea.Key{Type: tea.KeyRunes, Runes: []rune{'s'}},
		Filter:         tea.Key{Type: tea.KeyRunes, Runes: []rune{'f'}},
		FilterAny:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'|'}},
		FilterCell:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'F'}},
		ClearFilter:    tea.Key{Type: tea.KeyRunes, Runes: []rune{'c'}},
		Search:         tea.Key{Type: tea.KeyRunes, Runes: []rune{'/'}},
		SearchNext:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'n'}},
		SearchPrev:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'N'}},
		SearchCell:     tea.Key{Type: tea.KeyRunes, Runes: []rune{'*'}},
		SearchToFilter: tea.Key{Type: tea.KeyRunes, Runes: []rune{'&'}},
		Unique:         tea.Key{Type: tea.KeyRunes, Runes: []rune{'u'}},
		Delimiter:      tea.Key{Type: tea.KeyRunes, Runes: []rune{'D'}},
		Expr:           tea.Key{Type: tea.KeyRunes, Runes: []rune{'x'}},
		Tail:           tea.Key{Type: tea.KeyRunes, Runes: []rune{'t'}},
		Export:         tea.Key{Type: tea.KeyRunes, Runes: []rune{'e'}},
		Top:            tea.Key{Type: tea.KeyRunes, Runes: []rune{'g'}},
		Bottom:         tea.Key{Type: tea.KeyRunes, Runes: []rune{'G'}},
		Help:           tea.Key{Type: tea.KeyRunes, Runes: []rune{'?'}},
		AppLogs:        tea.Key{Type: tea.KeyRunes, Runes: []rune{'L'}},
	}
}

func keyMatches(msg tea.KeyMsg, k tea.Key) bool {
	if k.Type != tea.KeyRunes {
		return msg.Type == k.Type
	}
	if len(k.Runes) > 0 {
		return msg.String() == string(k.Runes)
	}
	return false
}

func keyLabel(k tea.Key) string {
	if k.Type == tea.KeyRunes && len(k.Runes) == 1 {
		return string(k.Runes)
	}
	return k.String()
}
