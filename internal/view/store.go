package view

// Store is the append-only sequence of ingested raw lines, in arrival order.
// The header line is held separately once a delimiter is chosen. Lines are
// never reordered or mutated; a line's ordinal is its index.
type Store struct {
	headerRaw string
	hasHeader bool
	lines     []string
}

func NewStore() *Store { return &Store{} }

func (s *Store) Append(line string) int {
	s.lines = append(s.lines, line)
	return len(s.lines) - 1
}

func (s *Store) SetHeader(raw string) {
	s.headerRaw = raw
	s.hasHeader = true
}

func (s *Store) Header() (string, bool) { return s.headerRaw, s.hasHeader }

// Lines exposes the backing slice; callers must treat it as read-only.
func (s *Store) Lines() []string { return s.lines }

func (s *Store) Len() int { return len(s.lines) }

// PushFront reinstates a former header line as the first data line. Used when
// switching to a delimiter that does not consume a header line.
func (s *Store) PushFront(line string) {
	s.lines = append([]string{line}, s.lines...)
	s.headerRaw = ""
	s.hasHeader = false
}

// TakeFirst pops the first data line to become the new header.
func (s *Store) TakeFirst() (string, bool) {
	if len(s.lines) == 0 {
		return "", false
	}
	first := s.lines[0]
	s.lines = s.lines[1:]
	s.headerRaw = first
	s.hasHeader = true
	return first, true
}
