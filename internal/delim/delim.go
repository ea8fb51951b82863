// Package delim models how a raw line is split into fields: a literal
// character, runs of whitespace, a regex with named capture groups, or no
// splitting at all ("raw", one opaque column).
package delim

import (
	"fmt"
	"regexp"
	"strings"
)

type Kind int

const (
	KindLiteral Kind = iota
	KindWhitespace
	KindRegex
	KindRaw
)

// Spec is a tagged variant; exactly the fields for its Kind are set.
type Spec struct {
	Kind    Kind
	Char    string         // KindLiteral
	Pattern *regexp.Regexp // KindRegex
}

func Literal(ch string) Spec      { return Spec{Kind: KindLiteral, Char: ch} }
func Whitespace() Spec            { return Spec{Kind: KindWhitespace} }
func Regex(p *regexp.Regexp) Spec { return Spec{Kind: KindRegex, Pattern: p} }
func Raw() Spec                   { return Spec{Kind: KindRaw} }

// Parse builds a Spec from a user-supplied delimiter string. Anything beyond
// the common single-character delimiters is compiled as a regex; a compile
// failure is returned to the caller and must leave the previous spec in place.
func Parse(input string) (Spec, error) {
	switch input {
	case "raw":
		return Raw(), nil
	case ",", "|", ";":
		return Literal(input), nil
	case "\t", `\t`:
		return Literal("\t"), nil
	case " ", "  ", "ws", "whitespace":
		return Whitespace(), nil
	case "":
		return Spec{}, fmt.Errorf("empty delimiter")
	}
	p, err := regexp.Compile(input)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid delimiter regex: %w", err)
	}
	return Regex(p), nil
}

// Split is pure: (raw line, spec) -> ordered field values.
func (s Spec) Split(line string) []string {
	switch s.Kind {
	case KindLiteral:
		return strings.Split(line, s.Char)
	case KindWhitespace:
		return strings.Fields(line)
	case KindRegex:
		return s.splitRegex(line)
	default:
		return []string{line}
	}
}

func (s Spec) splitRegex(line string) []string {
	if s.Pattern == nil {
		return []string{line}
	}
	names := s.groupNames()
	if len(names) == 0 {
		// No named groups: the whole match (or the whole line) is one field.
		if m := s.Pattern.FindString(line); m != "" {
			return []string{m}
		}
		return []string{line}
	}
	m := s.Pattern.FindStringSubmatch(line)
	if m == nil {
		return []string{line}
	}
	sub := s.Pattern.SubexpNames()
	out := make([]string, 0, len(names))
	for i, name := range sub {
		if i == 0 || name == "" {
			continue
		}
		out = append(out, m[i])
	}
	return out
}

func (s Spec) groupNames() []string {
	if s.Pattern == nil {
		return nil
	}
	var names []string
	for i, n := range s.Pattern.SubexpNames() {
		if i == 0 || n == "" {
			continue
		}
		names = append(names, n)
	}
	return names
}

// Header derives the column names: the split first line for literal and
// whitespace specs, group names for regex, a single "log" column for raw.
func (s Spec) Header(firstLine string) []string {
	switch s.Kind {
	case KindRaw:
		return []string{"log"}
	case KindRegex:
		if names := s.groupNames(); len(names) > 0 {
			return names
		}
		return []string{"log"}
	default:
		return s.Split(firstLine)
	}
}

// ConsumesHeaderLine reports whether the first data line is used up as the
// header (raw and regex specs derive columns without one).
func (s Spec) ConsumesHeaderLine() bool {
	return s.Kind == KindLiteral || s.Kind == KindWhitespace
}

func (s Spec) String() string {
	switch s.Kind {
	case KindLiteral:
		if s.Char == "\t" {
			return `'\t'`
		}
		return "'" + s.Char + "'"
	case KindWhitespace:
		return "whitespace"
	case KindRegex:
		return "/" + s.Pattern.String() + "/"
	default:
		return "raw"
	}
}

func (s Spec) Equal(o Spec) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case KindLiteral:
		return s.Char == o.Char
	case KindRegex:
		return s.Pattern.String() == o.Pattern.String()
	}
	return true
}
