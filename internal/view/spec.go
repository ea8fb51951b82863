package view

import (
	"regexp"

	"github.com/Knetic/govaluate"
)

// AnyColumn scopes a filter across every column.
const AnyColumn = ""

// Filter keeps rows whose column (or any column) matches the pattern.
// Patterns are compiled at submission time; Rebuild and AppendRecord never
// see an invalid one.
type Filter struct {
	Pattern *regexp.Regexp
	Column  string // AnyColumn = match any field
}

// Sort orders rows by one column's value.
type Sort struct {
	Column     string
	Descending bool
}

// Spec is the complete description of the derived view. It is a value owned
// by the session controller; the engine holds only caches derived from it.
type Spec struct {
	Filter *Filter
	// Expr is an optional expression over column values, e.g.
	// status >= 500 && method == 'GET'. ExprText is kept for display and
	// spec comparison.
	Expr     *govaluate.EvaluableExpression
	ExprText string
	Sort     *Sort
	// Unique lists the columns of the composite dedup key, in toggle order.
	// Empty disables dedup/count mode.
	Unique []string
	Search *regexp.Regexp
}

func (s Spec) HasUnique() bool { return len(s.Unique) > 0 }

// CompileExpr validates and compiles an expression filter at submission
// time, so the engine never evaluates an invalid one.
func CompileExpr(text string) (*govaluate.EvaluableExpression, error) {
	return govaluate.NewEvaluableExpression(text)
}

// Equal reports whether two specs describe the same view. Used to enforce
// the precondition that incremental appends only run against the spec that
// produced the current rows.
func (s Spec) Equal(o Spec) bool {
	if !regexEqual(patternOf(s.Filter), patternOf(o.Filter)) {
		return false
	}
	if s.Filter != nil && o.Filter != nil && s.Filter.Column != o.Filter.Column {
		return false
	}
	if (s.Filter == nil) != (o.Filter == nil) {
		return false
	}
	if s.ExprText != o.ExprText {
		return false
	}
	if (s.Sort == nil) != (o.Sort == nil) {
		return false
	}
	if s.Sort != nil && *s.Sort != *o.Sort {
		return false
	}
	if len(s.Unique) != len(o.Unique) {
		return false
	}
	for i := range s.Unique {
		if s.Unique[i] != o.Unique[i] {
			return false
		}
	}
	return regexEqual(s.Search, o.Search)
}

func patternOf(f *Filter) *regexp.Regexp {
	if f == nil {
		return nil
	}
	return f.Pattern
}

func regexEqual(a, b *regexp.Regexp) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || a.String() == b.String()
}
