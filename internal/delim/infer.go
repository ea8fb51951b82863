package delim

import "strings"

// Scoring weights for Infer. The exact values only matter relative to each
// other; consistency dominates, whitespace pays for inconsistency since
// coincidental spaces are common, and tabs get a flat bonus because they are
// rarely incidental.
const (
	consistencyBonus   = 10
	whitespacePenalty  = 20
	nonEmptyBonus      = 2
	uniformLengthBonus = 2
	tabBonus           = 5
	maxSample          = 5
)

// Infer picks a field-splitting strategy from a small sample of raw lines.
// Deterministic for a fixed sample; best-effort and overridable by the user.
func Infer(sample []string) Spec {
	if len(sample) > maxSample {
		sample = sample[:maxSample]
	}
	candidates := []Spec{
		Literal(","),
		Literal("\t"),
		Literal("|"),
		Literal(";"),
		Whitespace(),
	}

	best := Raw()
	bestScore := 0
	for _, cand := range candidates {
		if s := score(cand, sample); s > bestScore {
			best = cand
			bestScore = s
		}
	}
	return best
}

func score(cand Spec, sample []string) int {
	total := 0
	firstCount := -1
	consistent := true
	allNonEmpty := true

	for _, line := range sample {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := cand.Split(line)
		n := len(fields)
		if firstCount == -1 {
			firstCount = n
		} else if n != firstCount {
			consistent = false
		}
		// A real delimiter usually produces more than one field.
		if n > 1 {
			total += n
		}
		nonEmpty := true
		for _, f := range fields {
			if strings.TrimSpace(f) == "" {
				nonEmpty = false
				allNonEmpty = false
				break
			}
		}
		if nonEmpty && n > 1 {
			total += nonEmptyBonus
		}
		if n > 1 && uniformLengths(fields) {
			total += uniformLengthBonus
		}
	}

	if firstCount <= 1 {
		return 0
	}
	if consistent {
		total += consistencyBonus
	} else if cand.Kind == KindWhitespace {
		total -= whitespacePenalty
	}
	if cand.Kind == KindLiteral && cand.Char == "\t" && allNonEmpty {
		total += tabBonus
	}
	if total < 0 {
		return 0
	}
	return total
}

// uniformLengths reports whether every field length lies within one average
// length of the mean, which rewards aligned tabular data.
func uniformLengths(fields []string) bool {
	sum := 0
	for _, f := range fields {
		sum += len(f)
	}
	avg := sum / len(fields)
	if avg == 0 {
		return false
	}
	for _, f := range fields {
		d := len(f) - avg
		if d < 0 {
			d = -d
		}
		if d > avg {
			return false
		}
	}
	return true
}
