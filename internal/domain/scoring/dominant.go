package scoring

import (
	"math"
	"strings"
)

const (
	defaultSeparator     = "/"
	defaultIndeterminate = "composite"
	// totalLabel is the pseudo-label some callers mix into score maps.
	totalLabel = "total"
	// maxBlended caps how many tied labels a composite type shows.
	maxBlended = 2
)

// LabeledScore is one sub-dimension score offered to the resolver.
type LabeledScore struct {
	Label string
	Value float64
}

type resolver struct {
	separator     string
	indeterminate string
}

// resolve picks the highest-scoring label. Ties keep declaration order and
// at most the first two tied labels are joined; more ties are truncated.
func (r resolver) resolve(scores []LabeledScore) string {
	best := math.Inf(-1)
	var winners []string
	for _, s := range scores {
		if strings.EqualFold(s.Label, totalLabel) || math.IsNaN(s.Value) {
			continue
		}
		switch {
		case s.Value > best:
			best = s.Value
			winners = append(winners[:0], s.Label)
		case s.Value == best:
			winners = append(winners, s.Label)
		}
	}
	if len(winners) == 0 {
		return r.indeterminate
	}
	if len(winners) > maxBlended {
		winners = winners[:maxBlended]
	}
	return strings.Join(winners, r.separator)
}

// ResolveDominant resolves with the default separator and sentinel.
func ResolveDominant(scores []LabeledScore) string {
	return resolver{separator: defaultSeparator, indeterminate: defaultIndeterminate}.resolve(scores)
}
