package model

import (
	"strconv"
	"strings"
)

// Text flattens the report into the plain lines handed to report-text
// generators: a total line per category, its sub-dimension lines, and the
// dominant type where one exists.
func (r *Report) Text() string {
	var b strings.Builder
	for i, c := range r.Categories {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.Label)
		b.WriteString(" total: ")
		b.WriteString(formatScore(c.Total))
		b.WriteByte('\n')
		for _, d := range c.SubDimensions {
			b.WriteString("- ")
			b.WriteString(d.Label)
			b.WriteString(": ")
			b.WriteString(formatScore(d.Average))
			b.WriteByte('\n')
		}
		if c.DominantLabel != "" {
			b.WriteString("- type: ")
			b.WriteString(c.DominantLabel)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
