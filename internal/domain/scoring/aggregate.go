package scoring

import (
	"math"
	"slices"

	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/internal/domain/taxonomy"
)

const percent = 100

// Aggregate folds the items of one category into its score. items is keyed
// by sub-dimension name; sub-dimensions without items average 0.
//
// The category total pools every item of the category, so sub-dimensions
// weigh in proportion to how many of their items were answered.
func Aggregate(c taxonomy.Category, items map[string][]Item) model.CategoryScore {
	out := model.CategoryScore{
		Category:      c.Name,
		Label:         c.DisplayLabel(),
		Scale:         c.Scale,
		SubDimensions: make([]model.DimensionScore, 0, len(c.SubDimensions)),
	}

	var pooled []Item
	for _, s := range c.SubDimensions {
		its := items[s.Name]
		pooled = append(pooled, its...)
		out.SubDimensions = append(out.SubDimensions, model.DimensionScore{
			SubDimension: s.Name,
			Label:        s.DisplayLabel(),
			Average:      normalize(c.Scale, its),
			ItemCount:    len(its),
		})
	}
	out.Total = normalize(c.Scale, pooled)
	out.ItemCount = len(pooled)
	return out
}

// normalize applies the scale rule to items, summing in ascending question
// id order so results are reproducible.
func normalize(scale model.Scale, items []Item) float64 {
	if len(items) == 0 {
		return 0
	}
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b Item) int { return a.QuestionID - b.QuestionID })

	var sum, maxSum float64
	for _, it := range sorted {
		sum += it.Score
		maxSum += it.Max
	}

	switch scale {
	case model.ScalePercentage:
		if maxSum == 0 {
			return 0
		}
		return round2(percent * sum / maxSum)
	default:
		return round2(sum / float64(len(sorted)))
	}
}

func round2(x float64) float64 {
	return math.Round(x*percent) / percent
}
