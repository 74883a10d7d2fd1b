// Package scoring turns a respondent's answers into per-category scores.
//
// The Engine is pure: it reads the submission, a catalog snapshot and a
// taxonomy version, and returns a fresh Report. It keeps no state between
// calls and is safe for concurrent use.
package scoring

import (
	"github.com/okian/appraise/internal/domain/catalog"
	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/internal/domain/taxonomy"
)

// Engine assembles score reports.
type Engine struct {
	scorer   ItemScorer
	resolver resolver
}

// NewEngine creates an engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scorer:   NewItemScorer(defaultCorrectOption),
		resolver: resolver{separator: defaultSeparator, indeterminate: defaultIndeterminate},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScoreItem exposes the engine's item scorer.
func (e *Engine) ScoreItem(q model.Question, reverse bool, raw model.RawValue) (Item, Outcome) {
	return e.scorer.Score(q, reverse, raw)
}

// ResolveDominant picks the dominant label using the engine's separator and
// indeterminate sentinel.
func (e *Engine) ResolveDominant(scores []LabeledScore) string {
	return e.resolver.resolve(scores)
}

// BuildReport scores sub against tax. Individual answers never fail the
// run: unknown ids are dropped, malformed ratings score neutral, and a
// question answered twice keeps its last answer. Only a submission without
// a respondent id or without answers is rejected, with a
// *model.PreconditionError.
func (e *Engine) BuildReport(sub model.Submission, cat catalog.Catalog, tax *taxonomy.Taxonomy) (model.Report, error) {
	if err := sub.Validate(); err != nil {
		return model.Report{}, err
	}

	diag := model.Diagnostics{Answered: len(sub.Answers)}
	latest := make(map[int]model.RawValue, len(sub.Answers))
	for _, a := range sub.Answers {
		if _, dup := latest[a.QuestionID]; dup {
			diag.Duplicates++
		}
		latest[a.QuestionID] = a.Value
	}

	// category -> sub-dimension -> items
	grouped := make(map[string]map[string][]Item, len(tax.Categories))
	for id, raw := range latest {
		loc, ok := tax.Locate(id)
		if !ok {
			diag.Unknown++
			continue
		}
		q, ok := cat.Question(id)
		if !ok {
			diag.Unknown++
			continue
		}
		item, outcome := e.scorer.Score(q, tax.IsReverse(id), raw)
		switch outcome {
		case OutcomeExcluded:
			diag.Unknown++
			continue
		case OutcomeMalformed:
			diag.Malformed++
		}
		diag.Scored++
		subs := grouped[loc.Category]
		if subs == nil {
			subs = make(map[string][]Item)
			grouped[loc.Category] = subs
		}
		subs[loc.SubDimension] = append(subs[loc.SubDimension], item)
	}

	report := model.Report{
		RespondentID:    sub.RespondentID,
		TaxonomyVersion: tax.Version,
		Categories:      make([]model.CategoryScore, 0, len(tax.Categories)),
		Diagnostics:     diag,
		ReceivedAt:      sub.ReceivedAt,
	}
	for _, c := range tax.Categories {
		cs := Aggregate(c, grouped[c.Name])
		if c.Dominant {
			cs.DominantLabel = e.dominant(cs)
		}
		report.Categories = append(report.Categories, cs)
	}
	return report, nil
}

// dominant resolves a category's label. Unanswered sub-dimensions take part
// with an average of zero.
func (e *Engine) dominant(cs model.CategoryScore) string {
	scores := make([]LabeledScore, 0, len(cs.SubDimensions))
	for _, d := range cs.SubDimensions {
		scores = append(scores, LabeledScore{Label: d.Label, Value: d.Average})
	}
	return e.resolver.resolve(scores)
}
