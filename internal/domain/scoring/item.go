package scoring

import (
	"strconv"
	"strings"

	"github.com/okian/appraise/internal/domain/model"
)

// Rating scale bounds.
const (
	ratingMin     = 1
	ratingMax     = 5
	ratingNeutral = 3
)

const defaultCorrectOption = "A"

// Outcome classifies how an answer was scored.
type Outcome int

// Scoring outcomes.
const (
	// OutcomeScored means the answer was scored as submitted.
	OutcomeScored Outcome = iota
	// OutcomeMalformed means the answer could not be parsed and the neutral
	// default was scored instead.
	OutcomeMalformed
	// OutcomeExcluded means the answer contributes to nothing.
	OutcomeExcluded
)

// Item is one scored answer.
type Item struct {
	QuestionID int
	Score      float64
	Max        float64
}

// ItemScorer scores single answers.
type ItemScorer struct {
	defaultCorrect string
}

// NewItemScorer returns a scorer that assumes defaultCorrect for
// single-choice questions without an answer key. Empty means "A".
func NewItemScorer(defaultCorrect string) ItemScorer {
	s := ItemScorer{defaultCorrect: normalizeChoice(defaultCorrect)}
	if s.defaultCorrect == "" {
		s.defaultCorrect = defaultCorrectOption
	}
	return s
}

// Score computes one item's (score, max) contribution.
//
// Rating answers are clamped to [1,5] and flipped to 6-s when reverse is set;
// answers that are not integers score the neutral 3. Single-choice answers
// score 1 of 1 on a case-insensitive match with the answer key, else 0 of 1.
func (s ItemScorer) Score(q model.Question, reverse bool, raw model.RawValue) (Item, Outcome) {
	item := Item{QuestionID: q.ID}
	switch q.Type {
	case model.ResponseRating:
		item.Max = ratingMax
		v, err := strconv.Atoi(strings.TrimSpace(raw.String()))
		if err != nil {
			item.Score = ratingNeutral
			return item, OutcomeMalformed
		}
		v = min(max(v, ratingMin), ratingMax)
		if reverse {
			v = ratingMax + ratingMin - v
		}
		item.Score = float64(v)
		return item, OutcomeScored

	case model.ResponseSingleChoice:
		item.Max = 1
		key := normalizeChoice(q.CorrectOption)
		if key == "" {
			key = s.defaultCorrect
		}
		if normalizeChoice(raw.String()) == key {
			item.Score = 1
		}
		return item, OutcomeScored
	}
	return item, OutcomeExcluded
}

func normalizeChoice(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
