package loadgen

import (
	"math/rand"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/appraise/internal/domain/model"
)

var (
	choiceKeys     = []string{"A", "B", "C", "D", "a", " b "}
	malformedPicks = []string{"", "x", "3.5", "five"}
)

// Generator builds random submissions for a questionnaire.
type Generator struct {
	questions     []model.Question
	malformedRate float64
	rng           *rand.Rand
}

// NewGenerator returns a generator answering every question in qs.
func NewGenerator(qs []model.Question, malformedRate float64, seed int64) *Generator {
	return &Generator{
		questions:     qs,
		malformedRate: malformedRate,
		rng:           rand.New(rand.NewSource(seed)), //nolint:gosec // load data, not secrets
	}
}

// Generate returns n submissions with unique submission and respondent ids.
func (g *Generator) Generate(n int) []model.Submission {
	out := make([]model.Submission, n)
	for i := range out {
		out[i] = g.one()
	}
	return out
}

func (g *Generator) one() model.Submission {
	answers := make([]model.Answer, 0, len(g.questions))
	for _, q := range g.questions {
		answers = append(answers, model.Answer{QuestionID: q.ID, Value: g.answer(q)})
	}
	return model.Submission{
		ID:           uuid.NewString(),
		RespondentID: "load-" + uuid.NewString(),
		Answers:      answers,
	}
}

func (g *Generator) answer(q model.Question) model.RawValue {
	if q.Type == model.ResponseSingleChoice {
		return model.RawValue(choiceKeys[g.rng.Intn(len(choiceKeys))])
	}
	if g.rng.Float64() < g.malformedRate {
		return model.RawValue(malformedPicks[g.rng.Intn(len(malformedPicks))])
	}
	// Occasionally out of range to exercise clamping.
	return model.RawValue(strconv.Itoa(g.rng.Intn(7)))
}
