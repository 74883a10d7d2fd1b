// Package catalog provides question metadata lookups for scoring.
package catalog

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/appraise/internal/domain/model"
	"github.com/okian/appraise/internal/domain/taxonomy"
)

// Catalog looks up question metadata by id.
type Catalog interface {
	// Question returns the question and true, or false when id is unknown.
	Question(id int) (model.Question, bool)
}

// Snapshot is an immutable in-memory Catalog.
type Snapshot struct {
	questions map[int]model.Question
	ids       []int
}

// NewSnapshot indexes qs. Question ids must be unique.
func NewSnapshot(qs []model.Question) (*Snapshot, error) {
	s := &Snapshot{questions: make(map[int]model.Question, len(qs))}
	for _, q := range qs {
		if _, dup := s.questions[q.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateQuestion, q.ID)
		}
		s.questions[q.ID] = q
		s.ids = append(s.ids, q.ID)
	}
	slices.Sort(s.ids)
	return s, nil
}

// Question implements Catalog.
func (s *Snapshot) Question(id int) (model.Question, bool) {
	q, ok := s.questions[id]
	return q, ok
}

// All returns every question ordered by id.
func (s *Snapshot) All() []model.Question {
	out := make([]model.Question, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.questions[id])
	}
	return out
}

// Len returns the number of questions.
func (s *Snapshot) Len() int { return len(s.ids) }

// FromTaxonomy builds a catalog covering every question in t: items in
// percentage-scale categories are single choice, the rest are rating items.
// Correct options are left unset.
func FromTaxonomy(t *taxonomy.Taxonomy) *Snapshot {
	var qs []model.Question
	for _, c := range t.Categories {
		kind := model.ResponseRating
		if c.Scale == model.ScalePercentage {
			kind = model.ResponseSingleChoice
		}
		for _, s := range c.SubDimensions {
			for _, id := range s.QuestionIDs {
				qs = append(qs, model.Question{ID: id, Type: kind})
			}
		}
	}
	// Taxonomy ids are unique, so this cannot fail.
	snap, _ := NewSnapshot(qs)
	return snap
}

// fileQuestion is the on-disk question shape. Options may be a list or a
// single delimited string.
type fileQuestion struct {
	ID            int       `yaml:"id"`
	Type          string    `yaml:"response_type"`
	CorrectOption string    `yaml:"correct_option"`
	Text          string    `yaml:"text"`
	Options       yaml.Node `yaml:"options"`
}

type file struct {
	Questions []fileQuestion `yaml:"questions"`
}

// LoadFile reads a YAML question catalog.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	return Parse(data)
}

// Parse decodes a YAML question catalog.
func Parse(data []byte) (*Snapshot, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	qs := make([]model.Question, 0, len(f.Questions))
	for _, fq := range f.Questions {
		kind, err := model.ParseResponseType(fq.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %w", ErrLoadCatalog, fq.ID, err)
		}
		opts, err := decodeOptions(&fq.Options)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %w", ErrLoadCatalog, fq.ID, err)
		}
		qs = append(qs, model.Question{
			ID:            fq.ID,
			Type:          kind,
			CorrectOption: fq.CorrectOption,
			Text:          fq.Text,
			Options:       opts,
		})
	}
	return NewSnapshot(qs)
}

func decodeOptions(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		return SplitOptions(n.Value), nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}

// SplitOptions splits a delimited option string. Semicolons take
// precedence, then full-width commas, then ASCII commas.
func SplitOptions(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, sep := range []string{";", "，", ","} {
		if strings.Contains(text, sep) {
			return strings.Split(text, sep)
		}
	}
	return []string{text}
}

// PresentOptions returns the options as shown to a respondent. Reverse-keyed
// rating items on a five-point "n=description" scale show their descriptions
// mirrored, so option 1 carries the description written for 5.
func PresentOptions(q model.Question, reverse bool) []string {
	if !reverse || q.Type != model.ResponseRating || len(q.Options) != 5 {
		return q.Options
	}
	// Options must be listed as 1..5 in order, otherwise they are shown as is.
	descs := make([]string, len(q.Options))
	for i, opt := range q.Options {
		key, desc, ok := strings.Cut(opt, "=")
		if !ok {
			return q.Options
		}
		if k, err := strconv.Atoi(strings.TrimSpace(key)); err != nil || k != i+1 {
			return q.Options
		}
		descs[i] = desc
	}
	out := make([]string, len(q.Options))
	for i := range q.Options {
		out[i] = strconv.Itoa(i+1) + "=" + descs[len(descs)-1-i]
	}
	return out
}
