// Package taxonomy holds the versioned mapping of categories to
// sub-dimensions to question ids, and the reverse-keyed item registry.
//
// A taxonomy version is declarative YAML. Versions are immutable once
// parsed; callers pick one explicitly and pass it to the scoring engine.
package taxonomy

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/appraise/internal/domain/model"
)

// Range is an inclusive run of question ids.
type Range struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// SubDimension is a named facet fed by a fixed set of questions.
type SubDimension struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	// QuestionIDs is ascending and free of duplicates after Parse.
	QuestionIDs []int   `yaml:"ids"`
	Ranges      []Range `yaml:"ranges"`
}

// DisplayLabel returns the label, or the name when no label is set.
func (s SubDimension) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

// Category groups sub-dimensions under one normalization scale.
type Category struct {
	Name  string      `yaml:"name"`
	Label string      `yaml:"label"`
	Scale model.Scale `yaml:"scale"`
	// Dominant marks categorical traits whose report carries a winning label.
	Dominant      bool           `yaml:"dominant"`
	SubDimensions []SubDimension `yaml:"sub_dimensions"`
}

// DisplayLabel returns the label, or the name when no label is set.
func (c Category) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

// Location identifies where a question id is scored.
type Location struct {
	Category     string
	SubDimension string
}

// Taxonomy is one parsed, validated version.
type Taxonomy struct {
	Version      string     `yaml:"version"`
	ReverseItems []int      `yaml:"reverse_items"`
	Categories   []Category `yaml:"categories"`

	reverse map[int]struct{}
	index   map[int]Location
}

// Parse decodes and validates one taxonomy version.
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTaxonomy, err)
	}
	if err := t.build(); err != nil {
		return nil, err
	}
	return &t, nil
}

// build expands ranges, validates, and indexes the taxonomy.
func (t *Taxonomy) build() error {
	t.Version = strings.TrimSpace(t.Version)
	if t.Version == "" {
		return fmt.Errorf("%w: missing version", ErrInvalidTaxonomy)
	}
	if len(t.Categories) == 0 {
		return fmt.Errorf("%w: %s has no categories", ErrInvalidTaxonomy, t.Version)
	}

	t.index = make(map[int]Location)
	categories := make(map[string]struct{}, len(t.Categories))
	for ci := range t.Categories {
		c := &t.Categories[ci]
		if c.Name == "" {
			return fmt.Errorf("%w: %s: category %d has no name", ErrInvalidTaxonomy, t.Version, ci)
		}
		if _, dup := categories[c.Name]; dup {
			return fmt.Errorf("%w: %s: duplicate category %q", ErrInvalidTaxonomy, t.Version, c.Name)
		}
		categories[c.Name] = struct{}{}
		if !c.Scale.Valid() {
			return fmt.Errorf("%w: %s: category %q has scale %q", ErrInvalidTaxonomy, t.Version, c.Name, c.Scale)
		}

		subs := make(map[string]struct{}, len(c.SubDimensions))
		for si := range c.SubDimensions {
			s := &c.SubDimensions[si]
			if s.Name == "" || strings.EqualFold(s.Name, "total") {
				return fmt.Errorf("%w: %s/%s: sub-dimension name %q is reserved or empty", ErrInvalidTaxonomy, t.Version, c.Name, s.Name)
			}
			if _, dup := subs[s.Name]; dup {
				return fmt.Errorf("%w: %s/%s: duplicate sub-dimension %q", ErrInvalidTaxonomy, t.Version, c.Name, s.Name)
			}
			subs[s.Name] = struct{}{}

			ids, err := expand(s.QuestionIDs, s.Ranges)
			if err != nil {
				return fmt.Errorf("%w: %s/%s/%s: %w", ErrInvalidTaxonomy, t.Version, c.Name, s.Name, err)
			}
			for _, id := range ids {
				if prev, taken := t.index[id]; taken {
					return fmt.Errorf("%w: %s: question %d in both %s/%s and %s/%s",
						ErrInvalidTaxonomy, t.Version, id, prev.Category, prev.SubDimension, c.Name, s.Name)
				}
				t.index[id] = Location{Category: c.Name, SubDimension: s.Name}
			}
			s.QuestionIDs = ids
			s.Ranges = nil
		}
	}

	t.reverse = make(map[int]struct{}, len(t.ReverseItems))
	for _, id := range t.ReverseItems {
		if _, ok := t.index[id]; !ok {
			return fmt.Errorf("%w: %s: reverse item %d is not in any sub-dimension", ErrInvalidTaxonomy, t.Version, id)
		}
		t.reverse[id] = struct{}{}
	}
	return nil
}

// expand merges explicit ids and inclusive ranges into an ascending set.
func expand(ids []int, ranges []Range) ([]int, error) {
	out := make([]int, 0, len(ids))
	out = append(out, ids...)
	for _, r := range ranges {
		if r.From > r.To {
			return nil, fmt.Errorf("range %d..%d is reversed", r.From, r.To)
		}
		for id := r.From; id <= r.To; id++ {
			out = append(out, id)
		}
	}
	for _, id := range out {
		if id < 1 {
			return nil, fmt.Errorf("question id %d must be positive", id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// IsReverse reports whether id is reverse-keyed.
func (t *Taxonomy) IsReverse(id int) bool {
	_, ok := t.reverse[id]
	return ok
}

// Locate returns where id is scored. Ids outside the taxonomy are not scored.
func (t *Taxonomy) Locate(id int) (Location, bool) {
	loc, ok := t.index[id]
	return loc, ok
}

// Category returns the named category.
func (t *Taxonomy) Category(name string) (Category, bool) {
	for _, c := range t.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// QuestionIDs returns every scored question id in ascending order.
func (t *Taxonomy) QuestionIDs() []int {
	ids := make([]int, 0, len(t.index))
	for id := range t.index {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
