package model

import "time"

// Scale selects how a category normalizes its items.
type Scale string

// Category scales.
const (
	// ScalePercentage reports 100*Σscore/Σmax (aptitude-style, 0..100).
	ScalePercentage Scale = "percentage"
	// ScaleRaw reports the plain mean of item scores (trait-style, 1..5).
	ScaleRaw Scale = "raw"
)

// Valid reports whether s is a known scale.
func (s Scale) Valid() bool { return s == ScalePercentage || s == ScaleRaw }

// DimensionScore is the aggregate of one sub-dimension.
type DimensionScore struct {
	SubDimension string  `json:"sub_dimension"`
	Label        string  `json:"label,omitempty"`
	Average      float64 `json:"average"`
	ItemCount    int     `json:"item_count"`
}

// CategoryScore is the aggregate of one category.
type CategoryScore struct {
	Category      string           `json:"category"`
	Label         string           `json:"label,omitempty"`
	Scale         Scale            `json:"scale"`
	Total         float64          `json:"total"`
	ItemCount     int              `json:"item_count"`
	SubDimensions []DimensionScore `json:"sub_dimensions"`
	DominantLabel string           `json:"dominant_label,omitempty"`
}

// SubDimension returns the named sub-dimension score.
func (c *CategoryScore) SubDimension(name string) (DimensionScore, bool) {
	for _, d := range c.SubDimensions {
		if d.SubDimension == name {
			return d, true
		}
	}
	return DimensionScore{}, false
}

// Diagnostics counts answers the engine degraded instead of rejecting.
type Diagnostics struct {
	Answered   int `json:"answered"`
	Scored     int `json:"scored"`
	Malformed  int `json:"malformed"`
	Unknown    int `json:"unknown"`
	Duplicates int `json:"duplicates"`
}

// Report is the engine's only output. Categories keep taxonomy order.
type Report struct {
	RespondentID    string          `json:"respondent_id"`
	TaxonomyVersion string          `json:"taxonomy_version"`
	Categories      []CategoryScore `json:"categories"`
	Diagnostics     Diagnostics     `json:"diagnostics"`
	// ReceivedAt is when the scored submission was accepted.
	ReceivedAt time.Time `json:"received_at,omitzero"`
}

// Category returns the named category score.
func (r *Report) Category(name string) (CategoryScore, bool) {
	for _, c := range r.Categories {
		if c.Category == name {
			return c, true
		}
	}
	return CategoryScore{}, false
}

// Totals maps each category to its total.
func (r *Report) Totals() map[string]float64 {
	out := make(map[string]float64, len(r.Categories))
	for _, c := range r.Categories {
		out[c.Category] = c.Total
	}
	return out
}
