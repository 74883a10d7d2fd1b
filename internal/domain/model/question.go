// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// ResponseType is how a question is answered.
type ResponseType string

// Supported response types.
const (
	ResponseRating       ResponseType = "rating"
	ResponseSingleChoice ResponseType = "single_choice"
)

// ParseResponseType maps catalog spellings onto a ResponseType.
// Legacy catalogs label items "评分" (rating), "单选" (single choice) and
// "反向题" (reverse-keyed rating).
func ParseResponseType(s string) (ResponseType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rating", "likert", "评分", "反向题":
		return ResponseRating, nil
	case "single_choice", "single-choice", "choice", "单选":
		return ResponseSingleChoice, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResponseType, s)
}

// Question is the read-only metadata the scorer needs for one item.
type Question struct {
	ID            int          `json:"id" yaml:"id"`
	Type          ResponseType `json:"response_type" yaml:"response_type"`
	CorrectOption string       `json:"correct_option,omitempty" yaml:"correct_option"`
	Text          string       `json:"text,omitempty" yaml:"text"`
	Options       []string     `json:"options,omitempty" yaml:"options"`
}
