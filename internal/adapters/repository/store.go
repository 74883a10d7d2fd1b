// Package repository stores score reports.
package repository

import (
	"context"

	"github.com/okian/appraise/internal/domain/model"
)

// Store keeps the latest report of each respondent.
type Store interface {
	// Save replaces the respondent's report. A report whose submission was
	// received before the stored one is dropped.
	Save(ctx context.Context, r model.Report) error

	// Get returns the respondent's latest report, or ErrNotFound.
	Get(ctx context.Context, respondentID string) (model.Report, error)

	// Count returns the number of respondents with a report.
	Count(ctx context.Context) int
}
