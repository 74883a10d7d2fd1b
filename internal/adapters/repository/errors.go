package repository

import "errors"

// Sentinel kinds for report store errors.
var (
	ErrNotFound          = errors.New("report not found")
	ErrMissingRespondent = errors.New("report has no respondent id")
)
