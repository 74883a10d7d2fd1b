package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for boundary precondition failures.
var (
	ErrEmptySubmission     = errors.New("empty submission")
	ErrMissingRespondentID = errors.New("missing respondent id")
	ErrUnknownResponseType = errors.New("unknown response type")
)

// PreconditionError reports a submission rejected before scoring.
type PreconditionError struct {
	RespondentID string
	Err          error
}

func (e *PreconditionError) Error() string {
	if e.RespondentID == "" {
		return fmt.Sprintf("submission rejected: %v", e.Err)
	}
	return fmt.Sprintf("submission rejected for respondent %q: %v", e.RespondentID, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// Precondition names the violated precondition.
func (e *PreconditionError) Precondition() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
