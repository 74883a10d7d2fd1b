package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawValue is an answer as the respondent submitted it. Clients send either
// JSON strings ("2", "a") or JSON numbers (2, 4.0); both are kept as text.
type RawValue string

// UnmarshalJSON accepts a JSON string, number or null. Numbers are truncated
// toward zero, so 4.0 and 4.9 both decode as "4"; strings are kept verbatim
// and "3.5" stays non-integer text.
func (v *RawValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*v = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// Booleans, objects and arrays are kept verbatim and score as malformed.
		*v = RawValue(b)
		return nil //nolint:nilerr // malformed answers degrade, they never abort a submission
	}
	*v = NumberValue(n)
	return nil
}

// NumberValue renders a numeric answer as integer text, truncated toward zero.
// Out-of-range values saturate at the int32 bounds.
func NumberValue(n json.Number) RawValue {
	if i, err := n.Int64(); err == nil {
		return RawValue(strconv.FormatInt(min(max(i, math.MinInt32), math.MaxInt32), 10))
	}
	f, err := n.Float64()
	if err != nil && !math.IsInf(f, 0) {
		return RawValue(n.String())
	}
	f = math.Trunc(min(max(f, math.MinInt32), math.MaxInt32))
	return RawValue(strconv.FormatInt(int64(f), 10))
}

// String returns the raw text.
func (v RawValue) String() string { return string(v) }

// Answer is one (question, value) pair.
type Answer struct {
	QuestionID int      `json:"id"`
	Value      RawValue `json:"answer"`
}

// Submission is a respondent's batch of answers.
type Submission struct {
	ID           string    `json:"submission_id,omitempty"`
	RespondentID string    `json:"respondent_id"`
	Answers      []Answer  `json:"answers"`
	ReceivedAt   time.Time `json:"received_at,omitzero"`
}

// Validate checks the boundary preconditions. The respondent id is opaque;
// only its presence is checked.
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.RespondentID) == "" {
		return &PreconditionError{RespondentID: s.RespondentID, Err: ErrMissingRespondentID}
	}
	if len(s.Answers) == 0 {
		return &PreconditionError{RespondentID: s.RespondentID, Err: ErrEmptySubmission}
	}
	return nil
}
