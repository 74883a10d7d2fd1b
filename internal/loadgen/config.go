// Package loadgen drives a running scoring service with generated
// submissions and checks the stored reports against a local engine run.
package loadgen

import (
	"time"

	"github.com/okian/appraise/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL         string        // Base URL of the service
	Submissions     int           // Number of submissions to generate
	Workers         int           // Number of concurrent HTTP workers
	Timeout         time.Duration // HTTP request timeout
	Settle          time.Duration // Max time to wait for the queue to drain
	Verify          int           // Number of reports to compare locally, 0 for all
	TaxonomyVersion string        // Taxonomy the service scores against
	MalformedRate   float64       // Share of rating answers sent malformed
	Seed            int64         // Generator seed, 0 for time based
	OutputFile      string        // Output file for generated submissions
	Verbose         bool          // Log every failure
}

// Receipt mirrors the POST /submissions response.
type Receipt struct {
	SubmissionID string `json:"submission_id"`
	RespondentID string `json:"respondent_id"`
	Status       string `json:"status"`
	Duplicate    bool   `json:"duplicate"`
}

// serviceStats is the subset of GET /stats the runner reads.
type serviceStats struct {
	TaxonomyVersion string `json:"taxonomy_version"`
	QueueLength     int    `json:"queue_length"`
	Workers         struct {
		Active    int64 `json:"active"`
		Processed int64 `json:"processed"`
		Failed    int64 `json:"failed"`
	} `json:"workers"`
}

// questionsResponse mirrors GET /questions.
type questionsResponse struct {
	Count     int              `json:"count"`
	Questions []model.Question `json:"questions"`
}

// Stats holds run statistics.
type Stats struct {
	Generated   int
	Submitted   int
	Accepted    int
	Duplicate   int
	Refused     int
	Failed      int
	Verified    int
	Mismatched  int
	Unavailable int
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
