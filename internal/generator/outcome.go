package generator

import (
	"time"

	"github.com/bilgisen/weeklyissue/internal/models"
)

// Outcome is the terminal state of one generation run
type Outcome int

const (
	// Published means the artifacts were written
	Published Outcome = iota
	// SkippedQuota means the API refused the call for quota or rate limits.
	// Nothing was written.
	SkippedQuota
	// AbortedIncomplete means the model output stayed unusable after every
	// attempt, or the issue could not be filled. Nothing was written.
	AbortedIncomplete
	// FatalConfig means the run could not start
	FatalConfig
	// FailedArtifact means the target artifact was missing or could not be
	// patched
	FailedArtifact
)

func (o Outcome) String() string {
	switch o {
	case Published:
		return "published"
	case SkippedQuota:
		return "skipped_quota"
	case AbortedIncomplete:
		return "aborted_incomplete"
	case FatalConfig:
		return "fatal_config"
	case FailedArtifact:
		return "failed_artifact"
	default:
		return "unknown"
	}
}

// ExitCode maps the outcome to the process exit status. Skips and aborts
// exit 0.
func (o Outcome) ExitCode() int {
	switch o {
	case Published, SkippedQuota, AbortedIncomplete:
		return 0
	case FatalConfig:
		return 2
	default:
		return 1
	}
}

// Result describes a finished run
type Result struct {
	RunID        string          `json:"run_id"`
	Outcome      Outcome         `json:"-"`
	Status       string          `json:"outcome"`
	Err          error           `json:"-"`
	Error        string          `json:"error,omitempty"`
	Week         models.WeekInfo `json:"week"`
	Calls        int             `json:"calls"`
	Items        int             `json:"items"`
	Placeholders int             `json:"placeholders"`
	StartedAt    time.Time       `json:"started_at"`
	Duration     time.Duration   `json:"duration"`
}

func (r *Result) finish(outcome Outcome, err error) Result {
	r.Outcome = outcome
	r.Status = outcome.String()
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
	r.Duration = time.Since(r.StartedAt)
	return *r
}
