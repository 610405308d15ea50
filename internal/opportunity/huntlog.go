package opportunity

import "time"

type HuntStatus string

const (
	HuntCompleted HuntStatus = "completed"
	HuntFailed    HuntStatus = "failed"
	HuntCancelled HuntStatus = "cancelled"
)

// HuntLog is the audit record of one adapter run. Rows are never updated.
type HuntLog struct {
	ID                   string     `json:"id"`
	HuntName             string     `json:"hunt_name"`
	Platform             string     `json:"platform"`
	StartedAt            time.Time  `json:"started_at"`
	CompletedAt          time.Time  `json:"completed_at"`
	OpportunitiesFound   int        `json:"opportunities_found"`
	OpportunitiesMatched int        `json:"opportunities_matched"`
	Status               HuntStatus `json:"status"`
	ErrorMessage         *string    `json:"error_message,omitempty"`
	ExecutionTimeMS      int64      `json:"execution_time_ms"`
}

func (l *HuntLog) Failed() bool {
	return l.Status != HuntCompleted
}
