package jobs

import "time"

// Job is one tracked unit of asynchronous work.
type Job struct {
	ID         string
	Kind       string
	Status     string
	Message    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResultPath string
	// KeepUntil is when the record (and its staging directory) becomes
	// eligible for removal. Set at creation and refreshed once more when
	// the job reaches a terminal state so results stay retrievable.
	KeepUntil time.Time
}

// ジョブ種別
const (
	KindVideo = "video"
)

// ジョブステータス
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Terminal reports whether the status is completed or failed.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// Response is the wire form of a Job returned to API callers.
type Response struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	ResultPath string `json:"result_path,omitempty"`
	ExpiresAt  string `json:"expires_at"`
}

// ToResponse serializes the job with RFC3339 UTC timestamps.
func (j Job) ToResponse() Response {
	return Response{
		ID:         j.ID,
		Kind:       j.Kind,
		Status:     j.Status,
		Message:    j.Message,
		CreatedAt:  j.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  j.UpdatedAt.UTC().Format(time.RFC3339),
		ResultPath: j.ResultPath,
		ExpiresAt:  j.KeepUntil.UTC().Format(time.RFC3339),
	}
}
