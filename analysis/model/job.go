package model

import (
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is the durable record of one submitted unit of analysis work. It lives
// in the shared store under job:{ID} and is mutated only through guarded
// state transitions.
type Job struct {
	ID           string          `json:"id"`
	Status       JobStatus       `json:"status"`
	InputHash    string          `json:"input_hash"`
	InputRef     *string         `json:"input_ref,omitempty"`
	Result       *AnalysisResult `json:"result,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// JobView is the read-only projection returned to pollers.
type JobView struct {
	ID           string          `json:"job_id"`
	Status       JobStatus       `json:"status"`
	Result       *AnalysisResult `json:"result,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

func (j *Job) View() *JobView {
	return &JobView{
		ID:           j.ID,
		Status:       j.Status,
		Result:       j.Result,
		ErrorMessage: j.ErrorMessage,
		SubmittedAt:  j.SubmittedAt,
		CompletedAt:  j.CompletedAt,
	}
}
