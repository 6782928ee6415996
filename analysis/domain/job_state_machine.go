package domain

import (
	"encore.app/analysis/model"
)

// Job status transitions are monotonic and one-directional:
//
//	pending -> processing -> completed
//	pending -> processing -> failed
//
// Terminal states absorb every further transition attempt. The tracker
// enforces this table through compare-and-swap writes on the shared store,
// which replaces the row locking a relational substrate would use.
var transitions = map[model.JobStatus][]model.JobStatus{
	model.JobStatusPending:    {model.JobStatusProcessing},
	model.JobStatusProcessing: {model.JobStatusCompleted, model.JobStatusFailed},
}

func CanTransition(from, to model.JobStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status model.JobStatus) bool {
	return status == model.JobStatusCompleted || status == model.JobStatusFailed
}
