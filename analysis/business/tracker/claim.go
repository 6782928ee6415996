package tracker

import (
	"context"

	"encore.dev/rlog"

	"encore.app/analysis/model"
)

// Claim transitions a pending job to processing. The at-least-once queue can
// deliver the same job more than once, so claims are idempotent: a job that
// is already processing reports claimed without a second transition, and a
// terminal job reports not claimed so the caller skips re-analysis.
func (t *tracker) Claim(ctx context.Context, jobID string) (bool, *model.Job, error) {
	for {
		job, raw, err := t.load(ctx, jobID)
		if err != nil {
			return false, nil, err
		}

		switch job.Status {
		case model.JobStatusPending:
			job.Status = model.JobStatusProcessing
			ok, err := t.swap(ctx, job, raw)
			if err != nil {
				return false, nil, err
			}
			if !ok {
				// Lost the race against another claimer; re-read.
				continue
			}
			rlog.Info("job claimed", "job_id", jobID)
			return true, job, nil

		case model.JobStatusProcessing:
			rlog.Info("job already claimed, treating re-delivery as benign", "job_id", jobID)
			return true, job, nil

		default:
			return false, job, nil
		}
	}
}
