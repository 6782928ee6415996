package tracker

import (
	"context"

	"encore.dev/beta/errs"
	"encore.dev/rlog"

	"encore.app/analysis/domain"
	"encore.app/analysis/model"
)

// Fail transitions a processing job to failed, recording the error detail.
// This layer does not retry failed jobs; retry policy belongs to the queue
// boundary and is bounded there. Terminal re-deliveries are no-ops.
func (t *tracker) Fail(ctx context.Context, jobID string, message string) error {
	for {
		job, raw, err := t.load(ctx, jobID)
		if err != nil {
			return err
		}

		if domain.IsTerminal(job.Status) {
			return nil
		}
		if !domain.CanTransition(job.Status, model.JobStatusFailed) {
			return &errs.Error{Code: errs.FailedPrecondition, Message: "job must be processing to fail"}
		}

		now := t.now().UTC()
		job.Status = model.JobStatusFailed
		job.ErrorMessage = &message
		job.Result = nil
		job.CompletedAt = &now

		ok, err := t.swap(ctx, job, raw)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		rlog.Info("job failed", "job_id", jobID, "error_message", message)
		return nil
	}
}
