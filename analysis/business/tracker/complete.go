package tracker

import (
	"context"

	"encore.dev/beta/errs"
	"encore.dev/rlog"

	"encore.app/analysis/domain"
	"encore.app/analysis/model"
)

// Complete transitions a processing job to completed, records the result on
// the job and populates the result cache under the job's input hash. Calling
// it again on an already-terminal job is a no-op, which makes queue
// re-delivery after completion safe.
func (t *tracker) Complete(ctx context.Context, jobID string, result model.AnalysisResult) error {
	for {
		job, raw, err := t.load(ctx, jobID)
		if err != nil {
			return err
		}

		if domain.IsTerminal(job.Status) {
			return nil
		}
		if !domain.CanTransition(job.Status, model.JobStatusCompleted) {
			return &errs.Error{Code: errs.FailedPrecondition, Message: "job must be processing to complete"}
		}

		now := t.now().UTC()
		job.Status = model.JobStatusCompleted
		job.Result = &result
		job.ErrorMessage = nil
		job.CompletedAt = &now

		ok, err := t.swap(ctx, job, raw)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		// The job record already holds the result, so a cache write
		// failure only costs a future recomputation.
		if err := t.cache.Store(ctx, job.InputHash, result); err != nil {
			rlog.Error("failed to populate result cache", "job_id", jobID, "hash", job.InputHash, "error", err)
		}

		rlog.Info("job completed", "job_id", jobID, "hash", job.InputHash)
		return nil
	}
}
