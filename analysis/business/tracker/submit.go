package tracker

import (
	"context"
	"encoding/json"

	"encore.dev/beta/errs"
	"encore.dev/rlog"

	"github.com/google/uuid"

	"encore.app/analysis/model"
)

// Submit couples the cache lookup with job creation so identical-content
// requests never redundantly enqueue work. On a cache hit the returned job
// is already completed, referencing the cached result, and nothing is
// dispatched; pollers use the same status contract either way.
func (t *tracker) Submit(ctx context.Context, input model.InputDescriptor) (*model.Job, error) {
	hash := input.ContentHash()
	now := t.now().UTC()

	job := &model.Job{
		ID:          uuid.NewString(),
		Status:      model.JobStatusPending,
		InputHash:   hash,
		SubmittedAt: now,
	}
	if input.URL != "" {
		ref := input.URL
		job.InputRef = &ref
	}

	if cached, ok := t.cache.Lookup(ctx, hash); ok {
		job.Status = model.JobStatusCompleted
		job.Result = cached
		job.CompletedAt = &now

		if err := t.persist(ctx, job); err != nil {
			return nil, err
		}
		rlog.Info("cache hit, job completed without dispatch", "job_id", job.ID, "hash", hash)
		return job, nil
	}

	if err := t.persist(ctx, job); err != nil {
		return nil, err
	}

	if err := t.dispatcher.Dispatch(ctx, job, input); err != nil {
		// Issuing a handle that can never progress is worse than an
		// explicit error; the orphaned record expires with the
		// retention TTL.
		rlog.Error("failed to dispatch job", "job_id", job.ID, "hash", hash, "error", err)
		return nil, &errs.Error{Code: errs.Unavailable, Message: "failed to enqueue analysis job"}
	}

	rlog.Info("job submitted", "job_id", job.ID, "hash", hash)
	return job, nil
}

func (t *tracker) persist(ctx context.Context, job *model.Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return &errs.Error{Code: errs.Internal, Message: "failed to encode job record"}
	}
	created, err := t.store.SetNX(ctx, jobKey(job.ID), raw, t.retention)
	if err != nil {
		return &errs.Error{Code: errs.Unavailable, Message: "failed to persist job"}
	}
	if !created {
		return &errs.Error{Code: errs.Internal, Message: "job identifier collision"}
	}
	return nil
}
