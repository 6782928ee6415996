package tracker

import (
	"context"

	"encore.app/analysis/model"
)

// Status returns the read-only projection of a job's current state. Unknown
// and retention-expired identifiers report NotFound rather than a default
// state; the projection is safe to poll repeatedly.
func (t *tracker) Status(ctx context.Context, jobID string) (*model.JobView, error) {
	job, _, err := t.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return job.View(), nil
}
