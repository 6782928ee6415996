package coordinator

import (
	"context"

	"encore.app/analysis/business/ratelimit"
	"encore.app/analysis/business/tracker"
	"encore.app/analysis/model"
)

//go:generate mockgen -source=coordinator.go -destination=../../mocks/business/coordinator_mock/coordinator_mock.go -package=coordinator_mock

// Coordinator sequences admission control, the result cache and the job
// tracker. Callers get a uniform pollable handle whether the content was
// cached or freshly dispatched.
type Coordinator interface {
	Submit(ctx context.Context, input model.InputDescriptor) (*model.JobView, error)
	Status(ctx context.Context, jobID string) (*model.JobView, error)
	CheckRateLimit(ctx context.Context, identity string) ratelimit.Decision
}

type coordinator struct {
	limiter *ratelimit.Limiter
	tracker tracker.Tracker
}

func New(limiter *ratelimit.Limiter, trk tracker.Tracker) Coordinator {
	return &coordinator{
		limiter: limiter,
		tracker: trk,
	}
}

// Submit delegates to the tracker, which consults the result cache before
// enqueuing any work. Admission has already happened at the boundary.
func (c *coordinator) Submit(ctx context.Context, input model.InputDescriptor) (*model.JobView, error) {
	job, err := c.tracker.Submit(ctx, input)
	if err != nil {
		return nil, err
	}
	return job.View(), nil
}

func (c *coordinator) Status(ctx context.Context, jobID string) (*model.JobView, error) {
	return c.tracker.Status(ctx, jobID)
}

func (c *coordinator) CheckRateLimit(ctx context.Context, identity string) ratelimit.Decision {
	return c.limiter.Check(ctx, identity)
}
