package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"encore.dev/beta/errs"

	"encore.app/analysis/business/resultcache"
	"encore.app/analysis/model"
	"encore.app/analysis/store"
)

//go:generate mockgen -source=tracker.go -destination=../../mocks/business/tracker_mock/tracker_mock.go -package=tracker_mock

// Dispatcher hands a pending job to the work queue. Dispatching the same job
// twice must be benign; the queue provides at-least-once delivery anyway.
type Dispatcher interface {
	Dispatch(ctx context.Context, job *model.Job, input model.InputDescriptor) error
}

// Tracker owns the job lifecycle: it creates records, guards their state
// transitions and projects them for pollers. Worker-side operations are safe
// to receive more than once for the same job.
type Tracker interface {
	Submit(ctx context.Context, input model.InputDescriptor) (*model.Job, error)
	Claim(ctx context.Context, jobID string) (bool, *model.Job, error)
	Complete(ctx context.Context, jobID string, result model.AnalysisResult) error
	Fail(ctx context.Context, jobID string, message string) error
	Status(ctx context.Context, jobID string) (*model.JobView, error)
}

const keyPrefix = "job:"

// DefaultRetention is how long a job record stays pollable. Expiry is
// store-driven; there is no eager cleanup.
const DefaultRetention = 24 * time.Hour

type tracker struct {
	store      store.Store
	cache      *resultcache.Cache
	dispatcher Dispatcher
	retention  time.Duration
	now        func() time.Time
}

func New(s store.Store, cache *resultcache.Cache, dispatcher Dispatcher, retention time.Duration) Tracker {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &tracker{
		store:      s,
		cache:      cache,
		dispatcher: dispatcher,
		retention:  retention,
		now:        time.Now,
	}
}

func jobKey(id string) string {
	return keyPrefix + id
}

// load reads a job record together with the raw bytes it was decoded from,
// so callers can compare-and-swap against exactly what they read.
func (t *tracker) load(ctx context.Context, jobID string) (*model.Job, []byte, error) {
	raw, err := t.store.Get(ctx, jobKey(jobID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, &errs.Error{Code: errs.NotFound, Message: "job not found"}
		}
		return nil, nil, &errs.Error{Code: errs.Unavailable, Message: "job store unavailable"}
	}

	var job model.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, nil, &errs.Error{Code: errs.Internal, Message: "corrupted job record"}
	}
	return &job, raw, nil
}

// swap writes job over the record previously read as old, keeping the
// retention TTL. Returns false when a concurrent writer got there first.
func (t *tracker) swap(ctx context.Context, job *model.Job, old []byte) (bool, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return false, &errs.Error{Code: errs.Internal, Message: "failed to encode job record"}
	}
	ok, err := t.store.CompareAndSwap(ctx, jobKey(job.ID), old, raw)
	if err != nil {
		return false, &errs.Error{Code: errs.Unavailable, Message: "job store unavailable"}
	}
	return ok, nil
}
