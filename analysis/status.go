package analysis

import (
	"context"

	"encore.dev/beta/errs"
	"encore.dev/rlog"

	"encore.app/analysis/model"
)

type JobStatusResponse struct {
	Job model.JobView `json:"job"`
}

//encore:api public path=/v1/analyses/:id method=GET
func (s *Service) GetAnalysis(ctx context.Context, id string) (*JobStatusResponse, error) {
	if id == "" {
		return nil, &errs.Error{Code: errs.InvalidArgument, Message: "invalid job ID"}
	}

	view, err := s.coordinator.Status(ctx, id)
	if err != nil {
		rlog.Error("failed to get job status", "error", err, "job_id", id)
		return nil, err
	}

	return &JobStatusResponse{Job: *view}, nil
}
