package analysis

import (
	"context"

	"encore.dev/beta/errs"
	"encore.dev/rlog"

	"encore.app/analysis/model"
)

type SubmitAnalysisRequest struct {
	ClientID string `header:"X-Client-ID" json:"-"`

	// Exactly one of URL and Data must be set. Data is base64 in JSON.
	URL  string `json:"url,omitempty" validate:"omitempty,url"`
	Data []byte `json:"data,omitempty"`
	Hash string `json:"hash,omitempty" validate:"omitempty,hexadecimal,max=128"`
}

type AnalysisResponse struct {
	JobID  string                `json:"job_id"`
	Status model.JobStatus       `json:"status"`
	Result *model.AnalysisResult `json:"result,omitempty"`
}

//encore:api public path=/v1/analyses method=POST tag:ratelimited
func (s *Service) SubmitAnalysis(ctx context.Context, req *SubmitAnalysisRequest) (*AnalysisResponse, error) {
	view, err := s.coordinator.Submit(ctx, model.InputDescriptor{
		URL:  req.URL,
		Data: req.Data,
		Hash: req.Hash,
	})
	if err != nil {
		rlog.Error("failed to submit analysis", "error", err)
		return nil, err
	}

	return &AnalysisResponse{
		JobID:  view.ID,
		Status: view.Status,
		Result: view.Result,
	}, nil
}

// Validate rejects ambiguous input at the boundary: an analysis request is
// either by reference or by inline bytes, never both and never neither.
func (r *SubmitAnalysisRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return &errs.Error{Code: errs.InvalidArgument, Message: err.Error()}
	}

	hasURL := r.URL != ""
	hasData := len(r.Data) > 0
	if hasURL == hasData {
		return &errs.Error{Code: errs.InvalidArgument, Message: "exactly one of url or data must be provided"}
	}

	return nil
}
