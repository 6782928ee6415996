package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"encore.dev/beta/errs"

	"encore.app/analysis/analyzer"
	"encore.app/analysis/business/tracker"
	"encore.app/analysis/model"
)

// ActivityDependencies holds the dependencies needed by activities
type ActivityDependencies struct {
	Tracker  tracker.Tracker
	Analyzer analyzer.Analyzer
}

var activityDeps *ActivityDependencies

// SetActivityDependencies sets the dependencies for activities
func SetActivityDependencies(trk tracker.Tracker, an analyzer.Analyzer) {
	activityDeps = &ActivityDependencies{
		Tracker:  trk,
		Analyzer: an,
	}
}

// ClaimJobActivity transitions the job to processing. It reports false when
// the job is already terminal so the workflow skips re-analysis on queue
// re-delivery.
func ClaimJobActivity(ctx context.Context, jobID string) (bool, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Processing claim job activity", "jobID", jobID)

	if activityDeps == nil || activityDeps.Tracker == nil {
		logger.Error("Activity dependencies not set")
		return false, temporal.NewApplicationError("activity dependencies not initialized", "DependencyError")
	}

	claimed, job, err := activityDeps.Tracker.Claim(ctx, jobID)
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) && e.Code == errs.NotFound {
			// The record expired before the work was delivered;
			// retrying will not bring it back.
			return false, temporal.NewNonRetryableApplicationError("job record expired before claim", "JobNotFound", err)
		}
		logger.Error("Failed to claim job", "jobID", jobID, "error", err)
		return false, err
	}

	if !claimed {
		logger.Info("Job already finished", "jobID", jobID, "status", job.Status)
	}
	return claimed, nil
}

// RunAnalysisActivity materializes the input bytes and invokes the analysis
// routine. Analysis errors surface as activity failures so the bounded retry
// policy applies; the worker process itself never crashes on them.
func RunAnalysisActivity(ctx context.Context, input model.InputDescriptor) (model.AnalysisResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Processing analysis activity", "byReference", input.ByReference())

	if activityDeps == nil || activityDeps.Analyzer == nil {
		logger.Error("Activity dependencies not set")
		return model.AnalysisResult{}, temporal.NewApplicationError("activity dependencies not initialized", "DependencyError")
	}

	data, err := resolveInput(ctx, input)
	if err != nil {
		logger.Error("Failed to resolve input", "error", err)
		return model.AnalysisResult{}, err
	}

	result, err := activityDeps.Analyzer.Analyze(ctx, data)
	if err != nil {
		logger.Error("Analysis routine failed", "error", err)
		return model.AnalysisResult{}, err
	}
	return result, nil
}

// CompleteJobActivity records a successful result on the job
func CompleteJobActivity(ctx context.Context, jobID string, result model.AnalysisResult) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Processing complete job activity", "jobID", jobID)

	if activityDeps == nil || activityDeps.Tracker == nil {
		logger.Error("Activity dependencies not set")
		return temporal.NewApplicationError("activity dependencies not initialized", "DependencyError")
	}

	if err := activityDeps.Tracker.Complete(ctx, jobID, result); err != nil {
		logger.Error("Failed to complete job", "jobID", jobID, "error", err)
		return err
	}
	return nil
}

// FailJobActivity records a failed analysis on the job
func FailJobActivity(ctx context.Context, jobID string, message string) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Processing fail job activity", "jobID", jobID)

	if activityDeps == nil || activityDeps.Tracker == nil {
		logger.Error("Activity dependencies not set")
		return temporal.NewApplicationError("activity dependencies not initialized", "DependencyError")
	}

	if err := activityDeps.Tracker.Fail(ctx, jobID, message); err != nil {
		logger.Error("Failed to record job failure", "jobID", jobID, "error", err)
		return err
	}
	return nil
}

// maxFetchBytes caps reference fetches so a mislabeled URL cannot exhaust
// worker memory.
const maxFetchBytes = 32 << 20

// resolveInput materializes the image bytes: inline data is used as-is,
// references are fetched by the worker.
func resolveInput(ctx context.Context, input model.InputDescriptor) ([]byte, error) {
	if input.ByInlineBytes() {
		return input.Data, nil
	}
	if !input.ByReference() {
		return nil, temporal.NewNonRetryableApplicationError("input descriptor carries neither data nor url", "InputError", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError("invalid input reference", "InputError", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", input.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", input.URL, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
}
