package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"encore.app/analysis/model"
)

// AnalyzeJobParams is the work descriptor enqueued for one submitted job.
type AnalyzeJobParams struct {
	JobID string                `json:"job_id"`
	Input model.InputDescriptor `json:"input"`
}

// AnalyzeJob drives one job through its lifecycle: claim it, run the
// analysis, record the outcome. Activity retries are bounded, and a worker
// that crashes mid-analysis is recovered by the activity timeout redelivering
// the work — no job starves silently in processing.
func AnalyzeJob(ctx workflow.Context, params AnalyzeJobParams) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting analysis workflow", "jobID", params.JobID)

	claimed, err := claimJob(ctx, params.JobID)
	if err != nil {
		logger.Error("Failed to claim job", "jobID", params.JobID, "error", err)
		return err
	}
	if !claimed {
		logger.Info("Job already in a terminal state, skipping analysis", "jobID", params.JobID)
		return nil
	}

	result, analysisErr := runAnalysis(ctx, params.Input)
	if analysisErr != nil {
		logger.Error("Analysis failed", "jobID", params.JobID, "error", analysisErr)
		if err := failJob(ctx, params.JobID, analysisErr.Error()); err != nil {
			logger.Error("Failed to record job failure", "jobID", params.JobID, "error", err)
			return err
		}
		// A failed analysis is a handled outcome, not a workflow failure.
		return nil
	}

	if err := completeJob(ctx, params.JobID, result); err != nil {
		logger.Error("Failed to record job completion", "jobID", params.JobID, "error", err)
		return err
	}

	logger.Info("Analysis workflow completed", "jobID", params.JobID)
	return nil
}

// claimJob executes the ClaimJob activity
func claimJob(ctx workflow.Context, jobID string) (bool, error) {
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	activityCtx := workflow.WithActivityOptions(ctx, activityOptions)
	var claimed bool
	err := workflow.ExecuteActivity(activityCtx, ClaimJobActivity, jobID).Get(ctx, &claimed)
	return claimed, err
}

// runAnalysis executes the RunAnalysis activity. The StartToCloseTimeout is
// the visibility timeout for crashed workers; unacknowledged work is
// redelivered until the bounded attempts run out.
func runAnalysis(ctx workflow.Context, input model.InputDescriptor) (model.AnalysisResult, error) {
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
	activityCtx := workflow.WithActivityOptions(ctx, activityOptions)
	var result model.AnalysisResult
	err := workflow.ExecuteActivity(activityCtx, RunAnalysisActivity, input).Get(ctx, &result)
	return result, err
}

// completeJob executes the CompleteJob activity
func completeJob(ctx workflow.Context, jobID string, result model.AnalysisResult) error {
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    15 * time.Second,
			MaximumAttempts:    6,
		},
	}
	activityCtx := workflow.WithActivityOptions(ctx, activityOptions)
	return workflow.ExecuteActivity(activityCtx, CompleteJobActivity, jobID, result).Get(ctx, nil)
}

// failJob executes the FailJob activity
func failJob(ctx workflow.Context, jobID string, message string) error {
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    15 * time.Second,
			MaximumAttempts:    6,
		},
	}
	activityCtx := workflow.WithActivityOptions(ctx, activityOptions)
	return workflow.ExecuteActivity(activityCtx, FailJobActivity, jobID, message).Get(ctx, nil)
}
