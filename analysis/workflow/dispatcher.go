package workflow

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"encore.dev/rlog"

	"encore.app/analysis/model"
)

// Dispatcher enqueues analysis work by starting one workflow per job on the
// shared task queue. The workflow ID is derived from the job ID, so a
// duplicate dispatch of the same job is benign.
type Dispatcher struct {
	client    client.Client
	taskQueue string
}

func NewDispatcher(c client.Client, taskQueue string) *Dispatcher {
	return &Dispatcher{
		client:    c,
		taskQueue: taskQueue,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, job *model.Job, input model.InputDescriptor) error {
	workflowID := fmt.Sprintf("analyze-%s", job.ID)

	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: d.taskQueue,
	}

	params := AnalyzeJobParams{
		JobID: job.ID,
		Input: input,
	}

	_, err := d.client.ExecuteWorkflow(ctx, options, AnalyzeJob, params)
	if err != nil {
		if temporal.IsWorkflowExecutionAlreadyStartedError(err) {
			rlog.Info("analysis workflow already started", "job_id", job.ID, "workflow_id", workflowID)
			return nil
		}
		return fmt.Errorf("execute workflow %s: %w", workflowID, err)
	}
	return nil
}
