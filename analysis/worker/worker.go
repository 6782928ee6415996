package worker

import (
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"encore.app/analysis/workflow"
)

// Start registers the analysis workflow and its activities and begins
// polling the task queue. Activity dependencies must be set before calling
// Start.
func Start(c client.Client, taskQueue string) (worker.Worker, error) {
	w := worker.New(c, taskQueue, worker.Options{})

	w.RegisterWorkflow(workflow.AnalyzeJob)
	w.RegisterActivity(workflow.ClaimJobActivity)
	w.RegisterActivity(workflow.RunAnalysisActivity)
	w.RegisterActivity(workflow.CompleteJobActivity)
	w.RegisterActivity(workflow.FailJobActivity)

	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("start worker on %s: %w", taskQueue, err)
	}
	return w, nil
}
