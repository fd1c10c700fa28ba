// Package jobs defines the units of work the dispatcher runs.
package jobs

import (
	"context"

	"github.com/google/uuid"

	"reelforge/internal/orchestrator"
)

// AnalyzeProjectJob runs the full analysis pipeline for one project. The
// same job type serves first runs, resumes and retries: the pipeline always
// restarts from phase 1 against the uploaded source.
type AnalyzeProjectJob struct {
	ProjectID    uuid.UUID
	Orchestrator *orchestrator.Orchestrator
	Retry        bool
}

// ID returns the job identifier used in worker logs.
func (j *AnalyzeProjectJob) ID() string {
	return "analyze_" + j.ProjectID.String()
}

// Execute runs the pipeline. Failures are already persisted on the project
// by the orchestrator; the returned error only feeds worker logging.
func (j *AnalyzeProjectJob) Execute(ctx context.Context) error {
	if j.Retry {
		return j.Orchestrator.Retry(ctx, j.ProjectID)
	}
	return j.Orchestrator.Run(ctx, j.ProjectID)
}
