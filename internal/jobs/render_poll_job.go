package jobs

import (
	"context"

	"github.com/google/uuid"

	"reelforge/internal/render"
)

// RenderPollJob polls one submitted render until its project reaches a
// terminal status. The coordinator persists the outcome; clients observe it
// through the project fetch endpoint.
type RenderPollJob struct {
	ProjectID uuid.UUID
	Render    *render.Coordinator
}

func (j *RenderPollJob) ID() string {
	return "render_" + j.ProjectID.String()
}

func (j *RenderPollJob) Execute(ctx context.Context) error {
	_, err := j.Render.Poll(ctx, j.ProjectID)
	return err
}
