// Package render submits the final render and watches the project until it
// reaches a terminal state. The render service works asynchronously; its
// outcome is only visible through polled project status.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reelforge/internal/statemachine"
	"reelforge/internal/store"
	"reelforge/models"
)

// Subtitle styles accepted by the render service.
const (
	SubtitleBoldCenter = "bold_center"
	SubtitleBottomBar  = "bottom_bar"
	SubtitleKaraoke    = "karaoke"
	SubtitleMinimal    = "minimal"
)

// Transition styles accepted by the render service.
const (
	TransitionSmooth = "smooth"
	TransitionCut    = "cut"
	TransitionFade   = "fade"
	TransitionZoom   = "zoom"
)

// ValidSubtitleStyle reports whether the style is one the service accepts.
func ValidSubtitleStyle(s string) bool {
	switch s {
	case SubtitleBoldCenter, SubtitleBottomBar, SubtitleKaraoke, SubtitleMinimal:
		return true
	}
	return false
}

// ValidTransitionStyle reports whether the style is one the service accepts.
func ValidTransitionStyle(s string) bool {
	switch s {
	case TransitionSmooth, TransitionCut, TransitionFade, TransitionZoom:
		return true
	}
	return false
}

// Submitter is the slice of the service client the coordinator needs.
type Submitter interface {
	SubmitRender(ctx context.Context, projectID uuid.UUID, subtitleStyle, transitionStyle string) error
}

// Result is the terminal outcome of one render.
type Result struct {
	Succeeded    bool
	RenderedURL  string
	ErrorMessage string
}

// Coordinator submits renders and polls for their completion.
type Coordinator struct {
	Store     store.ProjectStore
	Submitter Submitter
	Logger    *logrus.Logger

	// PollInterval is how long to wait between status reads.
	PollInterval time.Duration
}

// Submit validates the styles, hands the project to the render service and
// moves it to rendering.
func (c *Coordinator) Submit(ctx context.Context, projectID uuid.UUID, subtitleStyle, transitionStyle string) error {
	if !ValidSubtitleStyle(subtitleStyle) {
		return fmt.Errorf("unknown subtitle style %q", subtitleStyle)
	}
	if !ValidTransitionStyle(transitionStyle) {
		return fmt.Errorf("unknown transition style %q", transitionStyle)
	}

	project, err := c.Store.GetProject(projectID)
	if err != nil {
		return err
	}
	if project.Status != statemachine.StatusSegmentsReady {
		return fmt.Errorf("project %s cannot render from status %s", projectID, project.Status)
	}

	if err := c.Submitter.SubmitRender(ctx, projectID, subtitleStyle, transitionStyle); err != nil {
		return err
	}

	if err := c.Store.SetStatus(projectID, statemachine.StatusRendering); err != nil {
		return err
	}

	c.Logger.WithFields(logrus.Fields{
		"project_id":       projectID,
		"subtitle_style":   subtitleStyle,
		"transition_style": transitionStyle,
	}).Info("Render submitted")
	return nil
}

// Poll re-reads the project until it reaches render_complete or failed and
// returns the terminal result exactly once. Cancelling the context stops
// polling without a result; single poll errors are retried on the next
// tick because polling is idempotent.
func (c *Coordinator) Poll(ctx context.Context, projectID uuid.UUID) (*Result, error) {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		project, err := c.Store.GetProject(projectID)
		if err != nil {
			c.Logger.WithFields(logrus.Fields{
				"project_id": projectID,
				"error":      err.Error(),
			}).Warn("Poll tick failed, will retry")
		} else if result := terminalResult(project); result != nil {
			return result, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func terminalResult(project *models.Project) *Result {
	switch project.Status {
	case statemachine.StatusRenderComplete:
		result := &Result{Succeeded: true}
		if project.RenderedURL != nil {
			result.RenderedURL = *project.RenderedURL
		}
		return result
	case statemachine.StatusFailed:
		result := &Result{}
		if project.ErrorMessage != nil {
			result.ErrorMessage = *project.ErrorMessage
		}
		return result
	}
	return nil
}
