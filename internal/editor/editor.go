// Package editor exposes the persisted segment list for user edits while a
// project sits in segments_ready. Reordering is not supported: segment
// indexes are fixed at selection time. Edits are last-writer-wins.
package editor

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reelforge/internal/statemachine"
	"reelforge/internal/store"
	"reelforge/models"
)

// ErrNotEditable is returned when the project is not in segments_ready.
var ErrNotEditable = errors.New("project is not editable in its current status")

// ErrInvalidBounds is returned when an edit would leave a segment empty,
// inverted or outside the source video.
var ErrInvalidBounds = errors.New("segment boundaries are invalid")

// Edit carries the user-editable fields of one segment. Nil fields are
// left untouched.
type Edit struct {
	IsIncluded   *bool   `json:"is_included,omitempty"`
	SubtitleText *string `json:"subtitle_text,omitempty"`
	StartMs      *int64  `json:"start_ms,omitempty"`
	EndMs        *int64  `json:"end_ms,omitempty"`
}

// Editor mediates segment edits for projects in segments_ready.
type Editor struct {
	Store  store.ProjectStore
	Logger *logrus.Logger
}

// List returns the project's segments in presentation order.
func (e *Editor) List(projectID uuid.UUID) ([]models.Segment, error) {
	return e.Store.ListSegments(projectID)
}

// Apply persists one segment edit and marks the segment user-modified.
// Boundary edits must keep the segment non-empty and inside the source.
func (e *Editor) Apply(projectID, segmentID uuid.UUID, edit Edit) (*models.Segment, error) {
	project, err := e.requireEditable(projectID)
	if err != nil {
		return nil, err
	}

	if edit.StartMs != nil || edit.EndMs != nil {
		current, err := e.findSegment(projectID, segmentID)
		if err != nil {
			return nil, err
		}
		start, end := current.StartMs, current.EndMs
		if edit.StartMs != nil {
			start = *edit.StartMs
		}
		if edit.EndMs != nil {
			end = *edit.EndMs
		}
		if err := validateBounds(start, end, project.SourceDurationMs); err != nil {
			return nil, err
		}
	}

	fields := map[string]interface{}{"is_user_modified": true}
	if edit.IsIncluded != nil {
		fields["is_included"] = *edit.IsIncluded
	}
	if edit.SubtitleText != nil {
		fields["subtitle_text"] = *edit.SubtitleText
	}
	if edit.StartMs != nil {
		fields["start_ms"] = *edit.StartMs
	}
	if edit.EndMs != nil {
		fields["end_ms"] = *edit.EndMs
	}

	return e.Store.UpdateSegment(segmentID, fields)
}

// IncludedDurationMs sums end-start over the included segments. The value
// is advisory; it is never validated against the target duration.
func IncludedDurationMs(segments []models.Segment) int64 {
	var total int64
	for _, seg := range segments {
		if seg.IsIncluded {
			total += seg.DurationMs()
		}
	}
	return total
}

// SaveAll persists the current state of every segment. The style-selection
// step that follows is a client-side sub-step gated on segments_ready, not
// a separate persisted status.
func (e *Editor) SaveAll(projectID uuid.UUID, segments []models.Segment) error {
	project, err := e.requireEditable(projectID)
	if err != nil {
		return err
	}

	for _, seg := range segments {
		if err := validateBounds(seg.StartMs, seg.EndMs, project.SourceDurationMs); err != nil {
			return fmt.Errorf("segment %d: %w", seg.SegmentIndex, err)
		}
	}

	for _, seg := range segments {
		_, err := e.Store.UpdateSegment(seg.ID, map[string]interface{}{
			"is_included":      seg.IsIncluded,
			"subtitle_text":    seg.SubtitleText,
			"start_ms":         seg.StartMs,
			"end_ms":           seg.EndMs,
			"is_user_modified": seg.IsUserModified,
		})
		if err != nil {
			return fmt.Errorf("save segment %s: %w", seg.ID, err)
		}
	}

	e.Logger.WithFields(logrus.Fields{
		"project_id": projectID,
		"segments":   len(segments),
	}).Info("Segment edits saved")
	return nil
}

func (e *Editor) requireEditable(projectID uuid.UUID) (*models.Project, error) {
	project, err := e.Store.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != statemachine.StatusSegmentsReady {
		return nil, fmt.Errorf("%w: project %s in status %s", ErrNotEditable, projectID, project.Status)
	}
	return project, nil
}

func (e *Editor) findSegment(projectID, segmentID uuid.UUID) (*models.Segment, error) {
	segments, err := e.Store.ListSegments(projectID)
	if err != nil {
		return nil, err
	}
	for i := range segments {
		if segments[i].ID == segmentID {
			return &segments[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func validateBounds(startMs, endMs, sourceDurationMs int64) error {
	if startMs < 0 || endMs <= startMs || endMs > sourceDurationMs {
		return fmt.Errorf("%w: [%d, %d) must sit inside [0, %d] and be non-empty",
			ErrInvalidBounds, startMs, endMs, sourceDurationMs)
	}
	return nil
}
