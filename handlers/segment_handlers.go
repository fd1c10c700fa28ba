package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"reelforge/internal/editor"
	"reelforge/internal/store"
	"reelforge/models"
	"reelforge/utils"
)

// ListSegments returns the project's segments in presentation order, plus
// the advisory total duration of the included ones.
func (h *ApplicationHandler) ListSegments(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	segments, err := h.Editor.List(projectID)
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to list segments")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to list segments")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"segments":             segments,
		"included_duration_ms": editor.IncludedDurationMs(segments),
	})
}

// UpdateSegment applies one segment edit while the project sits in
// segments_ready.
func (h *ApplicationHandler) UpdateSegment(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	segmentID, err := uuid.Parse(c.Params("segmentId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid segment id %q", c.Params("segmentId")))
	}

	edit := new(editor.Edit)
	if err := c.BodyParser(edit); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse segment edit JSON: %v", err))
	}

	segment, err := h.Editor.Apply(projectID, segmentID, *edit)
	if errors.Is(err, store.ErrNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Project or segment not found")
	}
	if errors.Is(err, editor.ErrInvalidBounds) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	if errors.Is(err, editor.ErrNotEditable) {
		return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to update segment")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to update segment")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"segment": segment})
}

// SaveSegmentsRequest carries the full segment list to persist.
type SaveSegmentsRequest struct {
	Segments []models.Segment `json:"segments" validate:"required,min=1"`
}

// SaveSegments persists the whole segment list and tells the client to
// advance to style selection. The style step is a client-side sub-step of
// segments_ready; no status changes here.
func (h *ApplicationHandler) SaveSegments(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	req := new(SaveSegmentsRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse segments JSON: %v", err))
	}
	if err := h.Validator.Struct(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	err = h.Editor.SaveAll(projectID, req.Segments)
	if errors.Is(err, store.ErrNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Project or segment not found")
	}
	if errors.Is(err, editor.ErrInvalidBounds) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	if errors.Is(err, editor.ErrNotEditable) {
		return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to save segments")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save segments")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"project_id": projectID,
		"next":       "style_selection",
	})
}
