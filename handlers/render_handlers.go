package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"reelforge/internal/jobs"
	"reelforge/internal/render"
	"reelforge/internal/store"
	"reelforge/utils"
)

// RenderRequest names the two style choices submitted with a render.
type RenderRequest struct {
	SubtitleStyle   string `json:"subtitle_style" validate:"required"`
	TransitionStyle string `json:"transition_style" validate:"required"`
}

// SubmitRender hands the edited segments and style choices to the AI
// service and starts background polling. The client follows up on the
// project fetch endpoint until the status turns terminal.
func (h *ApplicationHandler) SubmitRender(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	req := new(RenderRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse render request JSON: %v", err))
	}
	if err := h.Validator.Struct(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}
	if !render.ValidSubtitleStyle(req.SubtitleStyle) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown subtitle style %q", req.SubtitleStyle))
	}
	if !render.ValidTransitionStyle(req.TransitionStyle) {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown transition style %q", req.TransitionStyle))
	}

	err = h.Render.Submit(c.Context(), projectID, req.SubtitleStyle, req.TransitionStyle)
	if errors.Is(err, store.ErrNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Project %s not found", projectID))
	}
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
	}

	job := &jobs.RenderPollJob{ProjectID: projectID, Render: h.Render}
	if !h.Dispatcher.Submit(job) {
		h.Logger.WithField("project_id", projectID).Warn("Poll queue full, client must resume polling")
	}

	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{
		"project_id": projectID,
		"status":     "rendering",
	})
}
