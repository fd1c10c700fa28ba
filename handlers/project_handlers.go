package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"reelforge/internal/jobs"
	"reelforge/internal/statemachine"
	"reelforge/internal/store"
	"reelforge/utils"
)

// ListProjects returns the owner's projects, newest first.
func (h *ApplicationHandler) ListProjects(c *fiber.Ctx) error {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Query parameter 'owner_id' is required")
	}

	projects, err := h.Store.ListProjects(ownerID)
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to list projects")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to list projects")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"projects": projects})
}

// GetProject fetches a single project. Clients poll this while a render is
// in flight.
func (h *ApplicationHandler) GetProject(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	project, err := h.Store.GetProject(projectID)
	if errors.Is(err, store.ErrNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Project %s not found", projectID))
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to fetch project")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to fetch project")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"project": project})
}

// ResumeProject maps the project's persisted status to the client action
// that picks the workflow back up. Statuses mid-analysis re-queue the
// pipeline before responding, since analysis always restarts from the
// uploaded source.
func (h *ApplicationHandler) ResumeProject(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	project, err := h.Store.GetProject(projectID)
	if errors.Is(err, store.ErrNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Project %s not found", projectID))
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to fetch project")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to fetch project")
	}

	action := statemachine.ResumeActionFor(project.Status)
	if action == statemachine.ActionRunAnalysis {
		job := &jobs.AnalyzeProjectJob{ProjectID: project.ID, Orchestrator: h.Orchestrator}
		if !h.Dispatcher.Submit(job) {
			return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Analysis queue is full, try again shortly")
		}
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"project": project,
		"action":  action,
	})
}

// RetryProject re-runs analysis for a failed project that still has its
// uploaded source.
func (h *ApplicationHandler) RetryProject(c *fiber.Ctx) error {
	projectID, err := parseProjectID(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	project, err := h.Store.GetProject(projectID)
	if errors.Is(err, store.ErrNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, fmt.Sprintf("Project %s not found", projectID))
	}
	if err != nil {
		h.Logger.WithField("error", err.Error()).Error("Failed to fetch project")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to fetch project")
	}

	if !statemachine.CanRetry(project.Status, project.SourceKey != "") {
		return utils.RespondWithError(c, fiber.StatusConflict, fmt.Sprintf("Project in status %q cannot be retried", project.Status))
	}

	job := &jobs.AnalyzeProjectJob{ProjectID: project.ID, Orchestrator: h.Orchestrator, Retry: true}
	if !h.Dispatcher.Submit(job) {
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Analysis queue is full, try again shortly")
	}

	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{
		"project_id": project.ID,
		"message":    "Retry queued",
	})
}

func parseProjectID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project id %q", c.Params("id"))
	}
	return id, nil
}
