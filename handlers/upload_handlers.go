package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"reelforge/internal/jobs"
	"reelforge/internal/uploader"
	"reelforge/models"
	"reelforge/utils"
)

// UploadProjects accepts one or more video files as multipart form data,
// uploads each to storage and creates a project per file. Every accepted
// project is queued for analysis before the response returns.
func (h *ApplicationHandler) UploadProjects(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse multipart form: %v", err))
	}

	ownerID := c.FormValue("owner_id")
	if ownerID == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Field 'owner_id' is required")
	}

	targetDuration, err := strconv.Atoi(c.FormValue("target_duration_sec", "30"))
	if err != nil || targetDuration < 15 || targetDuration > 90 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Field 'target_duration_sec' must be an integer between 15 and 90")
	}

	files := form.File["files"]
	if len(files) == 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "At least one file is required under the 'files' field")
	}

	spoolDir, err := os.MkdirTemp("", "reelforge-upload-*")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to allocate spool space")
	}
	defer os.RemoveAll(spoolDir)

	candidates := make([]uploader.Candidate, 0, len(files))
	for i, fh := range files {
		path := filepath.Join(spoolDir, fmt.Sprintf("%d%s", i, filepath.Ext(fh.Filename)))
		if err := c.SaveFile(fh, path); err != nil {
			return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Failed to spool %s: %v", fh.Filename, err))
		}
		candidates = append(candidates, uploader.Candidate{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			SizeBytes:   fh.Size,
			Path:        path,
		})
	}

	items := h.Uploader.UploadAll(c.Context(), ownerID, targetDuration, candidates, nil)

	for _, item := range items {
		if item.Status != models.UploadStatusDone || item.Project == nil {
			continue
		}
		job := &jobs.AnalyzeProjectJob{ProjectID: item.Project.ID, Orchestrator: h.Orchestrator}
		if !h.Dispatcher.Submit(job) {
			h.Logger.WithField("project_id", item.Project.ID).Warn("Analysis queue full, project left for retry")
		}
	}

	return utils.RespondWithJSON(c, fiber.StatusCreated, fiber.Map{"uploads": items})
}
