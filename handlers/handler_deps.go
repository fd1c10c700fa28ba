package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"reelforge/internal/editor"
	"reelforge/internal/orchestrator"
	"reelforge/internal/render"
	"reelforge/internal/store"
	"reelforge/internal/uploader"
	"reelforge/internal/worker"
)

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Store        store.ProjectStore
	Uploader     *uploader.Coordinator
	Orchestrator *orchestrator.Orchestrator
	Editor       *editor.Editor
	Render       *render.Coordinator
	Dispatcher   *worker.Dispatcher
	Validator    *validator.Validate
	Logger       *logrus.Logger
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(
	st store.ProjectStore,
	up *uploader.Coordinator,
	orch *orchestrator.Orchestrator,
	ed *editor.Editor,
	rc *render.Coordinator,
	disp *worker.Dispatcher,
	logger *logrus.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		Store:        st,
		Uploader:     up,
		Orchestrator: orch,
		Editor:       ed,
		Render:       rc,
		Dispatcher:   disp,
		Validator:    validator.New(),
		Logger:       logger,
	}
}
