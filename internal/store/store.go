// Package store persists projects and segments. The production
// implementation talks to Supabase through PostgREST; an in-memory
// implementation backs tests and local development.
package store

import (
	"errors"

	"github.com/google/uuid"

	"reelforge/models"
)

// ErrNotFound is returned when a project or segment row does not exist.
var ErrNotFound = errors.New("record not found")

// ProjectStore is the persistence boundary for the pipeline. Status and
// segment writes are last-writer-wins; only the pipeline instance that owns
// a project mutates it.
type ProjectStore interface {
	CreateProject(p *models.Project) (*models.Project, error)
	GetProject(id uuid.UUID) (*models.Project, error)
	ListProjects(ownerID string) ([]models.Project, error)
	UpdateProject(id uuid.UUID, fields map[string]interface{}) (*models.Project, error)

	// SetStatus records a phase boundary.
	SetStatus(id uuid.UUID, status string) error
	// SetFailed moves the project to the failed terminal state with the
	// captured message.
	SetFailed(id uuid.UUID, message string) error

	CreateSegments(segments []models.Segment) ([]models.Segment, error)
	ListSegments(projectID uuid.UUID) ([]models.Segment, error)
	UpdateSegment(id uuid.UUID, fields map[string]interface{}) (*models.Segment, error)
	// DeleteSegments removes every segment of the project. Re-running
	// segment selection replaces, never appends.
	DeleteSegments(projectID uuid.UUID) error
}
