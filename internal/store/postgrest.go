package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	postgrest "github.com/supabase-community/postgrest-go"

	"reelforge/internal/statemachine"
	"reelforge/models"
)

const (
	projectsTable = "projects"
	segmentsTable = "segments"
)

// PostgrestStore persists rows through the Supabase REST interface.
type PostgrestStore struct {
	client *postgrest.Client
}

// NewPostgrestStore builds a store for the given Supabase project.
func NewPostgrestStore(supabaseURL, serviceKey string) (*PostgrestStore, error) {
	client := postgrest.NewClient(supabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("initialize postgrest client: %w", client.ClientError)
	}
	return &PostgrestStore{client: client}, nil
}

func (s *PostgrestStore) CreateProject(p *models.Project) (*models.Project, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	var results []models.Project
	_, err := s.client.From(projectsTable).
		Insert(p, false, "", "representation", "").
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no project row returned after insert, id: %s", p.ID)
	}
	return &results[0], nil
}

func (s *PostgrestStore) GetProject(id uuid.UUID) (*models.Project, error) {
	var results []models.Project
	_, err := s.client.From(projectsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("fetch project %s: %w", id, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

func (s *PostgrestStore) ListProjects(ownerID string) ([]models.Project, error) {
	var results []models.Project
	_, err := s.client.From(projectsTable).
		Select("*", "", false).
		Eq("owner_id", ownerID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("list projects for owner %s: %w", ownerID, err)
	}
	return results, nil
}

func (s *PostgrestStore) UpdateProject(id uuid.UUID, fields map[string]interface{}) (*models.Project, error) {
	fields["updated_at"] = time.Now()

	var results []models.Project
	_, err := s.client.From(projectsTable).
		Update(fields, "representation", "").
		Eq("id", id.String()).
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", id, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

func (s *PostgrestStore) SetStatus(id uuid.UUID, status string) error {
	_, err := s.UpdateProject(id, map[string]interface{}{"status": status})
	return err
}

func (s *PostgrestStore) SetFailed(id uuid.UUID, message string) error {
	_, err := s.UpdateProject(id, map[string]interface{}{
		"status":        statemachine.StatusFailed,
		"error_message": message,
	})
	return err
}

func (s *PostgrestStore) CreateSegments(segments []models.Segment) ([]models.Segment, error) {
	now := time.Now()
	for i := range segments {
		if segments[i].ID == uuid.Nil {
			segments[i].ID = uuid.New()
		}
		segments[i].CreatedAt = now
		segments[i].UpdatedAt = now
	}

	var results []models.Segment
	_, err := s.client.From(segmentsTable).
		Insert(segments, false, "", "representation", "").
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("insert segments: %w", err)
	}
	return results, nil
}

func (s *PostgrestStore) ListSegments(projectID uuid.UUID) ([]models.Segment, error) {
	var results []models.Segment
	_, err := s.client.From(segmentsTable).
		Select("*", "", false).
		Eq("project_id", projectID.String()).
		Order("segment_index", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("list segments for project %s: %w", projectID, err)
	}
	return results, nil
}

func (s *PostgrestStore) DeleteSegments(projectID uuid.UUID) error {
	_, _, err := s.client.From(segmentsTable).
		Delete("", "").
		Eq("project_id", projectID.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("delete segments for project %s: %w", projectID, err)
	}
	return nil
}

func (s *PostgrestStore) UpdateSegment(id uuid.UUID, fields map[string]interface{}) (*models.Segment, error) {
	fields["updated_at"] = time.Now()

	var results []models.Segment
	_, err := s.client.From(segmentsTable).
		Update(fields, "representation", "").
		Eq("id", id.String()).
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("update segment %s: %w", id, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}
