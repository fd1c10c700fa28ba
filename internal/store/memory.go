package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelforge/internal/statemachine"
	"reelforge/models"
)

// MemoryStore is an in-process ProjectStore used by tests and local
// development. Field updates go through the same map-of-columns shape as
// the PostgREST implementation so both apply identical semantics.
type MemoryStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]models.Project
	segments map[uuid.UUID]models.Segment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[uuid.UUID]models.Project),
		segments: make(map[uuid.UUID]models.Segment),
	}
}

func (s *MemoryStore) CreateProject(p *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *p
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.projects[stored.ID] = stored

	out := stored
	return &out, nil
}

func (s *MemoryStore) GetProject(id uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) ListProjects(ownerID string) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []models.Project
	for _, p := range s.projects {
		if p.OwnerID == ownerID {
			results = append(results, p)
		}
	}
	// Newest first, matching the PostgREST ordering.
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}

func (s *MemoryStore) UpdateProject(id uuid.UUID, fields map[string]interface{}) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}

	for key, val := range fields {
		switch key {
		case "status":
			p.Status = val.(string)
		case "error_message":
			if val == nil {
				p.ErrorMessage = nil
			} else {
				msg := val.(string)
				p.ErrorMessage = &msg
			}
		case "rendered_key":
			k := val.(string)
			p.RenderedKey = &k
		case "rendered_url":
			u := val.(string)
			p.RenderedURL = &u
		case "target_duration_sec":
			p.TargetDurationSec = val.(int)
		}
	}
	p.UpdatedAt = time.Now()
	s.projects[id] = p

	out := p
	return &out, nil
}

func (s *MemoryStore) SetStatus(id uuid.UUID, status string) error {
	_, err := s.UpdateProject(id, map[string]interface{}{"status": status})
	return err
}

func (s *MemoryStore) SetFailed(id uuid.UUID, message string) error {
	_, err := s.UpdateProject(id, map[string]interface{}{
		"status":        statemachine.StatusFailed,
		"error_message": message,
	})
	return err
}

func (s *MemoryStore) CreateSegments(segments []models.Segment) ([]models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	results := make([]models.Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.ID == uuid.Nil {
			seg.ID = uuid.New()
		}
		seg.CreatedAt = now
		seg.UpdatedAt = now
		s.segments[seg.ID] = seg
		results = append(results, seg)
	}
	return results, nil
}

func (s *MemoryStore) ListSegments(projectID uuid.UUID) ([]models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []models.Segment
	for _, seg := range s.segments {
		if seg.ProjectID == projectID {
			results = append(results, seg)
		}
	}
	// Keep presentation order stable.
	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			if results[j].SegmentIndex < results[i].SegmentIndex {
				results[i], results[j] = results[j], results[i]
			}
		}
	}
	return results, nil
}

func (s *MemoryStore) DeleteSegments(projectID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, seg := range s.segments {
		if seg.ProjectID == projectID {
			delete(s.segments, id)
		}
	}
	return nil
}

func (s *MemoryStore) UpdateSegment(id uuid.UUID, fields map[string]interface{}) (*models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seg, ok := s.segments[id]
	if !ok {
		return nil, ErrNotFound
	}

	for key, val := range fields {
		switch key {
		case "is_included":
			seg.IsIncluded = val.(bool)
		case "subtitle_text":
			seg.SubtitleText = val.(string)
		case "start_ms":
			seg.StartMs = val.(int64)
		case "end_ms":
			seg.EndMs = val.(int64)
		case "is_user_modified":
			seg.IsUserModified = val.(bool)
		}
	}
	seg.UpdatedAt = time.Now()
	s.segments[id] = seg

	out := seg
	return &out, nil
}
