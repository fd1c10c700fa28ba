package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"reelforge/internal/statemachine"
	"reelforge/models"
)

func TestMemoryStore_ProjectRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	created, err := s.CreateProject(&models.Project{
		OwnerID:           "owner-1",
		SourceKey:         "owner-1/clip.mp4",
		SourceDurationMs:  40000,
		Status:            statemachine.StatusUploaded,
		TargetDurationSec: 30,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("created project has no ID")
	}

	fetched, err := s.GetProject(created.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if fetched.SourceKey != "owner-1/clip.mp4" || fetched.Status != statemachine.StatusUploaded {
		t.Errorf("fetched project = %+v", fetched)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.GetProject(uuid.New()); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_SetFailedAndClear(t *testing.T) {
	s := NewMemoryStore()
	p, _ := s.CreateProject(&models.Project{Status: statemachine.StatusTranscribing})

	if err := s.SetFailed(p.ID, "service unreachable"); err != nil {
		t.Fatalf("SetFailed: %v", err)
	}
	failed, _ := s.GetProject(p.ID)
	if failed.Status != statemachine.StatusFailed {
		t.Errorf("status = %q, want failed", failed.Status)
	}
	if failed.ErrorMessage == nil || *failed.ErrorMessage != "service unreachable" {
		t.Errorf("error_message = %v, want \"service unreachable\"", failed.ErrorMessage)
	}

	// Retry semantics: back to uploaded with the message cleared.
	if _, err := s.UpdateProject(p.ID, map[string]interface{}{
		"status":        statemachine.StatusUploaded,
		"error_message": nil,
	}); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	retried, _ := s.GetProject(p.ID)
	if retried.Status != statemachine.StatusUploaded || retried.ErrorMessage != nil {
		t.Errorf("after retry: status = %q, error = %v", retried.Status, retried.ErrorMessage)
	}
}

func TestMemoryStore_SegmentsOrderedByIndex(t *testing.T) {
	s := NewMemoryStore()
	p, _ := s.CreateProject(&models.Project{Status: statemachine.StatusSelectingSegments})

	_, err := s.CreateSegments([]models.Segment{
		{ProjectID: p.ID, SegmentIndex: 2, StartMs: 20000, EndMs: 25000, IsIncluded: true},
		{ProjectID: p.ID, SegmentIndex: 0, StartMs: 0, EndMs: 5000, IsIncluded: true},
		{ProjectID: p.ID, SegmentIndex: 1, StartMs: 10000, EndMs: 15000, IsIncluded: false},
	})
	if err != nil {
		t.Fatalf("CreateSegments: %v", err)
	}

	segments, err := s.ListSegments(p.ID)
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("segment count = %d, want 3", len(segments))
	}
	for i, seg := range segments {
		if seg.SegmentIndex != i {
			t.Errorf("position %d has segment_index %d", i, seg.SegmentIndex)
		}
	}
}

func TestMemoryStore_ListProjectsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		p, _ := s.CreateProject(&models.Project{OwnerID: "owner-1"})
		ids = append(ids, p.ID)
		time.Sleep(time.Millisecond)
	}
	s.CreateProject(&models.Project{OwnerID: "someone-else"})

	projects, err := s.ListProjects("owner-1")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("project count = %d, want 3", len(projects))
	}
	for i, p := range projects {
		if p.ID != ids[2-i] {
			t.Errorf("position %d has project %s, want %s", i, p.ID, ids[2-i])
		}
	}
}

func TestMemoryStore_DeleteSegments(t *testing.T) {
	s := NewMemoryStore()
	p, _ := s.CreateProject(&models.Project{Status: statemachine.StatusSelectingSegments})
	other, _ := s.CreateProject(&models.Project{Status: statemachine.StatusSelectingSegments})

	s.CreateSegments([]models.Segment{
		{ProjectID: p.ID, SegmentIndex: 0, StartMs: 0, EndMs: 5000},
		{ProjectID: p.ID, SegmentIndex: 1, StartMs: 10000, EndMs: 15000},
		{ProjectID: other.ID, SegmentIndex: 0, StartMs: 0, EndMs: 3000},
	})

	if err := s.DeleteSegments(p.ID); err != nil {
		t.Fatalf("DeleteSegments: %v", err)
	}

	if segments, _ := s.ListSegments(p.ID); len(segments) != 0 {
		t.Errorf("segments after delete = %d, want 0", len(segments))
	}
	if segments, _ := s.ListSegments(other.ID); len(segments) != 1 {
		t.Errorf("other project's segments = %d, want 1 (untouched)", len(segments))
	}
}

func TestMemoryStore_UpdateSegment(t *testing.T) {
	s := NewMemoryStore()
	p, _ := s.CreateProject(&models.Project{})
	created, _ := s.CreateSegments([]models.Segment{
		{ProjectID: p.ID, SegmentIndex: 0, StartMs: 0, EndMs: 5000, IsIncluded: true},
	})

	updated, err := s.UpdateSegment(created[0].ID, map[string]interface{}{
		"is_included":      false,
		"subtitle_text":    "new caption",
		"is_user_modified": true,
	})
	if err != nil {
		t.Fatalf("UpdateSegment: %v", err)
	}
	if updated.IsIncluded || updated.SubtitleText != "new caption" || !updated.IsUserModified {
		t.Errorf("updated segment = %+v", updated)
	}
}
