package models

import (
	"time"

	"github.com/google/uuid"
)

// Segment is a time-bounded excerpt of the source video proposed for the
// final reel. Segments are created in bulk by segment selection and only
// ever updated afterwards, never deleted; segment_index is fixed.
type Segment struct {
	ID             uuid.UUID `json:"id"`
	ProjectID      uuid.UUID `json:"project_id"`
	SegmentIndex   int       `json:"segment_index"`
	StartMs        int64     `json:"start_ms"`
	EndMs          int64     `json:"end_ms"`
	IsIncluded     bool      `json:"is_included"`
	Score          *float64  `json:"score,omitempty"` // 0-10, null until scored
	Reason         string    `json:"reason"`
	SubtitleText   string    `json:"subtitle_text"`
	TranscriptText string    `json:"transcript_text"`
	IsUserModified bool      `json:"is_user_modified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DurationMs returns the length of the segment.
func (s Segment) DurationMs() int64 {
	return s.EndMs - s.StartMs
}
