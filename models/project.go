package models

import (
	"time"

	"github.com/google/uuid"
)

// Project represents one reel-creation attempt in the database.
// The source fields are filled at upload confirmation; rendered fields are
// set only when the render reaches its terminal success state.
type Project struct {
	ID                uuid.UUID `json:"id"`
	OwnerID           string    `json:"owner_id"`
	SourceKey         string    `json:"source_key"`
	SourceURL         string    `json:"source_url"`
	SourceDurationMs  int64     `json:"source_duration_ms"`
	SourceWidth       int       `json:"source_width"`
	SourceHeight      int       `json:"source_height"`
	SourceSizeBytes   int64     `json:"source_size_bytes"`
	Status            string    `json:"status"`
	TargetDurationSec int       `json:"target_duration_sec"`
	RenderedKey       *string   `json:"rendered_key,omitempty"`       // Nullable TEXT
	RenderedURL       *string   `json:"rendered_url,omitempty"`       // Nullable TEXT
	ErrorMessage      *string   `json:"error_message,omitempty"`      // Nullable TEXT
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
