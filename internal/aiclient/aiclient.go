// Package aiclient talks to the external analysis services: frame analysis,
// transcription, segment selection and rendering. All calls are JSON over
// HTTP. Responses are classified as transport failures (the service could
// not be reached) or service errors (the service answered with a non-2xx
// status); callers branch on the distinction explicitly.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reelforge/models"
)

// ServiceError is an application-level rejection from an analysis service.
// The service was reachable; it refused the payload.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error: HTTP %d: %s", e.StatusCode, e.Body)
}

// Client is the HTTP client for the analysis services.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient builds a client for the analysis service at baseURL.
func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

type analyzeFramesRequest struct {
	ProjectID string               `json:"project_id"`
	Frames    []models.FrameSample `json:"frames"`
}

type transcribeRequest struct {
	ProjectID string `json:"project_id"`
	AudioURL  string `json:"audio_url,omitempty"`
}

type selectSegmentsRequest struct {
	ProjectID         string `json:"project_id"`
	TargetDurationSec int    `json:"target_duration_sec"`
}

type selectSegmentsResponse struct {
	Segments []models.Segment `json:"segments"`
}

type renderRequest struct {
	ProjectID       string `json:"project_id"`
	SubtitleStyle   string `json:"subtitle_style"`
	TransitionStyle string `json:"transition_style"`
}

// Ping issues an empty analyze-frames call as a connectivity preflight.
// Only a transport failure is an error: a validation rejection of the empty
// payload proves the service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.post(ctx, "/api/v1/analyze-frames", analyzeFramesRequest{})
	if err == nil {
		return nil
	}
	if _, ok := err.(*ServiceError); ok {
		return nil
	}
	return fmt.Errorf("analysis service unreachable: %w", err)
}

// AnalyzeFrames submits one batch of sampled frames.
func (c *Client) AnalyzeFrames(ctx context.Context, projectID uuid.UUID, frames []models.FrameSample) error {
	_, err := c.post(ctx, "/api/v1/analyze-frames", analyzeFramesRequest{
		ProjectID: projectID.String(),
		Frames:    frames,
	})
	return err
}

// Transcribe asks the transcription service to process the project's audio.
// audioURL points at the extracted WAV, or at the raw source video on the
// fallback path; empty means the service should locate the source itself.
func (c *Client) Transcribe(ctx context.Context, projectID uuid.UUID, audioURL string) error {
	_, err := c.post(ctx, "/api/v1/transcribe", transcribeRequest{
		ProjectID: projectID.String(),
		AudioURL:  audioURL,
	})
	return err
}

// SelectSegments asks the selection service for highlight segments sized to
// the target duration.
func (c *Client) SelectSegments(ctx context.Context, projectID uuid.UUID, targetDurationSec int) ([]models.Segment, error) {
	body, err := c.post(ctx, "/api/v1/select-segments", selectSegmentsRequest{
		ProjectID:         projectID.String(),
		TargetDurationSec: targetDurationSec,
	})
	if err != nil {
		return nil, err
	}

	var resp selectSegmentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal select-segments response: %w", err)
	}
	return resp.Segments, nil
}

// SubmitRender hands the project to the asynchronous render service. The
// result is observed only through polled project status.
func (c *Client) SubmitRender(ctx context.Context, projectID uuid.UUID, subtitleStyle, transitionStyle string) error {
	_, err := c.post(ctx, "/api/v1/render", renderRequest{
		ProjectID:       projectID.String(),
		SubtitleStyle:   subtitleStyle,
		TransitionStyle: transitionStyle,
	})
	return err
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	c.logger.WithFields(logrus.Fields{
		"path":        path,
		"status_code": resp.StatusCode,
		"latency_ms":  time.Since(start).Milliseconds(),
	}).Debug("analysis service call completed")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	return nil, &ServiceError{StatusCode: resp.StatusCode, Body: string(respBody)}
}
