// Package orchestrator drives the post-upload analysis pipeline: a
// connectivity preflight, frame analysis in small batches, audio
// extraction and transcription, then segment selection. Phases run
// strictly in sequence because each phase's persisted output feeds the
// next. A failure at any phase moves the project to failed with the
// captured message; retry is always user-initiated and restarts from
// phase 1 against the already-uploaded source.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reelforge/internal/statemachine"
	"reelforge/internal/store"
	"reelforge/internal/wav"
	"reelforge/models"
)

// FrameIterator is a finite sequential source of frame samples.
type FrameIterator interface {
	Count() int
	Next(ctx context.Context) (*models.FrameSample, error)
}

// MediaSource produces frames and audio for a project's source video.
type MediaSource interface {
	// FrameSampler returns an iterator over the source plus a cleanup
	// function for any spooled media.
	FrameSampler(ctx context.Context, project *models.Project) (FrameIterator, func(), error)
	// ExtractAudio decodes the audio track to mono float PCM at the WAV
	// target rate. Failure here is recoverable; the orchestrator falls
	// back to submitting the raw video.
	ExtractAudio(ctx context.Context, project *models.Project) ([]float32, error)
}

// Services is the slice of the analysis service client the pipeline uses.
type Services interface {
	Ping(ctx context.Context) error
	AnalyzeFrames(ctx context.Context, projectID uuid.UUID, frames []models.FrameSample) error
	Transcribe(ctx context.Context, projectID uuid.UUID, audioURL string) error
	SelectSegments(ctx context.Context, projectID uuid.UUID, targetDurationSec int) ([]models.Segment, error)
}

// ObjectStore uploads derived artifacts (the extracted WAV).
type ObjectStore interface {
	UploadObject(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Orchestrator sequences the analysis phases for one project at a time.
// Distinct projects may run concurrently; concurrent runs for the same
// project are refused via the in-flight guard.
type Orchestrator struct {
	Store    store.ProjectStore
	Services Services
	Media    MediaSource
	Blobs    ObjectStore

	Logger *logrus.Logger

	// BatchSize bounds frames per analysis call.
	BatchSize int
	// FallbackMaxBytes caps the raw-video transcription fallback.
	FallbackMaxBytes int64

	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

// acquire claims the project for a pipeline run. At most one pipeline may
// mutate a project at a time; a resume or retry submitted while another
// run is in flight is refused rather than interleaved.
func (o *Orchestrator) acquire(projectID uuid.UUID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		o.active = make(map[uuid.UUID]struct{})
	}
	if _, running := o.active[projectID]; running {
		return false
	}
	o.active[projectID] = struct{}{}
	return true
}

func (o *Orchestrator) release(projectID uuid.UUID) {
	o.mu.Lock()
	delete(o.active, projectID)
	o.mu.Unlock()
}

// Run executes the full pipeline for the project. Any phase error is
// persisted verbatim as the project's failure message before returning.
// A second Run for a project whose pipeline is still in flight is refused.
func (o *Orchestrator) Run(ctx context.Context, projectID uuid.UUID) error {
	if !o.acquire(projectID) {
		return fmt.Errorf("project %s already has an active pipeline", projectID)
	}
	defer o.release(projectID)

	return o.run(ctx, projectID)
}

func (o *Orchestrator) run(ctx context.Context, projectID uuid.UUID) error {
	project, err := o.Store.GetProject(projectID)
	if err != nil {
		return fmt.Errorf("load project %s: %w", projectID, err)
	}

	log := o.Logger.WithField("project_id", projectID)

	if err := o.runPhases(ctx, project, log); err != nil {
		log.WithField("error", err.Error()).Error("Analysis pipeline failed")
		if setErr := o.Store.SetFailed(projectID, err.Error()); setErr != nil {
			log.WithField("error", setErr.Error()).Error("Could not persist failure state")
		}
		return err
	}

	log.Info("Analysis pipeline complete, segments ready")
	return nil
}

func (o *Orchestrator) runPhases(ctx context.Context, project *models.Project, log *logrus.Entry) error {
	// Phase 0: connectivity preflight. Only a transport failure aborts;
	// the client treats an application-level rejection as reachable.
	if err := o.Services.Ping(ctx); err != nil {
		return err
	}

	if err := o.analyzeFrames(ctx, project, log); err != nil {
		return err
	}
	if err := o.transcribe(ctx, project, log); err != nil {
		return err
	}
	return o.selectSegments(ctx, project, log)
}

// analyzeFrames samples the source and ships frames in fixed-size batches.
// Batches go out sequentially: batch N+1 never starts before batch N is
// acknowledged.
func (o *Orchestrator) analyzeFrames(ctx context.Context, project *models.Project, log *logrus.Entry) error {
	if err := o.Store.SetStatus(project.ID, statemachine.StatusAnalyzingFrames); err != nil {
		return err
	}

	sampler, cleanup, err := o.Media.FrameSampler(ctx, project)
	if err != nil {
		return err
	}
	defer cleanup()

	log.WithField("expected_frames", sampler.Count()).Info("Frame analysis started")

	batch := make([]models.FrameSample, 0, o.BatchSize)
	sent := 0
	for {
		sample, err := sampler.Next(ctx)
		if err != nil {
			return err
		}
		if sample == nil {
			break
		}
		batch = append(batch, *sample)
		if len(batch) == o.BatchSize {
			if err := o.Services.AnalyzeFrames(ctx, project.ID, batch); err != nil {
				return err
			}
			sent += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := o.Services.AnalyzeFrames(ctx, project.ID, batch); err != nil {
			return err
		}
		sent += len(batch)
	}

	log.WithField("frames_sent", sent).Info("Frame analysis complete")
	return nil
}

// transcribe extracts and uploads a PCM16 WAV, falling back to the raw
// source video when extraction fails, then calls the transcription service.
func (o *Orchestrator) transcribe(ctx context.Context, project *models.Project, log *logrus.Entry) error {
	if err := o.Store.SetStatus(project.ID, statemachine.StatusTranscribing); err != nil {
		return err
	}

	audioURL, err := o.prepareAudio(ctx, project, log)
	if err != nil {
		return err
	}
	return o.Services.Transcribe(ctx, project.ID, audioURL)
}

func (o *Orchestrator) prepareAudio(ctx context.Context, project *models.Project, log *logrus.Entry) (string, error) {
	samples, err := o.Media.ExtractAudio(ctx, project)
	if err != nil {
		// Extraction is a best-effort optimization. The fallback submits
		// the raw video, but only under an explicit size ceiling; there is
		// no contract that the transcription service accepts arbitrary
		// containers at arbitrary sizes.
		log.WithField("error", err.Error()).Warn("Audio extraction failed, falling back to raw video")
		if project.SourceSizeBytes > o.FallbackMaxBytes {
			return "", fmt.Errorf("audio extraction failed and source (%d bytes) exceeds the %d byte transcription fallback ceiling", project.SourceSizeBytes, o.FallbackMaxBytes)
		}
		return project.SourceURL, nil
	}

	wavBytes := wav.Encode(samples)
	key := fmt.Sprintf("%s/%s/audio.wav", project.OwnerID, project.ID)
	audioURL, err := o.Blobs.UploadObject(ctx, key, "audio/wav", wavBytes)
	if err != nil {
		return "", err
	}

	log.WithFields(logrus.Fields{
		"samples":   len(samples),
		"wav_bytes": len(wavBytes),
	}).Info("Extracted audio uploaded")
	return audioURL, nil
}

// selectSegments asks the selection service for highlights and persists
// them in bulk, then marks the project ready for editing.
func (o *Orchestrator) selectSegments(ctx context.Context, project *models.Project, log *logrus.Entry) error {
	if err := o.Store.SetStatus(project.ID, statemachine.StatusSelectingSegments); err != nil {
		return err
	}

	segments, err := o.Services.SelectSegments(ctx, project.ID, project.TargetDurationSec)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("segment selection returned no segments")
	}

	// A prior run may have died between the insert and the segments_ready
	// write. Selection replaces, never appends, so re-running stays safe.
	if err := o.Store.DeleteSegments(project.ID); err != nil {
		return err
	}

	for i := range segments {
		segments[i].ID = uuid.Nil // let the store assign identity
		segments[i].ProjectID = project.ID
		segments[i].SegmentIndex = i
	}
	if _, err := o.Store.CreateSegments(segments); err != nil {
		return err
	}

	log.WithField("segments", len(segments)).Info("Segments persisted")
	return o.Store.SetStatus(project.ID, statemachine.StatusSegmentsReady)
}

// Retry resets a failed project to uploaded, clears its error and re-runs
// the pipeline. It refuses projects that are not failed, whose source
// reference is gone, or that already have a pipeline in flight.
func (o *Orchestrator) Retry(ctx context.Context, projectID uuid.UUID) error {
	if !o.acquire(projectID) {
		return fmt.Errorf("project %s already has an active pipeline", projectID)
	}
	defer o.release(projectID)

	project, err := o.Store.GetProject(projectID)
	if err != nil {
		return fmt.Errorf("load project %s: %w", projectID, err)
	}

	if !statemachine.CanRetry(project.Status, project.SourceKey != "") {
		return fmt.Errorf("project %s is not retryable (status %s)", projectID, project.Status)
	}

	if _, err := o.Store.UpdateProject(projectID, map[string]interface{}{
		"status":        statemachine.StatusUploaded,
		"error_message": nil,
	}); err != nil {
		return err
	}

	o.Logger.WithField("project_id", projectID).Info("Retry requested, restarting analysis")
	return o.run(ctx, projectID)
}
