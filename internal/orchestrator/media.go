package orchestrator

import (
	"context"
	"net/http"
	"time"

	"reelforge/internal/media"
	"reelforge/models"
)

// FFmpegMedia is the production MediaSource: it spools the uploaded source
// from storage and runs ffmpeg against the local copy.
type FFmpegMedia struct {
	FFmpeg     *media.FFmpeg
	HTTPClient *http.Client

	FrameInterval time.Duration
	FrameWidth    int
	FrameHeight   int
	SampleRate    int
}

func (m *FFmpegMedia) FrameSampler(ctx context.Context, project *models.Project) (FrameIterator, func(), error) {
	path, cleanup, err := media.FetchToTemp(ctx, m.HTTPClient, project.SourceURL)
	if err != nil {
		return nil, nil, err
	}

	source := &media.SamplerSource{
		FFmpeg:    m.FFmpeg,
		InputFile: path,
		Width:     m.FrameWidth,
		Height:    m.FrameHeight,
	}
	return media.NewSampler(source, project.SourceDurationMs, m.FrameInterval), cleanup, nil
}

func (m *FFmpegMedia) ExtractAudio(ctx context.Context, project *models.Project) ([]float32, error) {
	path, cleanup, err := media.FetchToTemp(ctx, m.HTTPClient, project.SourceURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return m.FFmpeg.ExtractPCM(ctx, path, m.SampleRate)
}
