package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"reelforge/models"
)

// FrameCapturer captures a single downscaled frame at a timestamp as
// JPEG bytes. Implementations are not required to be safe for concurrent
// use; the sampler never overlaps captures.
type FrameCapturer interface {
	CaptureFrame(ctx context.Context, timestampMs int64) ([]byte, error)
}

// Sampler walks a video one frame per interval from t=0 to the duration.
// It is lazy (frames are produced one call at a time), finite and
// restartable via Reset. Captures are strictly sequential because seeking
// the same source concurrently is not safe.
type Sampler struct {
	capturer   FrameCapturer
	durationMs int64
	intervalMs int64
	next       int
}

// NewSampler returns a sampler producing Count frames at timestamps
// 0, interval, 2*interval, ... < durationMs.
func NewSampler(capturer FrameCapturer, durationMs int64, interval time.Duration) *Sampler {
	return &Sampler{
		capturer:   capturer,
		durationMs: durationMs,
		intervalMs: interval.Milliseconds(),
	}
}

// Count returns the total number of samples: ceil(duration / interval).
func (s *Sampler) Count() int {
	return int((s.durationMs + s.intervalMs - 1) / s.intervalMs)
}

// Next captures and returns the next sample, or nil once the sequence is
// exhausted.
func (s *Sampler) Next(ctx context.Context) (*models.FrameSample, error) {
	if s.next >= s.Count() {
		return nil, nil
	}

	ts := int64(s.next) * s.intervalMs
	img, err := s.capturer.CaptureFrame(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("capture frame %d at %dms: %w", s.next, ts, err)
	}

	sample := &models.FrameSample{
		Index:       s.next,
		TimestampMs: ts,
		ImageBase64: base64.StdEncoding.EncodeToString(img),
	}
	s.next++
	return sample, nil
}

// Reset rewinds the sampler to the first frame.
func (s *Sampler) Reset() {
	s.next = 0
}

// SamplerSource binds an FFmpeg instance to one input file so it can serve
// as a FrameCapturer.
type SamplerSource struct {
	FFmpeg    *FFmpeg
	InputFile string
	Width     int
	Height    int
}

// CaptureFrame seeks to the timestamp and emits one frame scaled down as
// JPEG. Input seeking (-ss before -i) keeps the seek fast on long sources.
func (s *SamplerSource) CaptureFrame(ctx context.Context, timestampMs int64) ([]byte, error) {
	seek := strconv.FormatFloat(float64(timestampMs)/1000, 'f', 3, 64)
	scale := fmt.Sprintf("scale=%d:%d", s.Width, s.Height)

	cmd := exec.CommandContext(ctx, s.FFmpeg.FFmpegPath,
		"-v", "error",
		"-ss", seek,
		"-i", s.InputFile,
		"-frames:v", "1",
		"-vf", scale,
		"-c:v", "mjpeg",
		"-f", "image2",
		"pipe:1",
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame capture failed: %v, stderr: %s", err, stderr.String())
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame at %dms", timestampMs)
	}
	return out.Bytes(), nil
}
