package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// Environment variable names
	EnvPort         = "REELFORGE_PORT"
	EnvLogLevel     = "REELFORGE_LOG_LEVEL"
	EnvAIServiceURL = "REELFORGE_AI_SERVICE_URL"
	EnvSupabaseURL  = "SUPABASE_URL"
	EnvSupabaseKey  = "SUPABASE_SERVICE_KEY"
	EnvSourceBucket = "REELFORGE_SOURCE_BUCKET"
	EnvFFmpegPath   = "REELFORGE_FFMPEG_PATH"
	EnvFFprobePath  = "REELFORGE_FFPROBE_PATH"
	EnvWorkerCount  = "REELFORGE_WORKERS"
	EnvJobQueueSize = "REELFORGE_JOB_QUEUE_SIZE"

	DefaultPort         = 8080
	DefaultAIServiceURL = "http://localhost:50051"
	DefaultSourceBucket = "source-videos"
	DefaultWorkerCount  = 5
	DefaultJobQueueSize = 100

	// FrameInterval is the spacing between sampled frames.
	FrameInterval = 2000 * time.Millisecond

	// FrameBatchSize bounds the number of frames sent per analysis call.
	FrameBatchSize = 3

	// Sampled frames are downscaled to this raster before JPEG encoding.
	FrameWidth  = 640
	FrameHeight = 360

	// PollInterval is how often the render coordinator re-reads project status.
	PollInterval = 5 * time.Second

	// MaxUploadBytes is the per-file upload ceiling (2 GB).
	MaxUploadBytes = 2 * 1024 * 1024 * 1024

	// MaxTranscriptionFallbackBytes caps the raw-video fallback submitted to
	// the transcription service when audio extraction fails.
	MaxTranscriptionFallbackBytes = 512 * 1024 * 1024

	// Audio extraction target: PCM16 mono WAV at 16 kHz.
	AudioSampleRate = 16000
)

// Port returns the HTTP listen port.
func Port() int {
	if v := os.Getenv(EnvPort); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			return p
		}
	}
	return DefaultPort
}

// AIServiceURL returns the base URL of the AI analysis service.
func AIServiceURL() string {
	if v := os.Getenv(EnvAIServiceURL); v != "" {
		return v
	}
	return DefaultAIServiceURL
}

// SourceBucket returns the storage bucket name for source videos and
// extracted audio.
func SourceBucket() string {
	if v := os.Getenv(EnvSourceBucket); v != "" {
		return v
	}
	return DefaultSourceBucket
}

// FFmpegPath returns the ffmpeg binary to shell out to.
func FFmpegPath() string {
	if v := os.Getenv(EnvFFmpegPath); v != "" {
		return v
	}
	return "ffmpeg"
}

// FFprobePath returns the ffprobe binary to shell out to.
func FFprobePath() string {
	if v := os.Getenv(EnvFFprobePath); v != "" {
		return v
	}
	return "ffprobe"
}

// WorkerCount returns the number of pipeline workers.
func WorkerCount() int {
	if v := os.Getenv(EnvWorkerCount); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultWorkerCount
}

// JobQueueSize returns the pipeline job queue capacity.
func JobQueueSize() int {
	if v := os.Getenv(EnvJobQueueSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultJobQueueSize
}
