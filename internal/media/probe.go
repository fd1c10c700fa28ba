// Package media wraps ffmpeg/ffprobe shell-outs for probing, frame capture
// and audio extraction. All commands run offline against local files and are
// deterministic for a given input.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// FFmpeg locates the ffmpeg and ffprobe binaries used by this package.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

// SourceInfo carries the probed properties needed to create a project row.
type SourceInfo struct {
	DurationMs int64
	Width      int
	Height     int
	SizeBytes  int64
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// Probe reads duration and pixel dimensions from the container and the byte
// size from the filesystem.
func (f *FFmpeg) Probe(ctx context.Context, filePath string) (*SourceInfo, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %v, stderr: %s", err, stderr.String())
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probed); err != nil {
		return nil, fmt.Errorf("unmarshal ffprobe output: %w", err)
	}

	if probed.Format.Duration == "" {
		return nil, fmt.Errorf("no duration in ffprobe output for %s", filePath)
	}
	durationSec, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("parse duration %q: %w", probed.Format.Duration, err)
	}

	info := &SourceInfo{DurationMs: int64(durationSec * 1000)}
	for _, s := range probed.Streams {
		if s.CodecType == "video" {
			info.Width = s.Width
			info.Height = s.Height
			break
		}
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}
	info.SizeBytes = stat.Size()

	return info, nil
}
