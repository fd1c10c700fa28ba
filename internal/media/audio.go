package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

// ExtractPCM decodes the full audio track of a video into mono float
// samples at the target rate. The decode is an offline pass, not
// wall-clock-bound. Errors here are expected for codec-less or broken
// sources; callers treat extraction as best effort.
func (f *FFmpeg) ExtractPCM(ctx context.Context, inputFile string, sampleRate int) ([]float32, error) {
	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-v", "error",
		"-i", inputFile,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "f32le",
		"-c:a", "pcm_f32le",
		"pipe:1",
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg audio decode failed: %v, stderr: %s", err, stderr.String())
	}

	raw := out.Bytes()
	if len(raw) == 0 {
		return nil, fmt.Errorf("no audio data decoded from %s", inputFile)
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples, nil
}
