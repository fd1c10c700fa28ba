package media

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

// fakeCapturer records capture order and returns a fixed payload.
type fakeCapturer struct {
	captured []int64
	fail     bool
}

func (c *fakeCapturer) CaptureFrame(_ context.Context, timestampMs int64) ([]byte, error) {
	if c.fail {
		return nil, errors.New("decode error")
	}
	c.captured = append(c.captured, timestampMs)
	return []byte{0xff, 0xd8, 0xff}, nil
}

func drain(t *testing.T, s *Sampler) []int64 {
	t.Helper()
	var timestamps []int64
	for {
		sample, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sample == nil {
			return timestamps
		}
		timestamps = append(timestamps, sample.TimestampMs)
	}
}

func TestSampler_Count(t *testing.T) {
	tests := []struct {
		durationMs int64
		want       int
	}{
		{40000, 20},
		{40001, 21},
		{39999, 20},
		{2000, 1},
		{1, 1},
		{0, 0},
	}
	for _, tt := range tests {
		s := NewSampler(&fakeCapturer{}, tt.durationMs, 2*time.Second)
		if got := s.Count(); got != tt.want {
			t.Errorf("Count(%dms) = %d, want %d", tt.durationMs, got, tt.want)
		}
	}
}

func TestSampler_TimestampsBelowDuration(t *testing.T) {
	fc := &fakeCapturer{}
	s := NewSampler(fc, 40000, 2*time.Second)

	timestamps := drain(t, s)
	if len(timestamps) != 20 {
		t.Fatalf("sample count = %d, want 20", len(timestamps))
	}
	for i, ts := range timestamps {
		want := int64(i) * 2000
		if ts != want {
			t.Errorf("sample %d timestamp = %d, want %d", i, ts, want)
		}
		if ts >= 40000 {
			t.Errorf("sample %d timestamp %d not below duration", i, ts)
		}
	}
}

func TestSampler_Sequential(t *testing.T) {
	fc := &fakeCapturer{}
	s := NewSampler(fc, 10000, 2*time.Second)
	drain(t, s)

	for i := 1; i < len(fc.captured); i++ {
		if fc.captured[i] <= fc.captured[i-1] {
			t.Fatalf("captures out of order: %v", fc.captured)
		}
	}
}

func TestSampler_Restartable(t *testing.T) {
	fc := &fakeCapturer{}
	s := NewSampler(fc, 6000, 2*time.Second)

	first := drain(t, s)
	s.Reset()
	second := drain(t, s)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("runs = %d and %d samples, want 3 each", len(first), len(second))
	}
}

func TestSampler_ExhaustedStaysNil(t *testing.T) {
	s := NewSampler(&fakeCapturer{}, 2000, 2*time.Second)
	drain(t, s)

	sample, err := s.Next(context.Background())
	if err != nil || sample != nil {
		t.Fatalf("Next after exhaustion = %v, %v, want nil, nil", sample, err)
	}
}

func TestSampler_PayloadEncoded(t *testing.T) {
	s := NewSampler(&fakeCapturer{}, 2000, 2*time.Second)
	sample, err := s.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(sample.ImageBase64)
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("decoded payload = %d bytes, want 3", len(decoded))
	}
}

func TestSampler_CaptureErrorPropagates(t *testing.T) {
	s := NewSampler(&fakeCapturer{fail: true}, 4000, 2*time.Second)
	if _, err := s.Next(context.Background()); err == nil {
		t.Fatal("expected capture error")
	}
}
