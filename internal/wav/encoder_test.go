package wav

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncode_HeaderLayout(t *testing.T) {
	samples := make([]float32, 100)
	out := Encode(samples)

	if len(out) != 44+2*len(samples) {
		t.Fatalf("output size = %d, want %d", len(out), 44+2*len(samples))
	}

	if string(out[0:4]) != "RIFF" {
		t.Errorf("chunk id = %q, want RIFF", out[0:4])
	}
	if got := binary.LittleEndian.Uint32(out[4:8]); got != uint32(36+2*len(samples)) {
		t.Errorf("chunk size = %d, want %d", got, 36+2*len(samples))
	}
	if string(out[8:12]) != "WAVE" {
		t.Errorf("format = %q, want WAVE", out[8:12])
	}
	if string(out[12:16]) != "fmt " {
		t.Errorf("subchunk1 id = %q, want \"fmt \"", out[12:16])
	}
	if got := binary.LittleEndian.Uint32(out[16:20]); got != 16 {
		t.Errorf("subchunk1 size = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint16(out[20:22]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(out[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(out[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint32(out[28:32]); got != 32000 {
		t.Errorf("byte rate = %d, want 32000", got)
	}
	if got := binary.LittleEndian.Uint16(out[32:34]); got != 2 {
		t.Errorf("block align = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint16(out[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if string(out[36:40]) != "data" {
		t.Errorf("subchunk2 id = %q, want data", out[36:40])
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != uint32(2*len(samples)) {
		t.Errorf("data size = %d, want %d", got, 2*len(samples))
	}
}

func TestEncode_EmptyInput(t *testing.T) {
	out := Encode(nil)
	if len(out) != 44 {
		t.Fatalf("empty encode size = %d, want 44", len(out))
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != 0 {
		t.Errorf("data size = %d, want 0", got)
	}
}

func TestQuantize_Clamping(t *testing.T) {
	tests := []struct {
		in   float32
		want int16
	}{
		{-2.0, -32768},
		{-1.0, -32768},
		{0, 0},
		{1.0, 32767},
		{2.0, 32767},
		{0.5, 16383},
		{-0.5, -16384},
	}
	for _, tt := range tests {
		if got := quantize(tt.in); got != tt.want {
			t.Errorf("quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQuantize_ErrorBound(t *testing.T) {
	// Quantization error must stay within one step of the 16-bit grid.
	for i := -100; i <= 100; i++ {
		s := float32(i) / 100
		q := quantize(s)

		var back float64
		if q < 0 {
			back = float64(q) / 32768
		} else {
			back = float64(q) / 32767
		}
		if math.Abs(back-float64(s)) > 1.0/32768 {
			t.Fatalf("quantize(%v) = %d, round-trip error %v exceeds 1/32768", s, q, math.Abs(back-float64(s)))
		}
	}
}

func TestEncode_SampleBytes(t *testing.T) {
	out := Encode([]float32{-1, 0, 1})

	got0 := int16(binary.LittleEndian.Uint16(out[44:46]))
	got1 := int16(binary.LittleEndian.Uint16(out[46:48]))
	got2 := int16(binary.LittleEndian.Uint16(out[48:50]))

	if got0 != -32768 || got1 != 0 || got2 != 32767 {
		t.Errorf("samples = %d, %d, %d, want -32768, 0, 32767", got0, got1, got2)
	}
}
