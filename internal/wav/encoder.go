// Package wav serializes float PCM samples into a canonical PCM16 mono WAV
// container. The transcription service expects exactly this layout, so the
// header is written field by field rather than through a container library.
package wav

import "encoding/binary"

const (
	// SampleRate is the fixed output rate expected downstream.
	SampleRate = 16000

	numChannels   = 1
	bitsPerSample = 16
	headerSize    = 44
)

// Encode serializes float samples into a complete RIFF/WAVE file:
// a 44-byte header followed by little-endian PCM16 data. Samples are
// clamped to [-1, 1] before quantization.
func Encode(samples []float32) []byte {
	dataSize := len(samples) * 2
	buf := make([]byte, headerSize+dataSize)

	byteRate := SampleRate * numChannels * 2
	blockAlign := numChannels * 2

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM subchunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], numChannels)
	binary.LittleEndian.PutUint32(buf[24:28], SampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[headerSize+i*2:], uint16(quantize(s)))
	}
	return buf
}

// quantize maps a float sample to int16. Negative values scale by 32768 and
// positive by 32767 so both ends of the range are reachable without overflow.
func quantize(s float32) int16 {
	if s < -1 {
		s = -1
	} else if s > 1 {
		s = 1
	}
	if s < 0 {
		return int16(s * 32768)
	}
	return int16(s * 32767)
}
