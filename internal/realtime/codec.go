// ABOUTME: PCM16 audio helpers for the realtime coach
// ABOUTME: Float/PCM conversion, base64 framing, linear resampling and clip durations
package realtime

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"time"
)

// Audio format constants
const (
	CaptureRate  = 16000
	PlaybackRate = 24000
	FrameSamples = 4096
)

// FloatToPCM16 converts [-1, 1] samples to little-endian signed 16-bit PCM.
// Out of range samples are clipped.
func FloatToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := float64(s) * 32768
		v = math.Max(-32768, math.Min(32767, v))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// PCM16ToFloat converts little-endian signed 16-bit PCM to [-1, 1) samples.
// A trailing odd byte is ignored.
func PCM16ToFloat(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768
	}
	return out
}

// EncodeAudio frames PCM bytes for the wire
func EncodeAudio(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// DecodeAudio reverses EncodeAudio
func DecodeAudio(payload string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(payload)
}

// Resample converts samples between rates by linear interpolation
func Resample(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 || from <= 0 || to <= 0 {
		return in
	}
	n := int(int64(len(in)) * int64(to) / int64(from))
	out := make([]float32, n)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j] + (in[j+1]-in[j])*frac
	}
	return out
}

// ClipDuration is the play time of n bytes of mono PCM16 at rate
func ClipDuration(n int, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	samples := int64(n / 2)
	return time.Duration(samples) * time.Second / time.Duration(rate)
}
