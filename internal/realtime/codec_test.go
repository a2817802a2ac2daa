// ABOUTME: Tests for PCM16 conversion, framing and resampling
// ABOUTME: Checks clipping, odd lengths and rate conversion sizes
package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCM16Conversion(t *testing.T) {
	in := []float32{0, 0.5, -0.5, 1.5, -1.5}
	pcm := FloatToPCM16(in)
	require.Len(t, pcm, 10)

	out := PCM16ToFloat(pcm)
	require.Len(t, out, 5)
	assert.InDelta(t, 0, out[0], 1e-4)
	assert.InDelta(t, 0.5, out[1], 1e-4)
	assert.InDelta(t, -0.5, out[2], 1e-4)
	assert.InDelta(t, 32767.0/32768.0, out[3], 1e-4, "clipped high")
	assert.InDelta(t, -1, out[4], 1e-4, "clipped low")

	assert.Len(t, PCM16ToFloat([]byte{1, 2, 3}), 1, "trailing odd byte ignored")
}

func TestAudioFraming(t *testing.T) {
	pcm := FloatToPCM16([]float32{0.1, -0.2, 0.3})
	decoded, err := DecodeAudio(EncodeAudio(pcm))
	require.NoError(t, err)
	assert.Equal(t, pcm, decoded)

	_, err = DecodeAudio("%%%")
	assert.Error(t, err)
}

func TestResample(t *testing.T) {
	in := make([]float32, FrameSamples)
	for i := range in {
		in[i] = float32(i) / float32(len(in))
	}

	up := Resample(in, CaptureRate, 24000)
	assert.Len(t, up, FrameSamples*3/2)
	assert.InDelta(t, in[0], up[0], 1e-6)
	for i := 1; i < len(up); i++ {
		assert.GreaterOrEqual(t, up[i], up[i-1], "ramp must stay monotonic")
	}

	assert.Equal(t, in, Resample(in, CaptureRate, CaptureRate))
	assert.Empty(t, Resample(nil, CaptureRate, 24000))
}

func TestClipDuration(t *testing.T) {
	assert.Equal(t, time.Second, ClipDuration(PlaybackRate*2, PlaybackRate))
	assert.Equal(t, 100*time.Millisecond, ClipDuration(4800, PlaybackRate))
	assert.Equal(t, time.Duration(0), ClipDuration(100, 0))
}
