// ABOUTME: Tests for the file and pipe audio endpoints
// ABOUTME: Checks framing of raw PCM input and writing of clips to output
package realtime

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamSource_Frames(t *testing.T) {
	samples := make([]float32, FrameSamples+100)
	for i := range samples {
		samples[i] = 0.25
	}
	src := &StreamSource{Reader: bytes.NewReader(FloatToPCM16(samples))}

	frames, err := src.Open(context.Background())
	require.NoError(t, err)

	var got [][]float32
	for f := range frames {
		got = append(got, f)
	}
	require.Len(t, got, 2)
	assert.Len(t, got[0], FrameSamples)
	assert.Len(t, got[1], 100)
	assert.InDelta(t, 0.25, got[1][0], 1e-4)
	assert.NoError(t, src.Close())
	assert.NoError(t, src.Close(), "close is idempotent")
}

func TestStreamSource_MissingFile(t *testing.T) {
	src := &StreamSource{Path: filepath.Join(t.TempDir(), "nope.pcm")}
	_, err := src.Open(context.Background())
	assert.Error(t, err)
}

func TestStreamSource_CloseStopsDelivery(t *testing.T) {
	src := &StreamSource{Reader: bytes.NewReader(make([]byte, FrameSamples*2*10))}
	frames, err := src.Open(context.Background())
	require.NoError(t, err)

	<-frames
	require.NoError(t, src.Close())

	count := 0
	for range frames {
		count++
	}
	assert.Less(t, count, 9, "delivery should stop soon after close")
}

func TestStreamSink(t *testing.T) {
	var buf bytes.Buffer
	sink := &StreamSink{Writer: &buf}
	require.NoError(t, sink.Play([]byte{1, 2}))
	require.NoError(t, sink.Play([]byte{3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4}, buf.Bytes())
	assert.NoError(t, sink.Close())

	path := filepath.Join(t.TempDir(), "out.pcm")
	fileSink := &StreamSink{Path: path}
	require.NoError(t, fileSink.Play([]byte{9, 9}))
	require.NoError(t, fileSink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, data)
}
