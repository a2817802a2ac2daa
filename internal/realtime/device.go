// ABOUTME: Audio capture and playback endpoints backed by files or pipes
// ABOUTME: Raw mono PCM16 in, raw mono PCM16 out; "-" means stdin/stdout
package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/harper/olympus/internal/logging"
)

// AudioSource captures microphone frames. Open fails when the device is unavailable.
type AudioSource interface {
	Open(ctx context.Context) (<-chan []float32, error)
	Close() error
}

// AudioSink plays decoded PCM16 clips
type AudioSink interface {
	Play(pcm []byte) error
	Close() error
}

// StreamSource reads raw PCM16 at CaptureRate from a file, a pipe or Reader and delivers
// fixed FrameSamples frames. When Paced is set frames are released in real time.
type StreamSource struct {
	Path   string
	Reader io.Reader
	Paced  bool

	mu     sync.Mutex
	file   *os.File
	stop   chan struct{}
	closed bool
}

// Open starts delivering frames. The channel closes at end of input or on Close.
func (s *StreamSource) Open(ctx context.Context) (<-chan []float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.Reader
	switch {
	case r != nil:
	case s.Path == "" || s.Path == "-":
		r = os.Stdin
	default:
		f, err := os.Open(s.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open audio input: %w", err)
		}
		s.file = f
		r = f
	}

	s.stop = make(chan struct{})
	s.closed = false
	frames := make(chan []float32, 4)
	go s.pump(ctx, r, frames, s.stop)
	return frames, nil
}

func (s *StreamSource) pump(ctx context.Context, r io.Reader, frames chan<- []float32, stop <-chan struct{}) {
	defer close(frames)

	buf := make([]byte, FrameSamples*2)
	interval := time.Duration(FrameSamples) * time.Second / CaptureRate
	for {
		if stopped(stop) {
			return
		}
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			frame := PCM16ToFloat(buf[:n])
			select {
			case frames <- frame:
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
			if s.Paced {
				select {
				case <-time.After(interval):
				case <-stop:
					return
				case <-ctx.Done():
					return
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) && !stopped(stop) {
				logging.Warn("audio capture read failed", "err", err)
			}
			return
		}
	}
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// Close stops delivery and closes a file opened by Open
func (s *StreamSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.stop != nil {
		close(s.stop)
	}
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

// StreamSink writes clips to a file, stdout or Writer
type StreamSink struct {
	Path   string
	Writer io.Writer

	mu   sync.Mutex
	file *os.File
}

// Play writes one clip
func (s *StreamSink) Play(pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.writer()
	if err != nil {
		return err
	}
	_, err = w.Write(pcm)
	return err
}

func (s *StreamSink) writer() (io.Writer, error) {
	switch {
	case s.Writer != nil:
		return s.Writer, nil
	case s.file != nil:
		return s.file, nil
	case s.Path == "" || s.Path == "-":
		return os.Stdout, nil
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}
	s.file = f
	return f, nil
}

// Close closes a file opened by Play
func (s *StreamSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}
