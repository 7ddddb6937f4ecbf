//go:build cgo

package dictation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

const frameSize = 1024

// PortAudioMicrophone records from the default input device.
type PortAudioMicrophone struct {
	rate        int
	phraseLimit time.Duration

	mu        sync.Mutex
	stream    *portaudio.Stream
	in        []int16
	threshold float64
}

// NewPortAudioMicrophone initializes PortAudio and opens a mono input
// stream at rate Hz. The stream only runs while Listen or Calibrate do.
func NewPortAudioMicrophone(rate int, phraseLimit time.Duration) (*PortAudioMicrophone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}
	m := &PortAudioMicrophone{
		rate:        rate,
		phraseLimit: phraseLimit,
		in:          make([]int16, frameSize),
		threshold:   minThreshold,
	}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(rate), len(m.in), m.in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open stream failed: %w", err)
	}
	m.stream = stream
	return m, nil
}

func (m *PortAudioMicrophone) Calibrate(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var frames [][]int16
	err := m.read(ctx, func(frame []int16) (bool, error) {
		frames = append(frames, append([]int16(nil), frame...))
		return len(frames)*frameSize >= samplesFor(d, m.rate), nil
	})
	if err != nil {
		return err
	}
	m.threshold = AmbientThreshold(frames)
	log.Debugf("Microphone calibrated: threshold=%.0f", m.threshold)
	return nil
}

func (m *PortAudioMicrophone) Listen(ctx context.Context, timeout time.Duration) (*Audio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seg := newSegmenter(m.rate, m.threshold, timeout, m.phraseLimit)
	if err := m.read(ctx, seg.push); err != nil {
		return nil, err
	}
	return seg.audio(m.rate), nil
}

// read runs the stream and hands frames to fn until it reports done.
func (m *PortAudioMicrophone) read(ctx context.Context, fn func([]int16) (bool, error)) error {
	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("start stream failed: %w", err)
	}
	defer m.stream.Stop()

	return readFrames(ctx, m.stream.Read, overflowed, m.in, fn)
}

// overflowed reports input overruns, which only lose a frame.
func overflowed(err error) bool {
	return errors.Is(err, portaudio.InputOverflowed)
}

func (m *PortAudioMicrophone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return nil
	}
	err := m.stream.Close()
	m.stream = nil
	portaudio.Terminate()
	return err
}
