package dictation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// minThreshold keeps a silent room from making every click speech.
	minThreshold = 300.0
	// ambientRatio lifts the threshold above measured room noise.
	ambientRatio  = 1.5
	pauseFor      = 800 * time.Millisecond
	prerollFor    = 300 * time.Millisecond
	defaultPhrase = 15 * time.Second
)

// RMS returns the root mean square energy of a frame.
func RMS(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// AmbientThreshold turns a calibration recording into a speech threshold.
func AmbientThreshold(frames [][]int16) float64 {
	var peak float64
	for _, f := range frames {
		peak = max(peak, RMS(f))
	}
	return max(peak*ambientRatio, minThreshold)
}

// readFrames fills frame with read and hands it to fn until fn reports
// done. Errors accepted by skip drop the frame; any other read error
// ends the loop.
func readFrames(ctx context.Context, read func() error, skip func(error) bool, frame []int16, fn func([]int16) (bool, error)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := read(); err != nil {
			if skip != nil && skip(err) {
				log.Debugf("stream read: %v", err)
				continue
			}
			return fmt.Errorf("stream read failed: %w", err)
		}
		done, err := fn(frame)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func samplesFor(d time.Duration, rate int) int {
	return int(d * time.Duration(rate) / time.Second)
}

// segmenter cuts one utterance out of a stream of frames using an energy
// threshold. It is fed frame by frame and reports when the utterance ends.
type segmenter struct {
	threshold float64
	wait      int
	pause     int
	limit     int
	preroll   int

	buf     []int16
	started bool
	waited  int
	silent  int
}

func newSegmenter(rate int, threshold float64, wait, limit time.Duration) *segmenter {
	if limit <= 0 {
		limit = defaultPhrase
	}
	return &segmenter{
		threshold: threshold,
		wait:      samplesFor(wait, rate),
		pause:     samplesFor(pauseFor, rate),
		limit:     samplesFor(limit, rate),
		preroll:   samplesFor(prerollFor, rate),
	}
}

// push adds a frame. It returns true once the utterance is complete and
// ErrNoSpeech if speech never started within the wait window.
func (s *segmenter) push(frame []int16) (bool, error) {
	loud := RMS(frame) >= s.threshold

	if !s.started {
		if !loud {
			s.waited += len(frame)
			s.buf = append(s.buf, frame...)
			if over := len(s.buf) - s.preroll; over > 0 {
				s.buf = append(s.buf[:0], s.buf[over:]...)
			}
			if s.wait > 0 && s.waited >= s.wait {
				return false, ErrNoSpeech
			}
			return false, nil
		}
		s.started = true
	}

	s.buf = append(s.buf, frame...)
	if loud {
		s.silent = 0
	} else {
		s.silent += len(frame)
	}
	return s.silent >= s.pause || len(s.buf) >= s.limit, nil
}

func (s *segmenter) audio(rate int) *Audio {
	return &Audio{Samples: s.buf, SampleRate: rate}
}
