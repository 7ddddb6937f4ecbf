//go:build !cgo

package dictation

import "time"

// PortAudioMicrophone needs cgo.
type PortAudioMicrophone struct{ Microphone }

func NewPortAudioMicrophone(int, time.Duration) (*PortAudioMicrophone, error) {
	return nil, ErrUnavailable
}
