package dictation

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes the utterance as a 16-bit mono WAV file.
func WriteWAV(path string, a *Audio) error {
	if a == nil || a.SampleRate <= 0 {
		return fmt.Errorf("invalid audio")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, a.SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  a.SampleRate,
		},
		Data:           make([]int, len(a.Samples)),
		SourceBitDepth: 16,
	}
	for i, s := range a.Samples {
		buf.Data[i] = int(s)
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
