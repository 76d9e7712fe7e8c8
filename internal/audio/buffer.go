package audio

import (
	"fmt"
	"time"
)

// Format describes interleaved PCM audio.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// FrameSize is the number of bytes holding one sample for every channel.
func (f Format) FrameSize() int {
	return f.Channels * ((f.BitsPerSample + 7) / 8)
}

func (f Format) validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, f.Channels)
	}
	switch f.BitsPerSample {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, f.BitsPerSample)
	}
	return nil
}

// Buffer is decoded PCM audio. Data always holds a whole number of frames.
type Buffer struct {
	Format Format
	Data   []byte
}

// Frames returns the number of sample frames in the buffer.
func (b *Buffer) Frames() int {
	size := b.Format.FrameSize()
	if size == 0 {
		return 0
	}
	return len(b.Data) / size
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	return framesToDuration(b.Frames(), b.Format.SampleRate)
}

func framesToDuration(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(frames) * int64(time.Second) / int64(sampleRate))
}
