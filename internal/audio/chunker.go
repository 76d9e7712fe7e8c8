package audio

import (
	"fmt"
	"time"
)

// Segment is a contiguous, frame-aligned slice of a Buffer. Data aliases the
// parent buffer's memory.
type Segment struct {
	Index    int
	Start    time.Duration
	Duration time.Duration
	Format   Format
	Data     []byte
}

// WAV encodes the segment as a standalone WAV file.
func (s Segment) WAV() ([]byte, error) {
	return EncodeWAV(&Buffer{Format: s.Format, Data: s.Data})
}

// Filename is the name the segment is uploaded under.
func (s Segment) Filename() string {
	return fmt.Sprintf("segment_%03d.wav", s.Index)
}

// Split cuts buf into consecutive segments of d each. The last segment holds
// the remainder and may be shorter. An empty buffer yields no segments and
// d <= 0 yields the whole buffer as one segment.
func Split(buf *Buffer, d time.Duration) []Segment {
	total := buf.Frames()
	if total == 0 {
		return nil
	}

	rate := buf.Format.SampleRate
	frameSize := buf.Format.FrameSize()

	per := total
	if d > 0 {
		per = int(int64(d) * int64(rate) / int64(time.Second))
		if per < 1 {
			per = 1
		}
	}

	segments := make([]Segment, 0, (total+per-1)/per)
	for start := 0; start < total; start += per {
		end := start + per
		if end > total {
			end = total
		}
		segments = append(segments, Segment{
			Index:    len(segments),
			Start:    framesToDuration(start, rate),
			Duration: framesToDuration(end-start, rate),
			Format:   buf.Format,
			Data:     buf.Data[start*frameSize : end*frameSize],
		})
	}

	return segments
}
