package processor

import (
	"context"
	"io"
)

// Processor runs the transcribe-then-summarize pipeline over one recording.
type Processor interface {
	// Process handles an uploaded recording. It never returns an error: a
	// failure is reported in Result.Err with whatever was computed before it.
	Process(ctx context.Context, filename string, r io.Reader) Result

	// ProcessFile handles a recording dropped into the inbox folder, writes
	// the transcript and summary to the output folder and archives the source.
	ProcessFile(ctx context.Context, path string) error
}
