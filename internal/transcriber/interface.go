package transcriber

import "context"

// Transcriber turns one encoded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
}
