package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Transcribe uploads the audio under filename and returns the recognized text
// exactly as the service sent it.
func (t *implTranscriber) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio for %s", filename)
	}

	start := time.Now()
	t.logger.Debug(ctx, "Transcribing %s (%d bytes) with %s", filename, len(audio), t.model)

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("create transcription: %w", err)
	}

	t.logger.Debug(ctx, "Transcribed %s in %s", filename, time.Since(start))
	return resp.Text, nil
}
