package summarizer

import "context"

// Summarizer turns a meeting transcript into an LLM-written summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}
