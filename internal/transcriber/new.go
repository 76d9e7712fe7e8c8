package transcriber

import (
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type implTranscriber struct {
	client *openai.Client
	model  string
	logger logger.Logger
}

// New creates a Transcriber talking to an OpenAI-compatible speech-to-text
// endpoint (Groq by default).
func New(apiKey, baseURL, model string, timeout time.Duration, log logger.Logger) Transcriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &implTranscriber{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: log,
	}
}
