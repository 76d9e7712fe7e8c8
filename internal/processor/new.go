package processor

import (
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/metrics"
	"github.com/nguyentantai21042004/minutes-flow/internal/summarizer"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

type implProcessor struct {
	cfg         *config.Config
	executor    executor.Executor
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// New creates a new Processor instance
func New(
	cfg *config.Config,
	exec executor.Executor,
	tr transcriber.Transcriber,
	sum summarizer.Summarizer,
	m *metrics.Metrics,
	log logger.Logger,
) Processor {
	return &implProcessor{
		cfg:         cfg,
		executor:    exec,
		transcriber: tr,
		summarizer:  sum,
		metrics:     m,
		logger:      log,
	}
}
