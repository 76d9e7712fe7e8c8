// Package app wires the pipeline dependencies shared by the server and the
// inbox pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/metrics"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
	"github.com/nguyentantai21042004/minutes-flow/internal/summarizer"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcriber"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

// LoadConfig loads .env (if present) and the YAML config at path. A missing
// config file falls back to defaults; usingDefaults reports that case.
func LoadConfig(path string) (cfg *config.Config, usingDefaults bool, err error) {
	_ = godotenv.Load()

	cfg, err = config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

// NewProcessor builds the processor with its remote clients. It fails fast
// when a credential is missing.
func NewProcessor(cfg *config.Config, m *metrics.Metrics, log logger.Logger) (processor.Processor, error) {
	secrets, err := config.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	tr := transcriber.New(
		secrets.GroqAPIKey,
		cfg.Transcription.BaseURL,
		cfg.Transcription.Model,
		cfg.Transcription.Timeout,
		log,
	)
	sum := summarizer.New(secrets.GeminiAPIKeys, cfg.Gemini.Model, log)

	exec := executor.New()
	if _, err := exec.LookPath(cfg.FFmpeg.Binary); err != nil {
		log.Warn(context.Background(), "ffmpeg not available, only PCM WAV uploads can be processed: %v", err)
	}

	return processor.New(cfg, exec, tr, sum, m, log), nil
}
