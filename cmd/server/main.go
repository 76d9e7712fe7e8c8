package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nguyentantai21042004/minutes-flow/internal/app"
	httpserver "github.com/nguyentantai21042004/minutes-flow/internal/http"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/metrics"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, usingDefaults, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if usingDefaults {
		log.Warn(ctx, "Config file %s not found, using defaults", *configPath)
	}

	m := metrics.New(true)

	proc, err := app.NewProcessor(cfg, m, log)
	if err != nil {
		log.Error(ctx, "Failed to initialize pipeline: %v", err)
		os.Exit(1)
	}

	srv, err := httpserver.NewServer(cfg, proc, m, log)
	if err != nil {
		log.Error(ctx, "Failed to create server: %v", err)
		os.Exit(1)
	}

	log.Info(ctx, "Transcription: %s via %s", cfg.Transcription.Model, cfg.Transcription.BaseURL)
	log.Info(ctx, "Summarization: %s", cfg.Gemini.Model)
	if cfg.Pipeline.SingleShot {
		log.Info(ctx, "Chunking disabled, recordings are sent whole")
	} else {
		log.Info(ctx, "Chunk duration: %s, %d concurrent segment(s)", cfg.Pipeline.ChunkDuration, cfg.Pipeline.MaxConcurrentSegments)
	}

	if err := srv.Run(ctx); err != nil {
		log.Error(ctx, "Server stopped with error: %v", err)
		os.Exit(1)
	}

	log.Info(context.Background(), "Server stopped")
}
