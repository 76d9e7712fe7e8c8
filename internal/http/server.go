package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/metrics"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
)

//go:embed templates/*.html static/*
var assets embed.FS

const shutdownTimeout = 30 * time.Second

type Server struct {
	engine *gin.Engine
	cfg    *config.Config
	log    logger.Logger
}

func NewServer(cfg *config.Config, proc processor.Processor, m *metrics.Metrics, log logger.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	engine, err := newEngine(cfg, proc, m, log)
	if err != nil {
		return nil, err
	}

	return &Server{engine: engine, cfg: cfg, log: log}, nil
}

func newEngine(cfg *config.Config, proc processor.Processor, m *metrics.Metrics, log logger.Logger) (*gin.Engine, error) {
	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(log, m))
	engine.Use(MaxBodySize(cfg.MaxUploadBytes()))
	engine.SetHTMLTemplate(tmpl)
	engine.StaticFS("/static", http.FS(static))

	api := NewAPI(cfg, proc, log)
	registerRoutes(engine, api, m)

	return engine, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "HTTP server listening on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info(context.Background(), "Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
