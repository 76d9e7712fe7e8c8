package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/metrics"
	"github.com/nguyentantai21042004/minutes-flow/internal/processor"
)

const indexTemplate = "index.html"

type API struct {
	cfg  *config.Config
	proc processor.Processor
	log  logger.Logger
}

func NewAPI(cfg *config.Config, proc processor.Processor, log logger.Logger) *API {
	return &API{cfg: cfg, proc: proc, log: log}
}

func registerRoutes(r *gin.Engine, api *API, m *metrics.Metrics) {
	r.GET("/", api.handleHome)
	r.POST("/process", api.handleProcess)

	apiGroup := r.Group("/api", CORS(api.cfg.Server.AllowedOrigins))
	apiGroup.POST("/process", api.handleProcessJSON)
	apiGroup.OPTIONS("/process", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.GET("/healthz", api.handleHealth)
	r.GET("/metrics", gin.WrapH(m.Handler()))
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *API) handleHome(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, gin.H{"transcript": nil, "summary": nil})
}

// handleProcess renders the page with the transcript and summary. Pipeline
// failures still render with 200; the tagged error takes the summary's place.
func (a *API) handleProcess(c *gin.Context) {
	filename, res, status, ok := a.run(c)
	if !ok {
		c.HTML(status, indexTemplate, gin.H{"transcript": nil, "summary": processor.ErrorMessage(res.Err)})
		return
	}

	summary := res.Summary
	if res.Err != nil {
		summary = processor.ErrorMessage(res.Err)
	}

	c.HTML(http.StatusOK, indexTemplate, gin.H{
		"filename":   filename,
		"segments":   res.Segments,
		"transcript": res.Transcript,
		"summary":    summary,
	})
}

func (a *API) handleProcessJSON(c *gin.Context) {
	filename, res, status, ok := a.run(c)
	if ok {
		status = statusFor(res.Err)
	}

	body := gin.H{
		"filename":         filename,
		"transcript":       res.Transcript,
		"summary":          res.Summary,
		"segments":         res.Segments,
		"duration_seconds": res.Duration.Seconds(),
		"state":            res.State,
	}
	if res.Err != nil {
		body["error"] = processor.ErrorMessage(res.Err)
		body["stage"] = processor.StageOf(res.Err)
	}

	c.JSON(status, body)
}

// run reads the "file" field and runs the pipeline on it. ok is false when
// the upload itself could not be read; status then holds the HTTP status.
func (a *API) run(c *gin.Context) (string, processor.Result, int, bool) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		a.log.Warn(ctx, "Rejected upload: %v", err)
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
			err = errors.New("recording exceeds the upload limit")
		} else {
			err = errors.New("missing audio file")
		}
		return "", failedUpload(err), status, false
	}

	a.log.Info(ctx, "Received upload: filename=%s size=%d", fileHeader.Filename, fileHeader.Size)

	upload, err := fileHeader.Open()
	if err != nil {
		a.log.Error(ctx, "Error opening upload: %v", err)
		return fileHeader.Filename, failedUpload(errors.New("unable to read uploaded file")), http.StatusInternalServerError, false
	}
	defer upload.Close()

	return fileHeader.Filename, a.proc.Process(ctx, fileHeader.Filename, upload), http.StatusOK, true
}

func failedUpload(err error) processor.Result {
	return processor.Result{
		State: processor.StateFailed,
		Err:   &processor.StageError{Stage: processor.StageUpload, Segment: -1, Err: err},
	}
}

func statusFor(err error) int {
	switch processor.StageOf(err) {
	case "":
		if err != nil {
			return http.StatusInternalServerError
		}
		return http.StatusOK
	case processor.StageDecode, processor.StageTranscode:
		return http.StatusUnprocessableEntity
	case processor.StageTranscription, processor.StageSummarization:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
