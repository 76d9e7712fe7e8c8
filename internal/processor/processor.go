package processor

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
)

// State is the position of one request in the pipeline.
type State string

const (
	StateReceived    State = "received"
	StateDecoded     State = "decoded"
	StateChunked     State = "chunked"
	StateTranscribed State = "transcribed"
	StateSummarized  State = "summarized"
	StateFailed      State = "failed"
)

// Result is the outcome of one pipeline run. Transcript is kept when only
// summarization failed.
type Result struct {
	Transcript string
	Summary    string
	Segments   int
	Duration   time.Duration
	State      State
	Err        error
}

// Process orchestrates decode, chunking, transcription and summarization of
// one recording.
func (p *implProcessor) Process(ctx context.Context, filename string, r io.Reader) Result {
	startTime := time.Now()
	res := Result{State: StateReceived}

	p.metrics.RequestsActive.Inc()
	defer p.metrics.RequestsActive.Dec()

	p.logger.Info(ctx, "Processing recording: %s", filename)

	workDir, err := p.newWorkDir()
	if err != nil {
		return p.fail(ctx, res, stageErr(StageUpload, err))
	}
	defer p.removeWorkDir(ctx, workDir)

	// Step 1: Persist the upload and decode it, transcoding when needed
	srcPath, err := p.saveUpload(workDir, filename, r)
	if err != nil {
		return p.fail(ctx, res, stageErr(StageUpload, err))
	}

	buf, err := p.loadAudio(ctx, workDir, srcPath)
	if err != nil {
		return p.fail(ctx, res, err)
	}
	if buf.Frames() == 0 {
		return p.fail(ctx, res, stageErr(StageDecode, ErrEmptyAudio))
	}
	res.Duration = buf.Duration()
	p.advance(ctx, &res, StateDecoded)
	p.metrics.AudioDuration.Observe(res.Duration.Seconds())

	// Step 2: Split into fixed windows
	segments := audio.Split(buf, p.cfg.SegmentDuration())
	res.Segments = len(segments)
	p.advance(ctx, &res, StateChunked)
	p.metrics.SegmentsPerFile.Observe(float64(len(segments)))
	p.logger.Info(ctx, "Split %s of audio into %d segment(s)", res.Duration, len(segments))

	// Step 3: Transcribe every segment and join in order
	pieces, err := p.transcribeSegments(ctx, segments)
	if err != nil {
		return p.fail(ctx, res, err)
	}
	res.Transcript = strings.Join(pieces, "\n")
	p.advance(ctx, &res, StateTranscribed)

	// Step 4: Summarize the full transcript
	summary, err := p.summarize(ctx, res.Transcript)
	if err != nil {
		return p.fail(ctx, res, err)
	}
	res.Summary = summary
	p.advance(ctx, &res, StateSummarized)

	p.metrics.RequestsTotal.WithLabelValues("success").Inc()
	p.logger.Info(ctx, "Processing completed: %s (%d segments, %s)", filename, res.Segments, time.Since(startTime))

	return res
}

func (p *implProcessor) summarize(ctx context.Context, transcript string) (string, error) {
	start := time.Now()
	summary, err := p.summarizer.Summarize(ctx, transcript)
	p.metrics.SummarizationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", stageErr(StageSummarization, err)
	}
	return summary, nil
}

func (p *implProcessor) advance(ctx context.Context, res *Result, next State) {
	p.logger.Debug(ctx, "State %s -> %s", res.State, next)
	res.State = next
}

func (p *implProcessor) fail(ctx context.Context, res Result, err error) Result {
	p.logger.Error(ctx, "Processing failed in state %s: %v", res.State, err)

	res.State = StateFailed
	res.Err = err

	p.metrics.StageFailures.WithLabelValues(string(StageOf(err))).Inc()
	p.metrics.RequestsTotal.WithLabelValues("failure").Inc()

	return res
}
