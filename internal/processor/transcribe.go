package processor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
)

// transcribeSegments sends every segment to the transcriber with at most
// MaxConcurrentSegments calls in flight. pieces[i] is the text of segment i.
// The first failure cancels the remaining calls.
func (p *implProcessor) transcribeSegments(ctx context.Context, segments []audio.Segment) ([]string, error) {
	pieces := make([]string, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	limit := p.cfg.Pipeline.MaxConcurrentSegments
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, seg := range segments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			wav, err := seg.WAV()
			if err != nil {
				return &StageError{Stage: StageTranscription, Segment: seg.Index, Err: fmt.Errorf("encode segment: %w", err)}
			}

			start := time.Now()
			text, err := p.transcriber.Transcribe(gctx, seg.Filename(), wav)
			p.metrics.TranscriptionLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				return &StageError{Stage: StageTranscription, Segment: seg.Index, Err: err}
			}

			p.metrics.SegmentsTranscribed.Inc()
			p.logger.Debug(ctx, "[%d/%d] Segment at %s transcribed (%d chars)", i+1, len(segments), seg.Start, len(text))
			pieces[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pieces, nil
}
