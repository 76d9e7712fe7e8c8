package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/summarizer"
)

// ProcessFile runs the pipeline over a file from the inbox folder.
//
// Outputs in paths.output, named after the recording:
//   - <name>.transcript.txt and <name>.transcript.docx whenever a transcript exists
//   - <name>.summary.md, <name>.summary.docx and <name>.minutes.pdf on success
//   - <name>.error.txt on failure
//
// The recording is moved to paths.archived only on success.
func (p *implProcessor) ProcessFile(ctx context.Context, path string) error {
	ctx = logger.WithRequestID(ctx, uuid.NewString())
	filename := filepath.Base(path)
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting inbox processing: %s", path)
	p.logger.Info(ctx, "========================================")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	res := p.Process(ctx, filename, f)
	f.Close()

	outDir := p.cfg.Paths.Output
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if res.Transcript != "" {
		txtPath := filepath.Join(outDir, name+".transcript.txt")
		if err := os.WriteFile(txtPath, []byte(res.Transcript+"\n"), 0644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		docxPath := filepath.Join(outDir, name+".transcript.docx")
		if err := summarizer.WriteTranscriptDocx(name, res.Transcript, docxPath); err != nil {
			p.logger.Warn(ctx, "Failed to write transcript docx %s: %v", docxPath, err)
		}
	}

	if res.Err != nil {
		errPath := filepath.Join(outDir, name+".error.txt")
		if err := os.WriteFile(errPath, []byte(ErrorMessage(res.Err)+"\n"), 0644); err != nil {
			p.logger.Warn(ctx, "Failed to write error report %s: %v", errPath, err)
		}
		return fmt.Errorf("process %s: %w", filename, res.Err)
	}

	md := fmt.Sprintf("# %s\n\n_%s_\n\n%s\n",
		name,
		time.Now().Format("2006-01-02 15:04"),
		strings.TrimSpace(res.Summary),
	)
	mdPath := filepath.Join(outDir, name+".summary.md")
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	docxPath := filepath.Join(outDir, name+".summary.docx")
	if err := summarizer.WriteSummaryDocx(name, res.Summary, docxPath); err != nil {
		p.logger.Warn(ctx, "Failed to write summary docx %s: %v", docxPath, err)
	}

	pdfPath := filepath.Join(outDir, name+".minutes.pdf")
	if err := summarizer.WriteMinutesPDF(name, res.Summary, res.Transcript, pdfPath); err != nil {
		p.logger.Warn(ctx, "Failed to write minutes pdf %s: %v", pdfPath, err)
	}

	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		p.logger.Warn(ctx, "Failed to create archive dir: %v", err)
	} else if dest, err := moveFile(path, p.cfg.Paths.Archived); err != nil {
		p.logger.Warn(ctx, "Failed to archive %s: %v", path, err)
	} else {
		p.logger.Info(ctx, "Archived recording: %s", dest)
	}

	p.logger.Info(ctx, "[DONE] %s -> %s", filename, mdPath)
	return nil
}
