package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// newWorkDir creates the private temp directory of one request.
func (p *implProcessor) newWorkDir() (string, error) {
	if dir := p.cfg.Pipeline.TempDir; dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create temp root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(p.cfg.Pipeline.TempDir, "minutes-*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	return dir, nil
}

// removeWorkDir deletes a request's temp directory, logs warning if fails
func (p *implProcessor) removeWorkDir(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.metrics.CleanupErrors.Inc()
		p.logger.Warn(ctx, "Failed to cleanup work dir %s: %v", dir, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up work dir: %s", dir)
	}
}

// saveUpload copies the upload into workDir, keeping its extension so ffmpeg
// can probe it.
func (p *implProcessor) saveUpload(workDir, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	path := filepath.Join(workDir, "upload"+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return path, nil
}

// moveFile renames src into dir, copying when rename crosses devices.
func moveFile(src, dir string) (string, error) {
	dest := filepath.Join(dir, filepath.Base(src))
	if err := os.Rename(src, dest); err == nil {
		return dest, nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("write destination: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("remove source: %w", err)
	}
	return dest, nil
}
