package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
)

// loadAudio decodes the stored upload. WAV files holding integer PCM are read
// directly; anything else goes through ffmpeg first.
func (p *implProcessor) loadAudio(ctx context.Context, workDir, srcPath string) (*audio.Buffer, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, stageErr(StageDecode, fmt.Errorf("read upload: %w", err))
	}

	if audio.IsWAV(data) {
		buf, err := audio.DecodeWAV(data)
		if err == nil {
			return buf, nil
		}
		if !errors.Is(err, audio.ErrUnsupportedFormat) {
			return nil, stageErr(StageDecode, err)
		}
		p.logger.Info(ctx, "WAV is not integer PCM, transcoding: %v", err)
	}

	wavPath, err := p.transcode(ctx, workDir, srcPath)
	if err != nil {
		return nil, stageErr(StageTranscode, err)
	}

	data, err = os.ReadFile(wavPath)
	if err != nil {
		return nil, stageErr(StageDecode, fmt.Errorf("read transcoded audio: %w", err))
	}

	buf, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, stageErr(StageDecode, err)
	}
	return buf, nil
}

// transcode converts any container ffmpeg understands into 16-bit PCM WAV.
// Sample rate and channel count are kept unless configured.
func (p *implProcessor) transcode(ctx context.Context, workDir, srcPath string) (string, error) {
	wavPath := filepath.Join(workDir, "decoded.wav")

	p.logger.Info(ctx, "Transcoding to WAV: %s", filepath.Base(srcPath))

	// -vn: drop any video stream
	// -map_metadata -1 / -bitexact: no LIST chunk, reproducible output
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-i", srcPath,
		"-vn",
		"-map_metadata", "-1",
		"-c:a", "pcm_s16le",
	}
	if p.cfg.FFmpeg.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(p.cfg.FFmpeg.SampleRate))
	}
	if p.cfg.FFmpeg.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(p.cfg.FFmpeg.Channels))
	}
	args = append(args, "-bitexact", "-f", "wav", "-y", wavPath)

	if _, err := p.executor.Execute(ctx, p.cfg.FFmpeg.Binary, args...); err != nil {
		return "", fmt.Errorf("ffmpeg transcode: %w", err)
	}

	return wavPath, nil
}
