package processor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/audio"
	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
	"github.com/nguyentantai21042004/minutes-flow/internal/metrics"
)

var mono16k = audio.Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}

// fakeTranscriber records calls. By default segment i is transcribed as
// "piece-i"; textFn overrides that.
type fakeTranscriber struct {
	mu          sync.Mutex
	calls       map[int]int // segment index -> encoded WAV size
	failOn      int
	delay       func(index int) time.Duration
	textFn      func(index int, wav []byte) string
	inFlight    int
	maxInFlight int
}

func newFakeTranscriber() *fakeTranscriber {
	return &fakeTranscriber{calls: map[int]int{}, failOn: -1}
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, filename string, wav []byte) (string, error) {
	var index int
	if _, err := fmt.Sscanf(filename, "segment_%03d.wav", &index); err != nil {
		return "", fmt.Errorf("unexpected filename %q", filename)
	}
	if _, err := audio.DecodeWAV(wav); err != nil {
		return "", fmt.Errorf("segment is not a playable WAV: %w", err)
	}

	f.mu.Lock()
	f.calls[index] = len(wav)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(index)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if index == f.failOn {
		return "", errors.New("503 service unavailable")
	}
	if f.textFn != nil {
		return f.textFn(index, wav), nil
	}
	return fmt.Sprintf("piece-%d", index), nil
}

func (f *fakeTranscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSummarizer struct {
	mu    sync.Mutex
	calls []string
	reply string
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, transcript)
	return f.reply, f.err
}

// fakeExecutor plays ffmpeg by writing output to the last argument.
type fakeExecutor struct {
	calls  [][]string
	output []byte
	err    error
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return "", f.err
	}
	if err := os.WriteFile(args[len(args)-1], f.output, 0644); err != nil {
		return "", err
	}
	return "", nil
}

func (f *fakeExecutor) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func wavBytes(t *testing.T, d time.Duration, f audio.Format) []byte {
	t.Helper()

	frames := int(int64(d) * int64(f.SampleRate) / int64(time.Second))
	data := make([]byte, frames*f.FrameSize())
	for i := range data {
		data[i] = byte(i % 253)
	}

	out, err := audio.EncodeWAV(&audio.Buffer{Format: f, Data: data})
	if err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	return out
}

func newTestProcessor(t *testing.T, tr *fakeTranscriber, sum *fakeSummarizer, exec *fakeExecutor, mutate func(*config.Config)) *implProcessor {
	t.Helper()

	cfg := config.Default()
	cfg.Pipeline.TempDir = t.TempDir()
	cfg.Paths.Output = filepath.Join(t.TempDir(), "output")
	cfg.Paths.Archived = filepath.Join(t.TempDir(), "archived")
	if mutate != nil {
		mutate(cfg)
	}
	if exec == nil {
		exec = &fakeExecutor{err: errors.New("ffmpeg should not run")}
	}

	return New(cfg, exec, tr, sum, metrics.New(false), logger.Nop()).(*implProcessor)
}

func TestProcessFiveMinuteWAV(t *testing.T) {
	tr := newFakeTranscriber()
	sum := &fakeSummarizer{reply: "## Key Decisions\n- ship it"}
	exec := &fakeExecutor{err: errors.New("ffmpeg should not run")}
	p := newTestProcessor(t, tr, sum, exec, nil)

	res := p.Process(context.Background(), "meeting.wav", bytes.NewReader(wavBytes(t, 5*time.Minute, mono16k)))

	if res.Err != nil {
		t.Fatalf("Process() error = %v", res.Err)
	}
	if res.State != StateSummarized {
		t.Errorf("State = %s, want %s", res.State, StateSummarized)
	}
	if res.Segments != 3 {
		t.Errorf("Segments = %d, want 3", res.Segments)
	}
	if res.Duration != 5*time.Minute {
		t.Errorf("Duration = %v, want 5m", res.Duration)
	}
	if res.Transcript != "piece-0\npiece-1\npiece-2" {
		t.Errorf("Transcript = %q", res.Transcript)
	}
	if res.Summary != "## Key Decisions\n- ship it" {
		t.Errorf("Summary = %q, want raw summarizer reply", res.Summary)
	}
	if len(exec.calls) != 0 {
		t.Errorf("ffmpeg ran %d times for a PCM WAV", len(exec.calls))
	}

	twoMin := 44 + 2*60*16000*2
	oneMin := 44 + 60*16000*2
	wantSizes := map[int]int{0: twoMin, 1: twoMin, 2: oneMin}
	for idx, want := range wantSizes {
		if tr.calls[idx] != want {
			t.Errorf("segment %d WAV size = %d, want %d", idx, tr.calls[idx], want)
		}
	}

	if len(sum.calls) != 1 || sum.calls[0] != res.Transcript {
		t.Errorf("summarizer calls = %q, want exactly the transcript once", sum.calls)
	}
}

func TestProcessPreservesOrderUnderConcurrency(t *testing.T) {
	tr := newFakeTranscriber()
	// Later segments finish first.
	tr.delay = func(i int) time.Duration { return time.Duration(6-i) * 10 * time.Millisecond }
	tr.textFn = func(i int, _ []byte) string { return string(rune('a' + i)) }
	sum := &fakeSummarizer{reply: "ok"}

	p := newTestProcessor(t, tr, sum, nil, func(c *config.Config) {
		c.Pipeline.ChunkDuration = time.Second
		c.Pipeline.MaxConcurrentSegments = 3
	})

	res := p.Process(context.Background(), "clip.wav", bytes.NewReader(wavBytes(t, 6*time.Second, mono16k)))

	if res.Err != nil {
		t.Fatalf("Process() error = %v", res.Err)
	}
	if res.Transcript != "a\nb\nc\nd\ne\nf" {
		t.Errorf("Transcript = %q, want segment order", res.Transcript)
	}
	if tr.maxInFlight > 3 {
		t.Errorf("max in-flight transcriptions = %d, want <= 3", tr.maxInFlight)
	}
	if tr.maxInFlight < 2 {
		t.Errorf("max in-flight transcriptions = %d, want segments to run in parallel", tr.maxInFlight)
	}
}

func TestProcessTranscodesNonWAV(t *testing.T) {
	wav := wavBytes(t, 150*time.Second, mono16k)
	digest := func(_ int, b []byte) string {
		sum := sha256.Sum256(b)
		return fmt.Sprintf("%x", sum[:6])
	}

	// Direct WAV upload.
	direct := newFakeTranscriber()
	direct.textFn = digest
	pDirect := newTestProcessor(t, direct, &fakeSummarizer{reply: "s"}, nil, nil)
	want := pDirect.Process(context.Background(), "meeting.wav", bytes.NewReader(wav))
	if want.Err != nil {
		t.Fatalf("direct Process() error = %v", want.Err)
	}

	// Same audio as MP3; ffmpeg produces the equivalent WAV.
	tr := newFakeTranscriber()
	tr.textFn = digest
	exec := &fakeExecutor{output: wav}
	p := newTestProcessor(t, tr, &fakeSummarizer{reply: "s"}, exec, nil)

	mp3 := []byte("ID3\x04\x00\x00\x00\x00\x00\x00\xff\xfbfake mpeg frames")
	got := p.Process(context.Background(), "meeting.mp3", bytes.NewReader(mp3))
	if got.Err != nil {
		t.Fatalf("mp3 Process() error = %v", got.Err)
	}

	if got.Transcript != want.Transcript {
		t.Errorf("transcript differs after transcoding:\n got %q\nwant %q", got.Transcript, want.Transcript)
	}
	if got.Segments != 2 {
		t.Errorf("Segments = %d, want 2", got.Segments)
	}

	if len(exec.calls) != 1 {
		t.Fatalf("ffmpeg calls = %d, want 1", len(exec.calls))
	}
	args := strings.Join(exec.calls[0], " ")
	if exec.calls[0][0] != "ffmpeg" {
		t.Errorf("binary = %q, want ffmpeg", exec.calls[0][0])
	}
	for _, want := range []string{"-c:a pcm_s16le", "upload.mp3", "-f wav"} {
		if !strings.Contains(args, want) {
			t.Errorf("ffmpeg args %q missing %q", args, want)
		}
	}
	if strings.Contains(args, "-ar") || strings.Contains(args, "-ac") {
		t.Errorf("ffmpeg args %q should keep source rate and channels", args)
	}
}

func TestProcessTranscodeOptions(t *testing.T) {
	exec := &fakeExecutor{output: wavBytes(t, time.Second, mono16k)}
	p := newTestProcessor(t, newFakeTranscriber(), &fakeSummarizer{reply: "s"}, exec, func(c *config.Config) {
		c.FFmpeg.SampleRate = 16000
		c.FFmpeg.Channels = 1
		c.FFmpeg.Binary = "/opt/ffmpeg/bin/ffmpeg"
	})

	res := p.Process(context.Background(), "talk.m4a", strings.NewReader("not audio"))
	if res.Err != nil {
		t.Fatalf("Process() error = %v", res.Err)
	}

	args := strings.Join(exec.calls[0], " ")
	for _, want := range []string{"/opt/ffmpeg/bin/ffmpeg", "-ar 16000", "-ac 1"} {
		if !strings.Contains(args, want) {
			t.Errorf("ffmpeg args %q missing %q", args, want)
		}
	}
}

func TestProcessFailures(t *testing.T) {
	valid := wavBytes(t, 5*time.Second, mono16k)
	empty := wavBytes(t, 0, mono16k)
	corrupt := append([]byte{}, valid[:36]...)

	tests := []struct {
		name           string
		filename       string
		data           []byte
		failOn         int
		summarizeErr   error
		execErr        error
		wantStage      Stage
		wantTranscript bool
		wantSummarize  bool
	}{
		{
			name:      "transcode failure",
			filename:  "broken.mp3",
			data:      []byte("garbage"),
			execErr:   errors.New("Invalid data found when processing input"),
			wantStage: StageTranscode,
		},
		{
			name:      "corrupt wav",
			filename:  "broken.wav",
			data:      corrupt,
			wantStage: StageDecode,
		},
		{
			name:      "empty wav",
			filename:  "silence.wav",
			data:      empty,
			wantStage: StageDecode,
		},
		{
			name:      "segment failure",
			filename:  "meeting.wav",
			data:      valid,
			failOn:    1,
			wantStage: StageTranscription,
		},
		{
			name:           "summarization failure keeps transcript",
			filename:       "meeting.wav",
			data:           valid,
			failOn:         -1,
			summarizeErr:   errors.New("generate content: 500 internal"),
			wantStage:      StageSummarization,
			wantTranscript: true,
			wantSummarize:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newFakeTranscriber()
			tr.failOn = tt.failOn
			sum := &fakeSummarizer{reply: "should not be used", err: tt.summarizeErr}
			exec := &fakeExecutor{err: tt.execErr}
			if tt.execErr == nil {
				exec.err = errors.New("ffmpeg should not run")
			}

			p := newTestProcessor(t, tr, sum, exec, func(c *config.Config) {
				c.Pipeline.ChunkDuration = 2 * time.Second
			})

			res := p.Process(context.Background(), tt.filename, bytes.NewReader(tt.data))

			if res.Err == nil {
				t.Fatal("Process() expected error")
			}
			if res.State != StateFailed {
				t.Errorf("State = %s, want failed", res.State)
			}
			if got := StageOf(res.Err); got != tt.wantStage {
				t.Errorf("stage = %q, want %q (err %v)", got, tt.wantStage, res.Err)
			}
			if (res.Transcript != "") != tt.wantTranscript {
				t.Errorf("Transcript = %q, want present=%v", res.Transcript, tt.wantTranscript)
			}
			if res.Summary != "" {
				t.Errorf("Summary = %q, want empty on failure", res.Summary)
			}
			if (len(sum.calls) > 0) != tt.wantSummarize {
				t.Errorf("summarizer calls = %d", len(sum.calls))
			}
			if !strings.HasPrefix(ErrorMessage(res.Err), "❌ Error ["+string(tt.wantStage)) {
				t.Errorf("ErrorMessage() = %q", ErrorMessage(res.Err))
			}
		})
	}
}

func TestProcessSegmentFailureIsTagged(t *testing.T) {
	tr := newFakeTranscriber()
	tr.failOn = 2
	p := newTestProcessor(t, tr, &fakeSummarizer{reply: "s"}, nil, func(c *config.Config) {
		c.Pipeline.ChunkDuration = time.Second
		c.Pipeline.MaxConcurrentSegments = 1
	})

	res := p.Process(context.Background(), "clip.wav", bytes.NewReader(wavBytes(t, 4*time.Second, mono16k)))

	var se *StageError
	if !errors.As(res.Err, &se) {
		t.Fatalf("error %v is not a StageError", res.Err)
	}
	if se.Segment != 2 {
		t.Errorf("Segment = %d, want 2", se.Segment)
	}
	if !strings.Contains(ErrorMessage(res.Err), "segment 2") {
		t.Errorf("ErrorMessage() = %q, want segment index", ErrorMessage(res.Err))
	}
	if tr.callCount() > 3 {
		t.Errorf("transcriber called %d times, want no calls after the failure", tr.callCount())
	}
}

func TestProcessSingleShot(t *testing.T) {
	tr := newFakeTranscriber()
	p := newTestProcessor(t, tr, &fakeSummarizer{reply: "s"}, nil, func(c *config.Config) {
		c.Pipeline.SingleShot = true
	})

	res := p.Process(context.Background(), "long.wav", bytes.NewReader(wavBytes(t, 5*time.Minute, mono16k)))

	if res.Err != nil {
		t.Fatalf("Process() error = %v", res.Err)
	}
	if res.Segments != 1 || res.Transcript != "piece-0" {
		t.Errorf("Segments = %d, Transcript = %q, want one segment", res.Segments, res.Transcript)
	}
}

func TestProcessCleansUpWorkDir(t *testing.T) {
	tmp := t.TempDir()
	tr := newFakeTranscriber()
	tr.failOn = 0

	for _, failOn := range []int{-1, 0} {
		tr.failOn = failOn
		p := newTestProcessor(t, tr, &fakeSummarizer{reply: "s"}, nil, func(c *config.Config) {
			c.Pipeline.TempDir = tmp
		})
		p.Process(context.Background(), "clip.wav", bytes.NewReader(wavBytes(t, time.Second, mono16k)))

		entries, err := os.ReadDir(tmp)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("failOn=%d: %d entries left in temp dir", failOn, len(entries))
		}
	}
}

func TestProcessCancelled(t *testing.T) {
	tr := newFakeTranscriber()
	tr.delay = func(int) time.Duration { return time.Minute }
	p := newTestProcessor(t, tr, &fakeSummarizer{reply: "s"}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := p.Process(ctx, "clip.wav", bytes.NewReader(wavBytes(t, time.Second, mono16k)))
	if time.Since(start) > 10*time.Second {
		t.Fatal("Process() did not stop on cancellation")
	}
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", res.Err)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), "❌ Error: boom"},
		{"stage", stageErr(StageSummarization, errors.New("quota")), "❌ Error [summarization]: quota"},
		{
			"segment",
			&StageError{Stage: StageTranscription, Segment: 4, Err: errors.New("timeout")},
			"❌ Error [transcription, segment 4]: timeout",
		},
		{
			"wrapped",
			fmt.Errorf("process x: %w", stageErr(StageDecode, ErrEmptyAudio)),
			"❌ Error [decode]: recording contains no audio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
