package processor

import (
	"errors"
	"fmt"
)

// Stage names a step of the pipeline.
type Stage string

const (
	StageUpload        Stage = "upload"
	StageDecode        Stage = "decode"
	StageTranscode     Stage = "transcode"
	StageTranscription Stage = "transcription"
	StageSummarization Stage = "summarization"
)

// ErrEmptyAudio is returned for recordings that decode to zero frames.
var ErrEmptyAudio = errors.New("recording contains no audio")

// StageError tags a failure with the step that produced it. Segment is the
// failing segment index for transcription failures and -1 otherwise.
type StageError struct {
	Stage   Stage
	Segment int
	Err     error
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Segment: -1, Err: err}
}

func (e *StageError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("%s failed on segment %d: %v", e.Stage, e.Segment, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage recorded in err, or "" if err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// ErrorMessage renders err the way it is shown to users in place of a
// summary.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StageError
	if errors.As(err, &se) {
		if se.Segment >= 0 {
			return fmt.Sprintf("❌ Error [%s, segment %d]: %v", se.Stage, se.Segment, se.Err)
		}
		return fmt.Sprintf("❌ Error [%s]: %v", se.Stage, se.Err)
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
