package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTransientConnection  = errors.New("transient connection failure")
	ErrLoggedOut            = errors.New("session logged out")
	ErrTranslationRetryable = errors.New("retryable translation failure")
	ErrTranslationFatal     = errors.New("translation failed")
	ErrRetriesExhausted     = errors.New("translation retries exhausted")
	ErrTranscription        = errors.New("transcription failed")
	ErrMalformedEvent       = errors.New("malformed inbound event")
	ErrStaleSession         = errors.New("session is no longer current")
	ErrUnavailable          = errors.New("external capability unavailable")
)

type TranscriptionStage string

const (
	StageDownload   TranscriptionStage = "download"
	StageStore      TranscriptionStage = "store"
	StageConvert    TranscriptionStage = "convert"
	StageTranscribe TranscriptionStage = "transcribe"
)

// TranscriptionError records which pipeline stage failed. It matches
// ErrTranscription with errors.Is.
type TranscriptionError struct {
	Stage TranscriptionStage
	Err   error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription %s: %v", e.Stage, e.Err)
}

func (e *TranscriptionError) Unwrap() []error {
	return []error{ErrTranscription, e.Err}
}
