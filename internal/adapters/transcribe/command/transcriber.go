// Package command transcribes audio by running an external program that
// prints the transcript on stdout.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/voxlate/internal/adapters/process"
	"github.com/bnema/voxlate/internal/ports"
)

type Transcriber struct {
	run  process.RunFunc
	args []string
}

var _ ports.Transcriber = (*Transcriber)(nil)

// New resolves argv[0]; the remaining elements are passed before the audio
// path on every call (e.g. ["python", "transcribe.py"]).
func New(argv []string) (*Transcriber, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, errors.New("transcription command is empty")
	}

	runner, err := process.Resolve(argv[0])
	if err != nil {
		return nil, fmt.Errorf("resolve transcription command: %w", err)
	}

	return &Transcriber{run: runner.Run, args: append([]string(nil), argv[1:]...)}, nil
}

func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	args := append(append([]string(nil), t.args...), path)
	stdout, stderr, err := t.run(ctx, "", args...)
	if err != nil {
		return "", process.FormatError("run transcription command", err, stderr)
	}

	return stdout, nil
}
