// Package process runs the external executables the bot depends on.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/bnema/voxlate/internal/domain"
)

// RunFunc executes a resolved command and returns its captured output.
type RunFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

type Runner struct {
	path string
}

// Resolve locates name on PATH (or accepts a path to an executable).
func Resolve(name string) (*Runner, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty command", domain.ErrUnavailable)
	}

	path, err := exec.LookPath(trimmed)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", domain.ErrUnavailable, trimmed)
		}
		return nil, fmt.Errorf("locate %s: %w", trimmed, err)
	}

	return &Runner{path: path}, nil
}

func (r *Runner) Path() string {
	return r.path
}

func (r *Runner) Run(ctx context.Context, input string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, r.path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

// FormatError folds stderr into err so the failing tool's own message
// reaches the logs.
func FormatError(op string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Errorf("%s: %w: %s", op, err, stderr)
}
