// Package pass keeps the session credential blob in the pass password store.
package pass

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/voxlate/internal/adapters/process"
	"github.com/bnema/voxlate/internal/ports"
)

const DefaultEntry = "voxlate/session/creds"

type Store struct {
	entry string
	run   process.RunFunc
}

var _ ports.CredentialStore = (*Store)(nil)

// NewStore fails with domain.ErrUnavailable when pass is not installed.
func NewStore(entry string) (*Store, error) {
	runner, err := process.Resolve("pass")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(entry) == "" {
		entry = DefaultEntry
	}

	return &Store{entry: entry, run: runner.Run}, nil
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stdout, stderr, err := s.run(ctx, "", "show", s.entry)
	if err != nil {
		if isMissing(stderr) {
			return nil, nil
		}
		return nil, formatError("show", s.entry, err, stderr)
	}

	stdout = strings.TrimSuffix(stdout, "\n")
	stdout = strings.TrimSuffix(stdout, "\r")
	if stdout == "" {
		return nil, nil
	}

	return []byte(stdout), nil
}

func (s *Store) Save(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, string(blob)+"\n", "insert", "-m", "-f", s.entry)
	if err != nil {
		return formatError("insert", s.entry, err, stderr)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, "", "rm", "-f", s.entry)
	if err != nil && !isMissing(stderr) {
		return formatError("rm", s.entry, err, stderr)
	}

	return nil
}

func isMissing(stderr string) bool {
	return strings.Contains(stderr, "is not in the password store")
}

func formatError(op string, entry string, err error, stderr string) error {
	return process.FormatError(fmt.Sprintf("pass %s %q", op, entry), err, stderr)
}
