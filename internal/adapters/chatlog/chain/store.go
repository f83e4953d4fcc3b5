// Package chain writes the chat log to a primary backend and falls back to
// a secondary one when the primary fails.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
)

type Store struct {
	primary  ports.ChatLog
	fallback ports.ChatLog
}

var _ ports.ChatLog = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary chat log is nil")
	errNilFallbackStore = errors.New("fallback chat log is nil")
)

func NewStore(primary ports.ChatLog, fallback ports.ChatLog) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func (s *Store) Append(ctx context.Context, entry domain.LogEntry) error {
	err := s.primary.Append(ctx, entry)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Append(ctx, entry)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary chat log append failed: %w; fallback chat log append failed: %w", err, fallbackErr)
}

// List reads the primary only, falling back when it cannot be read. Entries
// that went to the fallback during a primary outage are not merged in.
func (s *Store) List(ctx context.Context) ([]domain.LogEntry, error) {
	entries, err := s.primary.List(ctx)
	if err == nil {
		return entries, nil
	}
	if shouldSkipFallback(err) {
		return nil, err
	}

	fallbackEntries, fallbackErr := s.fallback.List(ctx)
	if fallbackErr == nil {
		return fallbackEntries, nil
	}

	return nil, fmt.Errorf("primary chat log list failed: %w; fallback chat log list failed: %w", err, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
