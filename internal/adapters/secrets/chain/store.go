// Package chain stores session credentials in a primary backend and falls
// back to a secondary one when the primary fails.
package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/voxlate/internal/adapters/secrets/file"
	passstore "github.com/bnema/voxlate/internal/adapters/secrets/pass"
	"github.com/bnema/voxlate/internal/ports"
)

type Store struct {
	primary  ports.CredentialStore
	fallback ports.CredentialStore
}

var _ ports.CredentialStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary credential store is nil")
	errNilFallbackStore = errors.New("fallback credential store is nil")
)

func NewStore(primary ports.CredentialStore, fallback ports.CredentialStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	pass, err := passstore.NewStore(passstore.DefaultEntry)
	if err != nil {
		return nil, fmt.Errorf("wire pass credential store: %w", err)
	}

	return NewStore(pass, filestore.NewStore(fileRoot))
}

// Load falls back when the primary fails or holds nothing, so a blob saved
// to the fallback during an outage is still found.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	blob, err := s.primary.Load(ctx)
	if err == nil && blob != nil {
		return blob, nil
	}
	if err != nil && shouldSkipFallback(err) {
		return nil, err
	}

	fallbackBlob, fallbackErr := s.fallback.Load(ctx)
	if fallbackErr == nil {
		return fallbackBlob, nil
	}
	if err == nil {
		return nil, fmt.Errorf("fallback backend load failed: %w", fallbackErr)
	}

	return nil, fmt.Errorf("primary backend load failed: %w; fallback backend load failed: %w", err, fallbackErr)
}

func (s *Store) Save(ctx context.Context, blob []byte) error {
	err := s.primary.Save(ctx, blob)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Save(ctx, blob)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend save failed: %w; fallback backend save failed: %w", err, fallbackErr)
}

// Clear removes the blob from both backends.
func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(s.primary.Clear(ctx), s.fallback.Clear(ctx))
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
