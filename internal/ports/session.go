package ports

import (
	"context"

	"github.com/bnema/voxlate/internal/domain"
)

// Session is one live connection to the messaging backend. Events is closed
// once the connection is gone; a Session is never reused after that.
type Session interface {
	AudioFetcher
	Events() <-chan domain.SessionEvent
	Send(ctx context.Context, to, text string) error
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, credentials []byte) (Session, error)
}
