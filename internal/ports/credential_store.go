package ports

import "context"

// CredentialStore persists the opaque credential blob of the messaging
// session. Load returns nil, nil when nothing has been stored yet.
type CredentialStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
	Clear(ctx context.Context) error
}
