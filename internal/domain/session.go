package domain

import "fmt"

// StatusLoggedOut is the close status a transport reports when the remote side
// revoked the session credentials.
const StatusLoggedOut = 401

type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type CloseReason struct {
	StatusCode int
	LoggedOut  bool
	Err        error
}

func (r CloseReason) Terminal() bool {
	return r.LoggedOut || r.StatusCode == StatusLoggedOut
}

// Cause maps the reason onto the connection error taxonomy.
func (r CloseReason) Cause() error {
	sentinel := ErrTransientConnection
	if r.Terminal() {
		sentinel = ErrLoggedOut
	}

	switch {
	case r.Err != nil && r.StatusCode != 0:
		return fmt.Errorf("%w: status %d: %w", sentinel, r.StatusCode, r.Err)
	case r.Err != nil:
		return fmt.Errorf("%w: %w", sentinel, r.Err)
	case r.StatusCode != 0:
		return fmt.Errorf("%w: status %d", sentinel, r.StatusCode)
	default:
		return sentinel
	}
}

type SessionEventType string

const (
	EventConnectionUpdate SessionEventType = "connection.update"
	EventCredsUpdate      SessionEventType = "creds.update"
	EventMessagesUpsert   SessionEventType = "messages.upsert"
)

type ConnectionUpdate struct {
	State  ConnectionState
	Reason CloseReason
}

type SessionEvent struct {
	Type        SessionEventType
	Connection  ConnectionUpdate
	Credentials []byte
	Messages    []InboundEvent
}
