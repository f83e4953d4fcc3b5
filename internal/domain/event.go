package domain

import (
	"fmt"
	"strings"
	"time"
)

type PayloadKind string

const (
	PayloadText  PayloadKind = "text"
	PayloadAudio PayloadKind = "audio"
	PayloadOther PayloadKind = "other"
)

// AudioRef points at the raw audio of a voice message. Transports fill either
// Data (inline bytes) or URL (fetched on demand).
type AudioRef struct {
	MessageID string
	URL       string
	MimeType  string
	Filename  string
	Data      []byte
}

type InboundEvent struct {
	ID        string
	Sender    string
	Timestamp time.Time
	Text      string
	Audio     *AudioRef
	FromSelf  bool
}

func (e InboundEvent) Kind() PayloadKind {
	switch {
	case e.Audio != nil:
		return PayloadAudio
	case strings.TrimSpace(e.Text) != "":
		return PayloadText
	default:
		return PayloadOther
	}
}

func (e InboundEvent) Validate() error {
	if strings.TrimSpace(e.Sender) == "" {
		return fmt.Errorf("%w: sender is empty", ErrMalformedEvent)
	}
	if e.Kind() == PayloadOther {
		return fmt.Errorf("%w: no text or audio payload", ErrMalformedEvent)
	}

	return nil
}

type Reply struct {
	To   string
	Text string
}
