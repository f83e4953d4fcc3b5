package bridge

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bnema/voxlate/internal/domain"
)

const (
	eventConnectionUpdate = "connection.update"
	eventCredsUpdate      = "creds.update"
	eventMessagesUpsert   = "messages.upsert"

	actionAuth = "auth"
	actionSend = "send"

	// upsertNotify marks batches of newly received messages; other batch
	// types replay history and are ignored.
	upsertNotify = "notify"
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundFrame struct {
	Action string          `json:"action"`
	Creds  json.RawMessage `json:"creds,omitempty"`
	To     string          `json:"to,omitempty"`
	Text   string          `json:"text,omitempty"`
}

type connectionUpdate struct {
	Connection string `json:"connection"`
	StatusCode int    `json:"statusCode,omitempty"`
	LoggedOut  bool   `json:"loggedOut,omitempty"`
	Error      string `json:"error,omitempty"`
}

type messagesUpsert struct {
	Type     string        `json:"type"`
	Messages []wireMessage `json:"messages"`
}

type wireMessage struct {
	ID        string     `json:"id"`
	RemoteJID string     `json:"remoteJid"`
	FromMe    bool       `json:"fromMe"`
	Timestamp int64      `json:"timestamp"`
	Text      string     `json:"text,omitempty"`
	Audio     *wireAudio `json:"audio,omitempty"`
}

type wireAudio struct {
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Filename string `json:"filename,omitempty"`
	// Data is base64 in the frame.
	Data []byte `json:"data,omitempty"`
}

func (u connectionUpdate) toDomain() domain.ConnectionUpdate {
	update := domain.ConnectionUpdate{}
	switch strings.ToLower(u.Connection) {
	case "open":
		update.State = domain.StateOpen
	case "close", "closed":
		update.State = domain.StateClosed
	case "connecting":
		update.State = domain.StateConnecting
	default:
		update.State = domain.StateDisconnected
	}

	update.Reason = domain.CloseReason{StatusCode: u.StatusCode, LoggedOut: u.LoggedOut}
	if u.Error != "" {
		update.Reason.Err = errors.New(u.Error)
	}

	return update
}

func (m wireMessage) toDomain() domain.InboundEvent {
	event := domain.InboundEvent{
		ID:       m.ID,
		Sender:   m.RemoteJID,
		Text:     m.Text,
		FromSelf: m.FromMe,
	}
	if m.Timestamp > 0 {
		event.Timestamp = time.Unix(m.Timestamp, 0).UTC()
	}
	if m.Audio != nil {
		event.Audio = &domain.AudioRef{
			MessageID: m.ID,
			URL:       m.Audio.URL,
			MimeType:  m.Audio.MimeType,
			Filename:  m.Audio.Filename,
			Data:      m.Audio.Data,
		}
	}

	return event
}
