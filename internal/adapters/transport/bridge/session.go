// Package bridge talks to a WhatsApp Web bridge sidecar over a websocket.
// The sidecar owns the WhatsApp protocol; this side only exchanges JSON
// frames with it.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bnema/voxlate/internal/adapters/transport/download"
	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/gorilla/websocket"
)

const (
	DefaultURL              = "ws://127.0.0.1:8765/ws"
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
	defaultPingInterval     = 30 * time.Second
)

type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration
	DownloadTimeout  time.Duration
}

type Dialer struct {
	cfg        Config
	ws         *websocket.Dialer
	downloader *download.Client
	logger     *slog.Logger
}

var _ ports.Dialer = (*Dialer)(nil)

func NewDialer(cfg Config, logger *slog.Logger) *Dialer {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ws := *websocket.DefaultDialer
	ws.HandshakeTimeout = cfg.HandshakeTimeout

	return &Dialer{
		cfg:        cfg,
		ws:         &ws,
		downloader: download.New(cfg.DownloadTimeout),
		logger:     logger.With("component", "bridge"),
	}
}

// Dial opens a fresh websocket, hands the stored credentials to the bridge
// and starts reading frames. A 401 handshake means the bridge has no valid
// login for us.
func (d *Dialer) Dial(ctx context.Context, credentials []byte) (ports.Session, error) {
	conn, resp, err := d.ws.DialContext(ctx, d.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: bridge rejected handshake", domain.ErrLoggedOut)
		}
		return nil, fmt.Errorf("dial bridge: %w", err)
	}

	s := &session{
		conn:       conn,
		downloader: d.downloader,
		logger:     d.logger,
		writeWait:  d.cfg.WriteTimeout,
		events:     make(chan domain.SessionEvent, 16),
		done:       make(chan struct{}),
	}

	auth := outboundFrame{Action: actionAuth}
	if len(credentials) > 0 && json.Valid(credentials) {
		auth.Creds = json.RawMessage(credentials)
	}
	if err := s.writeFrame(ctx, auth); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send bridge auth: %w", err)
	}

	go s.readLoop()
	go s.pingLoop(d.cfg.PingInterval)

	return s, nil
}

type session struct {
	conn       *websocket.Conn
	downloader *download.Client
	logger     *slog.Logger
	writeWait  time.Duration

	writeMu   sync.Mutex
	events    chan domain.SessionEvent
	done      chan struct{}
	closeOnce sync.Once
}

func (s *session) Events() <-chan domain.SessionEvent {
	return s.events
}

func (s *session) Send(ctx context.Context, to, text string) error {
	select {
	case <-s.done:
		return fmt.Errorf("send to %s: %w", to, domain.ErrStaleSession)
	default:
	}

	return s.writeFrame(ctx, outboundFrame{Action: actionSend, To: to, Text: text})
}

func (s *session) FetchAudio(ctx context.Context, ref domain.AudioRef) ([]byte, error) {
	return s.downloader.FetchAudio(ctx, ref)
}

func (s *session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)

		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()

		err = s.conn.Close()
	})

	return err
}

func (s *session) writeFrame(ctx context.Context, frame outboundFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", frame.Action, err)
	}

	deadline := time.Now().Add(s.writeWait)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write %s frame: %w", frame.Action, err)
	}

	return nil
}

// readLoop turns frames into session events. It always ends with a closed
// Events channel; a read error that was not caused by Close is reported as
// a transient close first.
func (s *session) readLoop() {
	defer close(s.events)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}

			reason := domain.CloseReason{Err: fmt.Errorf("read bridge frame: %w", err)}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code != websocket.CloseNormalClosure {
				reason.StatusCode = closeErr.Code
			}
			s.emit(domain.SessionEvent{
				Type:       domain.EventConnectionUpdate,
				Connection: domain.ConnectionUpdate{State: domain.StateClosed, Reason: reason},
			})
			return
		}

		event, ok := s.decode(payload)
		if !ok {
			continue
		}
		if !s.emit(event) {
			return
		}
	}
}

func (s *session) decode(payload []byte) (domain.SessionEvent, bool) {
	var frame inboundFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		s.logger.Warn("drop undecodable bridge frame", "error", err)
		return domain.SessionEvent{}, false
	}

	switch frame.Event {
	case eventConnectionUpdate:
		var update connectionUpdate
		if err := json.Unmarshal(frame.Data, &update); err != nil {
			s.logger.Warn("drop connection update", "error", err)
			return domain.SessionEvent{}, false
		}
		return domain.SessionEvent{Type: domain.EventConnectionUpdate, Connection: update.toDomain()}, true
	case eventCredsUpdate:
		return domain.SessionEvent{Type: domain.EventCredsUpdate, Credentials: append([]byte(nil), frame.Data...)}, true
	case eventMessagesUpsert:
		var upsert messagesUpsert
		if err := json.Unmarshal(frame.Data, &upsert); err != nil {
			s.logger.Warn("drop messages upsert", "error", err)
			return domain.SessionEvent{}, false
		}
		if upsert.Type != upsertNotify || len(upsert.Messages) == 0 {
			return domain.SessionEvent{}, false
		}

		messages := make([]domain.InboundEvent, 0, len(upsert.Messages))
		for _, message := range upsert.Messages {
			messages = append(messages, message.toDomain())
		}
		return domain.SessionEvent{Type: domain.EventMessagesUpsert, Messages: messages}, true
	default:
		s.logger.Debug("ignore bridge event", "event", frame.Event)
		return domain.SessionEvent{}, false
	}
}

func (s *session) emit(event domain.SessionEvent) bool {
	select {
	case s.events <- event:
		return true
	case <-s.done:
		return false
	}
}

func (s *session) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeWait))
			s.writeMu.Unlock()
			if err != nil {
				s.logger.Debug("bridge ping failed", "error", err)
				_ = s.conn.Close()
				return
			}
		}
	}
}
