// Package discord adapts a Discord bot account to the session seam. Every
// Dial opens a brand new gateway connection; discordgo's own reconnect
// logic is switched off so that the session manager decides when to retry.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/voxlate/internal/adapters/transport/download"
	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/websocket"
)

// closeAuthenticationFailed is the gateway close code for a rejected token.
const closeAuthenticationFailed = 4004

var ErrMissingToken = errors.New("discord token is required")

type Config struct {
	Token           string
	DownloadTimeout time.Duration
}

type Dialer struct {
	token      string
	downloader *download.Client
	logger     *slog.Logger
}

var _ ports.Dialer = (*Dialer)(nil)

func NewDialer(cfg Config, logger *slog.Logger) (*Dialer, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Dialer{
		token:      strings.TrimPrefix(token, "Bot "),
		downloader: download.New(cfg.DownloadTimeout),
		logger:     logger.With("component", "discord"),
	}, nil
}

// Dial ignores the stored credential blob; the bot token is the credential.
func (d *Dialer) Dial(ctx context.Context, _ []byte) (ports.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dial discord: %w", err)
	}

	dg, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	dg.ShouldReconnectOnError = false
	dg.SyncEvents = true
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	s := newSession(dg, d.downloader, d.logger)
	dg.AddHandler(s.onConnect)
	dg.AddHandler(s.onDisconnect)
	dg.AddHandler(s.onMessageCreate)

	if err := dg.Open(); err != nil {
		s.finish()
		return nil, classifyOpenError(err)
	}

	return s, nil
}

func classifyOpenError(err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code == closeAuthenticationFailed {
		return fmt.Errorf("%w: %w", domain.ErrLoggedOut, err)
	}

	return fmt.Errorf("open discord gateway: %w", err)
}

type session struct {
	dg         *discordgo.Session
	downloader *download.Client
	logger     *slog.Logger

	events    chan domain.SessionEvent
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	ended bool
}

func newSession(dg *discordgo.Session, downloader *download.Client, logger *slog.Logger) *session {
	return &session{
		dg:         dg,
		downloader: downloader,
		logger:     logger,
		events:     make(chan domain.SessionEvent, 16),
		done:       make(chan struct{}),
	}
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

	if _, err := s.dg.ChannelMessageSend(to, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}

	return nil
}

func (s *session) FetchAudio(ctx context.Context, ref domain.AudioRef) ([]byte, error) {
	return s.downloader.FetchAudio(ctx, ref)
}

func (s *session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.dg.Close()
		s.finish()
	})

	return err
}

func (s *session) onConnect(_ *discordgo.Session, _ *discordgo.Connect) {
	s.emit(domain.SessionEvent{
		Type:       domain.EventConnectionUpdate,
		Connection: domain.ConnectionUpdate{State: domain.StateOpen},
	})
}

// onDisconnect ends the session. discordgo does not surface the close code
// here, so every gateway drop is treated as transient.
func (s *session) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	s.emit(domain.SessionEvent{
		Type: domain.EventConnectionUpdate,
		Connection: domain.ConnectionUpdate{
			State:  domain.StateClosed,
			Reason: domain.CloseReason{Err: errors.New("discord gateway disconnected")},
		},
	})
	s.finish()
}

func (s *session) onMessageCreate(dg *discordgo.Session, m *discordgo.MessageCreate) {
	event, ok := inboundEvent(selfID(dg), m)
	if !ok {
		return
	}

	s.emit(domain.SessionEvent{Type: domain.EventMessagesUpsert, Messages: []domain.InboundEvent{event}})
}

func (s *session) emit(event domain.SessionEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return false
	}

	select {
	case s.events <- event:
		return true
	case <-s.done:
		return false
	}
}

func (s *session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.ended = true
	close(s.events)
}

func selfID(dg *discordgo.Session) string {
	if dg == nil || dg.State == nil || dg.State.User == nil {
		return ""
	}

	return dg.State.User.ID
}

// inboundEvent maps a created message. Replies go to the channel, so the
// channel ID is the sender key.
func inboundEvent(self string, m *discordgo.MessageCreate) (domain.InboundEvent, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return domain.InboundEvent{}, false
	}

	event := domain.InboundEvent{
		ID:        m.ID,
		Sender:    m.ChannelID,
		Timestamp: m.Timestamp.UTC(),
		Text:      m.Content,
		FromSelf:  self != "" && m.Author.ID == self,
	}

	for _, attachment := range m.Attachments {
		if attachment == nil || !isAudioAttachment(attachment) {
			continue
		}
		event.Audio = &domain.AudioRef{
			MessageID: m.ID,
			URL:       attachment.URL,
			MimeType:  attachment.ContentType,
			Filename:  attachment.Filename,
		}
		break
	}

	return event, true
}

var audioExtensions = map[string]struct{}{
	".ogg": {}, ".oga": {}, ".opus": {}, ".mp3": {}, ".m4a": {}, ".wav": {}, ".webm": {}, ".aac": {}, ".flac": {},
}

func isAudioAttachment(attachment *discordgo.MessageAttachment) bool {
	if strings.HasPrefix(strings.ToLower(attachment.ContentType), "audio/") {
		return true
	}

	_, ok := audioExtensions[strings.ToLower(filepath.Ext(attachment.Filename))]
	return ok
}
