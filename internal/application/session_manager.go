package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultMessageTimeout   = 2 * time.Minute
	DefaultReconnectInitial = time.Second
	DefaultReconnectMax     = 30 * time.Second
)

var errEventStreamEnded = errors.New("session event stream ended")

type MessageHandler interface {
	Dispatch(ctx context.Context, event domain.InboundEvent, fetcher ports.AudioFetcher) (domain.Reply, bool)
}

type SessionConfig struct {
	// MessageTimeout bounds the processing of a single inbound message.
	MessageTimeout time.Duration
	// NewBackOff builds the pacing policy between reconnects. It is reset
	// every time a session reaches the open state.
	NewBackOff func() backoff.BackOff
}

func ExponentialReconnect(initial, maxInterval time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = initial
		policy.MaxInterval = maxInterval
		policy.MaxElapsedTime = 0
		policy.Reset()
		return policy
	}
}

type liveSession struct {
	id      string
	session ports.Session
	open    atomic.Bool
}

// SessionManager supervises the messaging session. It dials a fresh session
// for every connection attempt, persists credential updates before handling
// anything else, and reconnects until the remote side logs the session out.
type SessionManager struct {
	dialer  ports.Dialer
	creds   ports.CredentialStore
	handler MessageHandler
	clock   ports.Clock
	logger  *slog.Logger
	cfg     SessionConfig

	state    atomic.Int32
	attempts atomic.Int64

	mu            sync.Mutex
	current       *liveSession
	onStateChange func(domain.ConnectionState)

	reconnects metric.Int64Counter
}

func NewSessionManager(dialer ports.Dialer, creds ports.CredentialStore, handler MessageHandler, clock ports.Clock, logger *slog.Logger, cfg SessionConfig) *SessionManager {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MessageTimeout <= 0 {
		cfg.MessageTimeout = DefaultMessageTimeout
	}
	if cfg.NewBackOff == nil {
		cfg.NewBackOff = ExponentialReconnect(DefaultReconnectInitial, DefaultReconnectMax)
	}

	return &SessionManager{
		dialer:     dialer,
		creds:      creds,
		handler:    handler,
		clock:      clock,
		logger:     logger.With("component", "session"),
		cfg:        cfg,
		reconnects: newCounter("voxlate.session.reconnects", "Reconnects after a transient session close"),
	}
}

// OnStateChange registers fn to observe state transitions. Call before Run.
func (m *SessionManager) OnStateChange(fn func(domain.ConnectionState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

func (m *SessionManager) State() domain.ConnectionState {
	return domain.ConnectionState(m.state.Load())
}

// Attempts reports how many sessions have been dialed so far.
func (m *SessionManager) Attempts() int64 {
	return m.attempts.Load()
}

// Run supervises sessions until ctx is cancelled (nil) or the session is
// logged out (ErrLoggedOut). Pending message work is cancelled and awaited
// before Run returns.
func (m *SessionManager) Run(ctx context.Context) error {
	workCtx, cancelWork := context.WithCancel(ctx)
	lanes := newLaneSet()
	defer func() {
		cancelWork()
		lanes.wait()
	}()

	pacing := m.cfg.NewBackOff()
	for {
		reason, opened, err := m.runSession(ctx, workCtx, lanes)
		if err != nil {
			m.setState(domain.StateClosed)
			return err
		}
		if ctx.Err() != nil {
			m.setState(domain.StateDisconnected)
			return nil
		}
		if reason.Terminal() {
			m.setState(domain.StateClosed)
			if err := m.creds.Clear(ctx); err != nil {
				m.logger.Error("clear session credentials", "error", err)
			}
			m.logger.Error("session logged out, not reconnecting", "reason", reason.Cause())
			return fmt.Errorf("supervise session: %w", reason.Cause())
		}
		if opened {
			pacing.Reset()
		}

		delay := pacing.NextBackOff()
		if delay == backoff.Stop {
			return fmt.Errorf("supervise session: reconnect policy gave up: %w", reason.Cause())
		}
		m.reconnects.Add(ctx, 1)
		m.logger.Warn("session closed, reconnecting", "reason", reason.Cause(), "retry_in", delay)
		if err := m.clock.Sleep(ctx, delay); err != nil {
			m.setState(domain.StateDisconnected)
			return nil
		}
	}
}

func (m *SessionManager) runSession(ctx, workCtx context.Context, lanes *laneSet) (domain.CloseReason, bool, error) {
	m.setState(domain.StateConnecting)

	blob, err := m.creds.Load(ctx)
	if err != nil {
		return domain.CloseReason{}, false, fmt.Errorf("load session credentials: %w", err)
	}

	m.attempts.Add(1)
	session, err := m.dialer.Dial(ctx, blob)
	if err != nil {
		m.setState(domain.StateClosed)
		return domain.CloseReason{LoggedOut: errors.Is(err, domain.ErrLoggedOut), Err: err}, false, nil
	}

	live := &liveSession{id: uuid.NewString(), session: session}
	m.setCurrent(live)
	logger := m.logger.With("session_id", live.id)
	defer func() {
		live.open.Store(false)
		m.clearCurrent(live)
		if err := session.Close(); err != nil {
			logger.Debug("close session", "error", err)
		}
	}()

	opened := false
	events := session.Events()
	for {
		select {
		case <-ctx.Done():
			return domain.CloseReason{Err: ctx.Err()}, opened, nil
		case event, ok := <-events:
			if !ok {
				m.setState(domain.StateClosed)
				return domain.CloseReason{Err: errEventStreamEnded}, opened, nil
			}

			switch event.Type {
			case domain.EventCredsUpdate:
				if err := m.creds.Save(ctx, event.Credentials); err != nil {
					logger.Error("persist session credentials", "error", err)
				}
			case domain.EventConnectionUpdate:
				switch event.Connection.State {
				case domain.StateOpen:
					opened = true
					live.open.Store(true)
					m.setState(domain.StateOpen)
					logger.Info("session open")
				case domain.StateClosed:
					live.open.Store(false)
					m.setState(domain.StateClosed)
					return event.Connection.Reason, opened, nil
				case domain.StateConnecting:
					m.setState(domain.StateConnecting)
				}
			case domain.EventMessagesUpsert:
				for _, message := range event.Messages {
					m.enqueue(workCtx, lanes, live, message)
				}
			}
		}
	}
}

func (m *SessionManager) enqueue(workCtx context.Context, lanes *laneSet, live *liveSession, message domain.InboundEvent) {
	lanes.submit(message.Sender, func() {
		if workCtx.Err() != nil {
			return
		}

		ctx, cancel := context.WithTimeout(workCtx, m.cfg.MessageTimeout)
		defer cancel()

		reply, ok := m.handler.Dispatch(ctx, message, live.session)
		if !ok {
			return
		}
		if err := m.send(ctx, live, reply); err != nil {
			m.logger.Warn("send reply", "session_id", live.id, "to", reply.To, "error", err)
		}
	})
}

// send refuses to write through a session that has been superseded or is no
// longer open.
func (m *SessionManager) send(ctx context.Context, live *liveSession, reply domain.Reply) error {
	if !m.isCurrent(live) || !live.open.Load() {
		return fmt.Errorf("send reply: %w", domain.ErrStaleSession)
	}
	if err := live.session.Send(ctx, reply.To, reply.Text); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	return nil
}

func (m *SessionManager) setState(state domain.ConnectionState) {
	previous := domain.ConnectionState(m.state.Swap(int32(state)))
	if previous == state {
		return
	}

	m.mu.Lock()
	hook := m.onStateChange
	m.mu.Unlock()
	if hook != nil {
		hook(state)
	}
}

func (m *SessionManager) setCurrent(live *liveSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = live
}

func (m *SessionManager) clearCurrent(live *liveSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == live {
		m.current = nil
	}
}

func (m *SessionManager) isCurrent(live *liveSession) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current == live
}
