package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 5 * time.Second
	DefaultThrottle    = time.Second
)

type TranslationConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Throttle    time.Duration
}

func DefaultTranslationConfig() TranslationConfig {
	return TranslationConfig{
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
		Throttle:    DefaultThrottle,
	}
}

// TranslationService answers translations from the cache when it can and
// otherwise calls the remote translator with throttling and bounded retries.
// Concurrent misses for the same text share a single remote call.
type TranslationService struct {
	remote ports.Translator
	cache  ports.TranslationCache
	clock  ports.Clock
	logger *slog.Logger
	cfg    TranslationConfig
	group  singleflight.Group

	cacheHits   metric.Int64Counter
	remoteCalls metric.Int64Counter
	retries     metric.Int64Counter
}

func NewTranslationService(remote ports.Translator, cache ports.TranslationCache, clock ports.Clock, logger *slog.Logger, cfg TranslationConfig) *TranslationService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	return &TranslationService{
		remote:      remote,
		cache:       cache,
		clock:       clock,
		logger:      logger.With("component", "translation"),
		cfg:         cfg,
		cacheHits:   newCounter("voxlate.translation.cache_hits", "Translations served from the cache"),
		remoteCalls: newCounter("voxlate.translation.remote_calls", "Remote translation attempts"),
		retries:     newCounter("voxlate.translation.retries", "Remote translation retries"),
	}
}

// errFlightAbandoned marks a shared remote call that stopped because the
// caller that started it went away.
var errFlightAbandoned = errors.New("translation abandoned by its caller")

// Translate returns the translation of text. The cache is an exact string
// match keyed by text alone.
func (s *TranslationService) Translate(ctx context.Context, text, sourceLang, targetLang string) (domain.Translation, error) {
	for {
		if translation, ok := s.cache.Get(text); ok {
			s.cacheHits.Add(ctx, 1)
			return translation, nil
		}

		// The flight runs under the context of the caller that started it.
		// Waiters whose flight was abandoned that way start a new one.
		results := s.group.DoChan(text, func() (any, error) {
			translation, err := s.fetch(ctx, text, sourceLang, targetLang)
			if err != nil && ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", errFlightAbandoned, err)
			}
			return translation, err
		})

		select {
		case <-ctx.Done():
			return domain.Translation{}, fmt.Errorf("translate text: %w", ctx.Err())
		case result := <-results:
			if errors.Is(result.Err, errFlightAbandoned) && ctx.Err() == nil {
				s.logger.Debug("shared translation abandoned, retrying", "shared", result.Shared)
				continue
			}
			if result.Err != nil {
				return domain.Translation{}, result.Err
			}
			return result.Val.(domain.Translation), nil
		}
	}
}

func (s *TranslationService) fetch(ctx context.Context, text, sourceLang, targetLang string) (domain.Translation, error) {
	if translation, ok := s.cache.Get(text); ok {
		s.cacheHits.Add(ctx, 1)
		return translation, nil
	}

	ctx, span := tracer.Start(ctx, "translate text", trace.WithAttributes(
		attribute.String("translation.source", sourceLang),
		attribute.String("translation.target", targetLang),
	))
	defer span.End()

	if err := s.clock.Sleep(ctx, s.cfg.Throttle); err != nil {
		recordSpanError(span, err)
		return domain.Translation{}, fmt.Errorf("throttle translation: %w", err)
	}

	attempt := 0
	operation := func() (domain.Translation, error) {
		attempt++
		s.remoteCalls.Add(ctx, 1)

		translation, err := s.remote.Translate(ctx, text, sourceLang, targetLang)
		if err == nil {
			return translation, nil
		}
		if errors.Is(err, domain.ErrTranslationRetryable) {
			return domain.Translation{}, err
		}
		return domain.Translation{}, backoff.Permanent(err)
	}
	notify := func(err error, delay time.Duration) {
		s.retries.Add(ctx, 1)
		s.logger.Warn("translation attempt failed", "attempt", attempt, "max_attempts", s.cfg.MaxAttempts, "retry_in", delay, "error", err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.cfg.RetryDelay), uint64(s.cfg.MaxAttempts-1)),
		ctx,
	)
	translation, err := backoff.RetryNotifyWithData(operation, policy, notify)
	span.SetAttributes(
		attribute.Int("translation.attempts", attempt),
		attribute.String("translation.detected_source", translation.SourceLang),
	)
	if err != nil {
		recordSpanError(span, err)
		return domain.Translation{}, s.classify(ctx, err, attempt)
	}

	s.cache.Put(text, translation)
	return translation, nil
}

func (s *TranslationService) classify(ctx context.Context, err error, attempts int) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("translate text: %w", ctx.Err())
	case errors.Is(err, domain.ErrTranslationRetryable):
		return fmt.Errorf("%w: %w after %d attempts: %w", domain.ErrTranslationFatal, domain.ErrRetriesExhausted, attempts, err)
	case errors.Is(err, domain.ErrTranslationFatal):
		return fmt.Errorf("translate text: %w", err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrTranslationFatal, err)
	}
}
