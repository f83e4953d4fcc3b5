package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/voxlate/internal/adapters/cache/memory"
	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hello = domain.Translation{Text: "Hello", SourceLang: "zh-CN"}

func fastTranslationConfig() TranslationConfig {
	return TranslationConfig{MaxAttempts: 5, RetryDelay: time.Millisecond, Throttle: time.Second}
}

func TestTranslationServiceCacheHitSkipsRemote(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	clock := mocks.NewMockClock(t)
	cache := memory.New()
	cache.Put("你好", domain.Translation{Text: "Hello", SourceLang: "zh-CN"})
	service := NewTranslationService(remote, cache, clock, nil, fastTranslationConfig())

	translation, err := service.Translate(context.Background(), "你好", "zh-CN", "en")
	require.NoError(t, err)
	assert.Equal(t, "Hello", translation.Text)
}

func TestTranslationServiceMissThrottlesOnceAndCaches(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	clock := mocks.NewMockClock(t)
	cache := memory.New()
	service := NewTranslationService(remote, cache, clock, nil, fastTranslationConfig())

	clock.EXPECT().Sleep(mockAnyContext(), time.Second).Return(nil).Once()
	remote.EXPECT().Translate(mockAnyContext(), "你好", "zh-CN", "en").Return(hello, nil).Once()

	first, err := service.Translate(context.Background(), "你好", "zh-CN", "en")
	require.NoError(t, err)
	second, err := service.Translate(context.Background(), "你好", "zh-CN", "en")
	require.NoError(t, err)

	assert.Equal(t, hello, first)
	assert.Equal(t, first, second)
	cached, ok := cache.Get("你好")
	require.True(t, ok)
	assert.Equal(t, hello, cached)
}

func TestTranslationServiceRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	clock := mocks.NewMockClock(t)
	cache := memory.New()
	service := NewTranslationService(remote, cache, clock, nil, fastTranslationConfig())

	transient := fmt.Errorf("%w: status 429", domain.ErrTranslationRetryable)
	clock.EXPECT().Sleep(mockAnyContext(), time.Second).Return(nil).Once()
	remote.EXPECT().Translate(mockAnyContext(), "bonjour", "fr", "en").Return(domain.Translation{}, transient).Times(4)
	remote.EXPECT().Translate(mockAnyContext(), "bonjour", "fr", "en").Return(domain.Translation{Text: "hello", SourceLang: "fr"}, nil).Once()

	translation, err := service.Translate(context.Background(), "bonjour", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", translation.Text)
	assert.Equal(t, 1, cache.Len())
}

func TestTranslationServiceExhaustedRetriesLeaveCacheUntouched(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	clock := mocks.NewMockClock(t)
	cache := memory.New()
	service := NewTranslationService(remote, cache, clock, nil, fastTranslationConfig())

	transient := fmt.Errorf("%w: connection reset", domain.ErrTranslationRetryable)
	clock.EXPECT().Sleep(mockAnyContext(), time.Second).Return(nil).Once()
	remote.EXPECT().Translate(mockAnyContext(), "hola", "es", "en").Return(domain.Translation{}, transient).Times(5)

	_, err := service.Translate(context.Background(), "hola", "es", "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTranslationFatal)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "after 5 attempts")
	assert.Equal(t, 0, cache.Len())
}

func TestTranslationServiceNonRetryableFailureAbortsImmediately(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	clock := mocks.NewMockClock(t)
	cache := memory.New()
	service := NewTranslationService(remote, cache, clock, nil, fastTranslationConfig())

	rejected := fmt.Errorf("%w: status 400", domain.ErrTranslationFatal)
	clock.EXPECT().Sleep(mockAnyContext(), time.Second).Return(nil).Once()
	remote.EXPECT().Translate(mockAnyContext(), "hallo", "de", "en").Return(domain.Translation{}, rejected).Once()

	_, err := service.Translate(context.Background(), "hallo", "de", "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTranslationFatal)
	assert.NotErrorIs(t, err, domain.ErrRetriesExhausted)
	assert.Equal(t, 0, cache.Len())
}

func TestTranslationServiceUnclassifiedFailureIsFatal(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	clock := mocks.NewMockClock(t)
	service := NewTranslationService(remote, memory.New(), clock, nil, fastTranslationConfig())

	clock.EXPECT().Sleep(mockAnyContext(), time.Second).Return(nil).Once()
	remote.EXPECT().Translate(mockAnyContext(), "ciao", "it", "en").Return(domain.Translation{}, errors.New("boom")).Once()

	_, err := service.Translate(context.Background(), "ciao", "it", "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTranslationFatal)
}

func TestTranslationServiceCancelledDuringThrottle(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	clock := mocks.NewMockClock(t)
	service := NewTranslationService(remote, memory.New(), clock, nil, fastTranslationConfig())

	ctx, cancel := context.WithCancel(context.Background())
	clock.EXPECT().Sleep(mockAnyContext(), time.Second).RunAndReturn(func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}).Once()

	_, err := service.Translate(ctx, "olá", "pt", "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTranslationServiceCollapsesConcurrentMisses(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	cache := memory.New()
	service := NewTranslationService(remote, cache, nil, nil, TranslationConfig{MaxAttempts: 5, RetryDelay: time.Millisecond})

	var calls atomic.Int32
	release := make(chan struct{})
	remote.EXPECT().Translate(mockAnyContext(), "你好", "zh-CN", "en").RunAndReturn(func(context.Context, string, string, string) (domain.Translation, error) {
		calls.Add(1)
		<-release
		return hello, nil
	}).Once()

	const callers = 8
	var wg sync.WaitGroup
	results := make([]domain.Translation, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = service.Translate(context.Background(), "你好", "zh-CN", "en")
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, hello, results[i])
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestTranslationServiceWaiterHonoursOwnContext(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	service := NewTranslationService(remote, memory.New(), nil, nil, TranslationConfig{MaxAttempts: 1})

	started := make(chan struct{})
	release := make(chan struct{})
	remote.EXPECT().Translate(mockAnyContext(), "text", "auto", "en").RunAndReturn(func(context.Context, string, string, string) (domain.Translation, error) {
		close(started)
		<-release
		return domain.Translation{Text: "translated"}, nil
	}).Once()

	done := make(chan error, 1)
	go func() {
		_, err := service.Translate(context.Background(), "text", "auto", "en")
		done <- err
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := service.Translate(ctx, "text", "auto", "en")
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	require.NoError(t, <-done)
}

func TestTranslationServiceWaiterOutlivesCancelledLeader(t *testing.T) {
	t.Parallel()

	remote := mocks.NewMockTranslator(t)
	service := NewTranslationService(remote, memory.New(), nil, nil, TranslationConfig{MaxAttempts: 1})

	started := make(chan struct{})
	remote.EXPECT().Translate(mockAnyContext(), "你好", "zh-CN", "en").RunAndReturn(func(ctx context.Context, _, _, _ string) (domain.Translation, error) {
		close(started)
		<-ctx.Done()
		return domain.Translation{}, ctx.Err()
	}).Once()
	remote.EXPECT().Translate(mockAnyContext(), "你好", "zh-CN", "en").Return(hello, nil).Once()

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := service.Translate(leaderCtx, "你好", "zh-CN", "en")
		leaderDone <- err
	}()
	<-started

	type outcome struct {
		translation domain.Translation
		err         error
	}
	waiterDone := make(chan outcome, 1)
	go func() {
		translation, err := service.Translate(context.Background(), "你好", "zh-CN", "en")
		waiterDone <- outcome{translation, err}
	}()

	// Give the waiter time to join the in-flight call before the leader goes away.
	time.Sleep(20 * time.Millisecond)
	cancelLeader()

	assert.ErrorIs(t, <-leaderDone, context.Canceled)
	got := <-waiterDone
	require.NoError(t, got.err)
	assert.Equal(t, hello, got.translation)
}
