package chain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	portmocks "github.com/bnema/voxlate/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var entry = domain.LogEntry{
	Sender:    "alice",
	Timestamp: time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC),
	Message:   "hola",
	Kind:      domain.LogOriginal,
}

func TestNewStoreRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, portmocks.NewMockChatLog(t))
	assert.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStore(portmocks.NewMockChatLog(t), nil)
	assert.ErrorIs(t, err, errNilFallbackStore)
}

func TestStoreAppendUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockChatLog(t)
	fallback := portmocks.NewMockChatLog(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	primary.EXPECT().Append(mock.Anything, entry).Return(nil).Once()

	require.NoError(t, store.Append(context.Background(), entry))
}

func TestStoreAppendFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockChatLog(t)
	fallback := portmocks.NewMockChatLog(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	primary.EXPECT().Append(mock.Anything, entry).Return(errors.New("connection refused")).Once()
	fallback.EXPECT().Append(mock.Anything, entry).Return(nil).Once()

	require.NoError(t, store.Append(context.Background(), entry))
}

func TestStoreAppendReturnsCombinedErrorWhenBothBackendsFail(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockChatLog(t)
	fallback := portmocks.NewMockChatLog(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	primary.EXPECT().Append(mock.Anything, entry).Return(errors.New("postgres down")).Once()
	fallback.EXPECT().Append(mock.Anything, entry).Return(errors.New("disk full")).Once()

	err = store.Append(context.Background(), entry)
	require.Error(t, err)
	assert.ErrorContains(t, err, "postgres down")
	assert.ErrorContains(t, err, "disk full")
}

func TestStoreSkipsFallbackWhenContextEnds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockChatLog(t)
	fallback := portmocks.NewMockChatLog(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	primary.EXPECT().Append(mock.Anything, entry).Return(context.DeadlineExceeded).Once()
	primary.EXPECT().List(mock.Anything).Return(nil, context.Canceled).Once()

	assert.ErrorIs(t, store.Append(context.Background(), entry), context.DeadlineExceeded)
	_, err = store.List(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreListFallsBack(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockChatLog(t)
	fallback := portmocks.NewMockChatLog(t)
	store, err := NewStore(primary, fallback)
	require.NoError(t, err)

	primary.EXPECT().List(mock.Anything).Return(nil, errors.New("postgres down")).Once()
	fallback.EXPECT().List(mock.Anything).Return([]domain.LogEntry{entry}, nil).Once()

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.LogEntry{entry}, entries)
}
