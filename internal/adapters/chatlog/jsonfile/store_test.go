package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppendCreatesFileOnFirstUse(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "chatLogs.json")
	store, err := NewStore(path)
	require.NoError(t, err)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)

	at := time.Date(2026, time.January, 2, 3, 4, 5, 678_000_000, time.FixedZone("CET", 3600))
	require.NoError(t, store.Append(context.Background(), domain.LogEntry{
		Sender: "alice@s.whatsapp.net", Timestamp: at, Message: "你好", Kind: domain.LogOriginal,
	}))
	require.NoError(t, store.Append(context.Background(), domain.LogEntry{
		Sender: "Bot", Timestamp: at, Message: "Hello", Kind: domain.LogTranslated,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []map[string]string{
		{"sender": "alice@s.whatsapp.net", "timestamp": "2026-01-02T02:04:05.678Z", "message": "你好", "type": "original"},
		{"sender": "Bot", "timestamp": "2026-01-02T02:04:05.678Z", "message": "Hello", "type": "translated"},
	}, raw)

	listed, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.True(t, at.Equal(listed[0].Timestamp))
	assert.Equal(t, domain.LogTranslated, listed[1].Kind)
}

func TestStoreAppendPreservesExistingEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chatLogs.json")
	existing := `[
  {"sender": "old", "timestamp": "2024-05-01T10:00:00.000Z", "message": "hi", "type": "original"}
]`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), domain.LogEntry{Sender: "new", Timestamp: time.Now(), Message: "yo", Kind: domain.LogOriginal}))

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "old", entries[0].Sender)
	assert.Equal(t, "new", entries[1].Sender)
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chatLogs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewStore(path)
	require.NoError(t, err)

	err = store.Append(context.Background(), domain.LogEntry{Sender: "a", Message: "b", Kind: domain.LogOriginal})
	assert.ErrorContains(t, err, "decode chat log")
}

func TestStoreConcurrentAppendsKeepEveryEntry(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chatLogs.json")
	first, err := NewStore(path)
	require.NoError(t, err)
	second, err := NewStore(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store := first
			if i%2 == 1 {
				store = second
			}
			assert.NoError(t, store.Append(context.Background(), domain.LogEntry{
				Sender: fmt.Sprintf("sender-%d", i), Timestamp: time.Now(), Message: "m", Kind: domain.LogOriginal,
			}))
		}()
	}
	wg.Wait()

	entries, err := first.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestEncodeMatchesFileFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Encode(&buf, []domain.LogEntry{{
		Sender:    "Bot",
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Message:   "<b>Hello</b>",
		Kind:      domain.LogTranslated,
	}})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"sender":"Bot","timestamp":"2024-05-01T10:00:00.000Z","message":"<b>Hello</b>","type":"translated"}]`, buf.String())
	assert.Contains(t, buf.String(), "<b>Hello</b>")
}
