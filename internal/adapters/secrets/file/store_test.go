package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "empty", key: "", wantErr: "credentials key is empty"},
		{name: "whitespace", key: "   ", wantErr: "credentials key is empty"},
		{name: "absolute", key: "/absolute/path", wantErr: "invalid credentials key"},
		{name: "traversal", key: "../escape", wantErr: "invalid credentials key"},
		{name: "deep traversal", key: "../../creds.json", wantErr: "invalid credentials key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStoreWithKey(t.TempDir(), tc.key)
			err := store.Save(context.Background(), []byte("{}"))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestStoreLoadMissingReturnsNil(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	blob, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestStoreSaveLoadRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	want := []byte(`{"noiseKey":"abc","me":{"id":"123@s.whatsapp.net"}}`)

	require.NoError(t, store.Save(context.Background(), []byte(`{"stale":true}`)))
	require.NoError(t, store.Save(context.Background(), want))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(filepath.Join(root, DefaultKey))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(secretFileMod), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Join(root, "session"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(storeDirMode), dirInfo.Mode().Perm())

	entries, err := os.ReadDir(filepath.Join(root, "session"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestStoreClearIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(context.Background(), []byte("{}")))

	require.NoError(t, store.Clear(context.Background()))
	require.NoError(t, store.Clear(context.Background()))

	blob, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewStore(t.TempDir())
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Save(ctx, nil), context.Canceled)
	assert.ErrorIs(t, store.Clear(ctx), context.Canceled)
}
