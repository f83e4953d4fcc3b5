package ffmpeg

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverterInvokesFFmpeg(t *testing.T) {
	t.Parallel()

	called := false
	converter := &Converter{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Empty(t, input)
			assert.Equal(t, []string{"-hide_banner", "-loglevel", "error", "-y", "-i", "/tmp/voice.ogg", "-vn", "/tmp/voice-converted.mp3"}, args)
			return "", "", nil
		},
	}

	err := converter.Convert(context.Background(), "/tmp/voice.ogg", "/tmp/voice-converted.mp3")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestConverterReturnsStderr(t *testing.T) {
	t.Parallel()

	converter := &Converter{
		run: func(context.Context, string, ...string) (string, string, error) {
			return "", "/tmp/voice.ogg: Invalid data found when processing input", errors.New("exit status 1")
		},
	}

	err := converter.Convert(context.Background(), "/tmp/voice.ogg", "/tmp/out.mp3")
	require.Error(t, err)
	assert.ErrorContains(t, err, "ffmpeg convert")
	assert.ErrorContains(t, err, "Invalid data found")
}

func TestNewConverterMissingBinary(t *testing.T) {
	t.Parallel()

	_, err := NewConverter("/nonexistent/ffmpeg")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
