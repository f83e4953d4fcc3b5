package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/bnema/voxlate/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func staticFetcher(data []byte, err error) ports.AudioFetcher {
	return ports.AudioFetcherFunc(func(context.Context, domain.AudioRef) ([]byte, error) {
		return data, err
	})
}

func TestTranscriptionPipelineTrimsTranscriptAndCleansUp(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	converter := mocks.NewMockAudioConverter(t)
	transcriber := mocks.NewMockTranscriber(t)
	pipeline := NewTranscriptionPipeline(converter, transcriber, nil, TranscriptionConfig{WorkDir: workDir})

	converter.EXPECT().Convert(mockAnyContext(), mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, src, dst string) error {
		data, err := os.ReadFile(src)
		require.NoError(t, err)
		assert.Equal(t, []byte("OggS-voice"), data)
		assert.Equal(t, ".ogg", filepath.Ext(src))
		assert.Equal(t, "voice-converted.mp3", filepath.Base(dst))
		return os.WriteFile(dst, []byte("ID3"), 0o600)
	}).Once()
	transcriber.EXPECT().Transcribe(mockAnyContext(), mock.Anything).Return("  你好世界 \n", nil).Once()

	transcript, err := pipeline.Transcribe(context.Background(), staticFetcher([]byte("OggS-voice"), nil), domain.AudioRef{MimeType: "audio/ogg; codecs=opus"})
	require.NoError(t, err)
	assert.Equal(t, "你好世界", transcript)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTranscriptionPipelineUsesInlineAudio(t *testing.T) {
	t.Parallel()

	converter := mocks.NewMockAudioConverter(t)
	transcriber := mocks.NewMockTranscriber(t)
	pipeline := NewTranscriptionPipeline(converter, transcriber, nil, TranscriptionConfig{WorkDir: t.TempDir(), TargetFormat: ".wav"})

	converter.EXPECT().Convert(mockAnyContext(), mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, src, dst string) error {
		assert.Equal(t, "voice.m4a", filepath.Base(src))
		assert.Equal(t, "voice-converted.wav", filepath.Base(dst))
		return nil
	}).Once()
	transcriber.EXPECT().Transcribe(mockAnyContext(), mock.Anything).Return("hello", nil).Once()

	transcript, err := pipeline.Transcribe(context.Background(), nil, domain.AudioRef{Filename: "note.M4A", Data: []byte("audio")})
	require.NoError(t, err)
	assert.Equal(t, "hello", transcript)
}

func TestTranscriptionPipelineConvertFailureSkipsTranscriber(t *testing.T) {
	t.Parallel()

	converter := mocks.NewMockAudioConverter(t)
	transcriber := mocks.NewMockTranscriber(t)
	pipeline := NewTranscriptionPipeline(converter, transcriber, nil, TranscriptionConfig{WorkDir: t.TempDir()})

	converter.EXPECT().Convert(mockAnyContext(), mock.Anything, mock.Anything).Return(errors.New("invalid data found")).Once()

	_, err := pipeline.Transcribe(context.Background(), staticFetcher([]byte("x"), nil), domain.AudioRef{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTranscription)

	var stageErr *domain.TranscriptionError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageConvert, stageErr.Stage)
	transcriber.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
}

func TestTranscriptionPipelineStageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		fetcher    ports.AudioFetcher
		transcript string
		transcErr  error
		wantStage  domain.TranscriptionStage
	}{
		{name: "download fails", fetcher: staticFetcher(nil, errors.New("404")), wantStage: domain.StageDownload},
		{name: "empty download", fetcher: staticFetcher(nil, nil), wantStage: domain.StageDownload},
		{name: "no source", fetcher: nil, wantStage: domain.StageDownload},
		{name: "transcriber fails", fetcher: staticFetcher([]byte("a"), nil), transcErr: errors.New("exit status 1"), wantStage: domain.StageTranscribe},
		{name: "blank transcript", fetcher: staticFetcher([]byte("a"), nil), transcript: " \n", wantStage: domain.StageTranscribe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			converter := mocks.NewMockAudioConverter(t)
			transcriber := mocks.NewMockTranscriber(t)
			pipeline := NewTranscriptionPipeline(converter, transcriber, nil, TranscriptionConfig{WorkDir: t.TempDir()})
			if tt.wantStage == domain.StageTranscribe {
				converter.EXPECT().Convert(mockAnyContext(), mock.Anything, mock.Anything).Return(nil).Once()
				transcriber.EXPECT().Transcribe(mockAnyContext(), mock.Anything).Return(tt.transcript, tt.transcErr).Once()
			}

			_, err := pipeline.Transcribe(context.Background(), tt.fetcher, domain.AudioRef{})
			var stageErr *domain.TranscriptionError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.wantStage, stageErr.Stage)
		})
	}
}

func TestTranscriptionPipelineTranscribeFile(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "memo.wav")
	require.NoError(t, os.WriteFile(source, []byte("RIFF"), 0o600))

	converter := mocks.NewMockAudioConverter(t)
	transcriber := mocks.NewMockTranscriber(t)
	pipeline := NewTranscriptionPipeline(converter, transcriber, nil, TranscriptionConfig{WorkDir: t.TempDir()})

	converter.EXPECT().Convert(mockAnyContext(), source, mock.Anything).Return(nil).Once()
	transcriber.EXPECT().Transcribe(mockAnyContext(), mock.Anything).Return("bonjour", nil).Once()

	transcript, err := pipeline.TranscribeFile(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, "bonjour", transcript)

	_, err = pipeline.TranscribeFile(context.Background(), filepath.Join(t.TempDir(), "missing.ogg"))
	assert.ErrorIs(t, err, domain.ErrTranscription)
}

func TestAudioExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  domain.AudioRef
		want string
	}{
		{ref: domain.AudioRef{Filename: "clip.MP3"}, want: ".mp3"},
		{ref: domain.AudioRef{MimeType: "audio/mpeg"}, want: ".mp3"},
		{ref: domain.AudioRef{MimeType: "audio/ogg; codecs=opus"}, want: ".ogg"},
		{ref: domain.AudioRef{MimeType: "audio/x-wav"}, want: ".wav"},
		{ref: domain.AudioRef{MimeType: "audio/webm"}, want: ".webm"},
		{ref: domain.AudioRef{}, want: ".ogg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AudioExtension(tt.ref))
	}
}
