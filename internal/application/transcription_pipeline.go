package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultTargetFormat = "mp3"

type TranscriptionConfig struct {
	// WorkDir holds the per-message scratch directories. Empty means the OS
	// temp dir.
	WorkDir      string
	TargetFormat string
}

// TranscriptionPipeline turns a voice message into text: fetch, store,
// convert, transcribe. Every run works in its own scratch directory which is
// removed afterwards.
type TranscriptionPipeline struct {
	converter   ports.AudioConverter
	transcriber ports.Transcriber
	logger      *slog.Logger
	cfg         TranscriptionConfig
}

func NewTranscriptionPipeline(converter ports.AudioConverter, transcriber ports.Transcriber, logger *slog.Logger, cfg TranscriptionConfig) *TranscriptionPipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg.TargetFormat = strings.TrimPrefix(strings.TrimSpace(cfg.TargetFormat), ".")
	if cfg.TargetFormat == "" {
		cfg.TargetFormat = DefaultTargetFormat
	}

	return &TranscriptionPipeline{
		converter:   converter,
		transcriber: transcriber,
		logger:      logger.With("component", "transcription"),
		cfg:         cfg,
	}
}

// Transcribe fetches the audio behind ref and transcribes it. Inline audio
// data is used as is; fetcher may be nil in that case.
func (p *TranscriptionPipeline) Transcribe(ctx context.Context, fetcher ports.AudioFetcher, ref domain.AudioRef) (string, error) {
	data := ref.Data
	if len(data) == 0 {
		if fetcher == nil {
			return "", stageError(domain.StageDownload, errors.New("no audio source"))
		}

		fetched, err := fetcher.FetchAudio(ctx, ref)
		if err != nil {
			return "", stageError(domain.StageDownload, fmt.Errorf("fetch audio: %w", err))
		}
		data = fetched
	}
	if len(data) == 0 {
		return "", stageError(domain.StageDownload, errors.New("audio payload is empty"))
	}

	return p.TranscribeBytes(ctx, data, AudioExtension(ref))
}

// TranscribeBytes stores data as voice<ext> and runs the rest of the pipeline.
func (p *TranscriptionPipeline) TranscribeBytes(ctx context.Context, data []byte, ext string) (string, error) {
	dir, cleanup, err := p.scratchDir()
	if err != nil {
		return "", err
	}
	defer cleanup()

	sourcePath := filepath.Join(dir, "voice"+ext)
	if err := os.WriteFile(sourcePath, data, 0o600); err != nil {
		return "", stageError(domain.StageStore, fmt.Errorf("write audio file: %w", err))
	}

	return p.convertAndTranscribe(ctx, dir, sourcePath)
}

// TranscribeFile runs conversion and transcription on an existing audio file.
func (p *TranscriptionPipeline) TranscribeFile(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", stageError(domain.StageStore, fmt.Errorf("stat audio file: %w", err))
	}

	dir, cleanup, err := p.scratchDir()
	if err != nil {
		return "", err
	}
	defer cleanup()

	return p.convertAndTranscribe(ctx, dir, path)
}

func (p *TranscriptionPipeline) scratchDir() (string, func(), error) {
	dir, err := os.MkdirTemp(p.cfg.WorkDir, "voice-*")
	if err != nil {
		return "", nil, stageError(domain.StageStore, fmt.Errorf("create work dir: %w", err))
	}

	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			p.logger.Warn("remove work dir", "dir", dir, "error", err)
		}
	}, nil
}

func (p *TranscriptionPipeline) convertAndTranscribe(ctx context.Context, dir, sourcePath string) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe audio", trace.WithAttributes(attribute.String("media.format", p.cfg.TargetFormat)))
	defer span.End()

	convertedPath := filepath.Join(dir, "voice-converted."+p.cfg.TargetFormat)
	if err := p.converter.Convert(ctx, sourcePath, convertedPath); err != nil {
		recordSpanError(span, err)
		return "", stageError(domain.StageConvert, fmt.Errorf("convert audio: %w", err))
	}

	raw, err := p.transcriber.Transcribe(ctx, convertedPath)
	if err != nil {
		recordSpanError(span, err)
		return "", stageError(domain.StageTranscribe, fmt.Errorf("run transcriber: %w", err))
	}

	transcript := strings.TrimSpace(raw)
	if transcript == "" {
		err := errors.New("transcriber returned no text")
		recordSpanError(span, err)
		return "", stageError(domain.StageTranscribe, err)
	}

	p.logger.Debug("voice message transcribed", "chars", len(transcript))
	return transcript, nil
}

func stageError(stage domain.TranscriptionStage, err error) error {
	return &domain.TranscriptionError{Stage: stage, Err: err}
}

// AudioExtension picks the working file extension for ref from its filename,
// then its MIME type. Voice notes default to ogg.
func AudioExtension(ref domain.AudioRef) string {
	if ext := filepath.Ext(ref.Filename); ext != "" {
		return strings.ToLower(ext)
	}

	mimeType, _, _ := strings.Cut(ref.MimeType, ";")
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a", "audio/aac":
		return ".m4a"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/webm":
		return ".webm"
	default:
		return ".ogg"
	}
}
