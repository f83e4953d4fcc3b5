// Package whisper transcribes audio through the OpenAI speech-to-text API.
package whisper

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/bnema/voxlate/internal/ports"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultModel = "whisper-1"

type Config struct {
	// APIKey falls back to OPENAI_API_KEY when empty.
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

type Transcriber struct {
	client openai.Client
	model  openai.AudioModel
}

var _ ports.Transcriber = (*Transcriber)(nil)

func New(cfg Config) *Transcriber {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Transcriber{
		client: openai.NewClient(opts...),
		model:  openai.AudioModel(cfg.Model),
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	transcription, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: t.model,
	})
	if err != nil {
		return "", fmt.Errorf("request transcription: %w", err)
	}

	return transcription.Text, nil
}
