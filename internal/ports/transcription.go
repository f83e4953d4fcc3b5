package ports

import (
	"context"

	"github.com/bnema/voxlate/internal/domain"
)

type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

type AudioConverter interface {
	Convert(ctx context.Context, srcPath, dstPath string) error
}

type AudioFetcher interface {
	FetchAudio(ctx context.Context, ref domain.AudioRef) ([]byte, error)
}

type AudioFetcherFunc func(ctx context.Context, ref domain.AudioRef) ([]byte, error)

func (f AudioFetcherFunc) FetchAudio(ctx context.Context, ref domain.AudioRef) ([]byte, error) {
	return f(ctx, ref)
}
