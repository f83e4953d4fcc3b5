package ports

import (
	"context"

	"github.com/bnema/voxlate/internal/domain"
)

type ChatLog interface {
	Append(ctx context.Context, entry domain.LogEntry) error
	List(ctx context.Context) ([]domain.LogEntry, error)
}
