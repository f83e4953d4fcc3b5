// Package download fetches voice notes that transports expose by URL.
package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/bnema/voxlate/internal/version"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultTimeout = time.Minute

var ErrNoSource = errors.New("audio has neither data nor url")

type Client struct {
	http *resty.Client
}

var _ ports.AudioFetcher = (*Client)(nil)

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
			SetHeader("User-Agent", version.UserAgent()),
	}
}

// FetchAudio prefers bytes already carried by the event.
func (c *Client) FetchAudio(ctx context.Context, ref domain.AudioRef) ([]byte, error) {
	if len(ref.Data) > 0 {
		return ref.Data, nil
	}
	if ref.URL == "" {
		return nil, ErrNoSource
	}

	resp, err := c.http.R().SetContext(ctx).Get(ref.URL)
	if err != nil {
		return nil, fmt.Errorf("download audio: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("download audio: status %d", resp.StatusCode())
	}

	return resp.Body(), nil
}
