// Package google calls the public Google Translate endpoint used by the
// browser extension (client=gtx).
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/bnema/voxlate/internal/version"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultEndpoint = "https://translate.googleapis.com"
	DefaultTimeout  = 15 * time.Second

	translatePath = "/translate_a/single"
	autoSource    = "auto"
)

type Client struct {
	http *resty.Client
}

var _ ports.Translator = (*Client)(nil)

func New(endpoint string, timeout time.Duration) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetTimeout(timeout).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent())

	return &Client{http: httpClient}
}

// Translate classifies failures for the retry policy: transport errors, 429
// and 5xx are retryable, anything else is fatal. The returned SourceLang is
// the language Google reports translating from, which for an "auto" request
// is its own detection.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (domain.Translation, error) {
	if sourceLang == "" {
		sourceLang = autoSource
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     sourceLang,
			"tl":     targetLang,
			"dt":     "t",
			"q":      text,
		}).
		Get(translatePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Translation{}, ctxErr
		}
		return domain.Translation{}, fmt.Errorf("%w: request translation: %w", domain.ErrTranslationRetryable, err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return domain.Translation{}, fmt.Errorf("%w: translate endpoint returned %d", domain.ErrTranslationRetryable, status)
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		return domain.Translation{}, fmt.Errorf("%w: translate endpoint returned %d", domain.ErrTranslationFatal, status)
	}

	translated, err := parseSegments(resp.Body())
	if err != nil {
		return domain.Translation{}, fmt.Errorf("%w: %w", domain.ErrTranslationFatal, err)
	}

	detected := domain.NormalizeLanguage(gjson.GetBytes(resp.Body(), "2").String())
	if detected == "" && sourceLang != autoSource {
		detected = domain.NormalizeLanguage(sourceLang)
	}

	return domain.Translation{Text: translated, SourceLang: detected}, nil
}

// parseSegments joins the translated sentence segments found at [0][i][0].
func parseSegments(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errors.New("decode translation response: invalid json")
	}

	var builder strings.Builder
	for _, segment := range gjson.GetBytes(body, "0.#.0").Array() {
		if segment.Type == gjson.String {
			builder.WriteString(segment.String())
		}
	}

	if builder.Len() == 0 {
		return "", errors.New("translation response has no segments")
	}

	return builder.String(), nil
}
