package google

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientTranslateJoinsSegments(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_a/single", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "gtx", query.Get("client"))
		assert.Equal(t, "zh-CN", query.Get("sl"))
		assert.Equal(t, "en", query.Get("tl"))
		assert.Equal(t, "t", query.Get("dt"))
		assert.Equal(t, "你好。今天怎么样？", query.Get("q"))

		_, _ = io.WriteString(w, `[[["Hello. ","你好。",null,null,10],["How is today?","今天怎么样？",null,null,10]],null,"zh-CN"]`)
	}))
	t.Cleanup(server.Close)

	client := New(server.URL, time.Second)
	translation, err := client.Translate(context.Background(), "你好。今天怎么样？", "zh-CN", "en")
	require.NoError(t, err)
	assert.Equal(t, domain.Translation{Text: "Hello. How is today?", SourceLang: "zh-CN"}, translation)
}

func TestClientTranslateDefaultsToAutoSource(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "auto", r.URL.Query().Get("sl"))
		_, _ = io.WriteString(w, `[[["hi","salut",null,null,1]]]`)
	}))
	t.Cleanup(server.Close)

	translation, err := New(server.URL, time.Second).Translate(context.Background(), "salut", "", "en")
	require.NoError(t, err)
	assert.Equal(t, "hi", translation.Text)
	assert.Empty(t, translation.SourceLang)
}

func TestClientTranslateReportsDetectedSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		body   string
		source string
		want   string
	}{
		{name: "short english", text: "Hello", body: `[[["Hello","Hello",null,null,10]],null,"en",null,null,null,1,[],[["en"],null,[1],["en"]]]`, source: "", want: "en"},
		{name: "short french", text: "bonjour", body: `[[["hello","bonjour",null,null,10]],null,"fr"]`, source: "", want: "fr"},
		{name: "traditional chinese", text: "謝謝", body: `[[["Thanks","謝謝",null,null,10]],null,"zh-TW"]`, source: "", want: "zh-TW"},
		{name: "explicit source without field", text: "hola", body: `[[["hello","hola",null,null,10]]]`, source: "es", want: "es"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			t.Cleanup(server.Close)

			translation, err := New(server.URL, time.Second).Translate(context.Background(), tt.text, tt.source, "en")
			require.NoError(t, err)
			assert.Equal(t, tt.want, translation.SourceLang)
		})
	}
}

func TestClientTranslateClassifiesFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: domain.ErrTranslationRetryable},
		{name: "server error", status: http.StatusBadGateway, wantErr: domain.ErrTranslationRetryable},
		{name: "bad request", status: http.StatusBadRequest, wantErr: domain.ErrTranslationFatal},
		{name: "invalid json", status: http.StatusOK, body: "<html>", wantErr: domain.ErrTranslationFatal},
		{name: "no segments", status: http.StatusOK, body: `[null,null,"fr"]`, wantErr: domain.ErrTranslationFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			t.Cleanup(server.Close)

			_, err := New(server.URL, time.Second).Translate(context.Background(), "bonjour", "fr", "en")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClientTranslateNetworkErrorIsRetryable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url, time.Second).Translate(context.Background(), "bonjour", "fr", "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTranslationRetryable)
}

func TestClientTranslateCancelledContext(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(server.URL, 5*time.Second).Translate(ctx, "bonjour", "fr", "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrTranslationRetryable)
}
