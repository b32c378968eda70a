// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-engine/internal/httputil"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func testClient(url string, client *http.Client) *Client {
	return &Client{
		Endpoint:   url,
		Model:      "gpt-4.1-mini",
		APIKey:     "sk-test",
		UserAgent:  "test/0.1",
		MaxRetries: 2,
		Client:     client,
	}
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	var auth, ua string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		ua = r.Header.Get("User-Agent")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  Efficient Inefficiency  \n"}}]}`)
	}))
	defer ts.Close()

	text, err := testClient(ts.URL, ts.Client()).Complete(context.Background(), Request{
		Prompt:      "title please",
		Temperature: 0.8,
		MaxTokens:   300,
	})
	require.NoError(t, err)

	assert.Equal(t, "Efficient Inefficiency", text)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "test/0.1", ua)
	assert.Equal(t, "gpt-4.1-mini", got.Model)
	assert.Equal(t, 0.8, got.Temperature)
	assert.Equal(t, 300, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "title please", got.Messages[0].Content)
}

func TestCompleteRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer ts.Close()

	text, err := testClient(ts.URL, ts.Client()).Complete(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, "chat API returned 500"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`, "empty content"},
		{"bad json", http.StatusOK, `not json`, "decoding chat response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			_, err := testClient(ts.URL, ts.Client()).Complete(context.Background(), Request{Prompt: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompleteMisconfigured(t *testing.T) {
	c := &Client{Endpoint: "http://example.invalid", Model: "m"}
	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "misconfigured")
}
