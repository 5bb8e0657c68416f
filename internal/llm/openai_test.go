package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, reply string, delay time.Duration, calls *atomic.Int32, seen chan<- chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if seen != nil {
			seen <- req
		}
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProviderClassifyApp(t *testing.T) {
	var calls atomic.Int32
	seen := make(chan chatRequest, 1)
	srv := chatServer(t, " Development\n", 0, &calls, seen)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", Model: "gpt-test", BaseURL: srv.URL})
	require.True(t, p.Available())
	require.Equal(t, "openai:gpt-test", p.Name())

	req := NewClassifyRequest([]string{"Productivity", "Development"}, "Terminal", "com.apple.Terminal")
	out, err := p.ClassifyApp(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, " Development\n", out)
	require.Equal(t, int32(1), calls.Load())

	got := <-seen
	require.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 2)
	require.Equal(t, Instruction, got.Messages[0].Content)
	require.Contains(t, got.Messages[1].Content, "Categories: Productivity, Development")
	require.Contains(t, got.Messages[1].Content, "App name: Terminal")
	require.Contains(t, got.Messages[1].Content, "Bundle ID: com.apple.Terminal")
}

func TestOpenAIProviderTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := chatServer(t, "Media", 2*time.Second, &calls, nil)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := p.ClassifyApp(context.Background(), NewClassifyRequest([]string{"Media"}, "Spotify", "com.spotify.client"))
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second)
}

func TestOpenAIProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom","type":"server_error"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	_, err := p.ClassifyApp(context.Background(), NewClassifyRequest([]string{"Media"}, "x", "y"))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "openai:"))
}

func TestOpenAIProviderWithoutKey(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "  "})
	require.False(t, p.Available())
	_, err := p.ClassifyApp(context.Background(), ClassifyRequest{})
	require.True(t, errors.Is(err, ErrNoAPIKey))
}

func TestOpenAIProviderRateLimitHonoursDeadline(t *testing.T) {
	var calls atomic.Int32
	srv := chatServer(t, "Media", 0, &calls, nil)

	p := NewOpenAIProvider(OpenAIConfig{
		APIKey:            "sk-test",
		BaseURL:           srv.URL,
		Timeout:           100 * time.Millisecond,
		RequestsPerSecond: 0.01,
		Burst:             1,
	})
	req := NewClassifyRequest([]string{"Media"}, "x", "y")
	_, err := p.ClassifyApp(context.Background(), req)
	require.NoError(t, err)

	// The next token is 100s away, far beyond the call timeout.
	_, err = p.ClassifyApp(context.Background(), req)
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestDisabledProvider(t *testing.T) {
	var p Provider = Disabled{}
	require.False(t, p.Available())
	_, err := p.ClassifyApp(context.Background(), ClassifyRequest{})
	require.ErrorIs(t, err, ErrNoAPIKey)
}

func TestPromptFieldsAreBounded(t *testing.T) {
	long := strings.Repeat("é", MaxFieldRunes+100)
	req := NewClassifyRequest([]string{"Media"}, long, "com."+long)
	require.Equal(t, MaxFieldRunes, len([]rune(req.AppName)))
	require.Equal(t, MaxFieldRunes, len([]rune(req.AppID)))

	// Hand-built requests are clipped when rendered.
	raw := ClassifyRequest{Labels: []string{"Media"}, AppName: long, AppID: long}
	prompt := raw.Prompt()
	require.NotContains(t, prompt, strings.Repeat("é", MaxFieldRunes+1))
	require.Contains(t, prompt, "App name: "+strings.Repeat("é", MaxFieldRunes)+"\n")

	short := NewClassifyRequest(nil, "Slack", "com.tinyspeck.slackmacgap")
	require.Equal(t, "Slack", short.AppName)
	require.Equal(t, "com.tinyspeck.slackmacgap", short.AppID)
}
