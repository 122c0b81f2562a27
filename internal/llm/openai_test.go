package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycobot/internal/config"
)

type capturedRequest struct {
	Auth string
	Body map[string]any
}

func newCompletionServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			captured.Auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&captured.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_Generate(t *testing.T) {
	var got capturedRequest
	srv := newCompletionServer(t, http.StatusOK,
		`{"model":"m","choices":[{"message":{"role":"assistant","content":"use straw"}}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`,
		&got)

	c := NewOpenAI(OpenAIOptions{APIKey: "secret", BaseURL: srv.URL, Model: "m", Timeout: time.Second})
	resp, err := c.Generate(context.Background(), Request{
		Messages:    []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	require.NoError(t, err)
	assert.Equal(t, "use straw", resp.Content)
	assert.Equal(t, 5, resp.TotalTokens)

	assert.Equal(t, "Bearer secret", got.Auth)
	assert.Equal(t, "m", got.Body["model"])
	assert.InDelta(t, 0.7, got.Body["temperature"], 0.0001)
	assert.EqualValues(t, 500, got.Body["max_tokens"])
	msgs, ok := got.Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "hi", msgs[1].(map[string]any)["content"])
}

func TestOpenAIClient_ExtraHeaders(t *testing.T) {
	var referer, title string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(OpenAIOptions{BaseURL: srv.URL, Model: "m", Referrer: "https://example.org", Title: "MycoBot"})
	_, err := c.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", referer)
	assert.Equal(t, "MycoBot", title)
}

func TestOpenAIClient_StatusError(t *testing.T) {
	srv := newCompletionServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key","type":"auth"}}`, nil)

	c := NewOpenAI(OpenAIOptions{BaseURL: srv.URL, Model: "m"})
	_, err := c.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se), "want *StatusError, got %T: %v", err, err)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, `{"choices":[]}`, nil)

	c := NewOpenAI(OpenAIOptions{BaseURL: srv.URL, Model: "m"})
	_, err := c.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := NewFactory(&config.Config{LLMTimeout: time.Second})
	_, err := f.CreateClient("carrier-pigeon", "m")
	require.Error(t, err)

	c, err := f.CreateClient("OpenAI", "m")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)
}
