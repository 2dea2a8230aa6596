package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGenerateContentReturnsFirstTextPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		require.Equal(t, "secret-key", r.Header.Get("x-goog-api-key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req, "contents")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[{\"class_name\":\"CS101\"}]"},{"text":"ignored"}]}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), "secret-key", "test-model", zap.NewNop()).WithBaseURL(srv.URL)

	text, err := client.GenerateContent(context.Background(), []Content{{Role: "user", Parts: []Part{{Text: "extract"}}}})
	require.NoError(t, err)
	require.Equal(t, `[{"class_name":"CS101"}]`, text)
}

func TestGenerateContentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), "secret-key", "test-model", zap.NewNop()).WithBaseURL(srv.URL)

	_, err := client.GenerateContent(context.Background(), []Content{{Parts: []Part{{Text: "extract"}}}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Contains(t, apiErr.Body, "quota exceeded")
}

func TestGenerateContentNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), "secret-key", "test-model", zap.NewNop()).WithBaseURL(srv.URL)

	_, err := client.GenerateContent(context.Background(), []Content{{Parts: []Part{{Text: "extract"}}}})
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestGenerateContentContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), "secret-key", "test-model", zap.NewNop()).WithBaseURL(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateContent(ctx, []Content{{Parts: []Part{{Text: "extract"}}}})
	require.Error(t, err)
}
