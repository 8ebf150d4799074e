package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-rater/internal/ai"
)

func makeTestServer(t *testing.T, statusCode int, body any, inspect func(*http.Request)) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, srv.Client()
}

func newTestProvider(t *testing.T, url string, client *http.Client) *Provider {
	t.Helper()
	p, err := NewProvider(Options{BaseURL: url, APIKey: "test-key", Model: "test-model", HTTPClient: client}, zap.NewNop())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func contentResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestGenerateSuccess(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	srv, client := makeTestServer(t, http.StatusOK, contentResponse(`{"scores":{}}`), func(r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
	})

	p := newTestProvider(t, srv.URL+"/", client)
	got, err := p.Generate(context.Background(), "evaluate this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"scores":{}}` {
		t.Fatalf("unexpected content: %q", got)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotReq.Model != "test-model" || gotReq.ResponseFormat.Type != "json_object" {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[1].Content != "evaluate this" {
		t.Fatalf("unexpected messages: %+v", gotReq.Messages)
	}
}

func TestGenerateHTTPErrorIsTransport(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusTooManyRequests, http.StatusUnauthorized} {
		srv, client := makeTestServer(t, status, map[string]any{"error": map[string]string{"message": "nope", "type": "server_error"}}, nil)

		_, err := newTestProvider(t, srv.URL, client).Generate(context.Background(), "prompt")
		if !errors.Is(err, ai.ErrTransport) {
			t.Fatalf("status %d: expected transport error, got %v", status, err)
		}
	}
}

func TestGenerateUnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestProvider(t, url, http.DefaultClient).Generate(context.Background(), "prompt")
	if !errors.Is(err, ai.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestGenerateEmptyResponses(t *testing.T) {
	bodies := []any{
		map[string]any{"choices": []any{}},
		contentResponse("   "),
		map[string]any{"choices": []any{map[string]any{"message": map[string]any{"content": nil}}}},
	}

	for i, body := range bodies {
		srv, client := makeTestServer(t, http.StatusOK, body, nil)
		_, err := newTestProvider(t, srv.URL, client).Generate(context.Background(), "prompt")
		if !errors.Is(err, ai.ErrEmptyResponse) {
			t.Fatalf("body %d: expected empty response, got %v", i, err)
		}
	}
}

func TestGenerateRefusalIsBlocked(t *testing.T) {
	body := map[string]any{
		"choices": []any{map[string]any{
			"message":       map[string]any{"content": nil, "refusal": "I can't help with that."},
			"finish_reason": "stop",
		}},
	}
	srv, client := makeTestServer(t, http.StatusOK, body, nil)

	_, err := newTestProvider(t, srv.URL, client).Generate(context.Background(), "prompt")
	if !errors.Is(err, ai.ErrBlockedBySafetyFilter) {
		t.Fatalf("expected blocked error, got %v", err)
	}
}

func TestNewProviderDefaults(t *testing.T) {
	if _, err := NewProvider(Options{}, nil); err == nil {
		t.Fatal("expected error without api key")
	}

	p, err := NewProvider(Options{APIKey: "k"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Model() != DefaultModel || p.baseURL != DefaultBaseURL || p.Name() != "openai" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.httpClient.Timeout != 0 {
		t.Fatalf("expected no client timeout by default, got %v", p.httpClient.Timeout)
	}

	p, err = NewProvider(Options{APIKey: "k", Timeout: 30 * time.Second}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.httpClient.Timeout != 30*time.Second {
		t.Fatalf("expected configured timeout, got %v", p.httpClient.Timeout)
	}
}
