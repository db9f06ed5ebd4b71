package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestServer starts an httptest server answering with the given handler
// and returns a client pointed at it
func newTestServer(t *testing.T, handler http.HandlerFunc) (*AnthropicClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewAnthropicClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	return client, server
}

// completionJSON builds a minimal Messages API success body
func completionJSON(text string) string {
	return fmt.Sprintf(`{"content":[{"type":"text","text":%q}],"stop_reason":"end_turn"}`, text)
}

// TestAnthropicClient_Complete_Success tests a successful completion
// and verifies the outgoing request shape
func TestAnthropicClient_Complete_Success(t *testing.T) {
	var gotPath, gotKey, gotVersion, gotContentType string
	var gotBody messagesRequest

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		gotContentType = r.Header.Get("Content-Type")

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("San Francisco, USA"))
	})

	text, err := client.Complete(context.Background(), "where is example.io?")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "San Francisco, USA" {
		t.Errorf("expected 'San Francisco, USA', got '%s'", text)
	}

	// Request shape
	if gotPath != "/messages" {
		t.Errorf("expected path '/messages', got '%s'", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected x-api-key 'test-key', got '%s'", gotKey)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("expected anthropic-version '2023-06-01', got '%s'", gotVersion)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got '%s'", gotContentType)
	}

	// Request body
	if gotBody.Model != "claude-3-haiku-20240307" {
		t.Errorf("expected default model, got '%s'", gotBody.Model)
	}
	if gotBody.MaxTokens != 30 {
		t.Errorf("expected max_tokens 30, got %d", gotBody.MaxTokens)
	}
	if len(gotBody.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "user" {
		t.Errorf("expected role 'user', got '%s'", gotBody.Messages[0].Role)
	}
	if gotBody.Messages[0].Content != "where is example.io?" {
		t.Errorf("expected the prompt as content, got '%s'", gotBody.Messages[0].Content)
	}
}

// TestAnthropicClient_Complete_TrimsWhitespace tests response trimming
func TestAnthropicClient_Complete_TrimsWhitespace(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionJSON("  Paris, France\n\n"))
	})

	text, err := client.Complete(context.Background(), "prompt")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Paris, France" {
		t.Errorf("expected trimmed 'Paris, France', got '%s'", text)
	}
}

// TestAnthropicClient_Complete_FirstBlockWins tests that only the first
// content block is consumed
func TestAnthropicClient_Complete_FirstBlockWins(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Berlin, Germany"},{"type":"text","text":"ignored"}]}`)
	})

	text, err := client.Complete(context.Background(), "prompt")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Berlin, Germany" {
		t.Errorf("expected first block only, got '%s'", text)
	}
}

// TestAnthropicClient_Complete_WhitespaceOnlyText tests that an all-blank
// answer comes back as an empty string, not an error
func TestAnthropicClient_Complete_WhitespaceOnlyText(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionJSON("   \n\t"))
	})

	text, err := client.Complete(context.Background(), "prompt")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty string, got '%s'", text)
	}
}

// TestAnthropicClient_Complete_MissingAPIKey tests that a missing key fails
// fast without any network call
func TestAnthropicClient_Complete_MissingAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent without an API key")
	}))
	defer server.Close()

	client := NewAnthropicClient(Config{BaseURL: server.URL})

	_, err := client.Complete(context.Background(), "prompt")

	if err == nil {
		t.Fatal("expected error for missing API key, got nil")
	}
	if err.Error() != "API key not configured" {
		t.Errorf("expected 'API key not configured', got '%s'", err.Error())
	}
}

// TestAnthropicClient_Complete_APIErrorStatus tests non-200 responses
func TestAnthropicClient_Complete_APIErrorStatus(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
	})

	_, err := client.Complete(context.Background(), "prompt")

	if err == nil {
		t.Fatal("expected error for 429 response, got nil")
	}
	if !strings.Contains(err.Error(), "status 429") {
		t.Errorf("expected status in error, got '%s'", err.Error())
	}
	if !strings.Contains(err.Error(), "slow down") {
		t.Errorf("expected response body in error, got '%s'", err.Error())
	}
}

// TestAnthropicClient_Complete_ErrorPayload tests an error object in an
// otherwise successful response
func TestAnthropicClient_Complete_ErrorPayload(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"type":"overloaded_error","message":"try later"}}`)
	})

	_, err := client.Complete(context.Background(), "prompt")

	if err == nil {
		t.Fatal("expected error for error payload, got nil")
	}
	if !strings.Contains(err.Error(), "try later") {
		t.Errorf("expected API message in error, got '%s'", err.Error())
	}
}

// TestAnthropicClient_Complete_NoContent tests an empty content array
func TestAnthropicClient_Complete_NoContent(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[],"stop_reason":"end_turn"}`)
	})

	_, err := client.Complete(context.Background(), "prompt")

	if err == nil {
		t.Fatal("expected error for empty content, got nil")
	}
	if err.Error() != "no completion returned" {
		t.Errorf("expected 'no completion returned', got '%s'", err.Error())
	}
}

// TestAnthropicClient_Complete_MalformedJSON tests an unparseable body
func TestAnthropicClient_Complete_MalformedJSON(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	})

	_, err := client.Complete(context.Background(), "prompt")

	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to decode response") {
		t.Errorf("expected decode error, got '%s'", err.Error())
	}
}

// TestAnthropicClient_Complete_CanceledContext tests context cancellation
func TestAnthropicClient_Complete_CanceledContext(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionJSON("too late"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "prompt")

	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}

// TestNewAnthropicClient_Defaults tests default configuration values
func TestNewAnthropicClient_Defaults(t *testing.T) {
	client := NewAnthropicClient(Config{APIKey: "k"})

	if client.baseURL != "https://api.anthropic.com/v1" {
		t.Errorf("unexpected default base URL: %s", client.baseURL)
	}
	if client.model != "claude-3-haiku-20240307" {
		t.Errorf("unexpected default model: %s", client.model)
	}
	if client.maxTokens != 30 {
		t.Errorf("unexpected default max tokens: %d", client.maxTokens)
	}
}

// TestNewAnthropicClient_TrimsBaseURL tests trailing slash handling
func TestNewAnthropicClient_TrimsBaseURL(t *testing.T) {
	client := NewAnthropicClient(Config{APIKey: "k", BaseURL: "http://example.test/v1/"})

	if client.baseURL != "http://example.test/v1" {
		t.Errorf("expected trailing slash trimmed, got '%s'", client.baseURL)
	}
}

// TestCompleterInterface verifies both implementations satisfy Completer
func TestCompleterInterface(t *testing.T) {
	var _ Completer = (*AnthropicClient)(nil)
	var _ Completer = (*MockCompleter)(nil)
}

// TestMockCompleter tests the mock's call tracking and error injection
func TestMockCompleter(t *testing.T) {
	mock := NewMockCompleter("Tel Aviv, Israel")

	text, err := mock.Complete(context.Background(), "first prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Tel Aviv, Israel" {
		t.Errorf("expected canned response, got '%s'", text)
	}

	mock.CompleteError = fmt.Errorf("model down")
	_, err = mock.Complete(context.Background(), "second prompt")
	if err == nil {
		t.Error("expected injected error, got nil")
	}

	if len(mock.CompleteCalls) != 2 {
		t.Fatalf("expected 2 tracked calls, got %d", len(mock.CompleteCalls))
	}
	if mock.CompleteCalls[0] != "first prompt" {
		t.Errorf("expected 'first prompt' tracked, got '%s'", mock.CompleteCalls[0])
	}
}
