package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parleychat/parley/internal/provider"
)

func TestComplete_Success(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "42"}}]}`))
	}))
	defer server.Close()

	a := NewAdapter(server.URL, server.Client())
	turns := []provider.Turn{
		provider.UserTurn("meaning of life?"),
		provider.AssistantTurn("thinking..."),
		provider.UserTurn("well?"),
	}
	text, err := a.Complete(context.Background(), turns, "gpt-4o-mini", "sk-test")
	if err != nil {
		t.Fatal(err)
	}
	if text != "42" {
		t.Errorf("text = %q", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 3 || gotBody.Messages[1].Role != "assistant" {
		t.Errorf("messages = %+v", gotBody.Messages)
	}
}

func TestComplete_APIError(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	a := NewAdapter(server.URL, server.Client())
	_, err := a.Complete(context.Background(), []provider.Turn{provider.UserTurn("hi")}, "gpt-4o-mini", "bad")
	perr, ok := provider.AsError(err)
	if !ok {
		t.Fatalf("err = %v, want *provider.Error", err)
	}
	if perr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", perr.StatusCode)
	}
	if !strings.Contains(perr.Error(), "Incorrect API key") {
		t.Errorf("error message lost: %v", perr)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	a := NewAdapter(server.URL, server.Client())
	if _, err := a.Complete(context.Background(), []provider.Turn{provider.UserTurn("hi")}, "gpt-4o-mini", "k"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
