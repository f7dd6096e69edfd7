package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicInvoke_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected x-api-key test-key, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("expected anthropic-version header, got %q", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.System != "you are a test" {
			t.Errorf("expected system prompt, got %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "analyze this" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}{
				{Type: "text", Text: `{"clarityScore": 80}`},
			},
			StopReason: "end_turn",
		})
	}))
	defer server.Close()

	c := NewAnthropicClient("test-key")
	c.SetTestTransport(server.URL)

	got, err := c.Invoke(context.Background(), Request{
		Task:   TaskAnalyze,
		System: "you are a test",
		Prompt: "analyze this",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"clarityScore": 80}` {
		t.Errorf("unexpected response text %q", got)
	}
}

func TestAnthropicInvoke_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "authentication_error",
				"message": "invalid x-api-key",
			},
		})
	}))
	defer server.Close()

	c := NewAnthropicClient("bad-key")
	c.SetTestTransport(server.URL)

	_, err := c.Invoke(context.Background(), Request{Task: TaskAnalyze, Prompt: "hi"})
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestAnthropicInvoke_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(anthropicResponse{StopReason: "end_turn"})
	}))
	defer server.Close()

	c := NewAnthropicClient("test-key")
	c.SetTestTransport(server.URL)

	_, err := c.Invoke(context.Background(), Request{Task: TaskParse, Prompt: "hi"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestAnthropicInvoke_RejectsImages(t *testing.T) {
	c := NewAnthropicClient("test-key")
	if _, err := c.Invoke(context.Background(), Request{Task: TaskExtract, ImageURL: "data:image/png;base64,x"}); err == nil {
		t.Fatal("expected error for image input")
	}
}
