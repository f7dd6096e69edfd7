package billing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotPath, gotAuth string
	var gotForm map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "cs_test_1", "url": "https://checkout.example/cs_test_1"}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_abc", testLogger())
	client.SetTestTransport(server.URL)

	session, err := client.CreateCheckoutSession(context.Background(),
		"user@example.com", "price_pro", "https://app/success", "https://app/cancel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.ID != "cs_test_1" {
		t.Errorf("session ID = %q", session.ID)
	}
	if session.URL != "https://checkout.example/cs_test_1" {
		t.Errorf("session URL = %q", session.URL)
	}
	if gotPath != "/checkout/sessions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk_test_abc" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if got := gotForm["mode"]; len(got) != 1 || got[0] != "subscription" {
		t.Errorf("mode = %v", got)
	}
	if got := gotForm["line_items[0][price]"]; len(got) != 1 || got[0] != "price_pro" {
		t.Errorf("price = %v", got)
	}
	if got := gotForm["customer_email"]; len(got) != 1 || got[0] != "user@example.com" {
		t.Errorf("customer_email = %v", got)
	}
}

func TestCreateCheckoutSessionProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "No such price"}}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_abc", testLogger())
	client.SetTestTransport(server.URL)

	_, err := client.CreateCheckoutSession(context.Background(), "u@e.com", "price_bad", "s", "c")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "No such price") {
		t.Errorf("error %q should carry the provider message", err)
	}
}

func TestCancelSubscription(t *testing.T) {
	var gotMethod, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"id": "sub_1", "status": "canceled"}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_abc", testLogger())
	client.SetTestTransport(server.URL)

	if err := client.CancelSubscription(context.Background(), "sub_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q", gotMethod)
	}
	if gotPath != "/subscriptions/sub_1" {
		t.Errorf("path = %q", gotPath)
	}
}
