package entry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testRef() Reference {
	return Reference{Space: "main", Entry: "landing-1", Field: "cards"}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(&ClientConfig{}, nil); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}

func TestDefaultClientConfig(t *testing.T) {
	config := DefaultClientConfig()

	if config.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", config.Timeout)
	}
	if config.MaxRetries != 2 {
		t.Errorf("expected 2 retries, got %d", config.MaxRetries)
	}
}

func TestFetchLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/spaces/main/entries/landing-1/fields/cards/links" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer token header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [
			{"sys": {"id": "e1", "contentType": {"sys": {"id": "CardTypeA"}}}},
			{"sys": {"id": "e2"}}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient(&ClientConfig{BaseURL: server.URL, Token: "test-token"}, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	entries, err := client.FetchLinks(context.Background(), testRef())
	if err != nil {
		t.Fatalf("failed to fetch links: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if ct, ok := ContentTypeOf(entries[0]); !ok || ct != "CardTypeA" {
		t.Errorf("expected first entry to resolve to CardTypeA, got %q (ok=%v)", ct, ok)
	}
	if _, ok := ContentTypeOf(entries[1]); ok {
		t.Error("expected second entry to be unresolved")
	}
}

func TestFetchLinks_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client, err := NewClient(&ClientConfig{BaseURL: server.URL, MaxRetries: 2}, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	entries, err := client.FetchLinks(context.Background(), testRef())
	if err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty list, got %d entries", len(entries))
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestFetchLinks_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such entry", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(&ClientConfig{BaseURL: server.URL, MaxRetries: 3}, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	_, err = client.FetchLinks(context.Background(), testRef())
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected SourceError, got %T", err)
	}
	if srcErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", srcErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestFetchLinks_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(&ClientConfig{BaseURL: server.URL, MaxRetries: 5}, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.FetchLinks(ctx, testRef()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
