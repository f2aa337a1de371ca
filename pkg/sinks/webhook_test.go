package sinks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookSinkSuccess(t *testing.T) {
	var received ContentEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Revalidate-Token"); got != "secret" {
			t.Fatalf("missing header, got %s", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := newWebhookSink(context.Background(), SinkConfig{
		ID:   "revalidate",
		Type: TypeWebhook,
		Webhook: &WebhookConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Revalidate-Token": "secret"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newWebhookSink: %v", err)
	}

	evt := ContentEvent{
		RunAt:      time.Now().UTC(),
		SavedCount: 1,
		Articles:   []ArticleRef{{Title: "Flamengo vence", UID: "flamengo-vence", Link: "https://site/noticias/flamengo-vence"}},
	}
	if err := sink.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if received.SavedCount != 1 || len(received.Articles) != 1 || received.Articles[0].UID != "flamengo-vence" {
		t.Fatalf("server received wrong payload: %#v", received)
	}
}

func TestWebhookSinkErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	sink, err := newWebhookSink(context.Background(), SinkConfig{
		ID:   "hook",
		Type: TypeWebhook,
		Webhook: &WebhookConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			TimeoutSeconds: 1,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newWebhookSink: %v", err)
	}

	if err := sink.Send(context.Background(), ContentEvent{}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}
