package health

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestNewWebhookSender_DefaultsToDiscord(t *testing.T) {
	w := NewWebhookSender("https://hooks.example.com", "bogus")
	if w.Format != "discord" {
		t.Errorf("expected unknown format to fall back to discord, got %q", w.Format)
	}

	w = NewWebhookSender("https://hooks.example.com", "slack")
	if w.Format != "slack" {
		t.Errorf("expected slack format to be kept, got %q", w.Format)
	}
}

func TestWebhookSender_EmptyURLIsNoop(t *testing.T) {
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	w := NewWebhookSender("", "discord")
	if err := w.SendAlert("https://api.example.com/contact", 3, "timeout"); err != nil {
		t.Errorf("expected no error without URL, got %v", err)
	}
	if err := w.SendRecovery("https://api.example.com/contact"); err != nil {
		t.Errorf("expected no error without URL, got %v", err)
	}
	if hits.Load() != 0 {
		t.Error("expected no webhook requests without URL")
	}
}

func TestWebhookSender_DiscordAlertPayload(t *testing.T) {
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer ts.Close()

	w := NewWebhookSender(ts.URL, "discord")
	if err := w.SendAlert("https://api.example.com/contact", 3, "connection refused"); err != nil {
		t.Fatalf("SendAlert failed: %v", err)
	}

	var payload struct {
		Embeds []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Color       int    `json:"color"`
		} `json:"embeds"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if len(payload.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
	}

	embed := payload.Embeds[0]
	if embed.Title != "Contact Endpoint Down" {
		t.Errorf("unexpected embed title %q", embed.Title)
	}
	if embed.Color != 16711680 {
		t.Errorf("expected red embed, got color %d", embed.Color)
	}
	if !strings.Contains(embed.Description, "https://api.example.com/contact") {
		t.Error("expected description to name the endpoint")
	}
	if !strings.Contains(embed.Description, "connection refused") {
		t.Error("expected description to include the last error")
	}
}

func TestWebhookSender_SlackAlertPayload(t *testing.T) {
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer ts.Close()

	w := NewWebhookSender(ts.URL, "slack")
	if err := w.SendAlert("https://api.example.com/contact", 5, "HTTP 503"); err != nil {
		t.Fatalf("SendAlert failed: %v", err)
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if !strings.Contains(payload.Text, "DOWN") {
		t.Errorf("expected alert text to say DOWN, got %q", payload.Text)
	}
	if !strings.Contains(payload.Text, "5 consecutive") {
		t.Errorf("expected alert text to include the failure count, got %q", payload.Text)
	}
	if !strings.Contains(payload.Text, "HTTP 503") {
		t.Errorf("expected alert text to include the last error, got %q", payload.Text)
	}
}

func TestWebhookSender_RecoveryPayload(t *testing.T) {
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer ts.Close()

	w := NewWebhookSender(ts.URL, "discord")
	if err := w.SendRecovery("https://api.example.com/contact"); err != nil {
		t.Fatalf("SendRecovery failed: %v", err)
	}

	var payload struct {
		Embeds []struct {
			Title string `json:"title"`
			Color int    `json:"color"`
		} `json:"embeds"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if len(payload.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
	}
	if payload.Embeds[0].Title != "Contact Endpoint Recovered" {
		t.Errorf("unexpected embed title %q", payload.Embeds[0].Title)
	}
	if payload.Embeds[0].Color != 65280 {
		t.Errorf("expected green embed, got color %d", payload.Embeds[0].Color)
	}
}

func TestWebhookSender_ErrorStatusReported(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	w := NewWebhookSender(ts.URL, "discord")
	if err := w.SendAlert("https://api.example.com/contact", 3, "timeout"); err == nil {
		t.Error("expected error when webhook returns 400")
	}
}
