package health

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookSender delivers alert notifications to a Discord or Slack webhook.
type WebhookSender struct {
	URL    string
	Format string
	Client *http.Client
}

func NewWebhookSender(url, format string) *WebhookSender {
	if format != "slack" {
		format = "discord"
	}
	return &WebhookSender{
		URL:    url,
		Format: format,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendAlert notifies that the contact endpoint has been failing.
func (w *WebhookSender) SendAlert(endpoint string, failures int, lastError string) error {
	if w.URL == "" {
		return nil
	}

	var payload interface{}
	if w.Format == "slack" {
		payload = map[string]string{
			"text": fmt.Sprintf("*Contact endpoint* is DOWN - %d consecutive failed probes\nEndpoint: %s\nLast error: %s", failures, endpoint, lastError),
		}
	} else {
		payload = map[string]interface{}{
			"embeds": []map[string]interface{}{
				{
					"title":       "Contact Endpoint Down",
					"description": fmt.Sprintf("**%s** has failed %d consecutive probes.\nLast error: %s", endpoint, failures, lastError),
					"color":       16711680,
					"timestamp":   time.Now().UTC().Format(time.RFC3339),
				},
			},
		}
	}

	return w.post(payload)
}

// SendRecovery notifies that the contact endpoint is reachable again.
func (w *WebhookSender) SendRecovery(endpoint string) error {
	if w.URL == "" {
		return nil
	}

	var payload interface{}
	if w.Format == "slack" {
		payload = map[string]string{
			"text": fmt.Sprintf("*Contact endpoint* has RECOVERED\nEndpoint: %s", endpoint),
		}
	} else {
		payload = map[string]interface{}{
			"embeds": []map[string]interface{}{
				{
					"title":       "Contact Endpoint Recovered",
					"description": fmt.Sprintf("**%s** is responding again.", endpoint),
					"color":       65280,
					"timestamp":   time.Now().UTC().Format(time.RFC3339),
				},
			},
		}
	}

	return w.post(payload)
}

func (w *WebhookSender) post(payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	resp, err := w.Client.Post(w.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
