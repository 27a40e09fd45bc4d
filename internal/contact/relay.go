package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBytes caps how much of an upstream body is read; the
// endpoint returns small JSON documents.
const maxResponseBytes = 64 << 10

// Relay delivers accepted submissions to the fixed external endpoint.
// Exactly one POST per Send, no retries.
type Relay struct {
	Endpoint string
	Client   *http.Client
}

func NewRelay(endpoint string, timeout time.Duration) *Relay {
	return &Relay{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Result describes a completed upstream exchange. Message carries the
// body's "message" field when the upstream supplies one.
type Result struct {
	StatusCode int
	LatencyMs  int64
	Message    string
}

// Send POSTs the submission as JSON. A non-nil error means the exchange
// never completed (transport failure); HTTP error statuses are reported
// through Result, not the error.
func (r *Relay) Send(ctx context.Context, sub Submission) (*Result, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	result := &Result{
		StatusCode: resp.StatusCode,
		LatencyMs:  time.Since(start).Milliseconds(),
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err == nil {
		result.Message = body.Message
	}
	return result, nil
}
