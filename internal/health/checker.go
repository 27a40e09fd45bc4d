package health

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"folio/internal/models"
)

// Checker probes the contact relay endpoint on a fixed interval and records
// each probe in the endpoint_checks table. After AlertThreshold consecutive
// failures it sends a single alert, then a recovery notice once the endpoint
// responds again.
type Checker struct {
	DB             *sql.DB
	Endpoint       string
	Interval       time.Duration
	Client         *http.Client
	Webhook        *WebhookSender
	Email          *EmailSender
	AlertThreshold int
	RetentionDays  int

	mu            sync.Mutex
	failures      int
	alerted       bool
	lastError     string
	lastCertCheck time.Time
}

func NewChecker(db *sql.DB, endpoint string, interval time.Duration, alertThreshold int) *Checker {
	if alertThreshold <= 0 {
		alertThreshold = 3
	}
	return &Checker{
		DB:             db,
		Endpoint:       endpoint,
		Interval:       interval,
		Client:         &http.Client{Timeout: 10 * time.Second},
		AlertThreshold: alertThreshold,
		RetentionDays:  30,
	}
}

// Start runs the probe loop until ctx is cancelled.
func (ch *Checker) Start(ctx context.Context) {
	ticker := time.NewTicker(ch.Interval)
	defer ticker.Stop()

	ch.check()

	for {
		select {
		case <-ctx.Done():
			log.Println("Endpoint checker stopped")
			return
		case <-ticker.C:
			ch.check()
		}
	}
}

func (ch *Checker) check() {
	if ch.RetentionDays > 0 {
		if _, err := models.PruneEndpointChecks(ch.DB, ch.RetentionDays); err != nil {
			log.Printf("Endpoint checker: failed to prune old checks: %v", err)
		}
	}

	var ec models.EndpointCheck
	start := time.Now()
	resp, err := ch.probe()
	ec.LatencyMs = int(time.Since(start).Milliseconds())

	probeErr := ""
	if err != nil {
		probeErr = err.Error()
	} else {
		ec.HTTPStatus = resp.StatusCode
		resp.Body.Close()
	}

	if err := models.CreateEndpointCheck(ch.DB, &ec); err != nil {
		log.Printf("Endpoint checker: failed to record check: %v", err)
	}

	// HTTPStatus 0 means the probe never completed. 5xx means the endpoint
	// answered but is broken. Anything else, including 4xx, counts as up
	// because the endpoint is reachable and serving.
	down := ec.HTTPStatus == 0 || ec.HTTPStatus >= 500

	ch.mu.Lock()
	if down {
		if probeErr != "" {
			ch.lastError = probeErr
		} else {
			ch.lastError = fmt.Sprintf("HTTP %d", ec.HTTPStatus)
		}
		ch.failures++
		count := ch.failures
		alerted := ch.alerted
		lastErr := ch.lastError
		ch.mu.Unlock()

		log.Printf("Endpoint check failed (%d consecutive): %s", count, lastErr)

		if count >= ch.AlertThreshold && !alerted {
			ch.sendAlert(count, lastErr)
		}
		return
	}

	wasAlerted := ch.alerted
	ch.failures = 0
	ch.alerted = false
	ch.lastError = ""
	ch.mu.Unlock()

	if wasAlerted {
		log.Printf("Endpoint recovered: %s", ch.Endpoint)
		ch.sendRecovery()
	}

	ch.maybeCheckCert()
}

// probe sends an OPTIONS request so the check never triggers the relay
// function behind the endpoint.
func (ch *Checker) probe() (*http.Response, error) {
	req, err := http.NewRequest(http.MethodOptions, ch.Endpoint, nil)
	if err != nil {
		return nil, err
	}
	return ch.Client.Do(req)
}

func (ch *Checker) sendAlert(failures int, lastError string) {
	delivered := false

	if ch.Webhook != nil {
		if err := ch.Webhook.SendAlert(ch.Endpoint, failures, lastError); err != nil {
			log.Printf("Failed to send webhook alert: %v", err)
		} else {
			delivered = true
		}
	}

	if ch.Email != nil {
		if err := ch.Email.SendAlert(ch.Endpoint, failures, lastError); err != nil {
			log.Printf("Failed to send email alert: %v", err)
		} else {
			delivered = true
		}
	}

	// Only mark alerted once a notification went out, so delivery problems
	// get retried on the next failed probe.
	if delivered {
		ch.mu.Lock()
		ch.alerted = true
		ch.mu.Unlock()
	}
}

func (ch *Checker) sendRecovery() {
	if ch.Webhook != nil {
		if err := ch.Webhook.SendRecovery(ch.Endpoint); err != nil {
			log.Printf("Failed to send webhook recovery notice: %v", err)
		}
	}
	if ch.Email != nil {
		if err := ch.Email.SendRecovery(ch.Endpoint); err != nil {
			log.Printf("Failed to send email recovery notice: %v", err)
		}
	}
}

// maybeCheckCert inspects the endpoint's TLS certificate at most once per day
// and logs a warning when it is close to expiry.
func (ch *Checker) maybeCheckCert() {
	u, err := url.Parse(ch.Endpoint)
	if err != nil || u.Scheme != "https" {
		return
	}

	ch.mu.Lock()
	due := time.Since(ch.lastCertCheck) >= 24*time.Hour
	if due {
		ch.lastCertCheck = time.Now()
	}
	ch.mu.Unlock()
	if !due {
		return
	}

	expiry, err := CheckCertExpiry(u.Hostname())
	if err != nil {
		log.Printf("Endpoint checker: certificate check failed: %v", err)
		return
	}

	if remaining := time.Until(expiry); remaining < 14*24*time.Hour {
		log.Printf("WARNING: certificate for %s expires in %d days", u.Hostname(), int(remaining.Hours()/24))
	}
}
