package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Collector struct {
	RequestCount    atomic.Int64
	ErrorCount      atomic.Int64
	RequestDuration atomic.Int64 // nanoseconds total
	ActiveRequests  atomic.Int64

	SubmissionsRelayed   atomic.Int64
	SubmissionsRejected  atomic.Int64
	SubmissionsDiscarded atomic.Int64
	SubmissionsFailed    atomic.Int64

	startTime time.Time
}

var Default = &Collector{startTime: time.Now()}

// RecordSubmission bumps the counter for one terminal submission outcome.
func RecordSubmission(status string) {
	switch status {
	case "relayed":
		Default.SubmissionsRelayed.Add(1)
	case "rejected":
		Default.SubmissionsRejected.Add(1)
	case "discarded":
		Default.SubmissionsDiscarded.Add(1)
	case "failed":
		Default.SubmissionsFailed.Add(1)
	}
}

func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		Default.ActiveRequests.Add(1)
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		Default.ActiveRequests.Add(-1)
		Default.RequestCount.Add(1)
		Default.RequestDuration.Add(duration.Nanoseconds())

		if c.Response().StatusCode() >= 500 {
			Default.ErrorCount.Add(1)
		}

		return err
	}
}

func Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uptime := time.Since(Default.startTime).Seconds()
		totalRequests := Default.RequestCount.Load()
		totalErrors := Default.ErrorCount.Load()
		activeReqs := Default.ActiveRequests.Load()
		totalDuration := Default.RequestDuration.Load()

		var avgDuration float64
		if totalRequests > 0 {
			avgDuration = float64(totalDuration) / float64(totalRequests) / 1e6 // milliseconds
		}

		c.Set("Content-Type", "text/plain; version=0.0.4")

		body := fmt.Sprintf(`# HELP folio_uptime_seconds Time since server start
# TYPE folio_uptime_seconds gauge
folio_uptime_seconds %.2f

# HELP folio_http_requests_total Total HTTP requests
# TYPE folio_http_requests_total counter
folio_http_requests_total %d

# HELP folio_http_errors_total Total HTTP 5xx errors
# TYPE folio_http_errors_total counter
folio_http_errors_total %d

# HELP folio_http_active_requests Current active requests
# TYPE folio_http_active_requests gauge
folio_http_active_requests %d

# HELP folio_http_request_duration_avg_ms Average request duration in milliseconds
# TYPE folio_http_request_duration_avg_ms gauge
folio_http_request_duration_avg_ms %.2f

# HELP folio_submissions_total Contact submissions by terminal outcome
# TYPE folio_submissions_total counter
folio_submissions_total{outcome="relayed"} %d
folio_submissions_total{outcome="rejected"} %d
folio_submissions_total{outcome="discarded"} %d
folio_submissions_total{outcome="failed"} %d
`, uptime, totalRequests, totalErrors, activeReqs, avgDuration,
			Default.SubmissionsRelayed.Load(),
			Default.SubmissionsRejected.Load(),
			Default.SubmissionsDiscarded.Load(),
			Default.SubmissionsFailed.Load())

		return c.SendString(body)
	}
}
