package handlers

import (
	"database/sql"
	"time"

	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PublicHealth reports the relay endpoint's latest probe plus a 24 hour
// summary. This endpoint is unauthenticated and intended for external
// consumption (e.g. uptime badges), so the response is cacheable.
func PublicHealth(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "unknown"
		resp := fiber.Map{}

		if latest, err := models.GetLatestEndpointCheck(db); err == nil {
			if latest.HTTPStatus > 0 && latest.HTTPStatus < 500 {
				status = "up"
			} else {
				status = "down"
			}
			resp["http_status"] = latest.HTTPStatus
			resp["latency_ms"] = latest.LatencyMs
			resp["checked_at"] = latest.CheckedAt
		}

		if stats, err := models.GetEndpointStats(db, 24); err == nil {
			resp["checks_24h"] = stats.Checks
			resp["healthy_24h"] = stats.Healthy
			resp["avg_latency_ms"] = stats.AvgLatencyMs
		}

		resp["status"] = status
		c.Set("Cache-Control", "public, max-age=60")
		c.Set("Last-Modified", time.Now().UTC().Format(time.RFC1123))
		return c.JSON(resp)
	}
}
