package handlers

import (
	"net/http"
	"testing"

	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

func TestPublicHealth_UnknownWithoutChecks(t *testing.T) {
	conn := newTestDB(t)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/api/health", PublicHealth(conn))

	resp := getPath(t, app, "/api/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc == "" {
		t.Error("expected a Cache-Control header")
	}

	m := decodeJSON(t, resp)
	if m["status"] != "unknown" {
		t.Errorf("expected status unknown with no probes, got %v", m["status"])
	}
}

func TestPublicHealth_ReportsLatestProbe(t *testing.T) {
	conn := newTestDB(t)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/api/health", PublicHealth(conn))

	if err := models.CreateEndpointCheck(conn, &models.EndpointCheck{HTTPStatus: 204, LatencyMs: 120}); err != nil {
		t.Fatalf("CreateEndpointCheck: %v", err)
	}

	m := decodeJSON(t, getPath(t, app, "/api/health"))
	if m["status"] != "up" {
		t.Errorf("expected status up, got %v", m["status"])
	}
	if m["http_status"] != float64(204) {
		t.Errorf("expected http_status 204, got %v", m["http_status"])
	}
	if m["checks_24h"] != float64(1) {
		t.Errorf("expected checks_24h 1, got %v", m["checks_24h"])
	}
}

func TestPublicHealth_DownAfterFailedProbe(t *testing.T) {
	conn := newTestDB(t)
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/api/health", PublicHealth(conn))

	if err := models.CreateEndpointCheck(conn, &models.EndpointCheck{HTTPStatus: 0}); err != nil {
		t.Fatalf("CreateEndpointCheck: %v", err)
	}

	m := decodeJSON(t, getPath(t, app, "/api/health"))
	if m["status"] != "down" {
		t.Errorf("expected status down after a failed probe, got %v", m["status"])
	}
}
