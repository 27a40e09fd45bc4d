package models

import "testing"

func TestCreateEndpointCheck_AssignsID(t *testing.T) {
	conn := newTestDB(t)

	ec := &EndpointCheck{HTTPStatus: 200, LatencyMs: 42}
	if err := CreateEndpointCheck(conn, ec); err != nil {
		t.Fatalf("CreateEndpointCheck: %v", err)
	}
	if ec.ID == 0 {
		t.Error("expected an ID to be assigned")
	}
}

func TestGetLatestEndpointCheck_ReturnsNewest(t *testing.T) {
	conn := newTestDB(t)

	first := &EndpointCheck{HTTPStatus: 200, LatencyMs: 10}
	second := &EndpointCheck{HTTPStatus: 503, LatencyMs: 20}
	if err := CreateEndpointCheck(conn, first); err != nil {
		t.Fatalf("CreateEndpointCheck: %v", err)
	}
	if err := CreateEndpointCheck(conn, second); err != nil {
		t.Fatalf("CreateEndpointCheck: %v", err)
	}

	latest, err := GetLatestEndpointCheck(conn)
	if err != nil {
		t.Fatalf("GetLatestEndpointCheck: %v", err)
	}
	if latest.ID != second.ID || latest.HTTPStatus != 503 {
		t.Errorf("expected the second check, got %+v", latest)
	}
}

func TestGetLatestEndpointCheck_EmptyTable(t *testing.T) {
	conn := newTestDB(t)
	if _, err := GetLatestEndpointCheck(conn); err == nil {
		t.Error("expected error when no checks are recorded")
	}
}

func TestGetRecentEndpointChecks_HonorsLimit(t *testing.T) {
	conn := newTestDB(t)
	for i := 0; i < 5; i++ {
		if err := CreateEndpointCheck(conn, &EndpointCheck{HTTPStatus: 200, LatencyMs: i}); err != nil {
			t.Fatalf("CreateEndpointCheck: %v", err)
		}
	}

	checks, err := GetRecentEndpointChecks(conn, 3)
	if err != nil {
		t.Fatalf("GetRecentEndpointChecks: %v", err)
	}
	if len(checks) != 3 {
		t.Errorf("expected 3 checks, got %d", len(checks))
	}
}

func TestGetEndpointStats_CountsHealthy(t *testing.T) {
	conn := newTestDB(t)

	// 200 is healthy, 503 is a server error, 0 is a transport failure
	for _, status := range []int{200, 503, 0} {
		if err := CreateEndpointCheck(conn, &EndpointCheck{HTTPStatus: status, LatencyMs: 100}); err != nil {
			t.Fatalf("CreateEndpointCheck: %v", err)
		}
	}

	stats, err := GetEndpointStats(conn, 24)
	if err != nil {
		t.Fatalf("GetEndpointStats: %v", err)
	}
	if stats.Checks != 3 {
		t.Errorf("expected 3 checks, got %d", stats.Checks)
	}
	if stats.Healthy != 1 {
		t.Errorf("expected 1 healthy check, got %d", stats.Healthy)
	}
	if stats.AvgLatencyMs != 100 {
		t.Errorf("expected average latency over completed probes to be 100, got %v", stats.AvgLatencyMs)
	}
}

func TestPruneEndpointChecks_RemovesOldRows(t *testing.T) {
	conn := newTestDB(t)

	old := &EndpointCheck{HTTPStatus: 200, LatencyMs: 5}
	if err := CreateEndpointCheck(conn, old); err != nil {
		t.Fatalf("CreateEndpointCheck: %v", err)
	}
	if _, err := conn.Exec("UPDATE endpoint_checks SET checked_at = datetime('now', '-60 days') WHERE id = ?", old.ID); err != nil {
		t.Fatalf("backdate check: %v", err)
	}
	if err := CreateEndpointCheck(conn, &EndpointCheck{HTTPStatus: 200, LatencyMs: 6}); err != nil {
		t.Fatalf("CreateEndpointCheck: %v", err)
	}

	removed, err := PruneEndpointChecks(conn, 30)
	if err != nil {
		t.Fatalf("PruneEndpointChecks: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned row, got %d", removed)
	}
}
