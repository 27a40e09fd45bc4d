package models

import (
	"database/sql"
	"fmt"
)

// EndpointCheck is one probe of the external contact endpoint. An
// HTTPStatus of 0 means the probe never completed (transport failure).
type EndpointCheck struct {
	ID         int    `json:"id"`
	HTTPStatus int    `json:"http_status"`
	LatencyMs  int    `json:"latency_ms"`
	CheckedAt  string `json:"checked_at"`
}

func CreateEndpointCheck(db *sql.DB, ec *EndpointCheck) error {
	result, err := db.Exec(
		"INSERT INTO endpoint_checks (http_status, latency_ms) VALUES (?, ?)",
		ec.HTTPStatus, ec.LatencyMs,
	)
	if err != nil {
		return fmt.Errorf("failed to create endpoint check: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	ec.ID = int(id)
	return nil
}

func GetRecentEndpointChecks(db *sql.DB, limit int) ([]EndpointCheck, error) {
	rows, err := db.Query(
		`SELECT id, COALESCE(http_status,0), COALESCE(latency_ms,0), checked_at
		 FROM endpoint_checks
		 ORDER BY checked_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query endpoint checks: %w", err)
	}
	defer rows.Close()

	var checks []EndpointCheck
	for rows.Next() {
		var ec EndpointCheck
		if err := rows.Scan(&ec.ID, &ec.HTTPStatus, &ec.LatencyMs, &ec.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint check row: %w", err)
		}
		checks = append(checks, ec)
	}
	return checks, rows.Err()
}

func GetLatestEndpointCheck(db *sql.DB) (*EndpointCheck, error) {
	ec := &EndpointCheck{}
	err := db.QueryRow(
		`SELECT id, COALESCE(http_status,0), COALESCE(latency_ms,0), checked_at
		 FROM endpoint_checks
		 ORDER BY checked_at DESC, id DESC
		 LIMIT 1`,
	).Scan(&ec.ID, &ec.HTTPStatus, &ec.LatencyMs, &ec.CheckedAt)
	if err != nil {
		return nil, fmt.Errorf("endpoint check not found: %w", err)
	}
	return ec, nil
}

type EndpointStats struct {
	Checks       int     `json:"checks"`
	Healthy      int     `json:"healthy"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// GetEndpointStats summarizes probes within the trailing window. A probe
// counts as healthy when it completed with a status below 500.
func GetEndpointStats(db *sql.DB, hours int) (*EndpointStats, error) {
	stats := &EndpointStats{}
	err := db.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN http_status > 0 AND http_status < 500 THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(CASE WHEN http_status > 0 THEN latency_ms END), 0)
		FROM endpoint_checks
		WHERE checked_at >= datetime('now', ?)`,
		fmt.Sprintf("-%d hours", hours),
	).Scan(&stats.Checks, &stats.Healthy, &stats.AvgLatencyMs)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate endpoint stats: %w", err)
	}
	return stats, nil
}

// PruneEndpointChecks deletes probe rows older than the retention window
// and reports how many were removed.
func PruneEndpointChecks(db *sql.DB, days int) (int64, error) {
	result, err := db.Exec(
		"DELETE FROM endpoint_checks WHERE checked_at < datetime('now', ?)",
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune endpoint checks: %w", err)
	}
	return result.RowsAffected()
}
