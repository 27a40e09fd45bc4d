package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Submission is one journaled contact form attempt. Status holds the
// terminal outcome (relayed, rejected, discarded, failed); HTTPStatus and
// LatencyMs describe the upstream exchange when one happened.
type Submission struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	HTTPStatus   int       `json:"http_status"`
	LatencyMs    int       `json:"latency_ms"`
	Error        string    `json:"error"`
	ClientIP     string    `json:"client_ip"`
	UserAgent    string    `json:"user_agent"`
	Acknowledged bool      `json:"acknowledged"`
	CreatedAt    time.Time `json:"created_at"`
}

const submissionSelectColumns = `
	id, name, email, COALESCE(phone,''), message, status,
	COALESCE(http_status,0), COALESCE(latency_ms,0), COALESCE(error,''),
	COALESCE(client_ip,''), COALESCE(user_agent,''), COALESCE(acknowledged,0),
	created_at`

func scanSubmission(scanner interface{ Scan(dest ...interface{}) error }) (*Submission, error) {
	var s Submission
	var ackInt int
	if err := scanner.Scan(
		&s.ID, &s.Name, &s.Email, &s.Phone, &s.Message, &s.Status,
		&s.HTTPStatus, &s.LatencyMs, &s.Error,
		&s.ClientIP, &s.UserAgent, &ackInt,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	s.Acknowledged = ackInt == 1
	return &s, nil
}

// RecordSubmission journals one attempt. An empty ID is assigned before
// the insert.
func RecordSubmission(db *sql.DB, s *Submission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := db.Exec(
		`INSERT INTO submissions (id, name, email, phone, message, status, http_status, latency_ms, error, client_ip, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, s.Phone, s.Message, s.Status,
		s.HTTPStatus, s.LatencyMs, s.Error, s.ClientIP, s.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

func GetSubmissionByID(db *sql.DB, id string) (*Submission, error) {
	row := db.QueryRow(`SELECT `+submissionSelectColumns+` FROM submissions WHERE id = ?`, id)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, fmt.Errorf("submission not found: %w", err)
	}
	return s, nil
}

// SearchSubmissions returns a page of submissions filtered by an optional
// name/email substring search and an optional exact status match. Either
// filter may be an empty string to indicate "no filter". It also returns
// the total count of matching rows so the caller can compute pagination
// metadata.
func SearchSubmissions(db *sql.DB, query, status string, page, perPage int) ([]Submission, int, error) {
	var conditions []string
	var args []interface{}

	if query != "" {
		escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
		conditions = append(conditions, "(name LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\')")
		args = append(args, "%"+escaped+"%", "%"+escaped+"%")
	}
	if status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, status)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countArgs := make([]interface{}, len(args))
	copy(countArgs, args)
	if err := db.QueryRow("SELECT COUNT(*) FROM submissions"+whereClause, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered submissions: %w", err)
	}

	offset := (page - 1) * perPage
	listArgs := append(args, perPage, offset)
	rows, err := db.Query(
		`SELECT `+submissionSelectColumns+` FROM submissions`+whereClause+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		listArgs...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query filtered submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan submission row: %w", err)
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("submission row iteration error: %w", err)
	}
	return subs, total, nil
}

// GetAllSubmissions returns every journal row, newest first. Used for CSV
// export where pagination makes no sense.
func GetAllSubmissions(db *sql.DB) ([]Submission, error) {
	rows, err := db.Query(`SELECT ` + submissionSelectColumns + ` FROM submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("submission row iteration error: %w", err)
	}
	return subs, nil
}

func AcknowledgeSubmission(db *sql.DB, id string) error {
	_, err := db.Exec("UPDATE submissions SET acknowledged = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge submission: %w", err)
	}
	return nil
}

func DeleteSubmission(db *sql.DB, id string) error {
	_, err := db.Exec("DELETE FROM submissions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

func CountSubmissions(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM submissions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

type SubmissionStats struct {
	Total     int `json:"total"`
	Relayed   int `json:"relayed"`
	Rejected  int `json:"rejected"`
	Discarded int `json:"discarded"`
	Failed    int `json:"failed"`
	Unacked   int `json:"unacked"`
}

// GetSubmissionStats aggregates outcome counts in a single query. Unacked
// counts relayed submissions the operator has not acknowledged yet.
func GetSubmissionStats(db *sql.DB) (*SubmissionStats, error) {
	stats := &SubmissionStats{}
	err := db.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'relayed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'discarded' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'relayed' AND acknowledged = 0 THEN 1 ELSE 0 END), 0)
		FROM submissions`).Scan(
		&stats.Total, &stats.Relayed, &stats.Rejected, &stats.Discarded, &stats.Failed, &stats.Unacked,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate submission stats: %w", err)
	}
	return stats, nil
}

// PruneSubmissions deletes journal rows older than the retention window
// and reports how many were removed.
func PruneSubmissions(db *sql.DB, days int) (int64, error) {
	result, err := db.Exec(
		"DELETE FROM submissions WHERE created_at < datetime('now', ?)",
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune submissions: %w", err)
	}
	return result.RowsAffected()
}
