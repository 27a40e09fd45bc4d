package mcptools

import (
	"time"

	"folio/internal/models"
)

type SubmissionDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Message      string `json:"message"`
	Status       string `json:"status"`
	HTTPStatus   int    `json:"http_status,omitempty"`
	LatencyMs    int    `json:"latency_ms,omitempty"`
	Error        string `json:"error,omitempty"`
	ClientIP     string `json:"client_ip,omitempty"`
	UserAgent    string `json:"user_agent,omitempty"`
	Acknowledged bool   `json:"acknowledged"`
	CreatedAt    string `json:"created_at"`
}

type EndpointCheckDTO struct {
	ID         int    `json:"id"`
	HTTPStatus int    `json:"http_status"`
	LatencyMs  int    `json:"latency_ms"`
	CheckedAt  string `json:"checked_at"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func SubmissionToDTO(s models.Submission) SubmissionDTO {
	return SubmissionDTO{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		Phone:        s.Phone,
		Message:      s.Message,
		Status:       s.Status,
		HTTPStatus:   s.HTTPStatus,
		LatencyMs:    s.LatencyMs,
		Error:        s.Error,
		ClientIP:     s.ClientIP,
		UserAgent:    s.UserAgent,
		Acknowledged: s.Acknowledged,
		CreatedAt:    formatTime(s.CreatedAt),
	}
}

func EndpointCheckToDTO(c models.EndpointCheck) EndpointCheckDTO {
	return EndpointCheckDTO{
		ID:         c.ID,
		HTTPStatus: c.HTTPStatus,
		LatencyMs:  c.LatencyMs,
		CheckedAt:  c.CheckedAt,
	}
}
