package mcptools

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"folio/internal/backup"
	"folio/internal/models"

	"github.com/mark3labs/mcp-go/mcp"
)

type handlers struct {
	db      *sql.DB
	dbPath  string
	backups *backup.Manager
}

func (h *handlers) listSubmissions(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	status, _ := args["status"].(string)
	query, _ := args["query"].(string)

	limit := 20
	if l, ok := args["limit"]; ok {
		n, err := toInt(l)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid limit: %v", err)), nil
		}
		if n > 0 {
			limit = n
		}
	}

	subs, total, err := models.SearchSubmissions(h.db, query, status, 1, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list submissions: %v", err)), nil
	}

	dtos := make([]SubmissionDTO, 0, len(subs))
	for _, s := range subs {
		dtos = append(dtos, SubmissionToDTO(s))
	}

	result := map[string]any{
		"submissions": dtos,
		"total":       total,
	}
	return jsonResult(result)
}

func (h *handlers) getSubmission(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	id, _ := args["id"].(string)
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	sub, err := models.GetSubmissionByID(h.db, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("submission not found: %v", err)), nil
	}

	return jsonResult(SubmissionToDTO(*sub))
}

func (h *handlers) getDeliveryStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := models.GetSubmissionStats(h.db)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get delivery stats: %v", err)), nil
	}
	return jsonResult(stats)
}

func (h *handlers) getEndpointHealth(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	hours := 24
	if v, ok := args["hours"]; ok {
		n, err := toInt(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid hours: %v", err)), nil
		}
		if n > 0 {
			hours = n
		}
	}

	limit := 10
	if v, ok := args["limit"]; ok {
		n, err := toInt(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid limit: %v", err)), nil
		}
		if n > 0 {
			limit = n
		}
	}

	stats, err := models.GetEndpointStats(h.db, hours)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get endpoint stats: %v", err)), nil
	}

	checks, err := models.GetRecentEndpointChecks(h.db, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get recent checks: %v", err)), nil
	}

	dtos := make([]EndpointCheckDTO, 0, len(checks))
	for _, c := range checks {
		dtos = append(dtos, EndpointCheckToDTO(c))
	}

	result := map[string]any{
		"window_hours":  hours,
		"stats":         stats,
		"recent_checks": dtos,
	}
	return jsonResult(result)
}

func (h *handlers) backupDatabase(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := h.backups.BackupDatabase(h.dbPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("backup failed: %v", err)), nil
	}

	result := map[string]any{
		"name": info.Name,
		"path": info.Path,
		"size": backup.FormatSize(info.Size),
	}
	return jsonResult(result)
}

// helpers

func toInt(v any) (int, error) {
	switch val := v.(type) {
	case float64:
		return int(val), nil
	case int:
		return val, nil
	case string:
		return strconv.Atoi(val)
	case json.Number:
		n, err := val.Int64()
		return int(n), err
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
