package mcptools

import (
	"database/sql"

	"folio/internal/backup"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func RegisterTools(s *server.MCPServer, db *sql.DB, backups *backup.Manager, dbPath string) {
	h := &handlers{db: db, dbPath: dbPath, backups: backups}

	s.AddTool(
		mcp.NewTool("list_submissions",
			mcp.WithDescription("List journaled contact form submissions, newest first. Optionally filter by outcome status or search name/email."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithString("status", mcp.Description("Filter by outcome (relayed, rejected, discarded, failed)")),
			mcp.WithString("query", mcp.Description("Search term matched against sender name and email")),
			mcp.WithNumber("limit", mcp.Description("Number of submissions to return (default 20)")),
		),
		h.listSubmissions,
	)

	s.AddTool(
		mcp.NewTool("get_submission",
			mcp.WithDescription("Fetch a single journaled submission by its ID, including the full message and relay details."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithString("id", mcp.Description("Submission ID"), mcp.Required()),
		),
		h.getSubmission,
	)

	s.AddTool(
		mcp.NewTool("get_delivery_stats",
			mcp.WithDescription("Get aggregate submission counts broken down by outcome: relayed, rejected, discarded, failed, and unacknowledged."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
		),
		h.getDeliveryStats,
	)

	s.AddTool(
		mcp.NewTool("get_endpoint_health",
			mcp.WithDescription("Get probe history and uptime stats for the external contact endpoint."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithNumber("hours", mcp.Description("Stats look back period in hours (default 24)")),
			mcp.WithNumber("limit", mcp.Description("Number of recent probes to return (default 10)")),
		),
		h.getEndpointHealth,
	)

	s.AddTool(
		mcp.NewTool("backup_database",
			mcp.WithDescription("Create a compressed backup of the submission database and report its name and size."),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
		),
		h.backupDatabase,
	)
}
