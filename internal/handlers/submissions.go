package handlers

import (
	"database/sql"
	"encoding/csv"
	"log"
	"strconv"

	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

const perPage = 25

// ListSubmissions returns one page of journal entries. Supports ?q= for a
// name/email substring search, ?status= for an exact outcome filter and
// ?page= for pagination.
func ListSubmissions(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}

		subs, total, err := models.SearchSubmissions(db, c.Query("q", ""), c.Query("status", ""), page, perPage)
		if err != nil {
			log.Printf("failed to list submissions: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load submissions"})
		}
		if subs == nil {
			subs = []models.Submission{}
		}

		return c.JSON(fiber.Map{
			"submissions": subs,
			"total":       total,
			"page":        page,
			"per_page":    perPage,
		})
	}
}

func GetSubmission(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, err := models.GetSubmissionByID(db, c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
		}
		return c.JSON(sub)
	}
}

// AcknowledgeSubmission marks a journal entry as handled by the operator.
func AcknowledgeSubmission(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := models.GetSubmissionByID(db, id); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
		}
		if err := models.AcknowledgeSubmission(db, id); err != nil {
			log.Printf("failed to acknowledge submission %s: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to acknowledge submission"})
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

func DeleteSubmission(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := models.GetSubmissionByID(db, id); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Submission not found"})
		}
		if err := models.DeleteSubmission(db, id); err != nil {
			log.Printf("failed to delete submission %s: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete submission"})
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// ExportSubmissionsCSV streams the whole journal as a CSV download.
func ExportSubmissionsCSV(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subs, err := models.GetAllSubmissions(db)
		if err != nil {
			log.Printf("export submissions failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Export failed")
		}

		c.Set("Content-Type", "text/csv")
		c.Set("Content-Disposition", "attachment; filename=submissions.csv")

		w := csv.NewWriter(c.Response().BodyWriter())
		w.Write([]string{"ID", "Name", "Email", "Phone", "Message", "Status", "HTTP Status", "Latency (ms)", "Error", "Client IP", "Acknowledged", "Created"})

		for _, s := range subs {
			w.Write([]string{
				s.ID,
				s.Name,
				s.Email,
				s.Phone,
				s.Message,
				s.Status,
				strconv.Itoa(s.HTTPStatus),
				strconv.Itoa(s.LatencyMs),
				s.Error,
				s.ClientIP,
				strconv.FormatBool(s.Acknowledged),
				s.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		w.Flush()
		return nil
	}
}

// Stats combines submission outcome counts with recent endpoint health for
// the admin dashboard.
func Stats(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subStats, err := models.GetSubmissionStats(db)
		if err != nil {
			log.Printf("failed to aggregate submission stats: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load stats"})
		}

		epStats, err := models.GetEndpointStats(db, 24)
		if err != nil {
			log.Printf("failed to aggregate endpoint stats: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load stats"})
		}

		resp := fiber.Map{
			"submissions": subStats,
			"endpoint":    epStats,
		}
		if latest, err := models.GetLatestEndpointCheck(db); err == nil {
			resp["latest_check"] = latest
		}

		return c.JSON(resp)
	}
}
