package handlers

import (
	"database/sql"
	"log"

	"folio/internal/contact"
	"folio/internal/metrics"
	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ContactPost accepts a contact form submission, runs it through the
// controller and maps the outcome onto the wire. Honeypot hits return 204
// with an empty body so bots see nothing distinguishable from success.
func ContactPost(db *sql.DB, ctrl *contact.Controller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in contact.FormInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Could not read the form data.",
			})
		}

		out := ctrl.Process(c.Context(), in)

		journalSubmission(db, c, out)
		metrics.RecordSubmission(out.State)

		switch out.State {
		case contact.StateDiscarded:
			return c.SendStatus(fiber.StatusNoContent)
		case contact.StateRejected:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"witty":   out.Witty,
				"fields":  out.Fields,
				"errors":  out.Errors,
			})
		case contact.StateRelayed:
			return c.JSON(fiber.Map{
				"success": true,
				"message": out.Message,
			})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"success": false,
				"message": out.Message,
			})
		}
	}
}

// journalSubmission records the attempt regardless of outcome. Journal
// failures are logged and swallowed so a broken database never hides the
// outcome from the visitor.
func journalSubmission(db *sql.DB, c *fiber.Ctx, out contact.Outcome) {
	s := &models.Submission{
		Status:     out.State,
		HTTPStatus: out.HTTPStatus,
		LatencyMs:  int(out.LatencyMs),
		Error:      out.Detail,
		ClientIP:   c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	if out.Submission != nil {
		s.Name = out.Submission.Name
		s.Email = out.Submission.Email
		s.Phone = out.Submission.Phone
		s.Message = out.Submission.Message
	}
	if err := models.RecordSubmission(db, s); err != nil {
		log.Printf("failed to journal submission: %v", err)
	}
}
