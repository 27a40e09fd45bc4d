package handlers

import (
	"database/sql"
	"log"

	"folio/internal/auth"
	"folio/internal/config"
	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TOTPSetup generates a fresh secret for the logged-in user and returns the
// otpauth URL plus a QR code data URI. The secret is stored unverified; it
// only counts once TOTPEnable confirms a valid code.
func TOTPSetup(db *sql.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)
		user, err := models.GetUserByID(db, userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
		}

		if user.TOTPEnabled {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "2FA is already enabled"})
		}

		enrollment, err := auth.GenerateTOTPSecret(user.Username, cfg.TOTPIssuer)
		if err != nil {
			log.Printf("failed to generate TOTP secret: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate TOTP secret"})
		}

		if err := models.SetUserTOTPSecret(db, userID, enrollment.Secret); err != nil {
			log.Printf("failed to save TOTP secret: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save TOTP secret"})
		}

		return c.JSON(enrollment)
	}
}

// TOTPEnable verifies a code against the stored secret and turns 2FA on.
func TOTPEnable(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		var req struct {
			Code string `json:"code" form:"code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		user, err := models.GetUserByID(db, userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
		}

		if user.TOTPSecret == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Run setup first"})
		}

		if !auth.ValidateTOTPCode(req.Code, user.TOTPSecret) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid code. Please try again."})
		}

		if err := models.EnableUserTOTP(db, userID); err != nil {
			log.Printf("failed to enable 2FA: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enable 2FA"})
		}

		return c.JSON(fiber.Map{"success": true})
	}
}

// TOTPDisable requires a valid code before turning 2FA off, so a stolen
// session alone cannot strip the second factor.
func TOTPDisable(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(int)

		var req struct {
			Code string `json:"code" form:"code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		user, err := models.GetUserByID(db, userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
		}

		if !user.TOTPEnabled {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "2FA is not enabled"})
		}

		if !auth.ValidateTOTPCode(req.Code, user.TOTPSecret) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid code. Cannot disable 2FA."})
		}

		if err := models.DisableUserTOTP(db, userID); err != nil {
			log.Printf("failed to disable 2FA: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to disable 2FA"})
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
