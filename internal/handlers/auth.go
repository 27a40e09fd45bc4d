package handlers

import (
	"database/sql"
	"log"
	"time"

	"folio/internal/auth"
	"folio/internal/config"
	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginPost checks credentials and either issues a session cookie or, when
// 2FA is enabled, a short-lived pending cookie that must be completed with
// a TOTP code. Failed attempts count toward the lockout tracker keyed by
// client IP and username.
func LoginPost(db *sql.DB, cfg *config.Config, lockout *auth.LockoutTracker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		key := c.IP() + "|" + req.Username
		if lockout.IsLocked(key) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many failed attempts. Try again later.",
			})
		}

		user, err := models.GetUserByUsername(db, req.Username)
		if err != nil || !auth.CheckPassword(user.Password, req.Password) {
			lockout.RecordFailure(key)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid username or password",
			})
		}

		lockout.Reset(key)

		if user.TOTPEnabled {
			pending, err := auth.GeneratePendingToken(user.ID, cfg.JWTSecret)
			if err != nil {
				log.Printf("failed to generate pending token: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
			}
			c.Cookie(&fiber.Cookie{
				Name:     "totp_pending",
				Value:    pending,
				HTTPOnly: true,
				Secure:   cfg.SecureCookies,
				SameSite: "Lax",
				Expires:  time.Now().Add(5 * time.Minute),
				Path:     "/",
			})
			return c.JSON(fiber.Map{"totp_required": true})
		}

		return issueSession(c, cfg, user)
	}
}

// LoginTOTP completes a pending two-factor login.
func LoginTOTP(db *sql.DB, cfg *config.Config, lockout *auth.LockoutTracker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Code string `json:"code" form:"code"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		pending := c.Cookies("totp_pending")
		if pending == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No pending login"})
		}

		userID, err := auth.ValidatePendingToken(pending, cfg.JWTSecret)
		if err != nil {
			c.ClearCookie("totp_pending")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Login expired, please start over"})
		}

		key := c.IP() + "|totp"
		if lockout.IsLocked(key) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many failed attempts. Try again later.",
			})
		}

		user, err := models.GetUserByID(db, userID)
		if err != nil || user.TOTPSecret == "" {
			c.ClearCookie("totp_pending")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Login expired, please start over"})
		}

		if !auth.ValidateTOTPCode(req.Code, user.TOTPSecret) {
			lockout.RecordFailure(key)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid code"})
		}

		lockout.Reset(key)
		c.ClearCookie("totp_pending")
		return issueSession(c, cfg, user)
	}
}

func issueSession(c *fiber.Ctx, cfg *config.Config, user *models.User) error {
	token, err := auth.GenerateToken(user.ID, user.Username, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		log.Printf("failed to generate token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		HTTPOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: "Lax",
		Expires:  time.Now().Add(time.Duration(cfg.JWTExpiryHours) * time.Hour),
		Path:     "/",
	})

	return c.JSON(fiber.Map{"success": true})
}

// Logout revokes the current token's JTI and expires the session cookie.
func Logout(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, ok := c.Locals("token_claims").(*auth.Claims); ok && claims != nil {
			exp := time.Now().Add(24 * time.Hour)
			if claims.ExpiresAt != nil {
				exp = claims.ExpiresAt.Time
			}
			if err := auth.RevokeToken(db, claims.ID, exp); err != nil {
				log.Printf("failed to revoke token: %v", err)
			}
		}

		c.Cookie(&fiber.Cookie{
			Name:     "token",
			Value:    "",
			HTTPOnly: true,
			Expires:  time.Now().Add(-1 * time.Hour),
			Path:     "/",
		})
		return c.JSON(fiber.Map{"success": true})
	}
}

// ChangePassword verifies the current password before accepting a new one.
func ChangePassword(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Current string `json:"current_password" form:"current_password"`
			New     string `json:"new_password" form:"new_password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		userID := c.Locals("user_id").(int)
		user, err := models.GetUserByID(db, userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
		}

		if !auth.CheckPassword(user.Password, req.Current) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Current password is incorrect"})
		}

		if err := auth.ValidatePasswordStrength(req.New); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		hashed, err := auth.HashPassword(req.New)
		if err != nil {
			log.Printf("failed to hash password: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
		if err := models.UpdateUserPassword(db, userID, hashed); err != nil {
			log.Printf("failed to update password: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
