package auth

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware guards the admin API with the session cookie. Pass a
// database to also reject tokens whose JTI was revoked by logout.
func AuthMiddleware(secret string, db ...*sql.DB) fiber.Handler {
	var revocationDB *sql.DB
	if len(db) > 0 {
		revocationDB = db[0]
	}

	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies("token")
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}

		claims, err := ValidateToken(tokenStr, secret)
		if err != nil {
			c.ClearCookie("token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid session"})
		}

		if revocationDB != nil && IsRevoked(revocationDB, claims.ID) {
			c.ClearCookie("token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session revoked"})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("token_claims", claims)
		return c.Next()
	}
}
