package middlewares

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prepforge/prepforge_backend/models"
	"github.com/prepforge/prepforge_backend/services"
	"github.com/prepforge/prepforge_backend/util"
)

var roleCache = services.NewRoleCache(5 * time.Minute)

// InvalidateRole drops a user's cached role after a role change.
func InvalidateRole(userID int) {
	roleCache.Invalidate(userID)
}

func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  "error",
		"message": "Not Found",
	})
}

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("token")
		if token == "" {
			token = c.Get("Authorization")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "No token provided",
			})
		}

		claims, err := util.VerifyJwtToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token " + err.Error()})
		}

		userID, err := strconv.Atoi(claims["id"].(string))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid token payload",
			})
		}

		var user models.User
		var lastReset sql.NullTime
		query := `SELECT id, name, email, password, role, subscription_tier, daily_quota_used,
		                 last_quota_reset, password_changed_at, created_at, updated_at
		          FROM users WHERE id = $1 AND deleted = false`

		row := util.DB.QueryRow(query, userID)
		err = row.Scan(
			&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
			&user.SubscriptionTier, &user.DailyQuotaUsed, &lastReset,
			&user.PasswordChangedAt, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"status":  "error",
					"message": "User not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Database error",
				"error":   err.Error(),
			})
		}
		if lastReset.Valid {
			t := lastReset.Time
			user.LastQuotaReset = &t
		}

		if err := util.IsTokenValid(claims, user); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
			})
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// AdminOnly gates admin routes on the user's role, consulting the TTL cache
// before the users table.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(models.User)

		role, ok := roleCache.Get(user.ID)
		if !ok {
			row := util.DB.QueryRow(`SELECT role FROM users WHERE id = $1 AND deleted = false`, user.ID)
			if err := row.Scan(&role); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"status":  "error",
					"message": "Database error",
				})
			}
			roleCache.Set(user.ID, role)
		}

		if role != "admin" && role != "owner" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"message": "Only admins can access this endpoint",
			})
		}
		return c.Next()
	}
}
