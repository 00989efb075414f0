package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prepforge/prepforge_backend/models"
)

// GetUsage reports the caller's quota consumption across every dimension.
func GetUsage(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	usage, err := quotaService.GetUsage(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch usage"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "usage": usage})
}

// GetUserStats returns the caller's derived stats row. A user with no
// completed attempts gets a zeroed row rather than a 404.
func GetUserStats(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	stats, err := statsStore.GetUserStats(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch stats"})
	}
	if stats == nil {
		stats = &models.UserStats{UserID: user.ID, Achievements: []string{}}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "stats": stats})
}
