package controllers

import (
	"database/sql"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prepforge/prepforge_backend/middlewares"
)

func ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	users, err := userRepo.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch users"})
	}

	return c.JSON(fiber.Map{
		"page":    page,
		"limit":   limit,
		"users":   users,
		"count":   len(users),
		"hasMore": len(users) == limit,
	})
}

// UpdateUserTier sets a user's subscription tier, which drives every quota
// limit the ledger enforces.
func UpdateUserTier(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	type TierInput struct {
		Tier string `json:"tier" validate:"required,oneof=basic standard premium"`
	}
	var input TierInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tier must be basic, standard or premium"})
	}

	if err := userRepo.UpdateTier(userID, input.Tier); err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update tier"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "userId": userID, "tier": input.Tier})
}

// UpdateUserRole changes a user's role and drops the cached role so the new
// one takes effect on the next admin-gated request.
func UpdateUserRole(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	type RoleInput struct {
		Role string `json:"role" validate:"required,oneof=user admin owner"`
	}
	var input RoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "role must be user, admin or owner"})
	}

	if err := userRepo.UpdateRole(userID, input.Role); err != nil {
		if err == sql.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update role"})
	}

	middlewares.InvalidateRole(userID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "userId": userID, "role": input.Role})
}
