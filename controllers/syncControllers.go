package controllers

import (
	"database/sql"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/prepforge/prepforge_backend/services"
)

// HandleSync is the entry point for offline clients flushing their queue.
// Every structurally valid, recognized payload gets a 2xx even when the
// operation was a no-op (duplicate attempt, stale snapshot version), so
// clients can retry blindly without producing errors or duplicate effects.
func HandleSync(c *fiber.Ctx) error {
	var req services.SyncRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid sync payload"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "type and payload are required"})
	}

	switch req.Type {
	case services.SyncTypeAttempt:
		var payload services.AttemptPayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid attempt payload"})
		}
		if err := validate.Struct(payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "attempt payload requires id and examId"})
		}

		stored, err := syncService.SyncAttempt(payload)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "failed to store attempt",
				"error":   err.Error(),
			})
		}
		message := "attempt stored"
		if !stored {
			message = "attempt already synced"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": message, "stored": stored})

	case services.SyncTypeQuestionData:
		var payload services.QuestionDataPayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid question data payload"})
		}

		applied, version, err := syncService.SyncQuestionData(payload, req.Payload)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "failed to store question data",
				"error":   err.Error(),
			})
		}
		message := "question data updated"
		if !applied {
			message = "question data ignored: stale version"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": message,
			"applied": applied,
			"version": version,
		})

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown sync type"})
	}
}

// GetQuestionData serves the stored reference catalogue so a client that lost
// its local copy can re-seed before going offline again.
func GetQuestionData(c *fiber.Ctx) error {
	version, payload, err := versionRepo.GetSnapshot()
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no question data synced yet"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "failed to fetch question data",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"version": version,
		"payload": json.RawMessage(payload),
	})
}
