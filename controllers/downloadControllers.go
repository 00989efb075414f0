package controllers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/prepforge/prepforge_backend/models"
)

// DownloadExam returns the exam bundle for offline use and consumes a download
// slot. The record is keyed by (user, exam), so downloading the same exam
// again reuses the slot instead of consuming a new one.
func DownloadExam(c *fiber.Ctx) error {
	examID := c.Params("id")
	user := c.Locals("user").(models.User)

	exam, err := examRepo.GetExam(examID)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "exam not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch exam"})
	}

	decision, err := quotaService.CheckDownloadLimit(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check download limit"})
	}
	if !decision.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message":      decision.Reason,
			"currentUsage": decision.CurrentUsage,
			"limit":        decision.Limit,
		})
	}

	questions, err := examRepo.GetExamQuestions(examID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch questions"})
	}

	if err := quotaService.RecordDownload(user.ID, examID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record download"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "success",
		"exam":      exam,
		"questions": questions,
	})
}

// RemoveDownload frees the caller's download slot for the exam.
func RemoveDownload(c *fiber.Ctx) error {
	examID := c.Params("id")
	user := c.Locals("user").(models.User)

	if err := quotaService.RemoveDownload(user.ID, examID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to remove download"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "examId": examID})
}
