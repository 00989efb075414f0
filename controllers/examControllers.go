package controllers

import (
	"database/sql"
	"encoding/json"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prepforge/prepforge_backend/models"
	"github.com/prepforge/prepforge_backend/services"
)

// GenerateExam creates a new practice exam from the supplied questions. The
// quota gates run first; the daily counter is committed only after the exam
// actually exists, so a failed creation never consumes quota.
func GenerateExam(c *fiber.Ctx) error {
	type IncomingQuestion struct {
		ID              string            `json:"id"`
		Question        string            `json:"question"`
		Options         []json.RawMessage `json:"options"`
		CorrectOptionID string            `json:"correctOptionId"`
		Explanation     *string           `json:"explanation"`
	}
	type GenerateExamInput struct {
		Name      string             `json:"name"`
		Subject   *string            `json:"subject"`
		Questions []IncomingQuestion `json:"questions"`
	}

	var input GenerateExamInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if input.Name == "" || len(input.Questions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and questions are required"})
	}

	user := c.Locals("user").(models.User)

	decision, err := quotaService.CheckGenerationLimit(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to check generation limit"})
	}
	if !decision.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message":      decision.Reason,
			"currentUsage": decision.CurrentUsage,
			"limit":        decision.Limit,
			"resetIn":      decision.ResetIn.Seconds(),
		})
	}

	questions := make([]models.Question, 0, len(input.Questions))
	for i, q := range input.Questions {
		if q.Question == "" || q.CorrectOptionID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "question " + strconv.Itoa(i) + " is missing text or correct option",
			})
		}
		options, err := services.NormalizeOptions(q.Options)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		questions = append(questions, models.Question{
			ID:              q.ID,
			Question:        q.Question,
			Options:         options,
			CorrectOptionID: q.CorrectOptionID,
			Explanation:     q.Explanation,
		})
	}

	examID, err := examRepo.CreateExam(models.Exam{
		Name:        input.Name,
		Subject:     input.Subject,
		CreatedByID: user.ID,
	}, questions)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create exam " + err.Error()})
	}

	// The exam exists; a failed quota commit must not fail the response,
	// otherwise a blind retry would create a second exam.
	if err := quotaService.IncrementDailyQuota(user.ID); err != nil {
		log.Printf("exam: failed to commit daily quota for user %d: %v", user.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":         "success",
		"examId":         examID,
		"totalQuestions": len(questions),
	})
}

func GetExam(c *fiber.Ctx) error {
	examID := c.Params("id")
	user := c.Locals("user").(models.User)

	exam, err := examRepo.GetExam(examID)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "exam not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch exam"})
	}
	if exam.CreatedByID != user.ID {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	questions, err := examRepo.GetExamQuestions(examID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch questions"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "success",
		"exam":      exam,
		"questions": questions,
	})
}

// ArchiveExam frees the exam's active slot.
func ArchiveExam(c *fiber.Ctx) error {
	examID := c.Params("id")
	user := c.Locals("user").(models.User)

	err := examRepo.ArchiveExam(examID, user.ID)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "exam not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to archive exam"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success", "examId": examID})
}

// GetAttemptHistory lists the caller's synced attempts, newest first.
func GetAttemptHistory(c *fiber.Ctx) error {
	user := c.Locals("user").(models.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	history, err := attemptRepo.History(user.ID, c.Query("examId", ""), limit, offset)
	if err != nil {
		log.Println("history query error:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch attempt history"})
	}

	return c.JSON(fiber.Map{
		"page":    page,
		"limit":   limit,
		"history": history,
		"count":   len(history),
		"hasMore": len(history) == limit,
	})
}
