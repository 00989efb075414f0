package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/prepforge/prepforge_backend/models"
)

// ExamRepository persists generated exams and their questions.
type ExamRepository struct {
	db *sql.DB
}

func NewExamRepository(db *sql.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// CreateExam inserts the exam and all its questions in one transaction.
// Question ids missing from the input get server-generated ones.
func (r *ExamRepository) CreateExam(exam models.Exam, questions []models.Question) (string, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var examID string
	err = tx.QueryRow(`
		INSERT INTO exams (name, subject, created_by_id, status, total_questions)
		VALUES ($1, $2, $3, 'active', $4)
		RETURNING id
	`, exam.Name, exam.Subject, exam.CreatedByID, len(questions)).Scan(&examID)
	if err != nil {
		return "", err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO questions (id, exam_id, question, options, correct_option_id, explanation)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, q := range questions {
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		options, err := json.Marshal(q.Options)
		if err != nil {
			return "", fmt.Errorf("marshal options: %w", err)
		}
		if _, err := stmt.Exec(q.ID, examID, q.Question, options, q.CorrectOptionID, q.Explanation); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return examID, nil
}

// GetExam returns the exam row, or sql.ErrNoRows.
func (r *ExamRepository) GetExam(examID string) (*models.Exam, error) {
	var e models.Exam
	err := r.db.QueryRow(`
		SELECT id, name, subject, created_by_id, status, total_questions, created_at, updated_at
		FROM exams WHERE id::text = $1
	`, examID).Scan(&e.ID, &e.Name, &e.Subject, &e.CreatedByID, &e.Status, &e.TotalQuestions, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetExamQuestions returns the exam's questions in insertion order.
func (r *ExamRepository) GetExamQuestions(examID string) ([]models.Question, error) {
	rows, err := r.db.Query(`
		SELECT id, exam_id, question, options, correct_option_id, explanation
		FROM questions WHERE exam_id::text = $1
		ORDER BY id
	`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		var options []byte
		if err := rows.Scan(&q.ID, &q.ExamID, &q.Question, &options, &q.CorrectOptionID, &q.Explanation); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ArchiveExam marks the exam archived, freeing its active slot. Returns
// sql.ErrNoRows when the exam doesn't exist or isn't owned by the user.
func (r *ExamRepository) ArchiveExam(examID string, userID int) error {
	res, err := r.db.Exec(`
		UPDATE exams SET status = 'archived', updated_at = CURRENT_TIMESTAMP
		WHERE id::text = $1 AND created_by_id = $2
	`, examID, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
