package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/prepforge/prepforge_backend/models"
)

// AttemptRepository persists exam attempts. The table is append-only; the
// client-generated id is the idempotency key.
type AttemptRepository struct {
	db *sql.DB
}

func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// InsertIfAbsent inserts the attempt and reports whether a new row was created.
// The conditional insert happens in a single statement so two concurrent syncs
// of the same id cannot both observe "absent".
func (r *AttemptRepository) InsertIfAbsent(a models.Attempt) (bool, error) {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return false, fmt.Errorf("marshal answers: %w", err)
	}
	if a.Answers == nil {
		answers = []byte("{}")
	}

	res, err := r.db.Exec(`
		INSERT INTO attempts (id, exam_id, user_id, answers, status, started_at, completed_at, duration_seconds, total_questions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.ExamID, nullableInt(a.UserID), answers, a.Status, a.StartedAt, a.CompletedAt, a.DurationSeconds, a.TotalQuestions)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// GetByID returns the attempt or sql.ErrNoRows.
func (r *AttemptRepository) GetByID(id string) (*models.Attempt, error) {
	var a models.Attempt
	var answers []byte
	var userID sql.NullInt64
	err := r.db.QueryRow(`
		SELECT id, exam_id, user_id, answers, status, started_at, completed_at, duration_seconds, total_questions, synced_at
		FROM attempts WHERE id = $1
	`, id).Scan(&a.ID, &a.ExamID, &userID, &answers, &a.Status, &a.StartedAt, &a.CompletedAt, &a.DurationSeconds, &a.TotalQuestions, &a.SyncedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := int(userID.Int64)
		a.UserID = &uid
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return &a, nil
}

// History returns the user's attempts newest-first, joined with exam metadata
// when the exam is known to the server.
func (r *AttemptRepository) History(userID int, examID string, limit, offset int) ([]map[string]interface{}, error) {
	query := `
		SELECT a.id, a.exam_id, a.status, a.started_at, a.completed_at, a.duration_seconds,
		       a.total_questions, a.synced_at, e.name, e.subject
		FROM attempts a
		LEFT JOIN exams e ON a.exam_id = e.id::text
		WHERE a.user_id = $1
	`
	args := []interface{}{userID}
	argIdx := 2

	if examID != "" {
		query += fmt.Sprintf(" AND a.exam_id = $%d", argIdx)
		args = append(args, examID)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY a.synced_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []map[string]interface{}{}
	for rows.Next() {
		var (
			id, examRef, status      string
			startedAt, completedAt   sql.NullInt64
			durationSeconds, totalQs int
			syncedAt                 sql.NullTime
			examName, examSubject    sql.NullString
		)
		if err := rows.Scan(&id, &examRef, &status, &startedAt, &completedAt, &durationSeconds,
			&totalQs, &syncedAt, &examName, &examSubject); err != nil {
			return nil, err
		}
		entry := map[string]interface{}{
			"id":              id,
			"examId":          examRef,
			"status":          status,
			"durationSeconds": durationSeconds,
			"totalQuestions":  totalQs,
		}
		if startedAt.Valid {
			entry["startedAt"] = startedAt.Int64
		}
		if completedAt.Valid {
			entry["completedAt"] = completedAt.Int64
		}
		if syncedAt.Valid {
			entry["syncedAt"] = syncedAt.Time
		}
		if examName.Valid {
			entry["examName"] = examName.String
		}
		if examSubject.Valid {
			entry["subject"] = examSubject.String
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func nullableInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
