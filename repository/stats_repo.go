package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/prepforge/prepforge_backend/models"
)

// StatsRepository persists the derived per-user stats row and resolves exam
// answer keys for the projector.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetUserStats returns the user's derived stats row, or nil when the user has
// no completed attempts yet.
func (r *StatsRepository) GetUserStats(userID int) (*models.UserStats, error) {
	var s models.UserStats
	var achievements []byte
	var lastPractice sql.NullTime
	err := r.db.QueryRow(`
		SELECT user_id, current_streak, longest_streak, last_practice_date,
		       total_questions_answered, total_correct_answers, accuracy, achievements
		FROM user_stats WHERE user_id = $1
	`, userID).Scan(&s.UserID, &s.CurrentStreak, &s.LongestStreak, &lastPractice,
		&s.TotalQuestionsAnswered, &s.TotalCorrectAnswers, &s.Accuracy, &achievements)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastPractice.Valid {
		d := lastPractice.Time
		s.LastPracticeDate = &d
	}
	if err := json.Unmarshal(achievements, &s.Achievements); err != nil {
		return nil, fmt.Errorf("unmarshal achievements: %w", err)
	}
	return &s, nil
}

// SaveUserStats writes the full computed row. The write is an idempotent
// replace of final state, not an increment instruction; the gateway invokes
// the projector at most once per newly inserted attempt.
func (r *StatsRepository) SaveUserStats(s models.UserStats) error {
	achievements, err := json.Marshal(s.Achievements)
	if err != nil {
		return fmt.Errorf("marshal achievements: %w", err)
	}
	if s.Achievements == nil {
		achievements = []byte("[]")
	}
	_, err = r.db.Exec(`
		INSERT INTO user_stats (user_id, current_streak, longest_streak, last_practice_date,
		                        total_questions_answered, total_correct_answers, accuracy, achievements, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE
		SET current_streak = EXCLUDED.current_streak,
		    longest_streak = EXCLUDED.longest_streak,
		    last_practice_date = EXCLUDED.last_practice_date,
		    total_questions_answered = EXCLUDED.total_questions_answered,
		    total_correct_answers = EXCLUDED.total_correct_answers,
		    accuracy = EXCLUDED.accuracy,
		    achievements = EXCLUDED.achievements,
		    updated_at = CURRENT_TIMESTAMP
	`, s.UserID, s.CurrentStreak, s.LongestStreak, s.LastPracticeDate,
		s.TotalQuestionsAnswered, s.TotalCorrectAnswers, s.Accuracy, achievements)
	return err
}

// GetAnswerKey maps question id to correct option id for the exam. An unknown
// exam yields an empty map, which the projector treats as "skip".
func (r *StatsRepository) GetAnswerKey(examID string) (map[string]string, error) {
	rows, err := r.db.Query(`
		SELECT id, correct_option_id FROM questions WHERE exam_id::text = $1
	`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	key := map[string]string{}
	for rows.Next() {
		var qid, correct string
		if err := rows.Scan(&qid, &correct); err != nil {
			return nil, err
		}
		key[qid] = correct
	}
	return key, rows.Err()
}
