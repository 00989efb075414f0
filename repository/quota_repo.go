package repository

import (
	"database/sql"
	"time"
)

// QuotaRepository reads and commits per-user usage accounting state. Checks are
// read-then-decide in the service; every commit here increments from the latest
// persisted value so concurrent committers can overshoot slightly but never
// under-count.
type QuotaRepository struct {
	db *sql.DB
}

func NewQuotaRepository(db *sql.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// GetQuotaState returns the user's tier plus the daily generation counter and
// its last reset time.
func (r *QuotaRepository) GetQuotaState(userID int) (string, int, *time.Time, error) {
	var tier string
	var used int
	var lastReset sql.NullTime
	err := r.db.QueryRow(`
		SELECT subscription_tier, daily_quota_used, last_quota_reset
		FROM users WHERE id = $1 AND deleted = false
	`, userID).Scan(&tier, &used, &lastReset)
	if err != nil {
		return "", 0, nil, err
	}
	if lastReset.Valid {
		t := lastReset.Time
		return tier, used, &t, nil
	}
	return tier, used, nil, nil
}

// IncrementDailyQuota commits one unit of daily generation usage. When the
// window has expired the counter restarts at 1 with a fresh reset stamp;
// otherwise the increment is done in SQL against the persisted value.
func (r *QuotaRepository) IncrementDailyQuota(userID int, windowExpired bool, now time.Time) error {
	if windowExpired {
		_, err := r.db.Exec(`
			UPDATE users SET daily_quota_used = 1, last_quota_reset = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1
		`, userID, now)
		return err
	}
	_, err := r.db.Exec(`
		UPDATE users SET daily_quota_used = daily_quota_used + 1,
		                 last_quota_reset = COALESCE(last_quota_reset, $2),
		                 updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`, userID, now)
	return err
}

// CountActiveExams counts the user's exams that still occupy an active slot.
func (r *QuotaRepository) CountActiveExams(userID int) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM exams WHERE created_by_id = $1 AND status != 'archived'
	`, userID).Scan(&count)
	return count, err
}

// CountCompletedAttemptsSince counts the user's completed attempts whose
// completion time falls at or after the given instant. Attempts synced without
// a completion timestamp fall back to the server-side sync time.
func (r *QuotaRepository) CountCompletedAttemptsSince(userID int, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM attempts
		WHERE user_id = $1 AND status = 'completed'
		  AND COALESCE(completed_at, (EXTRACT(EPOCH FROM synced_at) * 1000)::BIGINT) >= $2
	`, userID, since.UnixMilli()).Scan(&count)
	return count, err
}

// CountDownloads counts distinct consumed download slots.
func (r *QuotaRepository) CountDownloads(userID int) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM downloads WHERE user_id = $1
	`, userID).Scan(&count)
	return count, err
}

// InsertDownload records a download slot. Keyed by (user, exam), so repeat
// downloads of the same exam never consume a second slot.
func (r *QuotaRepository) InsertDownload(userID int, examID string) error {
	_, err := r.db.Exec(`
		INSERT INTO downloads (user_id, exam_id) VALUES ($1, $2)
		ON CONFLICT (user_id, exam_id) DO NOTHING
	`, userID, examID)
	return err
}

// DeleteDownload frees the slot for the (user, exam) pair.
func (r *QuotaRepository) DeleteDownload(userID int, examID string) error {
	_, err := r.db.Exec(`
		DELETE FROM downloads WHERE user_id = $1 AND exam_id = $2
	`, userID, examID)
	return err
}
