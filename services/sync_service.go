package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/prepforge/prepforge_backend/models"
)

// Sync payload types accepted by the gateway.
const (
	SyncTypeAttempt      = "attempt"
	SyncTypeQuestionData = "questionData"
)

// SyncRequest is the tagged union a client posts after coming back online.
type SyncRequest struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// AttemptPayload is the attempt variant. The client-generated id is the
// idempotency key; syncing the same id twice is a no-op, never an error.
type AttemptPayload struct {
	ID              string            `json:"id" validate:"required"`
	ExamID          string            `json:"examId" validate:"required"`
	UserID          *int              `json:"userId"`
	Answers         map[string]string `json:"answers"`
	StartedAt       *int64            `json:"startedAt"`
	CompletedAt     *int64            `json:"completedAt"`
	DurationSeconds int               `json:"durationSeconds"`
	TotalQuestions  int               `json:"totalQuestions"`
	Status          string            `json:"status"`
}

// QuestionDataPayload is the bulk reference-catalogue variant. UpdatedAt is the
// client-supplied version; missing means "now".
type QuestionDataPayload struct {
	ExamBodies []json.RawMessage `json:"examBodies"`
	Categories []json.RawMessage `json:"categories"`
	Subjects   []json.RawMessage `json:"subjects"`
	Questions  []json.RawMessage `json:"questions"`
	UpdatedAt  int64             `json:"updatedAt"`
}

// AttemptStore is the idempotent-insert surface of the attempt table.
type AttemptStore interface {
	InsertIfAbsent(a models.Attempt) (bool, error)
}

// VersionStore is the monotonic-version snapshot surface.
type VersionStore interface {
	ApplyIfNewer(version int64, payload []byte) (applied bool, currentVersion int64, err error)
}

// SyncService is the gateway behind POST /sync: it routes payloads to the
// attempt or version store and triggers stats projection as a best-effort side
// effect of fresh attempt inserts.
type SyncService struct {
	attempts AttemptStore
	versions VersionStore
	stats    *StatsService
	now      func() time.Time
}

func NewSyncService(attempts AttemptStore, versions VersionStore, stats *StatsService) *SyncService {
	return &SyncService{attempts: attempts, versions: versions, stats: stats, now: time.Now}
}

// SyncAttempt inserts the attempt if its id was never seen and reports whether
// a row was created. Stats projection runs only on a fresh insert of a
// completed, owned attempt with a declared question count; a projection
// failure is logged and never fails the sync, because the attempt record is
// the durable fact, not the derived stats.
func (s *SyncService) SyncAttempt(p AttemptPayload) (bool, error) {
	status := p.Status
	if status == "" {
		status = models.AttemptStatusCompleted
	}

	attempt := models.Attempt{
		ID:              p.ID,
		ExamID:          p.ExamID,
		UserID:          p.UserID,
		Answers:         p.Answers,
		Status:          status,
		StartedAt:       p.StartedAt,
		CompletedAt:     p.CompletedAt,
		DurationSeconds: p.DurationSeconds,
		TotalQuestions:  p.TotalQuestions,
	}

	stored, err := s.attempts.InsertIfAbsent(attempt)
	if err != nil {
		return false, err
	}

	if stored {
		if err := s.stats.ProjectAttempt(attempt); err != nil {
			log.Printf("sync: stats projection failed for attempt %s: %v", attempt.ID, err)
		}
	}
	return stored, nil
}

// SyncQuestionData applies the snapshot iff its version is strictly newer than
// the stored one and reports the resulting current version, so clients can
// detect divergence. Stale or duplicate versions are discarded without error;
// sync must always be safe to retry blindly.
func (s *SyncService) SyncQuestionData(p QuestionDataPayload, raw []byte) (bool, int64, error) {
	version := p.UpdatedAt
	if version == 0 {
		version = s.now().UnixMilli()
	}
	return s.versions.ApplyIfNewer(version, raw)
}
