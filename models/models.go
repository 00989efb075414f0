package models

import (
	"encoding/json"
	"time"
)

// User model
type User struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Password          string     `json:"-"`
	Role              string     `json:"role"`
	SubscriptionTier  string     `json:"subscriptionTier"`
	DailyQuotaUsed    int        `json:"dailyQuotaUsed"`
	LastQuotaReset    *time.Time `json:"lastQuotaReset"`
	PasswordChangedAt time.Time  `json:"passwordChangedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Exam model
type Exam struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Subject        *string   `json:"subject"`
	CreatedByID    int       `json:"createdById"`
	Status         string    `json:"status"`
	TotalQuestions int       `json:"totalQuestions"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Option is the canonical form of an answer option. Incoming payloads may carry
// options as plain strings or as {id, text} objects; everything downstream of the
// boundary sees this shape only.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question model
type Question struct {
	ID              string   `json:"id"`
	ExamID          string   `json:"examId"`
	Question        string   `json:"question"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctOptionId"`
	Explanation     *string  `json:"explanation"`
}

// Attempt is one exam-taking session recorded by a client, possibly offline.
// The id is client-generated and doubles as the idempotency key; a row is
// inserted at most once and never updated.
type Attempt struct {
	ID              string            `json:"id"`
	ExamID          string            `json:"examId"`
	UserID          *int              `json:"userId"`
	Answers         map[string]string `json:"answers"`
	Status          string            `json:"status"`
	StartedAt       *int64            `json:"startedAt"`
	CompletedAt     *int64            `json:"completedAt"`
	DurationSeconds int               `json:"durationSeconds"`
	TotalQuestions  int               `json:"totalQuestions"`
	SyncedAt        time.Time         `json:"syncedAt"`
}

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
)

// QuestionDataSnapshot holds the full reference catalogue as one opaque payload
// tagged with a monotonically non-decreasing version.
type QuestionDataSnapshot struct {
	ID        string          `json:"id"`
	Version   int64           `json:"version"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// UserStats is the derived gamification row, one per user. It is computed from
// attempt history, never client-supplied, and its counters never go down.
type UserStats struct {
	UserID                 int        `json:"userId"`
	CurrentStreak          int        `json:"currentStreak"`
	LongestStreak          int        `json:"longestStreak"`
	LastPracticeDate       *time.Time `json:"lastPracticeDate"`
	TotalQuestionsAnswered int        `json:"totalQuestionsAnswered"`
	TotalCorrectAnswers    int        `json:"totalCorrectAnswers"`
	Accuracy               int        `json:"accuracy"`
	Achievements           []string   `json:"achievements"`
}

// Download records one consumed download slot, keyed by (user, exam).
type Download struct {
	UserID       int       `json:"userId"`
	ExamID       string    `json:"examId"`
	DownloadedAt time.Time `json:"downloadedAt"`
}
