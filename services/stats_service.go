package services

import (
	"log"
	"math"
	"time"

	"github.com/prepforge/prepforge_backend/models"
	"github.com/prepforge/prepforge_backend/util"
)

// Achievement codes. The set on a stats row only ever grows.
const (
	AchievementFirstQuestion = "first_question"
	AchievementPerfectScore  = "perfect_score"
	AchievementWeekWarrior   = "week_warrior"
	AchievementMonthMaster   = "month_master"
	AchievementCenturyClub   = "century_club"
	AchievementAccuracyAce   = "accuracy_ace"
)

// StatsStore is what the projector needs from persistence.
type StatsStore interface {
	GetUserStats(userID int) (*models.UserStats, error)
	SaveUserStats(s models.UserStats) error
}

// AnswerKeyStore resolves an exam's canonical question-id -> correct-option-id
// map. An unknown exam yields an empty map.
type AnswerKeyStore interface {
	GetAnswerKey(examID string) (map[string]string, error)
}

// StatsService folds newly durable completed attempts into the per-user
// derived stats row: streaks, lifetime accuracy and achievements.
//
// The write is a full-row replace computed from whichever prior row this
// request read. Two completions for the same user landing in the same instant
// therefore race last-write-wins, and one attempt's counts can be lost. That
// looseness is accepted: the attempt rows stay the source of truth and the row
// can be rebuilt from them.
type StatsService struct {
	stats StatsStore
	keys  AnswerKeyStore
	now   func() time.Time
}

func NewStatsService(stats StatsStore, keys AnswerKeyStore) *StatsService {
	return &StatsService{stats: stats, keys: keys, now: time.Now}
}

// ProjectAttempt advances the owner's stats for one freshly inserted attempt.
// The caller guarantees at-most-once invocation per attempt id; this keeps the
// persisted write idempotent-by-construction rather than an increment.
//
// Attempts without an owner, not completed, or without a declared question
// count are ignored. A missing exam or answer key skips the projection, the
// attempt itself stays durable.
func (s *StatsService) ProjectAttempt(a models.Attempt) error {
	if a.UserID == nil || a.Status != models.AttemptStatusCompleted || a.TotalQuestions <= 0 {
		return nil
	}

	key, err := s.keys.GetAnswerKey(a.ExamID)
	if err != nil {
		return err
	}
	if len(key) == 0 {
		log.Printf("stats: no answer key for exam %s, skipping projection of attempt %s", a.ExamID, a.ID)
		return nil
	}

	correct := 0
	for qid, correctOption := range key {
		if selected, ok := a.Answers[qid]; ok && selected == correctOption {
			correct++
		}
	}

	prior, err := s.stats.GetUserStats(*a.UserID)
	if err != nil {
		return err
	}
	if prior == nil {
		prior = &models.UserStats{UserID: *a.UserID}
	}

	next := FoldAttempt(*prior, correct, a.TotalQuestions, s.now())
	return s.stats.SaveUserStats(next)
}

// FoldAttempt computes the updated stats row from the prior row plus one
// completed attempt's marginal numbers. Pure; now supplies "today" for the
// streak comparison.
func FoldAttempt(prior models.UserStats, correctCount, totalQuestions int, now time.Time) models.UserStats {
	next := prior

	// Denominator uses the declared total, so skipped questions still count.
	next.TotalQuestionsAnswered = prior.TotalQuestionsAnswered + totalQuestions
	next.TotalCorrectAnswers = prior.TotalCorrectAnswers + correctCount
	if next.TotalQuestionsAnswered > 0 {
		next.Accuracy = int(math.Round(100 * float64(next.TotalCorrectAnswers) / float64(next.TotalQuestionsAnswered)))
	} else {
		next.Accuracy = 0
	}

	switch {
	case prior.LastPracticeDate != nil && util.IsSameDay(*prior.LastPracticeDate, now):
		// streak unchanged
	case prior.LastPracticeDate != nil && util.IsYesterday(*prior.LastPracticeDate, now):
		next.CurrentStreak = prior.CurrentStreak + 1
		if next.CurrentStreak > next.LongestStreak {
			next.LongestStreak = next.CurrentStreak
		}
	default:
		next.CurrentStreak = 1
		if next.LongestStreak < 1 {
			next.LongestStreak = 1
		}
	}
	today := util.StartOfDay(now)
	next.LastPracticeDate = &today

	next.Achievements = append([]string{}, prior.Achievements...)
	if next.TotalQuestionsAnswered >= 1 {
		next.Achievements = addAchievement(next.Achievements, AchievementFirstQuestion)
	}
	if correctCount == totalQuestions {
		next.Achievements = addAchievement(next.Achievements, AchievementPerfectScore)
	}
	if next.CurrentStreak >= 7 {
		next.Achievements = addAchievement(next.Achievements, AchievementWeekWarrior)
	}
	if next.CurrentStreak >= 30 {
		next.Achievements = addAchievement(next.Achievements, AchievementMonthMaster)
	}
	if next.TotalQuestionsAnswered >= 100 {
		next.Achievements = addAchievement(next.Achievements, AchievementCenturyClub)
	}
	if next.Accuracy >= 90 {
		next.Achievements = addAchievement(next.Achievements, AchievementAccuracyAce)
	}

	return next
}

func addAchievement(set []string, code string) []string {
	for _, a := range set {
		if a == code {
			return set
		}
	}
	return append(set, code)
}
