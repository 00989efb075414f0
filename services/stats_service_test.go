package services

import (
	"testing"
	"time"

	"github.com/prepforge/prepforge_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStatsStore struct {
	rows  map[int]models.UserStats
	saves int
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{rows: map[int]models.UserStats{}}
}

func (f *fakeStatsStore) GetUserStats(userID int) (*models.UserStats, error) {
	if s, ok := f.rows[userID]; ok {
		copied := s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStatsStore) SaveUserStats(s models.UserStats) error {
	f.rows[s.UserID] = s
	f.saves++
	return nil
}

type fakeAnswerKeyStore struct {
	keys map[string]map[string]string
}

func (f *fakeAnswerKeyStore) GetAnswerKey(examID string) (map[string]string, error) {
	return f.keys[examID], nil
}

func intPtr(v int) *int { return &v }

func TestFoldAttemptAccuracy(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	prior := models.UserStats{UserID: 1}

	next := FoldAttempt(prior, 15, 20, now)

	assert.Equal(t, 20, next.TotalQuestionsAnswered)
	assert.Equal(t, 15, next.TotalCorrectAnswers)
	assert.Equal(t, 75, next.Accuracy)
	assert.Equal(t, 1, next.CurrentStreak)
	require.NotNil(t, next.LastPracticeDate)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), *next.LastPracticeDate)
}

func TestFoldAttemptStreakContinuity(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	prior := models.UserStats{
		UserID:           1,
		CurrentStreak:    4,
		LongestStreak:    4,
		LastPracticeDate: &yesterday,
	}

	next := FoldAttempt(prior, 3, 10, now)
	assert.Equal(t, 5, next.CurrentStreak)
	assert.Equal(t, 5, next.LongestStreak)

	// A second attempt later the same day leaves the streak alone.
	later := FoldAttempt(next, 8, 10, now.Add(6*time.Hour))
	assert.Equal(t, 5, later.CurrentStreak)
}

func TestFoldAttemptStreakReset(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	threeDaysAgo := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	prior := models.UserStats{
		UserID:           1,
		CurrentStreak:    10,
		LongestStreak:    10,
		LastPracticeDate: &threeDaysAgo,
	}

	next := FoldAttempt(prior, 5, 10, now)
	assert.Equal(t, 1, next.CurrentStreak)
	assert.Equal(t, 10, next.LongestStreak, "longest streak survives a reset")
}

func TestFoldAttemptAchievements(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	next := FoldAttempt(models.UserStats{UserID: 1}, 10, 10, now)
	assert.Contains(t, next.Achievements, AchievementFirstQuestion)
	assert.Contains(t, next.Achievements, AchievementPerfectScore)
	assert.Contains(t, next.Achievements, AchievementAccuracyAce)
	assert.NotContains(t, next.Achievements, AchievementCenturyClub)

	// A bad follow-up attempt drags accuracy below 90 but removes nothing.
	worse := FoldAttempt(next, 0, 10, now)
	assert.Contains(t, worse.Achievements, AchievementAccuracyAce)
	assert.Equal(t, 50, worse.Accuracy)

	// Century club unlocks on lifetime questions.
	bulk := worse
	for i := 0; i < 8; i++ {
		bulk = FoldAttempt(bulk, 10, 10, now)
	}
	assert.GreaterOrEqual(t, bulk.TotalQuestionsAnswered, 100)
	assert.Contains(t, bulk.Achievements, AchievementCenturyClub)
}

func TestFoldAttemptStreakAchievements(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	stats := models.UserStats{UserID: 1}

	for day := 0; day < 30; day++ {
		stats = FoldAttempt(stats, 5, 10, now.AddDate(0, 0, day))
	}
	assert.Equal(t, 30, stats.CurrentStreak)
	assert.Contains(t, stats.Achievements, AchievementWeekWarrior)
	assert.Contains(t, stats.Achievements, AchievementMonthMaster)
}

func TestProjectAttemptCountsCorrectAnswers(t *testing.T) {
	store := newFakeStatsStore()
	keys := &fakeAnswerKeyStore{keys: map[string]map[string]string{
		"exam-1": {"q1": "a", "q2": "b", "q3": "c"},
	}}
	svc := NewStatsService(store, keys)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }

	err := svc.ProjectAttempt(models.Attempt{
		ID:             "att-1",
		ExamID:         "exam-1",
		UserID:         intPtr(7),
		Status:         models.AttemptStatusCompleted,
		TotalQuestions: 3,
		Answers:        map[string]string{"q1": "a", "q2": "x", "q3": "c"},
	})
	require.NoError(t, err)

	row := store.rows[7]
	assert.Equal(t, 2, row.TotalCorrectAnswers)
	assert.Equal(t, 3, row.TotalQuestionsAnswered)
	assert.Equal(t, 67, row.Accuracy)
}

func TestProjectAttemptSkipsWhenNotEligible(t *testing.T) {
	store := newFakeStatsStore()
	keys := &fakeAnswerKeyStore{keys: map[string]map[string]string{
		"exam-1": {"q1": "a"},
	}}
	svc := NewStatsService(store, keys)

	// Guest attempt: no owner.
	require.NoError(t, svc.ProjectAttempt(models.Attempt{
		ID: "a1", ExamID: "exam-1", Status: models.AttemptStatusCompleted, TotalQuestions: 1,
	}))
	// Still in progress.
	require.NoError(t, svc.ProjectAttempt(models.Attempt{
		ID: "a2", ExamID: "exam-1", UserID: intPtr(7), Status: models.AttemptStatusInProgress, TotalQuestions: 1,
	}))
	// No declared question count.
	require.NoError(t, svc.ProjectAttempt(models.Attempt{
		ID: "a3", ExamID: "exam-1", UserID: intPtr(7), Status: models.AttemptStatusCompleted,
	}))
	// Unknown exam: answer key lookup comes back empty.
	require.NoError(t, svc.ProjectAttempt(models.Attempt{
		ID: "a4", ExamID: "nope", UserID: intPtr(7), Status: models.AttemptStatusCompleted, TotalQuestions: 1,
	}))

	assert.Equal(t, 0, store.saves)
}
