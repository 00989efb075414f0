package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prepforge/prepforge_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memAttemptStore mirrors the insert-if-absent contract of the SQL store.
type memAttemptStore struct {
	mu   sync.Mutex
	rows map[string]models.Attempt
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{rows: map[string]models.Attempt{}}
}

func (m *memAttemptStore) InsertIfAbsent(a models.Attempt) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[a.ID]; ok {
		return false, nil
	}
	m.rows[a.ID] = a
	return true, nil
}

// memVersionStore mirrors the guarded-upsert contract: apply iff strictly
// newer, otherwise report the surviving version.
type memVersionStore struct {
	mu      sync.Mutex
	version int64
	payload []byte
}

func (m *memVersionStore) ApplyIfNewer(version int64, payload []byte) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if version > m.version {
		m.version = version
		m.payload = payload
		return true, version, nil
	}
	return false, m.version, nil
}

func newTestSyncService(t *testing.T) (*SyncService, *memAttemptStore, *memVersionStore, *fakeStatsStore) {
	t.Helper()
	attempts := newMemAttemptStore()
	versions := &memVersionStore{}
	statsStore := newFakeStatsStore()
	keys := &fakeAnswerKeyStore{keys: map[string]map[string]string{
		"exam-1": {"q1": "a", "q2": "b"},
	}}
	stats := NewStatsService(statsStore, keys)
	stats.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	svc := NewSyncService(attempts, versions, stats)
	return svc, attempts, versions, statsStore
}

func TestSyncAttemptIdempotent(t *testing.T) {
	svc, attempts, _, statsStore := newTestSyncService(t)

	payload := AttemptPayload{
		ID:             "att-1",
		ExamID:         "exam-1",
		UserID:         intPtr(7),
		Answers:        map[string]string{"q1": "a", "q2": "b"},
		Status:         models.AttemptStatusCompleted,
		TotalQuestions: 2,
	}

	stored, err := svc.SyncAttempt(payload)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = svc.SyncAttempt(payload)
	require.NoError(t, err)
	assert.False(t, stored, "second sync of the same id is a no-op, not an error")

	assert.Len(t, attempts.rows, 1)
	assert.Equal(t, 1, statsStore.saves, "stats projection runs at most once per attempt")
	assert.Equal(t, 2, statsStore.rows[7].TotalCorrectAnswers)
}

func TestSyncAttemptGuestSkipsStats(t *testing.T) {
	svc, attempts, _, statsStore := newTestSyncService(t)

	stored, err := svc.SyncAttempt(AttemptPayload{
		ID:             "att-guest",
		ExamID:         "exam-1",
		Status:         models.AttemptStatusCompleted,
		TotalQuestions: 2,
	})
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Len(t, attempts.rows, 1)
	assert.Equal(t, 0, statsStore.saves)
}

// failingStatsStore simulates the stats table being unavailable.
type failingStatsStore struct{}

func (failingStatsStore) GetUserStats(userID int) (*models.UserStats, error) {
	return nil, errors.New("stats table unavailable")
}

func (failingStatsStore) SaveUserStats(models.UserStats) error {
	return errors.New("stats table unavailable")
}

func TestSyncAttemptSucceedsWhenStatsProjectionFails(t *testing.T) {
	attempts := newMemAttemptStore()
	keys := &fakeAnswerKeyStore{keys: map[string]map[string]string{
		"exam-1": {"q1": "a"},
	}}
	svc := NewSyncService(attempts, &memVersionStore{}, NewStatsService(failingStatsStore{}, keys))

	stored, err := svc.SyncAttempt(AttemptPayload{
		ID:             "att-3",
		ExamID:         "exam-1",
		UserID:         intPtr(7),
		Answers:        map[string]string{"q1": "a"},
		Status:         models.AttemptStatusCompleted,
		TotalQuestions: 1,
	})
	require.NoError(t, err, "the attempt is the durable fact; a stats failure must not fail the sync")
	assert.True(t, stored)
	assert.Len(t, attempts.rows, 1)
}

func TestSyncAttemptDefaultsStatusToCompleted(t *testing.T) {
	svc, attempts, _, _ := newTestSyncService(t)

	stored, err := svc.SyncAttempt(AttemptPayload{ID: "att-2", ExamID: "exam-1"})
	require.NoError(t, err)
	assert.True(t, stored)
	assert.Equal(t, models.AttemptStatusCompleted, attempts.rows["att-2"].Status)
}

func TestSyncQuestionDataMonotonicVersions(t *testing.T) {
	svc, _, versions, _ := newTestSyncService(t)

	cases := []struct {
		version     int64
		wantApplied bool
		wantCurrent int64
	}{
		{5, true, 5},
		{3, false, 5},
		{7, true, 7},
		{7, false, 7},
		{6, false, 7},
	}

	for _, tc := range cases {
		applied, current, err := svc.SyncQuestionData(
			QuestionDataPayload{UpdatedAt: tc.version}, []byte(`{"questions":[]}`))
		require.NoError(t, err)
		assert.Equal(t, tc.wantApplied, applied, "version %d", tc.version)
		assert.Equal(t, tc.wantCurrent, current, "version %d", tc.version)
	}

	assert.Equal(t, int64(7), versions.version)
}

func TestSyncQuestionDataDefaultsVersionToNow(t *testing.T) {
	svc, _, versions, _ := newTestSyncService(t)
	svc.now = func() time.Time { return time.UnixMilli(1750000000000) }

	applied, current, err := svc.SyncQuestionData(QuestionDataPayload{}, []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(1750000000000), current)
	assert.Equal(t, int64(1750000000000), versions.version)
}
