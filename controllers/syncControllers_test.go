package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prepforge/prepforge_backend/models"
	"github.com/prepforge/prepforge_backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAttemptStore struct {
	rows map[string]models.Attempt
}

func (m *memAttemptStore) InsertIfAbsent(a models.Attempt) (bool, error) {
	if _, ok := m.rows[a.ID]; ok {
		return false, nil
	}
	m.rows[a.ID] = a
	return true, nil
}

type memVersionStore struct {
	version int64
}

func (m *memVersionStore) ApplyIfNewer(version int64, payload []byte) (bool, int64, error) {
	if version > m.version {
		m.version = version
		return true, version, nil
	}
	return false, m.version, nil
}

type memStatsStore struct {
	rows map[int]models.UserStats
}

func (m *memStatsStore) GetUserStats(userID int) (*models.UserStats, error) {
	if s, ok := m.rows[userID]; ok {
		copied := s
		return &copied, nil
	}
	return nil, nil
}

func (m *memStatsStore) SaveUserStats(s models.UserStats) error {
	m.rows[s.UserID] = s
	return nil
}

type memAnswerKeyStore struct {
	keys map[string]map[string]string
}

func (m *memAnswerKeyStore) GetAnswerKey(examID string) (map[string]string, error) {
	return m.keys[examID], nil
}

func newSyncTestApp(t *testing.T) *fiber.App {
	t.Helper()
	stats := services.NewStatsService(
		&memStatsStore{rows: map[int]models.UserStats{}},
		&memAnswerKeyStore{keys: map[string]map[string]string{}},
	)
	syncService = services.NewSyncService(
		&memAttemptStore{rows: map[string]models.Attempt{}},
		&memVersionStore{},
		stats,
	)

	app := fiber.New()
	app.Post("/api/sync", HandleSync)
	return app
}

func postSync(t *testing.T, app *fiber.App, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()
	jsonData, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/sync", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestHandleSyncRejectsMalformedPayloads(t *testing.T) {
	app := newSyncTestApp(t)

	status, _ := postSync(t, app, map[string]interface{}{"payload": map[string]interface{}{}})
	assert.Equal(t, fiber.StatusBadRequest, status, "missing type")

	status, _ = postSync(t, app, map[string]interface{}{"type": "attempt"})
	assert.Equal(t, fiber.StatusBadRequest, status, "missing payload")

	status, _ = postSync(t, app, map[string]interface{}{
		"type":    "attempt",
		"payload": map[string]interface{}{"examId": "exam-1"},
	})
	assert.Equal(t, fiber.StatusBadRequest, status, "attempt without id")

	status, _ = postSync(t, app, map[string]interface{}{
		"type":    "banana",
		"payload": map[string]interface{}{},
	})
	assert.Equal(t, fiber.StatusBadRequest, status, "unknown type")
}

func TestHandleSyncAttemptIdempotent(t *testing.T) {
	app := newSyncTestApp(t)

	body := map[string]interface{}{
		"type": "attempt",
		"payload": map[string]interface{}{
			"id":             "att-1",
			"examId":         "exam-1",
			"status":         "completed",
			"totalQuestions": 5,
			"answers":        map[string]string{"q1": "a"},
		},
	}

	status, result := postSync(t, app, body)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["stored"])

	status, result = postSync(t, app, body)
	assert.Equal(t, fiber.StatusOK, status, "duplicate sync is still a success")
	assert.Equal(t, false, result["stored"])
}

func TestHandleSyncQuestionDataVersions(t *testing.T) {
	app := newSyncTestApp(t)

	sync := func(version int64) (int, map[string]interface{}) {
		return postSync(t, app, map[string]interface{}{
			"type": "questionData",
			"payload": map[string]interface{}{
				"questions": []interface{}{},
				"updatedAt": version,
			},
		})
	}

	status, result := sync(5)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["applied"])
	assert.Equal(t, float64(5), result["version"])

	status, result = sync(3)
	assert.Equal(t, fiber.StatusOK, status, "stale version is still a success")
	assert.Equal(t, false, result["applied"])
	assert.Equal(t, float64(5), result["version"])

	status, result = sync(7)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["applied"])
	assert.Equal(t, float64(7), result["version"])
}
