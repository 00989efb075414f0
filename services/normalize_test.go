package services

import (
	"encoding/json"
	"testing"

	"github.com/prepforge/prepforge_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOptions(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`"Paris"`),
		json.RawMessage(`{"id": "b", "text": "London"}`),
		json.RawMessage(`{"text": "Berlin"}`),
	}

	options, err := NormalizeOptions(raw)
	require.NoError(t, err)
	require.Len(t, options, 3)

	assert.Equal(t, models.Option{ID: "Paris", Text: "Paris"}, options[0])
	assert.Equal(t, models.Option{ID: "b", Text: "London"}, options[1])
	assert.Equal(t, models.Option{ID: "opt-2", Text: "Berlin"}, options[2])
}

func TestNormalizeOptionsRejectsGarbage(t *testing.T) {
	_, err := NormalizeOptions([]json.RawMessage{json.RawMessage(`42`)})
	assert.Error(t, err)

	_, err = NormalizeOptions([]json.RawMessage{json.RawMessage(`[1,2]`)})
	assert.Error(t, err)
}

func TestNormalizeOptionsEmpty(t *testing.T) {
	options, err := NormalizeOptions(nil)
	require.NoError(t, err)
	assert.Empty(t, options)
}
